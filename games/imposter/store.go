/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// PersistedState is the single document a GameStateStore keeps for a game:
// the round config, the current round and the drought table.
type PersistedState struct {
	NumPlayers   int      `json:"numPlayers"`
	PlayerNames  []string `json:"playerNames"`
	NumImposters int      `json:"numImposters"`
	TopicPool    []string `json:"topicPool"`

	Topic           string `json:"topic"`
	MainWord        string `json:"mainWord"`
	SusWord         string `json:"susWord"`
	ImposterIndices []int  `json:"imposterIndices"`
	Drought         []int  `json:"drought"`
	RoundNumber     int    `json:"roundNumber"`

	PreviousTopic           string `json:"previousTopic,omitempty"`
	PreviousImposterIndices []int  `json:"previousImposterIndices,omitempty"`
	Phase                   Phase  `json:"phase,omitempty"`
}

// GameStateStore persists one game's state. Load returns nil, nil when
// nothing has been saved.
type GameStateStore interface {
	Load(ctx context.Context) (*PersistedState, error)
	Save(ctx context.Context, state PersistedState) error
	Clear(ctx context.Context) error
}

// NewPersistedState flattens a config and round into a storable document.
func NewPersistedState(cfg RoundConfig, state RoundState) PersistedState {
	return PersistedState{
		NumPlayers:              cfg.NumPlayers(),
		PlayerNames:             slices.Clone(cfg.PlayerNames),
		NumImposters:            cfg.NumImposters,
		TopicPool:               slices.Clone(cfg.TopicPool),
		Topic:                   state.Topic,
		MainWord:                state.MainWord,
		SusWord:                 state.SusWord,
		ImposterIndices:         slices.Clone(state.ImposterIndices),
		Drought:                 slices.Clone(state.Drought),
		RoundNumber:             state.RoundNumber,
		PreviousTopic:           state.PreviousTopic,
		PreviousImposterIndices: slices.Clone(state.PreviousImposterIndices),
		Phase:                   state.Phase,
	}
}

// Config returns the round config part of the document.
func (ps PersistedState) Config() RoundConfig {
	return RoundConfig{
		PlayerNames:  slices.Clone(ps.PlayerNames),
		NumImposters: ps.NumImposters,
		TopicPool:    slices.Clone(ps.TopicPool),
	}
}

// Round returns the round part of the document.
func (ps PersistedState) Round() RoundState {
	phase := ps.Phase
	if phase == "" {
		phase = PhaseReveal
	}

	return RoundState{
		RoundNumber:             ps.RoundNumber,
		Topic:                   ps.Topic,
		MainWord:                ps.MainWord,
		SusWord:                 ps.SusWord,
		ImposterIndices:         slices.Clone(ps.ImposterIndices),
		PreviousTopic:           ps.PreviousTopic,
		PreviousImposterIndices: slices.Clone(ps.PreviousImposterIndices),
		Drought:                 normalizeDrought(ps.Drought, len(ps.PlayerNames)),
		Phase:                   phase,
	}
}

// Validate reports whether the document describes a playable round.
func (ps PersistedState) Validate() error {
	cfg := ps.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch {
	case ps.NumPlayers != 0 && ps.NumPlayers != cfg.NumPlayers():
		return fmt.Errorf("player count %d does not match %d names", ps.NumPlayers, cfg.NumPlayers())
	case ps.RoundNumber < 1:
		return fmt.Errorf("round number %d is not positive", ps.RoundNumber)
	case ps.MainWord == "" || ps.SusWord == "":
		return fmt.Errorf("round %d has no words", ps.RoundNumber)
	case len(ps.ImposterIndices) != ps.NumImposters:
		return fmt.Errorf("round %d has %d imposters, want %d", ps.RoundNumber, len(ps.ImposterIndices), ps.NumImposters)
	case len(ps.Drought) != 0 && len(ps.Drought) != cfg.NumPlayers():
		return fmt.Errorf("drought table has %d entries for %d players", len(ps.Drought), cfg.NumPlayers())
	}

	seen := make(map[int]bool, len(ps.ImposterIndices))
	for _, i := range ps.ImposterIndices {
		if i < 0 || i >= cfg.NumPlayers() || seen[i] {
			return fmt.Errorf("imposter index %d is invalid", i)
		}
		seen[i] = true
	}

	switch ps.Phase {
	case "", PhaseReveal, PhaseDiscussion, PhaseResults:
	default:
		return fmt.Errorf("unexpected phase %q", ps.Phase)
	}

	return nil
}

// MemoryStore keeps the encoded document in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*PersistedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, nil
	}

	var ps PersistedState
	if err := json.Unmarshal(s.data, &ps); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}

	return &ps, nil
}

func (s *MemoryStore) Save(_ context.Context, state PersistedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()

	return nil
}
