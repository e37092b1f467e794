/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// MinPlayers is the smallest roster a round can be played with.
const MinPlayers = 3

// RoundConfig is chosen at setup and carried unchanged across rounds.
type RoundConfig struct {
	PlayerNames  []string `json:"playerNames"`
	NumImposters int      `json:"numImposters"`
	TopicPool    []string `json:"topicPool"`
}

func (c RoundConfig) NumPlayers() int {
	return len(c.PlayerNames)
}

// Validate returns ErrMissingOrInvalidConfig when no round can be started
// from c.
func (c RoundConfig) Validate() error {
	switch {
	case len(c.PlayerNames) == 0:
		return fmt.Errorf("%w: no players", ErrMissingOrInvalidConfig)
	case len(c.PlayerNames) < MinPlayers:
		return fmt.Errorf("%w: %d players, need at least %d", ErrMissingOrInvalidConfig, len(c.PlayerNames), MinPlayers)
	case c.NumImposters < 1 || c.NumImposters >= len(c.PlayerNames):
		return fmt.Errorf("%w: %d imposters for %d players", ErrMissingOrInvalidConfig, c.NumImposters, len(c.PlayerNames))
	case len(dedupeTopics(c.TopicPool)) == 0:
		return fmt.Errorf("%w: %w", ErrMissingOrInvalidConfig, ErrEmptyTopicPool)
	}

	for i, name := range c.PlayerNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: player %d has no name", ErrMissingOrInvalidConfig, i)
		}
	}

	return nil
}

// Clone returns a deep copy of c.
func (c RoundConfig) Clone() RoundConfig {
	return RoundConfig{
		PlayerNames:  slices.Clone(c.PlayerNames),
		NumImposters: c.NumImposters,
		TopicPool:    slices.Clone(c.TopicPool),
	}
}

// Equal reports whether c and o describe the same game.
func (c RoundConfig) Equal(o RoundConfig) bool {
	return c.NumImposters == o.NumImposters &&
		slices.Equal(c.PlayerNames, o.PlayerNames) &&
		slices.Equal(c.TopicPool, o.TopicPool)
}

// RoundSeed is what one round hands to the next. The zero value starts a
// fresh game.
type RoundSeed struct {
	Drought                 []int
	PreviousTopic           string
	PreviousImposterIndices []int
	RoundNumber             int
}

// RoundState is everything generated for a single round.
type RoundState struct {
	RoundNumber     int
	Topic           string
	MainWord        string
	SusWord         string
	ImposterIndices []int

	PreviousTopic           string
	PreviousImposterIndices []int

	// Drought is the table after this round's draw.
	Drought []int
	Phase   Phase
}

// IsImposter reports whether player i received the sus word.
func (s RoundState) IsImposter(i int) bool {
	return slices.Contains(s.ImposterIndices, i)
}

// WordFor returns the word shown to player i.
func (s RoundState) WordFor(i int) string {
	if s.IsImposter(i) {
		return s.SusWord
	}

	return s.MainWord
}

// Machine sequences rounds. It draws a topic, then imposters, then words,
// and keeps the result in its GameStateStore so a reload mid-round resumes
// the same round instead of dealing a new one.
type Machine struct {
	store    GameStateStore
	bank     *WordBank
	topics   *TopicPicker
	selector *Selector
	tuning   Tuning
	rng      Rand
	log      zerolog.Logger
}

type Option func(*Machine)

func WithLogger(log zerolog.Logger) Option {
	return func(m *Machine) {
		m.log = log
	}
}

func WithWordBank(bank *WordBank) Option {
	return func(m *Machine) {
		m.bank = bank
	}
}

// WithTuning overrides the selector weights. Invalid tuning falls back to
// DefaultTuning.
func WithTuning(t Tuning) Option {
	return func(m *Machine) {
		m.tuning = t
	}
}

// NewMachine returns a Machine backed by store. A nil store keeps state in
// memory only.
func NewMachine(store GameStateStore, rng Rand, opts ...Option) *Machine {
	m := &Machine{
		store:  store,
		tuning: DefaultTuning(),
		rng:    rng,
		log:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.bank == nil {
		m.bank = NewWordBank(rng, m.log)
	}

	m.topics = NewTopicPicker(rng)
	m.selector = NewSelector(rng, m.tuning)

	return m
}

// WordBank returns the bank words are drawn from.
func (m *Machine) WordBank() *WordBank {
	return m.bank
}

// StartRound returns the round described by cfg and seed. If the store
// already holds that round for the same config, it is returned unchanged.
// Otherwise a topic, imposters and words are drawn and saved. An invalid
// config fails with ErrMissingOrInvalidConfig before anything is touched.
func (m *Machine) StartRound(ctx context.Context, cfg RoundConfig, seed RoundSeed) (RoundState, error) {
	if err := cfg.Validate(); err != nil {
		return RoundState{}, err
	}

	round := max(seed.RoundNumber, 1)

	if state, ok := m.resume(ctx, cfg, round); ok {
		m.log.Debug().Int("round", round).Msg("resumed saved round")

		return state, nil
	}

	numPlayers := cfg.NumPlayers()
	drought := normalizeDrought(seed.Drought, numPlayers)

	topic, err := m.topics.Pick(cfg.TopicPool, seed.PreviousTopic)
	if err != nil {
		return RoundState{}, fmt.Errorf("%w: %w", ErrMissingOrInvalidConfig, err)
	}

	sel, err := m.selector.Select(numPlayers, cfg.NumImposters, drought, seed.PreviousImposterIndices)
	if err != nil {
		return RoundState{}, fmt.Errorf("%w: %w", ErrMissingOrInvalidConfig, err)
	}

	mainWord, susWord := m.bank.PickPair(topic)

	state := RoundState{
		RoundNumber:             round,
		Topic:                   topic,
		MainWord:                mainWord,
		SusWord:                 susWord,
		ImposterIndices:         sel.ImposterIndices,
		PreviousTopic:           seed.PreviousTopic,
		PreviousImposterIndices: validIndices(seed.PreviousImposterIndices, numPlayers),
		Drought:                 sel.NextDrought,
		Phase:                   PhaseReveal,
	}

	m.Save(ctx, cfg, state)

	m.log.Debug().
		Int("round", round).
		Str("topic", topic).
		Int("imposters", len(sel.ImposterIndices)).
		Msg("started round")

	return state, nil
}

// PrepareNextRound carries cfg forward unchanged and derives the seed for
// the round after state.
func (m *Machine) PrepareNextRound(cfg RoundConfig, state RoundState) (RoundConfig, RoundSeed) {
	return cfg.Clone(), RoundSeed{
		Drought:                 slices.Clone(state.Drought),
		PreviousTopic:           state.Topic,
		PreviousImposterIndices: slices.Clone(state.ImposterIndices),
		RoundNumber:             state.RoundNumber + 1,
	}
}

// NewGame forgets the saved round and returns the seed of round one with
// every drought reset.
func (m *Machine) NewGame(ctx context.Context, numPlayers int) RoundSeed {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)).Msg("clear game state")
	}

	return RoundSeed{
		Drought:     make([]int, max(numPlayers, 0)),
		RoundNumber: 1,
	}
}

// Save persists state. Failures are logged and otherwise ignored; losing
// them only costs the ability to resume after a reload.
func (m *Machine) Save(ctx context.Context, cfg RoundConfig, state RoundState) {
	if err := m.store.Save(ctx, NewPersistedState(cfg, state)); err != nil {
		m.log.Warn().Err(fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)).Int("round", state.RoundNumber).Msg("save game state")
	}
}

// Restore returns whatever playable round the store holds.
func (m *Machine) Restore(ctx context.Context) (RoundConfig, RoundState, bool) {
	ps := m.load(ctx)
	if ps == nil {
		return RoundConfig{}, RoundState{}, false
	}

	return ps.Config(), ps.Round(), true
}

func (m *Machine) resume(ctx context.Context, cfg RoundConfig, round int) (RoundState, bool) {
	ps := m.load(ctx)
	if ps == nil || ps.RoundNumber != round || !cfg.Equal(ps.Config()) {
		return RoundState{}, false
	}

	return ps.Round(), true
}

// load returns the saved document, or nil when there is none or it cannot
// be used.
func (m *Machine) load(ctx context.Context) *PersistedState {
	ps, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)).Msg("load game state")

		return nil
	}
	if ps == nil {
		return nil
	}

	if err := ps.Validate(); err != nil {
		m.log.Warn().Err(fmt.Errorf("%w: malformed state: %w", ErrPersistenceUnavailable, err)).Msg("load game state")

		return nil
	}

	return ps
}

// normalizeDrought sizes drought to numPlayers, keeping known entries and
// starting new players at zero.
func normalizeDrought(drought []int, numPlayers int) []int {
	out := make([]int, numPlayers)
	for i := range min(len(drought), numPlayers) {
		out[i] = max(drought[i], 0)
	}

	return out
}

func validIndices(indices []int, numPlayers int) []int {
	var out []int
	for _, i := range indices {
		if i >= 0 && i < numPlayers && !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	slices.Sort(out)

	return out
}
