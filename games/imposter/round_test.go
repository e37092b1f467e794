/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fivePlayers() RoundConfig {
	return RoundConfig{
		PlayerNames:  []string{"Ana", "Ben", "Cai", "Dee", "Eli"},
		NumImposters: 1,
		TopicPool:    threeTopics(),
	}
}

func TestStartRoundRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  RoundConfig
	}{
		{"missing players", RoundConfig{NumImposters: 1, TopicPool: threeTopics()}},
		{"too few players", RoundConfig{PlayerNames: []string{"A", "B"}, NumImposters: 1, TopicPool: threeTopics()}},
		{"no imposters", RoundConfig{PlayerNames: []string{"A", "B", "C"}, TopicPool: threeTopics()}},
		{"all imposters", RoundConfig{PlayerNames: []string{"A", "B", "C"}, NumImposters: 3, TopicPool: threeTopics()}},
		{"blank name", RoundConfig{PlayerNames: []string{"A", " ", "C"}, NumImposters: 1, TopicPool: threeTopics()}},
		{"no topics", RoundConfig{PlayerNames: []string{"A", "B", "C"}, NumImposters: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := new(MockStore)
			m := NewMachine(store, NewRand(1))

			seed := RoundSeed{Drought: []int{4, 2, 0}, RoundNumber: 3}
			_, err := m.StartRound(context.Background(), tc.cfg, seed)
			require.ErrorIs(t, err, ErrMissingOrInvalidConfig)

			assert.Equal(t, []int{4, 2, 0}, seed.Drought)
			store.AssertNotCalled(t, "Load", mock.Anything)
			store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestStartRoundResumesSavedRound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, sampleState()))

	m := NewMachine(store, NewRand(1))
	cfg := RoundConfig{PlayerNames: []string{"A", "B", "C"}, NumImposters: 1, TopicPool: []string{"Food"}}

	state, err := m.StartRound(ctx, cfg, RoundSeed{})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, state.ImposterIndices)
	assert.Equal(t, "Pizza", state.MainWord)
	assert.Equal(t, "Burger", state.SusWord)
	assert.Equal(t, 1, state.RoundNumber)
	assert.Equal(t, []int{1, 0, 1}, state.Drought)
}

func TestStartRoundIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMachine(NewMemoryStore(), NewRand(21))
	cfg := fivePlayers()

	first, err := m.StartRound(ctx, cfg, RoundSeed{})
	require.NoError(t, err)

	for range 5 {
		again, err := m.StartRound(ctx, cfg, RoundSeed{})
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("round changed on reload (-first +again):\n%s", diff)
		}
	}
}

func TestStartRoundRegeneratesForChangedRoster(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, sampleState()))

	m := NewMachine(store, NewRand(4))
	cfg := RoundConfig{PlayerNames: []string{"A", "B", "C", "D"}, NumImposters: 1, TopicPool: []string{"Food"}}

	state, err := m.StartRound(ctx, cfg, RoundSeed{Drought: []int{1, 0, 1}})
	require.NoError(t, err)

	assert.Len(t, state.Drought, 4)
	assert.Len(t, state.ImposterIndices, 1)
	assert.NotEqual(t, state.MainWord, state.SusWord)
}

func TestStartRoundIgnoresMalformedSavedState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	bad := sampleState()
	bad.ImposterIndices = []int{7}
	require.NoError(t, store.Save(ctx, bad))

	m := NewMachine(store, NewRand(9))
	cfg := RoundConfig{PlayerNames: []string{"A", "B", "C"}, NumImposters: 1, TopicPool: []string{"Food"}}

	state, err := m.StartRound(ctx, cfg, RoundSeed{})
	require.NoError(t, err)
	require.Len(t, state.ImposterIndices, 1)
	assert.Less(t, state.ImposterIndices[0], 3)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.ImposterIndices, saved.ImposterIndices, "fresh round replaces the malformed one")
}

func TestStartRoundSurvivesStoreFailures(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	store.On("Load", mock.Anything).Return(nil, errors.New("disk on fire"))
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk still on fire"))
	store.On("Clear", mock.Anything).Return(errors.New("no disk left"))

	m := NewMachine(store, NewRand(2))
	ctx := context.Background()

	state, err := m.StartRound(ctx, fivePlayers(), RoundSeed{})
	require.NoError(t, err)
	assert.Equal(t, PhaseReveal, state.Phase)
	assert.Len(t, state.ImposterIndices, 1)

	seed := m.NewGame(ctx, 5)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, seed.Drought)

	store.AssertExpectations(t)
}

func TestStartRoundDealsWords(t *testing.T) {
	t.Parallel()

	m := NewMachine(nil, NewRand(12))
	cfg := fivePlayers()
	cfg.NumImposters = 2

	state, err := m.StartRound(context.Background(), cfg, RoundSeed{})
	require.NoError(t, err)

	assert.Contains(t, cfg.TopicPool, state.Topic)
	assert.NotEqual(t, state.MainWord, state.SusWord)

	var sus int
	for i := range cfg.NumPlayers() {
		switch state.WordFor(i) {
		case state.SusWord:
			sus++
			assert.True(t, state.IsImposter(i))
		case state.MainWord:
			assert.False(t, state.IsImposter(i))
		default:
			t.Fatalf("player %d got unexpected word %q", i, state.WordFor(i))
		}
	}
	assert.Equal(t, 2, sus)
}

func TestRoundsAdvanceWithoutGaps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMachine(NewMemoryStore(), NewRand(31))

	original := fivePlayers()
	cfg := original.Clone()
	seed := RoundSeed{}

	var rounds []int
	var previous RoundState
	for i := range 10 {
		state, err := m.StartRound(ctx, cfg, seed)
		require.NoError(t, err)

		rounds = append(rounds, state.RoundNumber)
		if i > 0 {
			assert.NotEqual(t, previous.Topic, state.Topic, "topic repeated in round %d", state.RoundNumber)
			assert.Equal(t, previous.Topic, state.PreviousTopic)
			assert.Equal(t, previous.ImposterIndices, state.PreviousImposterIndices)
		}

		if diff := cmp.Diff(original, cfg); diff != "" {
			t.Fatalf("config changed in round %d (-want +got):\n%s", state.RoundNumber, diff)
		}

		previous = state
		cfg, seed = m.PrepareNextRound(cfg, state)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, rounds)
}

func TestPrepareNextRoundCarriesDrought(t *testing.T) {
	t.Parallel()

	m := NewMachine(nil, NewRand(1))
	cfg := fivePlayers()
	state := RoundState{
		RoundNumber:     4,
		Topic:           "Food",
		ImposterIndices: []int{2},
		Drought:         []int{1, 1, 0, 1, 1},
	}

	nextCfg, seed := m.PrepareNextRound(cfg, state)

	assert.True(t, cfg.Equal(nextCfg))
	assert.Equal(t, 5, seed.RoundNumber)
	assert.Equal(t, "Food", seed.PreviousTopic)
	assert.Equal(t, []int{2}, seed.PreviousImposterIndices)
	assert.Equal(t, []int{1, 1, 0, 1, 1}, seed.Drought)

	seed.Drought[0] = 99
	assert.Equal(t, 1, state.Drought[0], "seed must not alias the finished round")

	nextCfg.PlayerNames[0] = "Zed"
	assert.Equal(t, "Ana", cfg.PlayerNames[0], "config must not alias")
}

func TestNewGameResets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	m := NewMachine(store, NewRand(5))
	cfg := fivePlayers()

	state, err := m.StartRound(ctx, cfg, RoundSeed{})
	require.NoError(t, err)
	_, seed := m.PrepareNextRound(cfg, state)
	state, err = m.StartRound(ctx, cfg, seed)
	require.NoError(t, err)
	require.Equal(t, 2, state.RoundNumber)

	seed = m.NewGame(ctx, cfg.NumPlayers())
	assert.Equal(t, 1, seed.RoundNumber)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, seed.Drought)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved)

	state, err = m.StartRound(ctx, cfg, seed)
	require.NoError(t, err)
	assert.Equal(t, 1, state.RoundNumber)
	assert.Empty(t, state.PreviousImposterIndices)
}

func TestSavePersistsPhase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMachine(NewMemoryStore(), NewRand(6))
	cfg := fivePlayers()

	state, err := m.StartRound(ctx, cfg, RoundSeed{})
	require.NoError(t, err)

	state.Phase = PhaseDiscussion
	m.Save(ctx, cfg, state)

	restoredCfg, restored, ok := m.Restore(ctx)
	require.True(t, ok)
	assert.True(t, cfg.Equal(restoredCfg))
	assert.Equal(t, PhaseDiscussion, restored.Phase)

	resumed, err := m.StartRound(ctx, cfg, RoundSeed{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDiscussion, resumed.Phase)
	assert.True(t, slices.Equal(state.ImposterIndices, resumed.ImposterIndices))
}
