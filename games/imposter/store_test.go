/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() PersistedState {
	return PersistedState{
		NumPlayers:      3,
		PlayerNames:     []string{"A", "B", "C"},
		NumImposters:    1,
		TopicPool:       []string{"Food"},
		Topic:           "Food",
		MainWord:        "Pizza",
		SusWord:         "Burger",
		ImposterIndices: []int{1},
		Drought:         []int{1, 0, 1},
		RoundNumber:     1,
		Phase:           PhaseReveal,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	ps, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, ps)

	want := sampleState()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	got.PlayerNames[0] = "Z"
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", again.PlayerNames[0], "loaded copies must not alias the store")

	require.NoError(t, store.Clear(ctx))
	ps, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, ps)
}

func TestPersistedStateValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, sampleState().Validate())

	cases := []struct {
		name   string
		mutate func(*PersistedState)
	}{
		{"no players", func(ps *PersistedState) { ps.PlayerNames = nil; ps.NumPlayers = 0 }},
		{"player count mismatch", func(ps *PersistedState) { ps.NumPlayers = 4 }},
		{"round zero", func(ps *PersistedState) { ps.RoundNumber = 0 }},
		{"missing words", func(ps *PersistedState) { ps.SusWord = "" }},
		{"imposter out of range", func(ps *PersistedState) { ps.ImposterIndices = []int{3} }},
		{"too many imposters", func(ps *PersistedState) { ps.ImposterIndices = []int{0, 1} }},
		{"short drought", func(ps *PersistedState) { ps.Drought = []int{0} }},
		{"unknown phase", func(ps *PersistedState) { ps.Phase = "VOTING" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ps := sampleState()
			tc.mutate(&ps)
			assert.Error(t, ps.Validate())
		})
	}
}

func TestPersistedStateConversion(t *testing.T) {
	t.Parallel()

	ps := sampleState()
	ps.Phase = ""

	cfg, round := ps.Config(), ps.Round()
	assert.Equal(t, []string{"A", "B", "C"}, cfg.PlayerNames)
	assert.Equal(t, PhaseReveal, round.Phase)
	assert.Equal(t, "Burger", round.WordFor(1))
	assert.Equal(t, "Pizza", round.WordFor(0))

	back := NewPersistedState(cfg, round)
	assert.Equal(t, 3, back.NumPlayers)
	assert.Equal(t, ps.ImposterIndices, back.ImposterIndices)
}
