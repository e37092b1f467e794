/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/Seednode/amongsus/games/imposter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSimulationIsFair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts simulateOptions
	}{
		{name: "small table", opts: simulateOptions{players: 3, imposters: 1, rounds: 300, seed: 1}},
		{name: "party", opts: simulateOptions{players: 8, imposters: 2, rounds: 500, seed: 42}},
		{name: "crowd", opts: simulateOptions{players: 20, imposters: 3, rounds: 500, seed: 7}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			report, err := runSimulation(context.Background(), tc.opts, imposter.DefaultTuning())
			require.NoError(t, err)

			total := 0
			for i, count := range report.Counts {
				assert.Positive(t, count, "player %d never picked", i)
				total += count
			}
			assert.Equal(t, tc.opts.rounds*tc.opts.imposters, total)

			for i, d := range report.MaxDrought {
				assert.LessOrEqual(t, d, report.Threshold, "player %d waited too long", i)
			}

			assert.GreaterOrEqual(t, report.RepeatRate(tc.opts.imposters), 0.0)
			assert.Less(t, report.RepeatRate(tc.opts.imposters), 0.5)
		})
	}
}

func TestRunSimulationIsReproducible(t *testing.T) {
	t.Parallel()

	opts := simulateOptions{players: 6, imposters: 1, rounds: 100, seed: 99}

	first, err := runSimulation(context.Background(), opts, imposter.DefaultTuning())
	require.NoError(t, err)
	second, err := runSimulation(context.Background(), opts, imposter.DefaultTuning())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunSimulationRejectsBadOptions(t *testing.T) {
	t.Parallel()

	for _, opts := range []simulateOptions{
		{players: 2, imposters: 1, rounds: 10},
		{players: 5, imposters: 0, rounds: 10},
		{players: 5, imposters: 5, rounds: 10},
		{players: 5, imposters: 1, rounds: 0},
	} {
		_, err := runSimulation(context.Background(), opts, imposter.DefaultTuning())
		assert.Error(t, err, "%+v", opts)
	}
}

func TestSimulateCommand(t *testing.T) {
	var out bytes.Buffer

	cmd := newCmd(&Config{})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"simulate", "--players", "4", "--rounds", "40", "--seed", "5"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "seed")
	assert.Contains(t, out.String(), "fairness threshold  6")
	for _, name := range []string{"P1", "P2", "P3", "P4"} {
		assert.Contains(t, out.String(), name)
	}
}
