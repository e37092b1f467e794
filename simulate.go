/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/Seednode/amongsus/games/imposter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type simulateOptions struct {
	players   int
	imposters int
	rounds    int
	seed      uint64
}

func (o simulateOptions) validate() error {
	switch {
	case o.players < imposter.MinPlayers:
		return fmt.Errorf("need at least %d players: %d", imposter.MinPlayers, o.players)
	case o.imposters < 1 || o.imposters >= o.players:
		return fmt.Errorf("imposters must be between 1 and %d: %d", o.players-1, o.imposters)
	case o.rounds < 1:
		return errors.New("rounds must be positive")
	}
	return nil
}

// simulationReport summarises how often and how evenly each seat was
// picked.
type simulationReport struct {
	Seed       uint64
	Rounds     int
	Threshold  int
	Counts     []int
	MaxDrought []int
	Repeats    int
}

// RepeatRate is the share of imposter slots filled by someone who was also
// an imposter the round before.
func (r simulationReport) RepeatRate(imposters int) float64 {
	slots := (r.Rounds - 1) * imposters
	if slots <= 0 {
		return 0
	}
	return float64(r.Repeats) / float64(slots)
}

func runSimulation(ctx context.Context, opts simulateOptions, tuning imposter.Tuning) (simulationReport, error) {
	if err := opts.validate(); err != nil {
		return simulationReport{}, err
	}

	names := make([]string, opts.players)
	for i := range names {
		names[i] = "P" + strconv.Itoa(i+1)
	}

	machine := imposter.NewMachine(nil, imposter.NewRand(opts.seed), imposter.WithTuning(tuning))

	rc := imposter.RoundConfig{
		PlayerNames:  names,
		NumImposters: opts.imposters,
		TopicPool:    machine.WordBank().Topics(),
	}
	seed := machine.NewGame(ctx, opts.players)

	report := simulationReport{
		Seed:       opts.seed,
		Rounds:     opts.rounds,
		Threshold:  tuning.FairnessThreshold(opts.players),
		Counts:     make([]int, opts.players),
		MaxDrought: make([]int, opts.players),
	}

	var previous []int
	for range opts.rounds {
		state, err := machine.StartRound(ctx, rc, seed)
		if err != nil {
			return simulationReport{}, err
		}

		for _, i := range state.ImposterIndices {
			report.Counts[i]++
			if slices.Contains(previous, i) {
				report.Repeats++
			}
		}
		for i, d := range seed.Drought {
			report.MaxDrought[i] = max(report.MaxDrought[i], d)
		}

		previous = state.ImposterIndices
		rc, seed = machine.PrepareNextRound(rc, state)
	}

	for i, d := range seed.Drought {
		report.MaxDrought[i] = max(report.MaxDrought[i], d)
	}

	return report, nil
}

func writeReport(w io.Writer, opts simulateOptions, report simulationReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "seed\t%d\n", report.Seed)
	fmt.Fprintf(tw, "rounds\t%d\n", report.Rounds)
	fmt.Fprintf(tw, "fairness threshold\t%d\n", report.Threshold)
	fmt.Fprintf(tw, "repeat rate\t%.3f\n\n", report.RepeatRate(opts.imposters))

	fmt.Fprintln(tw, "player\timposter\tshare\tlongest drought")
	for i, count := range report.Counts {
		fmt.Fprintf(tw, "P%d\t%d\t%.3f\t%d\n",
			i+1,
			count,
			float64(count)/float64(report.Rounds),
			report.MaxDrought[i],
		)
	}

	return tw.Flush()
}

func newSimulateCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play rounds offline and report how imposters were distributed.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.seed == 0 {
				seed, err := imposter.NewSeed()
				if err != nil {
					return err
				}
				opts.seed = seed
			}

			tuning, err := imposter.ParseTuning()
			if err != nil {
				return err
			}

			report, err := runSimulation(cmd.Context(), opts, tuning)
			if err != nil {
				return err
			}

			cfg.logger.Debug().
				Uint64("seed", report.Seed).
				Int("repeats", report.Repeats).
				Msg("simulation finished")

			return writeReport(cmd.OutOrStdout(), opts, report)
		},
	}

	fs := cmd.Flags()

	fs.IntVar(&opts.players, "players", 6, "number of players (env: AMONGSUS_PLAYERS)")
	fs.IntVar(&opts.imposters, "imposters", 1, "imposters per round (env: AMONGSUS_IMPOSTERS)")
	fs.IntVar(&opts.rounds, "rounds", 1000, "rounds to play (env: AMONGSUS_ROUNDS)")
	fs.Uint64Var(&opts.seed, "seed", 0, "random seed; 0 picks one (env: AMONGSUS_SEED)")

	bindEnv(v, fs)

	return cmd
}
