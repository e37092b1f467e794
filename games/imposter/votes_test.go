/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyVotes(t *testing.T) {
	t.Parallel()

	state := RoundState{ImposterIndices: []int{1}}

	cases := []struct {
		name     string
		votes    map[int]int
		votedOut int
		tie      bool
		winner   Winner
		counts   []int
	}{
		{
			name:     "imposter caught",
			votes:    map[int]int{0: 1, 2: 1, 3: 1, 1: 0},
			votedOut: 1,
			winner:   WinnerCrew,
			counts:   []int{1, 3, 0, 0},
		},
		{
			name:     "innocent voted out",
			votes:    map[int]int{0: 2, 1: 2, 3: 2, 2: 0},
			votedOut: 2,
			winner:   WinnerImposters,
			counts:   []int{1, 0, 3, 0},
		},
		{
			name:     "tie",
			votes:    map[int]int{0: 1, 1: 0, 2: 3, 3: 2},
			votedOut: -1,
			tie:      true,
			winner:   WinnerNone,
			counts:   []int{1, 1, 1, 1},
		},
		{
			name:     "no votes",
			votes:    nil,
			votedOut: -1,
			tie:      true,
			winner:   WinnerNone,
			counts:   []int{0, 0, 0, 0},
		},
		{
			name:     "self and invalid votes ignored",
			votes:    map[int]int{0: 0, 1: 9, 2: 1, 7: 1},
			votedOut: 1,
			winner:   WinnerCrew,
			counts:   []int{0, 1, 0, 0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := TallyVotes(4, state, tc.votes)

			assert.Equal(t, tc.votedOut, out.VotedOut)
			assert.Equal(t, tc.tie, out.Tie)
			assert.Equal(t, tc.winner, out.Winner)
			assert.Equal(t, tc.counts, out.Counts)
		})
	}
}
