/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

// Winner is who took the round.
type Winner string

const (
	WinnerNone      Winner = "none" // Tie, nobody voted out
	WinnerCrew      Winner = "crew"
	WinnerImposters Winner = "imposters"
)

// Outcome is the result of a round's vote.
type Outcome struct {
	Counts     []int  `json:"counts"`
	VotedOut   int    `json:"voted_out"` // -1 on a tie
	Tie        bool   `json:"tie"`
	WasSus     bool   `json:"was_sus"`
	Winner     Winner `json:"winner"`
	TotalVotes int    `json:"total_votes"`
}

// TallyVotes counts votes, keyed by voter index, for the round in state.
// Self votes and out-of-range indices are ignored. The most voted player is
// out unless the top count is shared; voting out an imposter wins the round
// for the crew, anyone else hands it to the imposters.
func TallyVotes(numPlayers int, state RoundState, votes map[int]int) Outcome {
	out := Outcome{
		Counts:   make([]int, numPlayers),
		VotedOut: -1,
	}

	for voter, target := range votes {
		if voter < 0 || voter >= numPlayers || target < 0 || target >= numPlayers || voter == target {
			continue
		}
		out.Counts[target]++
		out.TotalVotes++
	}

	best := -1
	for i, c := range out.Counts {
		switch {
		case best == -1 || c > out.Counts[best]:
			best = i
			out.Tie = false
		case c == out.Counts[best]:
			out.Tie = true
		}
	}

	if best == -1 || out.Tie {
		out.Tie = true
		out.Winner = WinnerNone

		return out
	}

	out.VotedOut = best
	out.WasSus = state.IsImposter(best)
	if out.WasSus {
		out.Winner = WinnerCrew
	} else {
		out.Winner = WinnerImposters
	}

	return out
}
