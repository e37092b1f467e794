/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import "fmt"

// Phase is the stage a round is in.
type Phase string

const (
	PhaseSetup      Phase = "SETUP"      // Roster and topics being chosen
	PhaseReveal     Phase = "REVEAL"     // Each player privately views their word
	PhaseDiscussion Phase = "DISCUSSION" // Clues, accusations and votes
	PhaseResults    Phase = "RESULTS"    // Imposters and vote outcome shown
)

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether target directly follows p. RESULTS leads
// either to the next round's REVEAL or back to SETUP for a new game.
func (p Phase) CanTransitionTo(target Phase) bool {
	switch p {
	case PhaseSetup:
		return target == PhaseReveal
	case PhaseReveal:
		return target == PhaseDiscussion
	case PhaseDiscussion:
		return target == PhaseResults
	case PhaseResults:
		return target == PhaseReveal || target == PhaseSetup
	default:
		return false
	}
}

// AdvancePhase returns the phase after current in a continuing game.
func AdvancePhase(current Phase) (Phase, error) {
	switch current {
	case PhaseSetup:
		return PhaseReveal, nil
	case PhaseReveal:
		return PhaseDiscussion, nil
	case PhaseDiscussion:
		return PhaseResults, nil
	case PhaseResults:
		return PhaseReveal, nil
	default:
		return "", fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, current)
	}
}
