/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"fmt"
	"slices"
)

// Selection is the outcome of one imposter draw.
type Selection struct {
	// ImposterIndices is sorted ascending.
	ImposterIndices []int
	// NextDrought is zero for every imposter and the previous drought plus
	// one for everybody else.
	NextDrought []int
}

// Selector draws imposters with a weighted lottery. Long droughts raise a
// player's weight, last round's imposters are damped but never excluded, and
// players about to pass the fairness threshold are guaranteed a slot.
type Selector struct {
	rng    Rand
	tuning Tuning
}

// NewSelector returns a Selector drawing from rng. Tuning that fails Validate
// is replaced by DefaultTuning.
func NewSelector(rng Rand, tuning Tuning) *Selector {
	if tuning.Validate() != nil {
		tuning = DefaultTuning()
	}

	return &Selector{rng: rng, tuning: tuning}
}

// Tuning returns the weights in use.
func (s *Selector) Tuning() Tuning {
	return s.tuning
}

// Select picks numImposters distinct players out of numPlayers. drought must
// hold one non-negative entry per player; previous lists last round's
// imposters and may be empty. Out-of-range entries in previous are ignored.
func (s *Selector) Select(numPlayers, numImposters int, drought, previous []int) (Selection, error) {
	if numImposters < 1 || numImposters >= numPlayers {
		return Selection{}, fmt.Errorf("%w: %d imposters for %d players", ErrInvalidSelection, numImposters, numPlayers)
	}
	if len(drought) != numPlayers {
		return Selection{}, fmt.Errorf("%w: drought table has %d entries for %d players", ErrInvalidSelection, len(drought), numPlayers)
	}
	for i, d := range drought {
		if d < 0 {
			return Selection{}, fmt.Errorf("%w: negative drought %d for player %d", ErrInvalidSelection, d, i)
		}
	}

	wasImposter := make([]bool, numPlayers)
	for _, i := range previous {
		if i >= 0 && i < numPlayers {
			wasImposter[i] = true
		}
	}

	chosen := make([]bool, numPlayers)
	picked := make([]int, 0, numImposters)

	for _, i := range s.duePlayers(numImposters, drought) {
		chosen[i] = true
		picked = append(picked, i)
	}

	pool := make([]int, 0, numPlayers)
	for i := range numPlayers {
		if !chosen[i] {
			pool = append(pool, i)
		}
	}

	for len(picked) < numImposters && len(pool) > 0 {
		k := s.spin(pool, drought, wasImposter)
		picked = append(picked, pool[k])
		pool = slices.Delete(pool, k, k+1)
	}

	slices.Sort(picked)

	next := make([]int, numPlayers)
	for i, d := range drought {
		next[i] = d + 1
	}
	for _, i := range picked {
		next[i] = 0
	}

	return Selection{ImposterIndices: picked, NextDrought: next}, nil
}

// duePlayers returns the players that must be imposters this round so that
// no drought ever passes the fairness threshold. A player with drought d has
// threshold-d rounds left, counting this one; every player due within the
// next h+1 rounds has to fit into numImposters*(h+1) slots, so any overflow
// beyond what rounds 1..h can absorb is served now, longest drought first.
func (s *Selector) duePlayers(numImposters int, drought []int) []int {
	threshold := s.tuning.FairnessThreshold(len(drought))

	counts := make([]int, threshold+1)
	for _, d := range drought {
		counts[max(threshold-d, 0)]++
	}

	forced, due := 0, 0
	for h := 0; h <= threshold; h++ {
		due += counts[h]
		forced = max(forced, due-numImposters*h)
	}
	if forced == 0 {
		return nil
	}
	forced = min(forced, numImposters)

	order := make([]int, len(drought))
	for i := range order {
		order[i] = i
	}
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	slices.SortStableFunc(order, func(a, b int) int {
		return drought[b] - drought[a]
	})

	return order[:forced]
}

// spin runs one cumulative-weight roulette draw over pool and returns the
// position of the winner within pool.
func (s *Selector) spin(pool []int, drought []int, wasImposter []bool) int {
	weights := make([]float64, len(pool))
	total := 0.0
	for k, i := range pool {
		weights[k] = s.weight(drought[i], wasImposter[i])
		total += weights[k]
	}

	r := s.rng.Float64() * total
	acc := 0.0
	for k, w := range weights {
		acc += w
		if acc > r {
			return k
		}
	}

	return len(pool) - 1
}

func (s *Selector) weight(drought int, wasImposter bool) float64 {
	w := s.tuning.BaseWeight + float64(drought)*s.tuning.DroughtBonus
	if wasImposter {
		w *= s.tuning.RepeatPenalty
	}

	return w
}
