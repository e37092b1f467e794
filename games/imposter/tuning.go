/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Tuning holds the weights of the imposter lottery.
type Tuning struct {
	// BaseWeight is the weight every player starts from.
	BaseWeight float64 `env:"AMONGSUS_BASE_WEIGHT" envDefault:"1"`
	// DroughtBonus is added once per round a player has gone without being
	// an imposter.
	DroughtBonus float64 `env:"AMONGSUS_DROUGHT_BONUS" envDefault:"1"`
	// RepeatPenalty multiplies the weight of last round's imposters. Must be
	// in (0, 1).
	RepeatPenalty float64 `env:"AMONGSUS_REPEAT_PENALTY" envDefault:"0.1"`
	// FairnessSlack is added to the player count to get the longest drought
	// any player may reach.
	FairnessSlack int `env:"AMONGSUS_FAIRNESS_SLACK" envDefault:"2"`
}

// DefaultTuning returns the weights used when nothing is configured.
func DefaultTuning() Tuning {
	return Tuning{
		BaseWeight:    1,
		DroughtBonus:  1,
		RepeatPenalty: 0.1,
		FairnessSlack: 2,
	}
}

// ParseTuning reads tuning overrides from the environment on top of the
// defaults.
func ParseTuning() (Tuning, error) {
	t := DefaultTuning()
	if err := env.Parse(&t); err != nil {
		return Tuning{}, fmt.Errorf("parse env: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}

	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.BaseWeight <= 0:
		return fmt.Errorf("base weight must be positive: %v", t.BaseWeight)
	case t.DroughtBonus < 0:
		return fmt.Errorf("drought bonus must not be negative: %v", t.DroughtBonus)
	case t.RepeatPenalty <= 0 || t.RepeatPenalty >= 1:
		return fmt.Errorf("repeat penalty must be between 0 and 1 exclusive: %v", t.RepeatPenalty)
	case t.FairnessSlack < 0:
		return fmt.Errorf("fairness slack must not be negative: %d", t.FairnessSlack)
	}

	return nil
}

// FairnessThreshold is the drought at which a player becomes due.
func (t Tuning) FairnessThreshold(numPlayers int) int {
	return numPlayers + t.FairnessSlack
}
