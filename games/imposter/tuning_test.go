/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTuningDefaults(t *testing.T) {
	tuning, err := ParseTuning()
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), tuning)
	assert.Equal(t, 7, tuning.FairnessThreshold(5))
}

func TestParseTuningOverrides(t *testing.T) {
	t.Setenv("AMONGSUS_REPEAT_PENALTY", "0.25")
	t.Setenv("AMONGSUS_FAIRNESS_SLACK", "4")

	tuning, err := ParseTuning()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, tuning.RepeatPenalty, 1e-9)
	assert.Equal(t, 10, tuning.FairnessThreshold(6))
}

func TestParseTuningErrors(t *testing.T) {
	cases := map[string]string{
		"AMONGSUS_BASE_WEIGHT":    "heavy",
		"AMONGSUS_REPEAT_PENALTY": "1",
		"AMONGSUS_DROUGHT_BONUS":  "-2",
		"AMONGSUS_FAIRNESS_SLACK": "-1",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := ParseTuning()
			assert.Error(t, err)
		})
	}
}
