/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import "strings"

// TopicPicker chooses the topic for each round.
type TopicPicker struct {
	rng Rand
}

func NewTopicPicker(rng Rand) *TopicPicker {
	return &TopicPicker{rng: rng}
}

// Pick returns a uniformly random topic from pool. When the pool holds more
// than one topic, previous is never returned, so consecutive rounds always
// change category; a single-topic pool is always usable.
func (tp *TopicPicker) Pick(pool []string, previous string) (string, error) {
	topics := dedupeTopics(pool)
	if len(topics) == 0 {
		return "", ErrEmptyTopicPool
	}

	previous = strings.TrimSpace(previous)

	candidates := topics
	if len(topics) > 1 && previous != "" {
		candidates = make([]string, 0, len(topics))
		for _, t := range topics {
			if t != previous {
				candidates = append(candidates, t)
			}
		}
	}

	return candidates[tp.rng.IntN(len(candidates))], nil
}

func dedupeTopics(pool []string) []string {
	seen := make(map[string]bool, len(pool))
	out := make([]string, 0, len(pool))

	for _, t := range pool {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	return out
}
