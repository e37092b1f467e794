/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import "errors"

var (
	// ErrMissingOrInvalidConfig is returned by StartRound when the roster or
	// imposter count cannot produce a round. Callers should send the group
	// back to setup.
	ErrMissingOrInvalidConfig = errors.New("missing or invalid round config")

	// ErrDegenerateWordBank marks a topic that could not supply two distinct
	// words. WordBank recovers from it locally and only logs it.
	ErrDegenerateWordBank = errors.New("topic cannot supply two distinct words")

	// ErrPersistenceUnavailable wraps store failures. It is logged, never
	// returned from round operations.
	ErrPersistenceUnavailable = errors.New("game state persistence unavailable")

	ErrInvalidSelection  = errors.New("invalid imposter selection request")
	ErrEmptyTopicPool    = errors.New("topic pool is empty")
	ErrInvalidTransition = errors.New("invalid phase transition")
)
