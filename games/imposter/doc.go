/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package imposter implements the rules of the imposter word game.
//
// Each round a topic is drawn from the configured pool, a few players are
// chosen as imposters, and a related pair of words is dealt: imposters get
// the sus word, everyone else the main word.
//
// # Fair rotation
//
// Imposters are drawn by a weighted lottery. Every round a player goes
// without being chosen adds to their weight, last round's imposters are
// heavily damped, and a player whose drought would pass the fairness
// threshold (player count plus Tuning.FairnessSlack) is always chosen in
// time. Back-to-back imposter rounds stay possible, just rare.
//
// # Determinism
//
// All randomness flows through a Rand. Given the same seed passed to NewRand,
// the same sequence of calls yields the same topics, imposters and words.
//
// # Persistence
//
// Machine saves every round to a GameStateStore and resumes it when asked to
// start the same round again, so reconnecting never reshuffles imposters.
// Store failures are logged and never stop a round.
package imposter
