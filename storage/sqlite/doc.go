/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package sqlite keeps game state and custom word packs in a single SQLite
// file.
//
// Each game gets one row in game_states holding the JSON encoding of its
// imposter.PersistedState. Store.Game returns a handle bound to one game key
// which satisfies imposter.GameStateStore. Word packs live in word_packs and
// are unique by case-folded name.
package sqlite
