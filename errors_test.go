/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogf(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cfg := &Config{logger: newLogger(&out, true)}
	logf(cfg, "GAMES: Player %q joined %s", "Ana", "abc123")
	assert.Empty(t, out.String(), "quiet unless verbose")

	cfg.verbose = true
	logf(cfg, "GAMES: Player %q joined %s", "Ana", "abc123")
	assert.Contains(t, out.String(), `GAMES: Player "Ana" joined abc123`)
}

func TestPagesHonorPrefix(t *testing.T) {
	t.Parallel()

	cfg := &Config{prefix: "/games"}

	for name, page := range map[string]string{
		"home":  homePage(cfg),
		"error": newPage(cfg, "Server Error", "An error has occurred."),
	} {
		assert.Contains(t, page, `href="/games/favicons/favicon.svg"`, name)
		assert.Contains(t, page, `href="/games/favicons/site.webmanifest"`, name)
		assert.Contains(t, page, `href="/games/assets/home.css"`, name)
		assert.NotContains(t, page, `href="/favicons/`, name)
		assert.NotContains(t, page, `href="/assets/`, name)
	}

	assert.Contains(t, newPage(cfg, "Server Error", "Back"), `href="/games/">Back</a>`)
	assert.Contains(t, newPage(&Config{}, "Server Error", "Back"), `href="/">Back</a>`)
}
