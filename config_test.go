/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	packs := filepath.Join(t.TempDir(), "missing.json")

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{port: 8080}},
		{name: "port too low", cfg: Config{port: 0}, wantErr: true},
		{name: "port too high", cfg: Config{port: 70000}, wantErr: true},
		{name: "cert without key", cfg: Config{port: 8080, tlsCert: "cert.pem"}, wantErr: true},
		{name: "key without cert", cfg: Config{port: 8080, tlsKey: "key.pem"}, wantErr: true},
		{name: "negative timeout", cfg: Config{port: 8080, playerTimeout: -time.Second}, wantErr: true},
		{name: "missing word packs", cfg: Config{port: 8080, wordPacks: packs}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http", (&Config{}).scheme())
	assert.Equal(t, "http", (&Config{tlsCert: "cert.pem"}).scheme())
	assert.Equal(t, "https", (&Config{tlsCert: "cert.pem", tlsKey: "key.pem"}).scheme())
}

func TestFlagsReadEnvironment(t *testing.T) {
	t.Setenv("AMONGSUS_PORT", "9090")
	t.Setenv("AMONGSUS_PLAYER_TIMEOUT", "90s")
	t.Setenv("AMONGSUS_PREFIX", "/games")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 90*time.Second, cfg.playerTimeout)
	assert.Equal(t, "/games", cfg.prefix)
	assert.Equal(t, 60*time.Minute, cfg.sessionTimeout)
}

func TestExplicitFlagsWinOverEnvironment(t *testing.T) {
	t.Setenv("AMONGSUS_PORT", "9090")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--port", "7070"}))

	assert.Equal(t, 7070, cfg.port)
}
