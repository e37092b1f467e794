/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Seednode/amongsus/games/imposter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var raw json.RawMessage
	if res.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&raw))
	}

	return res, raw
}

func topicsOf(t *testing.T, base string) []string {
	t.Helper()

	res, body := doJSON(t, http.MethodGet, base+"/imposter-topics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var topics []string
	require.NoError(t, json.Unmarshal(body, &topics))

	return topics
}

func TestWordPackLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, filepath.Join(t.TempDir(), "amongsus.db"))

	res, body := doJSON(t, http.MethodGet, srv.URL+"/imposter-packs", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
	assert.NotContains(t, topicsOf(t, srv.URL), "Space")

	res, body = doJSON(t, http.MethodPost, srv.URL+"/imposter-packs",
		`{"name":" Space ","words":[{"mainWord":"Moon","susWord":"Mars"}]}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	var created imposter.Pack
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Space", created.Name)
	assert.Contains(t, topicsOf(t, srv.URL), "Space")

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/imposter-packs",
		`{"name":"space","list":["Comet","Star"]}`)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res, body = doJSON(t, http.MethodGet, srv.URL+"/imposter-packs", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var listed []imposter.Pack
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/imposter-packs/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.NotContains(t, topicsOf(t, srv.URL), "Space")

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/imposter-packs/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDeletingStoredPackRestoresBuiltin(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, filepath.Join(t.TempDir(), "amongsus.db"))

	res, body := doJSON(t, http.MethodPost, srv.URL+"/imposter-packs",
		`{"name":"food","list":["Soup","Stew"]}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	var created imposter.Pack
	require.NoError(t, json.Unmarshal(body, &created))

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/imposter-packs/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	assert.Contains(t, topicsOf(t, srv.URL), "Food")
}

func TestCreatePackValidates(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, filepath.Join(t.TempDir(), "amongsus.db"))

	for _, body := range []string{
		`not json`,
		`{"name":"","list":["a","b"]}`,
		`{"name":"Same","list":["Echo","echo"]}`,
		`{"name":"Pairs","words":[{"mainWord":"x","susWord":"X"}]}`,
		`{"name":"Extra","list":["a","b"],"color":"red"}`,
	} {
		res, _ := doJSON(t, http.MethodPost, srv.URL+"/imposter-packs", body)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
	}
}

func TestPacksNeedDatabase(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "")

	res, body := doJSON(t, http.MethodGet, srv.URL+"/imposter-packs", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/imposter-packs", `{"name":"Space","list":["Moon","Mars"]}`)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/imposter-packs/abc", "")
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestValidPack(t *testing.T) {
	t.Parallel()

	assert.True(t, validPack(imposter.Pack{Pairs: []imposter.Pair{{Main: "Moon", Sus: "Mars"}}}))
	assert.True(t, validPack(imposter.Pack{Words: []string{"", "Moon", "moon", "Mars"}}))
	assert.False(t, validPack(imposter.Pack{Words: []string{"Moon", " moon "}}))
	assert.False(t, validPack(imposter.Pack{Pairs: []imposter.Pair{{Main: "Moon", Sus: ""}}}))
	assert.False(t, validPack(imposter.Pack{}))

	// Full case folding, not just simple case mapping.
	assert.False(t, validPack(imposter.Pack{Words: []string{"Straße", "STRASSE"}}))
	assert.False(t, validPack(imposter.Pack{Pairs: []imposter.Pair{{Main: "straße", Sus: "Strasse"}}}))
	assert.True(t, validPack(imposter.Pack{Words: []string{"Straße", "Strand"}}))
}
