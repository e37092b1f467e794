/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Seednode/amongsus/games/imposter"
	"github.com/Seednode/amongsus/storage/sqlite"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/text/cases"
)

const maxPackBytes = 64 << 10

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logf(cfg, "SERVE: Unable to write response: %v", err)
	}
}

// validPack reports whether p can supply at least one pair of distinct words.
// Words are compared the way the word bank compares them, trimmed and
// case folded.
func validPack(p imposter.Pack) bool {
	fold := cases.Fold()
	key := func(s string) string { return fold.String(strings.TrimSpace(s)) }

	for _, pair := range p.Pairs {
		if m, s := key(pair.Main), key(pair.Sus); m != "" && s != "" && m != s {
			return true
		}
	}

	var first string
	for _, w := range p.Words {
		w = key(w)
		switch {
		case w == "":
		case first == "":
			first = w
		case first != w:
			return true
		}
	}

	return false
}

func serveTopics(cfg *Config, game *imposterGame) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(cfg, w, http.StatusOK, game.bank.Topics())
	}
}

func serveListPacks(cfg *Config, game *imposterGame) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		packs := []imposter.Pack{}

		if game.store != nil {
			stored, err := game.store.ListPacks(r.Context())
			if err != nil {
				cfg.logger.Error().Err(err).Msg("list word packs")
				writeJSON(cfg, w, http.StatusInternalServerError, apiError{"unable to list word packs"})
				return
			}
			packs = append(packs, stored...)
		}

		writeJSON(cfg, w, http.StatusOK, packs)
	}
}

func serveCreatePack(cfg *Config, game *imposterGame) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if game.store == nil {
			writeJSON(cfg, w, http.StatusServiceUnavailable, apiError{"word packs need --db"})
			return
		}

		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPackBytes))
		dec.DisallowUnknownFields()

		var p imposter.Pack
		if err := dec.Decode(&p); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, apiError{"invalid word pack"})
			return
		}

		p.ID = ""
		if strings.TrimSpace(p.Name) == "" || !validPack(p) {
			writeJSON(cfg, w, http.StatusBadRequest, apiError{"a word pack needs a name and two different words"})
			return
		}

		created, err := game.store.PutPack(r.Context(), p)
		switch {
		case errors.Is(err, sqlite.ErrAlreadyExists):
			writeJSON(cfg, w, http.StatusConflict, apiError{"a word pack with that name already exists"})
			return
		case err != nil:
			cfg.logger.Error().Err(err).Msg("create word pack")
			writeJSON(cfg, w, http.StatusInternalServerError, apiError{"unable to save word pack"})
			return
		}

		game.bank.AddPack(created)

		logf(cfg, "PACKS: Created %q (%s) for %s", created.Name, created.ID, realIP(r))

		writeJSON(cfg, w, http.StatusCreated, created)
	}
}

func serveDeletePack(cfg *Config, game *imposterGame) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if game.store == nil {
			writeJSON(cfg, w, http.StatusServiceUnavailable, apiError{"word packs need --db"})
			return
		}

		deleted, err := game.store.DeletePack(r.Context(), ps.ByName("id"))
		switch {
		case errors.Is(err, sqlite.ErrNotFound):
			writeJSON(cfg, w, http.StatusNotFound, apiError{"no such word pack"})
			return
		case err != nil:
			cfg.logger.Error().Err(err).Msg("delete word pack")
			writeJSON(cfg, w, http.StatusInternalServerError, apiError{"unable to delete word pack"})
			return
		}

		game.bank.RemovePack(deleted.Name)

		fold := cases.Fold()
		for _, p := range game.filePacks {
			if fold.String(strings.TrimSpace(p.Name)) == fold.String(deleted.Name) {
				game.bank.AddPack(p)
			}
		}

		logf(cfg, "PACKS: Deleted %q (%s) for %s", deleted.Name, deleted.ID, realIP(r))

		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func registerWordPacks(cfg *Config, game *imposterGame, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/imposter-topics", serveTopics(cfg, game))
	mux.GET(cfg.prefix+"/imposter-packs", serveListPacks(cfg, game))
	mux.POST(cfg.prefix+"/imposter-packs", serveCreatePack(cfg, game))
	mux.DELETE(cfg.prefix+"/imposter-packs/:id", serveDeletePack(cfg, game))
}
