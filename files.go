/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Seednode/amongsus/games/imposter"
)

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

// loadWordPacks reads extra packs from path. The file holds either a JSON
// array of packs or an object mapping topic names to arrays of
// {"mainWord","susWord"} pairs.
func loadWordPacks(path string) ([]imposter.Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseWordPacks(data)
}

func parseWordPacks(data []byte) ([]imposter.Pack, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var packs []imposter.Pack

	if data[0] == '[' {
		if err := json.Unmarshal(data, &packs); err != nil {
			return nil, fmt.Errorf("decode word packs: %w", err)
		}
	} else {
		var byTopic map[string][]imposter.Pair
		if err := json.Unmarshal(data, &byTopic); err != nil {
			return nil, fmt.Errorf("decode word packs: %w", err)
		}
		for name, pairs := range byTopic {
			packs = append(packs, imposter.Pack{Name: name, Pairs: pairs})
		}
		slices.SortFunc(packs, func(a, b imposter.Pack) int {
			return cmp.Compare(a.Name, b.Name)
		})
	}

	for i, p := range packs {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("word pack %d has no name", i)
		}
	}

	return packs, nil
}
