/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
)

// Pair is a main word and the related word handed to imposters.
type Pair struct {
	Main string `json:"mainWord"`
	Sus  string `json:"susWord"`
}

// Pack is a named topic. Words may be given as explicit pairs, as a flat
// list from which two distinct entries are drawn, or both.
type Pack struct {
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name"`
	Pairs []Pair   `json:"words,omitempty"`
	Words []string `json:"list,omitempty"`
}

// WordBank maps topic names to word packs. It is safe for concurrent use.
type WordBank struct {
	mu    sync.Mutex
	packs map[string]Pack
	fold  cases.Caser
	rng   Rand
	log   zerolog.Logger
}

// NewWordBank returns a bank holding the built-in topics plus packs. Packs
// whose name matches an existing topic replace it.
func NewWordBank(rng Rand, log zerolog.Logger, packs ...Pack) *WordBank {
	b := &WordBank{
		packs: make(map[string]Pack),
		fold:  cases.Fold(),
		rng:   rng,
		log:   log,
	}

	for _, p := range BuiltinPacks() {
		b.addLocked(p)
	}
	for _, p := range packs {
		b.addLocked(p)
	}

	return b
}

// AddPack registers or replaces a topic.
func (b *WordBank) AddPack(p Pack) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.addLocked(p)
}

// RemovePack drops a topic. Built-in topics are restored in its place.
func (b *WordBank) RemovePack(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := b.key(name)
	delete(b.packs, key)

	for _, p := range BuiltinPacks() {
		if b.key(p.Name) == key {
			b.addLocked(p)
		}
	}
}

// Topics returns every topic name, sorted.
func (b *WordBank) Topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.packs))
	for _, p := range b.packs {
		names = append(names, p.Name)
	}
	slices.Sort(names)

	return names
}

// HasTopic reports whether topic is known, ignoring case.
func (b *WordBank) HasTopic(topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.packs[b.key(topic)]

	return ok
}

// PickPair returns two distinct words for topic. Topics that cannot supply
// two distinct words borrow a second word from another topic, then fall back
// to FallbackTopic, then to any topic, and finally to a fixed pair.
func (b *WordBank) PickPair(topic string) (mainWord, susWord string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	mainWord, susWord, err := b.pickLocked(topic)
	if err == nil {
		return mainWord, susWord
	}

	b.log.Debug().Err(err).Str("topic", topic).Msg("word bank fallback")

	if words := b.wordsLocked(topic); len(words) > 0 {
		word := words[b.rng.IntN(len(words))]
		if other := b.secondaryLocked(topic, word); other != "" {
			return word, other
		}
	}

	for _, name := range b.fallbackOrderLocked(topic) {
		if mainWord, susWord, err := b.pickLocked(name); err == nil {
			return mainWord, susWord
		}
	}

	return defaultPair.Main, defaultPair.Sus
}

func (b *WordBank) pickLocked(topic string) (string, string, error) {
	p, ok := b.packs[b.key(topic)]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown topic %q", ErrDegenerateWordBank, topic)
	}

	pairs := make([]Pair, 0, len(p.Pairs))
	for _, pair := range p.Pairs {
		if b.distinct(pair.Main, pair.Sus) {
			pairs = append(pairs, pair)
		}
	}

	list := b.uniqueLocked(p.Words)

	switch {
	case len(pairs) > 0 && (len(list) < 2 || b.rng.IntN(2) == 0):
		pair := pairs[b.rng.IntN(len(pairs))]

		return strings.TrimSpace(pair.Main), strings.TrimSpace(pair.Sus), nil
	case len(list) >= 2:
		i := b.rng.IntN(len(list))
		j := b.rng.IntN(len(list) - 1)
		if j >= i {
			j++
		}

		return list[i], list[j], nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrDegenerateWordBank, p.Name)
	}
}

// secondaryLocked picks a word from another topic that differs from word.
func (b *WordBank) secondaryLocked(topic, word string) string {
	for _, name := range b.fallbackOrderLocked(topic) {
		var candidates []string
		for _, w := range b.wordsLocked(name) {
			if b.distinct(w, word) {
				candidates = append(candidates, w)
			}
		}
		if len(candidates) > 0 {
			return candidates[b.rng.IntN(len(candidates))]
		}
	}

	return ""
}

// fallbackOrderLocked lists FallbackTopic followed by every other topic in
// name order, skipping topic itself.
func (b *WordBank) fallbackOrderLocked(topic string) []string {
	skip := b.key(topic)

	others := make([]string, 0, len(b.packs))
	for key, p := range b.packs {
		if key == skip || key == b.key(FallbackTopic) {
			continue
		}
		others = append(others, p.Name)
	}
	slices.Sort(others)

	if skip != b.key(FallbackTopic) {
		if _, ok := b.packs[b.key(FallbackTopic)]; ok {
			others = append([]string{FallbackTopic}, others...)
		}
	}

	return others
}

// wordsLocked returns every distinct non-empty word known for topic.
func (b *WordBank) wordsLocked(topic string) []string {
	p, ok := b.packs[b.key(topic)]
	if !ok {
		return nil
	}

	words := make([]string, 0, 2*len(p.Pairs)+len(p.Words))
	for _, pair := range p.Pairs {
		words = append(words, pair.Main, pair.Sus)
	}
	words = append(words, p.Words...)

	return b.uniqueLocked(words)
}

func (b *WordBank) uniqueLocked(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))

	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[b.key(w)] {
			continue
		}
		seen[b.key(w)] = true
		out = append(out, w)
	}

	return out
}

func (b *WordBank) addLocked(p Pack) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return
	}

	b.packs[b.key(p.Name)] = p
}

func (b *WordBank) distinct(x, y string) bool {
	x, y = strings.TrimSpace(x), strings.TrimSpace(y)

	return x != "" && y != "" && b.key(x) != b.key(y)
}

func (b *WordBank) key(s string) string {
	return b.fold.String(strings.TrimSpace(s))
}
