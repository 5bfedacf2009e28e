// Package ocr wraps the text engines used on the results screen behind one
// small contract, caches engines per language and scores OCR text against a
// known vocabulary.
package ocr

import (
	"errors"
	"image"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrNoCandidates is returned when a text has to be matched against an empty
// vocabulary.
var ErrNoCandidates = errors.New("no candidates to match against")

// Result is the text read from one line image.
type Result struct {
	Text string
}

// Engine reads a single line of text. whitelist restricts the characters the
// engine may emit; empty means unrestricted.
type Engine interface {
	Recognize(img image.Image, whitelist string) (*Result, error)
}

// Registry hands out engines by language tag, e.g. "en-us".
type Registry interface {
	Acquire(lang string) (Engine, error)
}

// Factory builds an engine for a language tag.
type Factory func(lang string) (Engine, error)

// CachedRegistry builds each language's engine once and reuses it.
type CachedRegistry struct {
	mu      sync.Mutex
	factory Factory
	engines map[string]Engine
}

// NewCachedRegistry returns a registry backed by factory.
func NewCachedRegistry(factory Factory) *CachedRegistry {
	return &CachedRegistry{factory: factory, engines: make(map[string]Engine)}
}

// Acquire implements Registry.
func (r *CachedRegistry) Acquire(lang string) (Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.engines[lang]; ok {
		return e, nil
	}
	e, err := r.factory(lang)
	if err != nil {
		return nil, err
	}
	r.engines[lang] = e
	log.Debug().Str("lang", lang).Msg("OCR engine created")
	return e, nil
}

// Close releases every cached engine that holds native resources.
func (r *CachedRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for lang, e := range r.engines {
		if c, ok := e.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Str("lang", lang).Msg("Failed to close OCR engine")
			}
		}
		delete(r.engines, lang)
	}
}

// Whitelist returns the distinct characters of words in ascending order.
func Whitelist(words ...string) string {
	seen := make(map[rune]struct{})
	for _, w := range words {
		for _, c := range w {
			seen[c] = struct{}{}
		}
	}
	chars := make([]rune, 0, len(seen))
	for c := range seen {
		chars = append(chars, c)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return string(chars)
}

// FilterWhitelist drops every character of text that is not in whitelist.
func FilterWhitelist(text, whitelist string) string {
	if whitelist == "" {
		return text
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(whitelist, r) {
			return r
		}
		return -1
	}, text)
}
