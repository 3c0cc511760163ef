// internal/catalog/catalog.go
//
// The phrase catalog a card draws from.
//
// A Catalog is an ordered list of distinct phrases; the index of a phrase is
// its identity and is what keys encode. It is built once at startup and never
// changes, so it is safe to share between goroutines without locking.
//
// Keys are only meaningful against the catalog that issued them. Version is
// the operator-declared name for that contract; Fingerprint is derived from
// the phrases so an accidental edit without a version bump is still visible.

package catalog

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/robalobadob/bingo/internal/keycodec"
)

// Placeholder is shown for a key code that names no catalog phrase.
const Placeholder = "???"

var (
	ErrTooSmall  = errors.New("catalog: fewer than 24 phrases")
	ErrTooLarge  = errors.New("catalog: more than 256 phrases")
	ErrBlank     = errors.New("catalog: blank phrase")
	ErrDuplicate = errors.New("catalog: duplicate phrase")
)

// Item is one looked-up phrase. Known is false for the placeholder.
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Known bool   `json:"known"`
}

// Catalog is an immutable, versioned phrase list.
type Catalog struct {
	version     string
	phrases     []string
	fingerprint string
}

// New validates phrases and builds a Catalog. The slice is copied.
func New(version string, phrases []string) (*Catalog, error) {
	if len(phrases) < keycodec.Cells {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooSmall, len(phrases), keycodec.Cells)
	}
	if len(phrases) > keycodec.MaxCatalog {
		return nil, fmt.Errorf("%w: have %d", ErrTooLarge, len(phrases))
	}
	seen := make(map[string]int, len(phrases))
	for i, p := range phrases {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w at index %d", ErrBlank, i)
		}
		if j, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: %q at %d and %d", ErrDuplicate, p, j, i)
		}
		seen[p] = i
	}
	c := &Catalog{
		version: version,
		phrases: append([]string(nil), phrases...),
	}
	c.fingerprint = fingerprint(c.phrases)
	if c.version == "" {
		c.version = "fp-" + c.fingerprint
	}
	return c, nil
}

// fingerprint is the first 8 bytes of a BLAKE3 digest over the NUL-separated
// phrases, in order.
func fingerprint(phrases []string) string {
	h := blake3.New()
	for _, p := range phrases {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// Len returns the number of phrases.
func (c *Catalog) Len() int { return len(c.phrases) }

// Version returns the declared version, or "fp-<fingerprint>" if none was given.
func (c *Catalog) Version() string { return c.version }

// Fingerprint returns a short hex digest of the phrase list.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// Phrases returns a copy of the phrase list.
func (c *Catalog) Phrases() []string { return append([]string(nil), c.phrases...) }

// Lookup returns the phrase at i, or the placeholder item when i is outside
// the catalog (including keycodec.Invalid). It never panics.
func (c *Catalog) Lookup(i int) Item {
	if i < 0 || i >= len(c.phrases) {
		return Item{Index: i, Text: Placeholder}
	}
	return Item{Index: i, Text: c.phrases[i], Known: true}
}

// LookupAll maps Lookup over indices.
func (c *Catalog) LookupAll(indices []int) []Item {
	out := make([]Item, len(indices))
	for i, idx := range indices {
		out[i] = c.Lookup(idx)
	}
	return out
}
