// internal/card/card.go
//
// Session controller for a single bingo card.
// Responsibilities:
//   - Resolve the card's key: decode a supplied one or generate a fresh one.
//   - Assign looked-up phrases to the 24 non-free cells.
//   - Toggle marks and ask the board evaluator for a win after every toggle.
//   - Build the share link.
//
// Cell assignment:
//   Non-free cells are numbered 0..23 in row-major order, skipping the centre
//   (see Ordinal). Cell number p shows key position len(key)-1-p: the first
//   cell gets the last code. A short key leaves the trailing cells showing
//   the placeholder.
//
// There is no "already won" latch: every toggle that leaves a complete line
// is reported as a bingo and celebrated again.

package card

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/internal/board"
	"github.com/robalobadob/bingo/internal/catalog"
	"github.com/robalobadob/bingo/internal/keycodec"
)

// Card is one player's card. Safe for concurrent use.
type Card struct {
	ID             string
	Key            string // generated key, or the supplied key as given
	Generated      bool
	CatalogVersion string
	Indices        []int // decoded key, in key order

	mu         sync.Mutex
	cells      [board.Size][board.Size]Cell
	marks      board.Grid
	celebrator Celebrator
}

// Dealer hands out cards from one catalog.
type Dealer struct {
	Catalog    *catalog.Catalog
	Source     keycodec.Source // nil → keycodec.CryptoSource
	Celebrator Celebrator      // optional
}

// Deal resolves a key and builds a card. When hasKey is false a fresh key is
// generated; otherwise key is decoded and its errors are returned unchanged.
func (d *Dealer) Deal(key string, hasKey bool) (*Card, error) {
	var (
		indices []int
		err     error
	)
	if hasKey {
		indices, err = keycodec.Decode(key)
		if err != nil {
			return nil, err
		}
	} else {
		src := d.Source
		if src == nil {
			src = keycodec.CryptoSource{}
		}
		indices, err = keycodec.Generate(src, d.Catalog.Len())
		if err != nil {
			return nil, err
		}
		if key, err = keycodec.Encode(indices); err != nil {
			return nil, err
		}
	}

	c := &Card{
		ID:             randomID(),
		Key:            key,
		Generated:      !hasKey,
		CatalogVersion: d.Catalog.Version(),
		Indices:        indices,
		celebrator:     d.Celebrator,
	}
	c.assign(d.Catalog)
	return c, nil
}

// Ordinal returns the fill number (0..23) of a non-free cell, or -1 for the
// free cell or a position off the grid.
func Ordinal(p board.Pos) int {
	if !p.InBounds() || p.IsFree() {
		return -1
	}
	n := p.Row*board.Size + p.Col
	if n > board.Free.Row*board.Size+board.Free.Col {
		n--
	}
	return n
}

// KeyPosition returns which key position fills cell p for a key of keyLen
// codes, or -1 if the cell is free, off the grid, or beyond a short key.
func KeyPosition(p board.Pos, keyLen int) int {
	ord := Ordinal(p)
	if ord < 0 {
		return -1
	}
	if kp := keyLen - 1 - ord; kp >= 0 {
		return kp
	}
	return -1
}

func (c *Card) assign(cat *catalog.Catalog) {
	for r := 0; r < board.Size; r++ {
		for col := 0; col < board.Size; col++ {
			p := board.Pos{Row: r, Col: col}
			if p.IsFree() {
				c.cells[r][col] = Cell{Text: "FREE", Index: -1, Known: true, Free: true, Marked: true}
				continue
			}
			item := catalog.Item{Index: keycodec.Invalid, Text: catalog.Placeholder}
			if kp := KeyPosition(p, len(c.Indices)); kp >= 0 {
				item = cat.Lookup(c.Indices[kp])
			}
			c.cells[r][col] = Cell{Text: item.Text, Index: item.Index, Known: item.Known}
		}
	}
}

// Cells returns a snapshot of the grid with current marks.
func (c *Card) Cells() [board.Size][board.Size]Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.cells
	for r := range out {
		for col := range out[r] {
			out[r][col].Marked = out[r][col].Free || c.marks[r][col]
		}
	}
	return out
}

// Marks returns a copy of the marked flags.
func (c *Card) Marks() board.Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marks
}

// Toggle flips the mark on p and re-evaluates the board. On a win the
// celebrator is called; its error is logged and otherwise ignored.
func (c *Card) Toggle(ctx context.Context, p board.Pos) (Outcome, error) {
	if !p.InBounds() {
		return Outcome{}, ErrOutOfBounds
	}
	if p.IsFree() {
		return Outcome{}, ErrFreeCell
	}

	c.mu.Lock()
	c.marks[p.Row][p.Col] = !c.marks[p.Row][p.Col]
	out := Outcome{Pos: p, Marked: c.marks[p.Row][p.Col]}
	line, won := board.WinningLine(&c.marks)
	c.mu.Unlock()

	if !won {
		return out, nil
	}
	out.Bingo = true
	out.Line = &line
	if c.celebrator != nil {
		if err := c.celebrator.Celebrate(ctx, c, line); err != nil {
			log.Warn().Err(err).Str("card", c.ID).Stringer("line", line).Msg("celebration failed")
		}
	}
	return out, nil
}

// ShareURL returns the link that reproduces this card. A supplied key means
// location already carries it, so location is returned unchanged.
func (c *Card) ShareURL(location string) string {
	if !c.Generated {
		return location
	}
	u, err := url.Parse(location)
	if err != nil {
		return location + "?key=" + c.Key
	}
	q := u.Query()
	q.Set("key", c.Key)
	u.RawQuery = q.Encode()
	return u.String()
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
