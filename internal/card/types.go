// internal/card/types.go
//
// Core type definitions for a bingo card session.
// Defines:
//   - Cell: one grid position as shown to the player.
//   - Outcome: the result of toggling a cell.
//   - Celebrator: who gets told about a bingo.

package card

import (
	"context"
	"errors"

	"github.com/robalobadob/bingo/internal/board"
)

var (
	ErrFreeCell    = errors.New("card: the free cell cannot be toggled")
	ErrOutOfBounds = errors.New("card: cell is outside the grid")
)

// Cell is one grid position after catalog lookup.
type Cell struct {
	Text   string `json:"text"`
	Index  int    `json:"index"`  // catalog index; meaningless for the free cell
	Known  bool   `json:"known"`  // false when the key named no phrase
	Free   bool   `json:"free"`   // the centre cell
	Marked bool   `json:"marked"` // always true for the free cell
}

// Outcome reports what a toggle did.
type Outcome struct {
	Pos    board.Pos   `json:"pos"`
	Marked bool        `json:"marked"`
	Bingo  bool        `json:"bingo"`
	Line   *board.Line `json:"line,omitempty"`
}

// Celebrator is told about every toggle that leaves the card winning.
// Its failure never affects the toggle result.
type Celebrator interface {
	Celebrate(ctx context.Context, c *Card, line board.Line) error
}

// CelebratorFunc adapts a function to Celebrator.
type CelebratorFunc func(ctx context.Context, c *Card, line board.Line) error

func (f CelebratorFunc) Celebrate(ctx context.Context, c *Card, line board.Line) error {
	return f(ctx, c, line)
}
