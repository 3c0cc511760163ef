// internal/board/board.go
//
// Win detection for a 5×5 bingo grid with a free centre cell.
//
// The evaluator is a pure predicate: it is recomputed from the marked flags
// on every call and never remembers which lines were complete before.
// Lines are checked rows first, then columns, then the main and anti
// diagonals, and the first satisfied line is reported.

package board

import "fmt"

// Size is the width and height of the grid.
const Size = 5

// Pos is a 0-indexed (row, column) coordinate.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Free is the centre cell. It holds no phrase and always counts as marked.
var Free = Pos{Row: 2, Col: 2}

// IsFree reports whether p is the free cell.
func (p Pos) IsFree() bool { return p == Free }

// InBounds reports whether p lies on the grid.
func (p Pos) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Grid holds the marked flag for every cell, row-major.
type Grid [Size][Size]bool

// FromRows copies a slice-of-slices grid. Anything that is not 5×5 is a
// programming error and panics.
func FromRows(rows [][]bool) Grid {
	if len(rows) != Size {
		panic(fmt.Sprintf("board: grid has %d rows, want %d", len(rows), Size))
	}
	var g Grid
	for r, row := range rows {
		if len(row) != Size {
			panic(fmt.Sprintf("board: row %d has %d cells, want %d", r, len(row), Size))
		}
		copy(g[r][:], row)
	}
	return g
}

// satisfied reports whether the cell at p counts towards a line.
func (g *Grid) satisfied(p Pos) bool {
	return p.IsFree() || g[p.Row][p.Col]
}

// LineKind distinguishes rows, columns and diagonals.
type LineKind string

const (
	Row          LineKind = "row"
	Column       LineKind = "column"
	MainDiagonal LineKind = "diagonal"
	AntiDiagonal LineKind = "anti-diagonal"
)

// Line identifies one of the twelve winning lines. Index is the row or column
// number and is zero for the diagonals.
type Line struct {
	Kind  LineKind `json:"kind"`
	Index int      `json:"index"`
}

func (l Line) String() string {
	switch l.Kind {
	case Row, Column:
		return fmt.Sprintf("%s %d", l.Kind, l.Index)
	}
	return string(l.Kind)
}

// Cells returns the five coordinates of l.
func (l Line) Cells() [Size]Pos {
	var out [Size]Pos
	for i := 0; i < Size; i++ {
		switch l.Kind {
		case Row:
			out[i] = Pos{l.Index, i}
		case Column:
			out[i] = Pos{i, l.Index}
		case MainDiagonal:
			out[i] = Pos{i, i}
		case AntiDiagonal:
			out[i] = Pos{i, Size - 1 - i}
		}
	}
	return out
}

// Lines lists every winning line in evaluation order.
func Lines() []Line {
	out := make([]Line, 0, 2*Size+2)
	for i := 0; i < Size; i++ {
		out = append(out, Line{Row, i})
	}
	for i := 0; i < Size; i++ {
		out = append(out, Line{Column, i})
	}
	return append(out, Line{Kind: MainDiagonal}, Line{Kind: AntiDiagonal})
}

// Complete reports whether every cell of l is marked or free.
func (g *Grid) Complete(l Line) bool {
	for _, p := range l.Cells() {
		if !g.satisfied(p) {
			return false
		}
	}
	return true
}

// WinningLine returns the first complete line, if any.
func WinningLine(g *Grid) (Line, bool) {
	for _, l := range Lines() {
		if g.Complete(l) {
			return l, true
		}
	}
	return Line{}, false
}

// Won reports whether any line is complete.
func Won(g *Grid) bool {
	_, ok := WinningLine(g)
	return ok
}
