package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/bingo/internal/board"
	"github.com/robalobadob/bingo/internal/card"
)

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Align(lipgloss.Center, lipgloss.Center).
			Height(3)

	markedStyle = cellStyle.
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("220"))

	freeStyle = cellStyle.
			Bold(true).
			Reverse(true)

	unknownStyle = cellStyle.
			Faint(true)
)

// render lays the grid out as bordered boxes, width columns per cell.
func render(cells [board.Size][board.Size]card.Cell, width int) string {
	rows := make([]string, 0, board.Size)
	for _, row := range cells {
		boxes := make([]string, 0, board.Size)
		for _, cell := range row {
			boxes = append(boxes, styleFor(cell).Width(width).Render(cell.Text))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func styleFor(cell card.Cell) lipgloss.Style {
	switch {
	case cell.Free:
		return freeStyle
	case cell.Marked:
		return markedStyle
	case !cell.Known:
		return unknownStyle
	}
	return cellStyle
}
