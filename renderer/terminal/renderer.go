// Package terminal prints boards to a terminal, either as the plain bordered
// text form or with colour codes shown as coloured blocks.
package terminal

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ByLCY/flapboard/board"
	"github.com/ByLCY/flapboard/renderer"
)

var swatches = map[board.Code]lipgloss.Color{
	board.Red:    "#da291c",
	board.Orange: "#ff7500",
	board.Yellow: "#ffb81c",
	board.Green:  "#009a44",
	board.Blue:   "#0084d5",
	board.Violet: "#702f8a",
	board.White:  "#ffffff",
	board.Black:  "#000000",
	board.Filled: "#ffffff",
}

// Renderer renders a grid as text. Without Color the output is exactly
// board.Grid.String.
type Renderer struct {
	Color bool
	// Profile limits the escape sequences used when Color is set. The zero
	// value is true colour.
	Profile termenv.Profile
}

var _ renderer.Renderer = Renderer{}

func (r Renderer) Render(grid board.Grid) ([]byte, error) {
	if !r.Color {
		return []byte(grid.String()), nil
	}

	lr := lipgloss.NewRenderer(io.Discard)
	lr.SetColorProfile(r.Profile)
	styles := make(map[board.Code]lipgloss.Style, len(swatches))
	for code, c := range swatches {
		styles[code] = lr.NewStyle().Background(c)
	}
	text := lr.NewStyle().Bold(true)

	var sb strings.Builder
	border := " " + strings.Repeat("-", grid.Cols()*2) + "\n"
	sb.WriteString(border)
	for row := 0; row < grid.Rows(); row++ {
		sb.WriteByte('|')
		for col := 0; col < grid.Cols(); col++ {
			code := board.Code(grid.At(row, col))
			if style, ok := styles[code]; ok {
				sb.WriteString(style.Render("  "))
				continue
			}
			if code.Rune() == ' ' {
				sb.WriteString(code.String())
				continue
			}
			sb.WriteString(text.Render(code.String()))
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return []byte(sb.String()), nil
}
