package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/ByLCY/flapboard/binding"
	"github.com/ByLCY/flapboard/board"
	"github.com/ByLCY/flapboard/dsl"
)

var ErrNilDocument = errors.New("layout: document is nil")

// Build composes every component of doc onto a fresh board.
//
// Components without an absolute position are placed first, in document
// order, flowing left to right and wrapping below the tallest component of
// the previous line when the board runs out of columns. Absolutely placed
// components follow and are drawn over the flowed ones.
//
// A raw component replaces the whole board with its cells instead of being
// drawn at a position. Several raw components therefore overwrite each other
// and anything composed before them; put a background first.
//
// Cells that land outside the board are dropped and counted in
// Result.Clipped; they are never an error.
func Build(doc *dsl.Document, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	rows, cols := opts.size()
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("layout: invalid board size %dx%d: %w", rows, cols, board.ErrInvalidLength)
	}
	if err := doc.Validate(rows, cols); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	log := opts.logger()
	props := binding.ExpandProps(doc.Props)
	state := &flowState{grid: board.New(rows, cols), log: log}
	res := &Result{Rows: rows, Cols: cols}

	for _, idx := range placementOrder(doc.Components) {
		comp := doc.Components[idx]
		style := comp.Style()
		height, width := style.Size(rows, cols)
		height, width = max(height, 0), max(width, 0)

		if width > cols-state.col {
			state.col = 0
			state.row = state.maxRow
		}
		if p := style.AbsolutePosition; p != nil {
			state.row, state.col = p.Y, p.X
		}

		pl := Placement{
			Index:    idx,
			Absolute: style.IsAbsolute(),
			Row:      state.row,
			Col:      state.col,
			Height:   height,
			Width:    width,
		}

		switch c := comp.(type) {
		case *dsl.RawComponent:
			pl.Kind = KindRaw
			pl.Content = Box{Height: rows, Width: cols}
			state.grid = c.RawCharacters.Clone()
			log.Debug("raw component replaced board", slog.Int("component", idx))

		case *dsl.TemplateComponent:
			pl.Kind = KindTemplate
			text := binding.Render(c.Template, props)
			content := Wrap(text, height, width)
			pl.Content = Box{Height: content.Height, Width: content.Width}
			pl.StartRow = alignOffset(style.Align, height, content.Height)
			if content.Fill {
				pl.Clipped = state.fill(idx, height, width)
			} else {
				pl.Clipped = state.draw(idx, content, pl.StartRow, style.Justify, width)
			}
			if opts.Debug.Content {
				pl.Debug = &Dump{Text: text, Lines: content.Lines()}
			}
			state.col = addSat(state.col, width)
			state.maxRow = max(state.maxRow, addSat(state.row, height))
		}

		res.Clipped = addSat(res.Clipped, pl.Clipped)
		res.Placements = append(res.Placements, pl)
	}

	res.Board = state.grid
	return res, nil
}

// Render is Build for callers that only need the board.
func Render(doc *dsl.Document, rows, cols int) (board.Grid, error) {
	res, err := Build(doc, BuildOptions{Rows: rows, Cols: cols})
	if err != nil {
		return board.Grid{}, err
	}
	return res.Board, nil
}

type flowState struct {
	grid   board.Grid
	row    int
	col    int
	maxRow int
	log    *slog.Logger
}

// draw writes the non-empty content rows at the current flow position and
// returns how many cells fell off the board. Empty rows are skipped without
// leaving a gap.
func (s *flowState) draw(idx int, content Content, startRow int, justify *dsl.Justify, width int) int {
	clipped := 0
	offset := 0
	for _, line := range content.Rows {
		if len(line) == 0 {
			continue
		}
		row := addSat(addSat(s.row, startRow), offset)
		first := addSat(s.col, justifyOffset(justify, width, len(line), content.Width))
		offset++

		drawn := 0
		if row < s.grid.Rows() {
			for j, code := range line {
				if !s.grid.Set(row, addSat(first, j), byte(code)) {
					break
				}
				drawn++
			}
		}
		if n := len(line) - drawn; n > 0 {
			clipped += n
			s.log.Debug("cells out of bounds",
				slog.Int("component", idx),
				slog.Int("row", row),
				slog.Int("col", addSat(first, drawn)),
				slog.Int("count", n))
		}
	}
	return clipped
}

// fill blanks the part of a height×width rectangle at the flow position that
// lies on the board and returns how many of its cells did not.
func (s *flowState) fill(idx, height, width int) int {
	bottom := min(addSat(s.row, height), s.grid.Rows())
	right := min(addSat(s.col, width), s.grid.Cols())
	visible := 0
	for r := max(s.row, 0); r < bottom; r++ {
		for c := max(s.col, 0); c < right; c++ {
			s.grid.Set(r, c, byte(board.Blank))
			visible++
		}
	}
	clipped := mulSat(height, width) - visible
	if clipped > 0 {
		s.log.Debug("cells out of bounds",
			slog.Int("component", idx),
			slog.Int("row", s.row),
			slog.Int("col", s.col),
			slog.Int("count", clipped))
	}
	return clipped
}

// addSat adds b >= 0 to a, stopping at math.MaxInt.
func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// mulSat multiplies two non-negative ints, stopping at math.MaxInt.
func mulSat(a, b int) int {
	if a != 0 && b > math.MaxInt/a {
		return math.MaxInt
	}
	return a * b
}

// placementOrder returns component indexes with every absolutely placed
// component moved after the flowed ones, keeping document order otherwise.
func placementOrder(components []dsl.Component) []int {
	order := make([]int, len(components))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return !components[order[a]].Style().IsAbsolute() && components[order[b]].Style().IsAbsolute()
	})
	return order
}

// alignOffset is the first content row inside a rectangle of the given
// height. Content taller than the rectangle is pinned to the top.
func alignOffset(align *dsl.Align, height, contentHeight int) int {
	free := height - contentHeight
	if align == nil || free <= 0 {
		return 0
	}
	switch *align {
	case dsl.AlignCenter:
		return int(math.Floor(float64(free) / 2))
	case dsl.AlignJustified:
		return int(math.Ceil(float64(free) / 2))
	case dsl.AlignBottom:
		return free
	default:
		return 0
	}
}

// justifyOffset is the first column of a content row. Justified rows share
// one offset computed from the widest row so the block stays aligned.
func justifyOffset(justify *dsl.Justify, width, rowLen, widest int) int {
	if justify == nil {
		return 0
	}
	switch *justify {
	case dsl.JustifyCenter:
		return max(width-rowLen, 0) / 2
	case dsl.JustifyRight:
		return max(width-rowLen, 0)
	case dsl.JustifyJustified:
		return max(width-widest, 0) / 2
	default:
		return 0
	}
}
