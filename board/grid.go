package board

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Size of the flagship display.
const (
	FlagshipRows = 6
	FlagshipCols = 22
)

// Grid is a rows×cols block of character codes. The zero value is an empty
// 0×0 grid; use New or Flagship for a usable board.
type Grid struct {
	rows  int
	cols  int
	cells []byte
}

// New returns an all-blank grid. It panics if rows or cols is not positive.
func New(rows, cols int) Grid {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("board: invalid grid size %dx%d", rows, cols))
	}
	return Grid{rows: rows, cols: cols, cells: make([]byte, rows*cols)}
}

// Flagship returns an all-blank 6×22 grid.
func Flagship() Grid { return New(FlagshipRows, FlagshipCols) }

func (g Grid) Rows() int { return g.rows }
func (g Grid) Cols() int { return g.cols }

// In reports whether (row, col) lies inside the grid.
func (g Grid) In(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.rows && col < g.cols
}

// At returns the code at (row, col), or 0 outside the grid.
func (g Grid) At(row, col int) byte {
	if !g.In(row, col) {
		return 0
	}
	return g.cells[row*g.cols+col]
}

// Set writes code at (row, col) and reports whether the cell exists.
// Grids share storage when copied by value; Clone before mutating a grid
// that someone else holds.
func (g Grid) Set(row, col int, code byte) bool {
	if !g.In(row, col) {
		return false
	}
	g.cells[row*g.cols+col] = code
	return true
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := Grid{rows: g.rows, cols: g.cols}
	if g.cells != nil {
		out.cells = append([]byte(nil), g.cells...)
	}
	return out
}

// Equal reports cell-wise equality, including dimensions.
func (g Grid) Equal(other Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Row returns a copy of one row.
func (g Grid) Row(row int) []byte {
	if row < 0 || row >= g.rows {
		return nil
	}
	return append([]byte(nil), g.cells[row*g.cols:(row+1)*g.cols]...)
}

// Raw returns the grid as a freshly allocated 2D array.
func (g Grid) Raw() [][]byte {
	out := make([][]byte, g.rows)
	for r := range out {
		out[r] = g.Row(r)
	}
	return out
}

// FromRaw builds a grid from a rectangular 2D array.
func FromRaw(raw [][]byte) (Grid, error) {
	if len(raw) == 0 || len(raw[0]) == 0 {
		return Grid{}, ErrInvalidLength
	}
	g := New(len(raw), len(raw[0]))
	for r, row := range raw {
		if len(row) != g.cols {
			return Grid{}, fmt.Errorf("row %d has %d cells, want %d: %w", r, len(row), g.cols, ErrInvalidLength)
		}
		copy(g.cells[r*g.cols:], row)
	}
	return g, nil
}

// FromText converts lines of characters into a rows×cols grid. Characters past
// the grid edge are ignored, missing ones are blank.
func FromText(rows, cols int, lines []string) Grid {
	g := New(rows, cols)
	for r, line := range lines {
		if r >= rows {
			break
		}
		c := 0
		for _, ch := range line {
			if c >= cols {
				break
			}
			g.Set(r, c, ToCode(ch))
			c++
		}
	}
	return g
}

// Layout returns the comma-separated form, e.g. [[0,0,...],[0,0,...]].
func (g Grid) Layout() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('[')
		for c := 0; c < g.cols; c++ {
			if c > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", g.cells[r*g.cols+c])
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// String renders the grid framed by a border, one row per line.
func (g Grid) String() string {
	var sb strings.Builder
	border := " " + strings.Repeat("-", g.cols*2) + "\n"
	sb.WriteString(border)
	for r := 0; r < g.rows; r++ {
		sb.WriteByte('|')
		for c := 0; c < g.cols; c++ {
			sb.WriteString(Code(g.cells[r*g.cols+c]).String())
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

// MarshalJSON encodes the grid as nested arrays of integers.
func (g Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]int, g.rows)
	for r := range rows {
		rows[r] = make([]int, g.cols)
		for c := range rows[r] {
			rows[r][c] = int(g.cells[r*g.cols+c])
		}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON decodes nested arrays of integers. The array must be
// rectangular and every value must fit in a byte.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]int
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	raw := make([][]byte, len(rows))
	for r, row := range rows {
		raw[r] = make([]byte, len(row))
		for c, v := range row {
			if v < 0 || v > 255 {
				return &InvalidCharError{Value: fmt.Sprint(v)}
			}
			raw[r][c] = byte(v)
		}
	}
	parsed, err := FromRaw(raw)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// CheckSize reports whether the grid is exactly rows×cols.
func (g Grid) CheckSize(rows, cols int) error {
	switch {
	case g.rows > rows:
		return fmt.Errorf("%d rows on a %d row board: %w", g.rows, rows, ErrTooManyRows)
	case g.cols > cols:
		return fmt.Errorf("%d columns on a %d column board: %w", g.cols, cols, ErrTooManyCols)
	case g.rows != rows || g.cols != cols:
		return fmt.Errorf("%dx%d grid on a %dx%d board: %w", g.rows, g.cols, rows, cols, ErrInvalidLength)
	}
	return nil
}
