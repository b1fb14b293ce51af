package board

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrTooManyRows   = errors.New("too many rows in the input")
	ErrTooManyCols   = errors.New("too many columns in the input")
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidChar   = errors.New("invalid character in the input")
)

// InvalidCharError reports a cell token that is not a code.
type InvalidCharError struct {
	Value string
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("invalid character in the input: %q", e.Value)
}

func (e *InvalidCharError) Is(target error) bool { return target == ErrInvalidChar }

var layoutNoise = regexp.MustCompile(`[^0-9,]`)

// Parse reads the comma-separated form into a rows×cols grid. Everything
// except digits and commas is discarded first, so both "[[1,2],[3,4]]" and
// "1,2,3,4" are accepted. Values fill the grid row-major; an empty token past
// the last row (a trailing separator) is ignored.
func Parse(text string, rows, cols int) (Grid, error) {
	if rows <= 0 || cols <= 0 {
		return Grid{}, ErrInvalidLength
	}
	g := New(rows, cols)
	cleaned := layoutNoise.ReplaceAllString(text, "")
	for i, val := range strings.Split(cleaned, ",") {
		row, col := i/cols, i%cols
		if row >= rows {
			if val == "" {
				continue
			}
			return Grid{}, ErrTooManyRows
		}
		n, err := strconv.ParseUint(val, 10, 8)
		if err != nil {
			return Grid{}, &InvalidCharError{Value: val}
		}
		g.cells[row*cols+col] = byte(n)
	}
	return g, nil
}

// ParseFlagship is Parse for the 6×22 board.
func ParseFlagship(text string) (Grid, error) {
	return Parse(text, FlagshipRows, FlagshipCols)
}

// ParseDisplay reads the output of Grid.String back into a grid. Colour
// glyphs take one rune per cell, everything else a rune plus one pad rune.
// Filled cells come back as White since both share a glyph. Newline and
// codes outside the character table display blank and come back as Blank.
func ParseDisplay(text string, rows, cols int) (Grid, error) {
	if rows <= 0 || cols <= 0 {
		return Grid{}, ErrInvalidLength
	}
	g := New(rows, cols)
	row := 0
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		if row >= rows {
			return Grid{}, ErrTooManyRows
		}
		body := []rune(strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|"))
		col := 0
		for i := 0; i < len(body); i++ {
			if col >= cols {
				return Grid{}, ErrTooManyCols
			}
			code := CodeOf(body[i])
			if code == Blank && body[i] != ' ' {
				return Grid{}, &InvalidCharError{Value: string(body[i])}
			}
			if !code.IsColor() {
				i++
			}
			g.cells[row*cols+col] = byte(code)
			col++
		}
		if col != cols {
			return Grid{}, fmt.Errorf("row %d has %d cells, want %d: %w", row, col, cols, ErrInvalidLength)
		}
		row++
	}
	if row != rows {
		return Grid{}, fmt.Errorf("got %d rows, want %d: %w", row, rows, ErrInvalidLength)
	}
	return g, nil
}
