package layout

import (
	"strings"

	"github.com/ByLCY/flapboard/board"
)

// Content is the result of wrapping text into a component rectangle.
type Content struct {
	// Rows holds the wrapped rows from the top of the rectangle down to the
	// last row that received a cell; rows the text skipped are empty.
	Rows [][]board.Code
	// Height is the index of the last row the cursor reached plus one. It
	// can exceed the rectangle height when text overflows.
	Height int
	// Width is the length of the longest row.
	Width int
	// Fill marks an empty text: the whole Height×Width rectangle is blank
	// and Rows is nil.
	Fill bool
}

// Wrap lays text out greedily into a height×width rectangle.
//
// Words are separated by single blanks and moved to the next row when they
// fit in a row but not in what is left of the current one; longer words are
// broken at the rectangle edge. A newline always starts a new row and is
// never emitted. Spaces at the end of a line are dropped. Characters past the
// last row are discarded.
//
// Word lengths are measured in bytes of UTF-8, so multi-byte glyphs (colour
// swatches, the degree sign) count as wider than one cell when deciding
// whether a word fits.
func Wrap(text string, height, width int) Content {
	height = max(height, 0)
	width = max(width, 0)
	if text == "" {
		return Content{Height: height, Width: width, Fill: true}
	}

	words := splitWords(trimLineEnds(text))

	var rows [][]board.Code
	put := func(row int, code board.Code) {
		for len(rows) <= row {
			rows = append(rows, nil)
		}
		rows[row] = append(rows[row], code)
	}

	row, col := 0, 0
	for i, word := range words {
		if len(word) > width-col && len(word) < width && !strings.HasPrefix(word, "\n") {
			col = 0
			row++
		}

		endedOnNewline := false
		for _, ch := range word {
			code := board.CodeOf(ch)
			if col >= width {
				col = 0
				row++
				if code == board.Newline {
					endedOnNewline = true
					continue
				}
			}
			if code == board.Newline {
				col = 0
				row++
				endedOnNewline = true
				continue
			}
			if row >= height {
				break
			}
			put(row, code)
			col++
		}

		if i+1 < len(words) && !endedOnNewline && col < width && len(words[i+1]) < width-col {
			if row < height {
				put(row, board.Blank)
			}
			col++
		}
	}

	widest := 0
	for _, r := range rows {
		widest = max(widest, len(r))
	}
	return Content{Rows: rows, Height: row + 1, Width: widest}
}

// trimLineEnds drops runs of spaces that sit before a newline or at the end
// of the text.
func trimLineEnds(text string) string {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))
	removeSpace := true
	for i := len(runes) - 1; i >= 0; i-- {
		c := runes[i]
		if removeSpace && c == ' ' {
			continue
		}
		removeSpace = c == '\n'
		out = append(out, c)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// splitWords splits after every newline, then on single spaces. A newline
// stays attached to the word before it; consecutive spaces yield empty words.
func splitWords(text string) []string {
	var words []string
	for text != "" {
		chunk := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			chunk = text[:i+1]
		}
		text = text[len(chunk):]
		words = append(words, strings.Split(chunk, " ")...)
	}
	return words
}

// Lines returns the non-empty rows as text, top to bottom.
func (c Content) Lines() []string {
	lines := make([]string, 0, len(c.Rows))
	for _, r := range c.Rows {
		if len(r) == 0 {
			continue
		}
		var sb strings.Builder
		for _, code := range r {
			sb.WriteRune(code.Rune())
		}
		lines = append(lines, sb.String())
	}
	return lines
}
