package board

import (
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Code is a character code understood by the split-flap display.
type Code uint8

const (
	Blank Code = 0
	A     Code = 1
	B     Code = 2
	C     Code = 3
	D     Code = 4
	E     Code = 5
	F     Code = 6
	G     Code = 7
	H     Code = 8
	I     Code = 9
	J     Code = 10
	K     Code = 11
	L     Code = 12
	M     Code = 13
	N     Code = 14
	O     Code = 15
	P     Code = 16
	Q     Code = 17
	R     Code = 18
	S     Code = 19
	T     Code = 20
	U     Code = 21
	V     Code = 22
	W     Code = 23
	X     Code = 24
	Y     Code = 25
	Z     Code = 26
	One   Code = 27
	Two   Code = 28
	Three Code = 29
	Four  Code = 30
	Five  Code = 31
	Six   Code = 32
	Seven Code = 33
	Eight Code = 34
	Nine  Code = 35
	Zero  Code = 36

	ExclamationMark Code = 37
	AtSign          Code = 38
	PoundSign       Code = 39
	DollarSign      Code = 40
	LeftParen       Code = 41
	RightParen      Code = 42
	Hyphen          Code = 44
	PlusSign        Code = 46
	Ampersand       Code = 47
	EqualsSign      Code = 48
	Semicolon       Code = 49
	Colon           Code = 50
	SingleQuote     Code = 52
	DoubleQuote     Code = 53
	PercentSign     Code = 54
	Comma           Code = 55
	Period          Code = 56
	Slash           Code = 59
	QuestionMark    Code = 60
	DegreeSign      Code = 62

	Red    Code = 63
	Orange Code = 64
	Yellow Code = 65
	Green  Code = 66
	Blue   Code = 67
	Violet Code = 68
	White  Code = 69
	Black  Code = 70
	// Filled is shown with the same glyph as White.
	Filled Code = 71

	Newline Code = 100
)

// codeChars is indexed by code. Unassigned slots stay zero and decode to a space.
var codeChars = [256]rune{
	A: 'A', B: 'B', C: 'C', D: 'D', E: 'E', F: 'F', G: 'G', H: 'H', I: 'I', J: 'J',
	K: 'K', L: 'L', M: 'M', N: 'N', O: 'O', P: 'P', Q: 'Q', R: 'R', S: 'S', T: 'T',
	U: 'U', V: 'V', W: 'W', X: 'X', Y: 'Y', Z: 'Z',
	One: '1', Two: '2', Three: '3', Four: '4', Five: '5',
	Six: '6', Seven: '7', Eight: '8', Nine: '9', Zero: '0',
	ExclamationMark: '!', AtSign: '@', PoundSign: '#', DollarSign: '$',
	LeftParen: '(', RightParen: ')', Hyphen: '-', PlusSign: '+', Ampersand: '&',
	EqualsSign: '=', Semicolon: ';', Colon: ':', SingleQuote: '\'', DoubleQuote: '"',
	PercentSign: '%', Comma: ',', Period: '.', Slash: '/', QuestionMark: '?', DegreeSign: '°',
	Red: '🟥', Orange: '🟧', Yellow: '🟨', Green: '🟩', Blue: '🟦', Violet: '🟪',
	White: '⬜', Black: '⬛', Filled: '⬜',
	Newline: '\n',
}

// charCodes is the reverse table. Filled is deliberately absent so that the
// white glyph maps back to White.
var charCodes = func() map[rune]Code {
	m := make(map[rune]Code, 72)
	for code, ch := range codeChars {
		if ch == 0 || Code(code) == Filled {
			continue
		}
		m[ch] = Code(code)
	}
	m[' '] = Blank
	return m
}()

// ToChar returns the character shown for code. Unknown codes render as a space.
func ToChar(code byte) rune {
	if ch := codeChars[code]; ch != 0 {
		return ch
	}
	return ' '
}

// ToCode returns the code for r after ASCII upper-casing. Unknown characters map to Blank.
func ToCode(r rune) byte {
	return byte(CodeOf(r))
}

// CodeOf is ToCode typed as a Code.
func CodeOf(r rune) Code {
	if r < unicode.MaxASCII {
		r = unicode.ToUpper(r)
	}
	return charCodes[r]
}

// Rune returns the character shown for c.
func (c Code) Rune() rune { return ToChar(byte(c)) }

// Known reports whether c is one of the display's recognised codes.
func (c Code) Known() bool {
	return c == Blank || codeChars[c] != 0
}

// IsColor reports whether c is one of the colour swatches (including Filled).
func (c Code) IsColor() bool { return c >= Red && c <= Filled }

// cellWidth is pinned to narrow ambiguous widths so the display does not
// depend on the user's locale.
var cellWidth = func() *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	return cond
}()

// String pads the cell to two terminal columns. Colour glyphs are already
// double width and come back unchanged. Newline shows as a blank cell so a
// raw grid holding it keeps its frame.
func (c Code) String() string {
	if c == Newline {
		return "  "
	}
	if c.IsColor() {
		return string(c.Rune())
	}
	return cellWidth.FillRight(string(c.Rune()), 2)
}
