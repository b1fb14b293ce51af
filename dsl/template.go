package dsl

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The escape lexer is tried rule by rule at every position, so a property
// reference wins over a code escape and anything that is neither falls
// through to literal text one brace at a time.
var (
	templateLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Property", Pattern: `\{\{[A-Za-z0-9]+\}\}`},
		{Name: "Code", Pattern: `\{\d+\}`},
		{Name: "Text", Pattern: `[^{]+`},
		{Name: "Brace", Pattern: `\{`},
	})

	templateParser = participle.MustBuild[Template](
		participle.Lexer(templateLexer),
	)
)

// Template is a component template split into literal text and escapes.
type Template struct {
	Pos      lexer.Position `parser:""`
	Segments []*Segment     `parser:"@@*"`
}

// Segment is one piece of a template. Exactly one field is set.
type Segment struct {
	Property *PropertyRef `parser:"  @Property"`
	Code     *CodeEscape  `parser:"| @Code"`
	Text     *string      `parser:"| @( Text | Brace )"`
}

// PropertyRef is a {{name}} escape, captured without its braces.
type PropertyRef string

// Capture implements participle.Capture.
func (p *PropertyRef) Capture(values []string) error {
	*p = PropertyRef(strings.TrimSuffix(strings.TrimPrefix(values[0], "{{"), "}}"))
	return nil
}

// CodeEscape is a {N} escape. Values that do not fit in a byte are kept as
// -1 and render as a blank cell.
type CodeEscape int

// Capture implements participle.Capture.
func (c *CodeEscape) Capture(values []string) error {
	digits := strings.TrimSuffix(strings.TrimPrefix(values[0], "{"), "}")
	n, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		*c = -1
		return nil
	}
	*c = CodeEscape(n)
	return nil
}

// Byte returns the escaped code; out of range escapes yield 0.
func (c CodeEscape) Byte() byte {
	if c < 0 {
		return 0
	}
	return byte(c)
}

// ParseTemplate splits a template into segments. Every input is a valid
// template: malformed escapes come back as literal text.
func ParseTemplate(input string) (*Template, error) {
	return templateParser.ParseString("", input)
}

// Walk calls fn for every segment in order.
func (t *Template) Walk(fn func(*Segment)) {
	if t == nil {
		return
	}
	for _, seg := range t.Segments {
		fn(seg)
	}
}
