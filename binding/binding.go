package binding

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/flapboard/board"
	"github.com/ByLCY/flapboard/dsl"
)

var codePattern = regexp.MustCompile(`\{(\d+)\}`)

// ExpandProps resolves {N} code escapes inside every property value.
// {{name}} references inside values are left as they are; properties do not
// refer to each other.
func ExpandProps(props dsl.Props) map[string]string {
	if props == nil {
		return nil
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = codePattern.ReplaceAllStringFunc(v, func(match string) string {
			groups := codePattern.FindStringSubmatch(match)
			if len(groups) < 2 {
				return match
			}
			return string(codeChar(groups[1]))
		})
	}
	return out
}

// Render expands {N} escapes to their characters and {{name}} escapes to the
// matching property, or to nothing when the property is missing. Anything
// else is copied through.
func Render(template string, props map[string]string) string {
	tpl, err := dsl.ParseTemplate(template)
	if err != nil {
		return template
	}
	var sb strings.Builder
	sb.Grow(len(template))
	tpl.Walk(func(seg *dsl.Segment) {
		switch {
		case seg.Text != nil:
			sb.WriteString(*seg.Text)
		case seg.Code != nil:
			sb.WriteRune(board.ToChar(seg.Code.Byte()))
		case seg.Property != nil:
			sb.WriteString(props[string(*seg.Property)])
		}
	})
	return sb.String()
}

func codeChar(digits string) rune {
	n, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return ' '
	}
	return board.ToChar(byte(n))
}
