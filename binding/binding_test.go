package binding

import (
	"testing"

	"github.com/ByLCY/flapboard/dsl"
)

func TestRenderEscapes(t *testing.T) {
	props := map[string]string{"name": "ADA", "n": "7"}
	cases := []struct {
		in   string
		want string
	}{
		{"HELLO", "HELLO"},
		{"{63}", "🟥"},
		{"HI {{name}}!", "HI ADA!"},
		{"{{missing}}X", "X"},
		{"{1}{2}{3}", "ABC"},
		{"{999}", " "},
		{"{99}", " "},
		{"{100}", "\n"},
		{"{x} {{a-b}}", "{x} {{a-b}}"},
		{"{{n}}{{n}}", "77"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Render(tc.in, props); got != tc.want {
			t.Fatalf("Render(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderWithoutProps(t *testing.T) {
	if got := Render("A{{x}}B", nil); got != "AB" {
		t.Fatalf("expected missing props to render empty, got %q", got)
	}
}

func TestExpandProps(t *testing.T) {
	got := ExpandProps(dsl.Props{
		"swatch": "{63}{64}",
		"ref":    "{{other}}",
		"plain":  "text",
	})
	if got["swatch"] != "🟥🟧" {
		t.Fatalf("expected colour glyphs, got %q", got["swatch"])
	}
	if nested := ExpandProps(dsl.Props{"v": "{{1}}"}); nested["v"] != "{A}" {
		t.Fatalf("code escape inside braces should expand, got %q", nested["v"])
	}
	if got["ref"] != "{{other}}" {
		t.Fatalf("property references must stay literal in values, got %q", got["ref"])
	}
	if got["plain"] != "text" {
		t.Fatalf("plain value changed: %q", got["plain"])
	}
	if ExpandProps(nil) != nil {
		t.Fatalf("nil props should stay nil")
	}
}

func TestExpandedPropsAreNotRescanned(t *testing.T) {
	// inserted values are not scanned for escapes again
	props := ExpandProps(dsl.Props{"v": "{{w}}", "w": "NO"})
	if got := Render("{{v}}", props); got != "{{w}}" {
		t.Fatalf("expected inserted value verbatim, got %q", got)
	}
}
