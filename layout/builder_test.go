package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ByLCY/flapboard/board"
	"github.com/ByLCY/flapboard/dsl"
)

func mustParse(t *testing.T, input string) *dsl.Document {
	t.Helper()
	doc, err := dsl.ParseString(input)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func mustBuild(t *testing.T, doc *dsl.Document, opts BuildOptions) *Result {
	t.Helper()
	res, err := Build(doc, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return res
}

func expectBoard(t *testing.T, got board.Grid, lines ...string) {
	t.Helper()
	want := board.FromText(got.Rows(), got.Cols(), lines)
	if !got.Equal(want) {
		t.Fatalf("unexpected board:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildSingleTemplate(t *testing.T) {
	res := mustBuild(t, mustParse(t, `{"components":[{"template":"HELLO"}]}`), BuildOptions{})
	if res.Rows != 6 || res.Cols != 22 {
		t.Fatalf("expected flagship board, got %dx%d", res.Rows, res.Cols)
	}
	expectBoard(t, res.Board, "HELLO")
	if len(res.Placements) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(res.Placements))
	}
	pl := res.Placements[0]
	if pl.Kind != KindTemplate || pl.Row != 0 || pl.Col != 0 || pl.Height != 6 || pl.Width != 22 {
		t.Fatalf("unexpected placement %+v", pl)
	}
	if pl.Content != (Box{Height: 1, Width: 5}) {
		t.Fatalf("unexpected content box %+v", pl.Content)
	}
}

func TestBuildFlowsSideBySide(t *testing.T) {
	doc := mustParse(t, `{"components":[
		{"style":{"width":11},"template":"LEFT"},
		{"style":{"width":11},"template":"RIGHT"}
	]}`)
	res := mustBuild(t, doc, BuildOptions{})
	expectBoard(t, res.Board, "LEFT       RIGHT")
	if res.Placements[1].Col != 11 || res.Placements[1].Row != 0 {
		t.Fatalf("second component should start at (0, 11), got (%d, %d)", res.Placements[1].Row, res.Placements[1].Col)
	}
}

func TestBuildWrapsBelowTallestComponent(t *testing.T) {
	doc := mustParse(t, `{"components":[
		{"style":{"width":11,"height":2},"template":"A"},
		{"style":{"width":11,"height":3},"template":"B"},
		{"style":{"width":11,"height":2},"template":"C"}
	]}`)
	res := mustBuild(t, doc, BuildOptions{})
	got := [][2]int{}
	for _, pl := range res.Placements {
		got = append(got, [2]int{pl.Row, pl.Col})
	}
	want := [][2]int{{0, 0}, {0, 11}, {3, 0}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("placement %d at %v, want %v", i, got[i], want[i])
		}
	}
	if res.Board.At(3, 0) != byte(board.C) {
		t.Fatalf("expected C at (3, 0), got %d", res.Board.At(3, 0))
	}
}

func TestBuildAbsolutePosition(t *testing.T) {
	doc := mustParse(t, `{"components":[{"style":{"absolutePosition":{"x":5,"y":2}},"template":"HI"}]}`)
	res := mustBuild(t, doc, BuildOptions{})
	if res.Board.At(2, 5) != byte(board.H) || res.Board.At(2, 6) != byte(board.I) {
		t.Fatalf("expected HI at row 2 col 5:\n%s", res.Board)
	}
	if !res.Placements[0].Absolute {
		t.Fatalf("placement should be marked absolute")
	}
}

func TestBuildPlacesAbsoluteComponentsLast(t *testing.T) {
	doc := mustParse(t, `{"components":[
		{"style":{"absolutePosition":{"x":0,"y":0}},"template":"XX"},
		{"template":"TOP"}
	]}`)
	res := mustBuild(t, doc, BuildOptions{})
	if res.Placements[0].Index != 1 || res.Placements[1].Index != 0 {
		t.Fatalf("unexpected order %+v", res.Placements)
	}
	// the absolute component is drawn over the flowed one
	expectBoard(t, res.Board, "XXP")
}

func TestBuildColorEscape(t *testing.T) {
	res := mustBuild(t, mustParse(t, `{"components":[{"template":"{63}{64}"}]}`), BuildOptions{})
	if res.Board.At(0, 0) != 63 || res.Board.At(0, 1) != 64 {
		t.Fatalf("expected colour codes, got %d %d", res.Board.At(0, 0), res.Board.At(0, 1))
	}
}

func TestBuildProps(t *testing.T) {
	doc := mustParse(t, `{"props":{"name":"{1}DA"},"components":[{"template":"HI {{name}}"}]}`)
	res := mustBuild(t, doc, BuildOptions{})
	expectBoard(t, res.Board, "HI ADA")
}

func TestBuildJustify(t *testing.T) {
	cases := []struct {
		justify  string
		template string
		lines    []string
	}{
		{"left", "ABC", []string{"ABC"}},
		{"right", "ABC", []string{"       ABC"}},
		{"center", "ABC", []string{"   ABC"}},
		{"center", "AB\\nABCD", []string{"    AB", "   ABCD"}},
		{"justified", "AB\\nABCD", []string{"   AB", "   ABCD"}},
	}
	for _, tc := range cases {
		doc := mustParse(t, `{"components":[{"style":{"width":10,"justify":"`+tc.justify+`"},"template":"`+tc.template+`"}]}`)
		res := mustBuild(t, doc, BuildOptions{})
		want := board.FromText(6, 22, tc.lines)
		if !res.Board.Equal(want) {
			t.Fatalf("justify %s %q:\n%s\nwant:\n%s", tc.justify, tc.template, res.Board, want)
		}
	}
}

func TestBuildAlign(t *testing.T) {
	cases := []struct {
		align  string
		height int
		row    int
	}{
		{"top", 4, 0},
		{"center", 4, 1},
		{"justified", 4, 2},
		{"bottom", 3, 2},
		{"center", 5, 2},
		{"justified", 5, 2},
	}
	for _, tc := range cases {
		doc := mustParse(t, `{"components":[{"style":{"height":`+itoa(tc.height)+`,"align":"`+tc.align+`"},"template":"A"}]}`)
		res := mustBuild(t, doc, BuildOptions{})
		if res.Board.At(tc.row, 0) != byte(board.A) {
			t.Fatalf("align %s height %d: expected A on row %d:\n%s", tc.align, tc.height, tc.row, res.Board)
		}
		if res.Placements[0].StartRow != tc.row {
			t.Fatalf("align %s height %d: start row %d, want %d", tc.align, tc.height, res.Placements[0].StartRow, tc.row)
		}
	}
}

func itoa(n int) string {
	data, _ := json.Marshal(n)
	return string(data)
}

func TestBuildOverflowingContentIsPinnedToTop(t *testing.T) {
	for _, align := range []string{"top", "center", "bottom", "justified"} {
		doc := mustParse(t, `{"components":[{"style":{"height":1,"width":4,"align":"`+align+`"},"template":"AAAA BBBB CCCC"}]}`)
		res := mustBuild(t, doc, BuildOptions{})
		expectBoard(t, res.Board, "AAAA")
	}
}

func TestBuildRawReplacesBoard(t *testing.T) {
	background := board.Flagship()
	background.Set(5, 21, byte(board.A))

	doc := &dsl.Document{Components: []dsl.Component{
		&dsl.TemplateComponent{Template: "HI"},
		&dsl.RawComponent{RawCharacters: background},
	}}
	res := mustBuild(t, doc, BuildOptions{})
	if !res.Board.Equal(background) {
		t.Fatalf("raw component should replace the board:\n%s", res.Board)
	}
	res.Board.Set(0, 0, byte(board.Z))
	if background.At(0, 0) != 0 {
		t.Fatalf("result must not share cells with the raw component")
	}
	if res.Placements[1].Kind != KindRaw {
		t.Fatalf("expected raw placement, got %s", res.Placements[1].Kind)
	}
}

func TestBuildRawBackgroundThenTemplate(t *testing.T) {
	background := board.Flagship()
	for r := 0; r < background.Rows(); r++ {
		for c := 0; c < background.Cols(); c++ {
			background.Set(r, c, byte(board.Red))
		}
	}
	doc := &dsl.Document{Components: []dsl.Component{
		&dsl.RawComponent{RawCharacters: background},
		&dsl.TemplateComponent{Template: "HI"},
		&dsl.TemplateComponent{
			ComponentStyle: dsl.ComponentStyle{
				Height:           dsl.Ptr(1),
				Width:            dsl.Ptr(2),
				AbsolutePosition: &dsl.AbsolutePosition{X: 0, Y: 3},
			},
		},
	}}
	res := mustBuild(t, doc, BuildOptions{})
	if res.Board.At(0, 0) != byte(board.H) || res.Board.At(0, 2) != byte(board.Red) {
		t.Fatalf("template should be drawn over the background:\n%s", res.Board)
	}
	// an empty template blanks its rectangle
	if res.Board.At(3, 0) != 0 || res.Board.At(3, 1) != 0 || res.Board.At(3, 2) != byte(board.Red) {
		t.Fatalf("empty template should clear a 1x2 rectangle:\n%s", res.Board)
	}
}

func TestBuildClipsOutOfBoundsCells(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	doc := mustParse(t, `{"components":[{"style":{"absolutePosition":{"x":20,"y":0}},"template":"ABCDE"}]}`)
	res := mustBuild(t, doc, BuildOptions{Logger: logger})
	if res.Clipped != 3 || res.Placements[0].Clipped != 3 {
		t.Fatalf("expected 3 clipped cells, got %d", res.Clipped)
	}
	if res.Board.At(0, 20) != byte(board.A) || res.Board.At(0, 21) != byte(board.B) {
		t.Fatalf("visible cells missing:\n%s", res.Board)
	}
	if !strings.Contains(logs.String(), "cells out of bounds") || !strings.Contains(logs.String(), "count=3") {
		t.Fatalf("expected debug log for clipped cells, got %q", logs.String())
	}
}

func TestBuildFarOffBoardDoesNotPanic(t *testing.T) {
	doc := mustParse(t, `{"components":[{"style":{"absolutePosition":{"x":100,"y":100}},"template":"FAR AWAY"}]}`)
	res := mustBuild(t, doc, BuildOptions{})
	if !res.Board.Equal(board.Flagship()) {
		t.Fatalf("board should stay blank:\n%s", res.Board)
	}
	if res.Clipped != 8 {
		t.Fatalf("expected 8 clipped cells, got %d", res.Clipped)
	}
}

func TestBuildHugeComponents(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		lines   []string
		clipped int
	}{
		{"tall template", `{"components":[{"style":{"height":1099511627776},"template":"HI"}]}`, []string{"HI"}, 0},
		{"wide template", `{"components":[{"style":{"width":1099511627776,"justify":"right"},"template":"HI"}]}`, nil, 2},
		{"tall empty template", `{"components":[{"style":{"height":1099511627776,"width":2},"template":""}]}`, nil, 1099511627776*2 - 12},
		{"wide empty template", `{"components":[{"style":{"height":1,"width":1099511627776},"template":""}]}`, nil, 1099511627776 - 22},
		{"huge empty template", `{"components":[{"style":{"height":1099511627776,"width":1099511627776},"template":""}]}`, nil, math.MaxInt - 132},
	}
	for _, tc := range cases {
		res := mustBuild(t, mustParse(t, tc.doc), BuildOptions{})
		expectBoard(t, res.Board, tc.lines...)
		if res.Clipped != tc.clipped {
			t.Fatalf("%s: clipped = %d, want %d", tc.name, res.Clipped, tc.clipped)
		}
		pl := res.Placements[0]
		if pl.Height < 1 || pl.Width < 2 {
			t.Fatalf("%s: placement should keep the requested size, got %dx%d", tc.name, pl.Height, pl.Width)
		}
	}
}

func TestBuildFlowSaturatesWideComponents(t *testing.T) {
	doc := mustParse(t, `{"components":[
		{"style":{"height":1,"width":4},"template":"AB"},
		{"style":{"height":1,"width":9223372036854775807},"template":"CD"},
		{"style":{"height":1,"width":4},"template":"EF"}]}`)
	res := mustBuild(t, doc, BuildOptions{})
	want := [][2]int{{0, 0}, {1, 0}, {2, 0}}
	for i, pl := range res.Placements {
		if pl.Row != want[i][0] || pl.Col != want[i][1] {
			t.Fatalf("placement %d at (%d,%d), want %v", i, pl.Row, pl.Col, want[i])
		}
	}
	expectBoard(t, res.Board, "AB", "CD", "EF")
}

func TestBuildCompactsEmptyRows(t *testing.T) {
	res := mustBuild(t, mustParse(t, `{"components":[{"template":"A\n\nB"}]}`), BuildOptions{})
	expectBoard(t, res.Board, "A", "B")
}

func TestBuildCustomBoardSize(t *testing.T) {
	res := mustBuild(t, mustParse(t, `{"components":[{"template":"HELLO WORLD"}]}`), BuildOptions{Rows: 3, Cols: 5})
	if res.Board.Rows() != 3 || res.Board.Cols() != 5 {
		t.Fatalf("expected 3x5 board, got %dx%d", res.Board.Rows(), res.Board.Cols())
	}
	expectBoard(t, res.Board, "HELLO", "WORLD")
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(nil, BuildOptions{}); !errors.Is(err, ErrNilDocument) {
		t.Fatalf("expected ErrNilDocument, got %v", err)
	}

	doc := mustParse(t, `{"components":[{"template":"A"}]}`)
	if _, err := Build(doc, BuildOptions{Rows: -1}); err == nil {
		t.Fatalf("expected error for negative board size")
	}

	raw := &dsl.Document{Components: []dsl.Component{
		&dsl.RawComponent{RawCharacters: board.New(2, 2)},
	}}
	if _, err := Build(raw, BuildOptions{}); !errors.Is(err, board.ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
	if _, err := Build(raw, BuildOptions{Rows: 1, Cols: 1}); !errors.Is(err, board.ErrTooManyRows) {
		t.Fatalf("expected ErrTooManyRows, got %v", err)
	}
}

func TestRender(t *testing.T) {
	g, err := Render(mustParse(t, `{"components":[{"template":"OK"}]}`), 2, 4)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	expectBoard(t, g, "OK")
	if _, err := Render(nil, 2, 4); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestBuildIsSafeForConcurrentUse(t *testing.T) {
	doc := mustParse(t, `{"props":{"who":"WORLD"},"components":[
		{"style":{"width":11},"template":"HELLO"},
		{"style":{"width":11,"justify":"right"},"template":"{{who}}"}
	]}`)
	want := mustBuild(t, doc, BuildOptions{}).Board

	var wg sync.WaitGroup
	results := make([]board.Grid, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := Render(doc, 0, 0)
			if err == nil {
				results[i] = g
			}
		}(i)
	}
	wg.Wait()
	for i, g := range results {
		if !g.Equal(want) {
			t.Fatalf("result %d differs:\n%s", i, g)
		}
	}
}

func TestWriteDebugJSON(t *testing.T) {
	doc := mustParse(t, `{"components":[{"template":"HI THERE"}]}`)
	res := mustBuild(t, doc, BuildOptions{Debug: DebugOptions{Content: true}})
	if res.Placements[0].Debug == nil || res.Placements[0].Debug.Text != "HI THERE" {
		t.Fatalf("expected debug text, got %+v", res.Placements[0].Debug)
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("write debug: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read debug: %v", err)
	}
	var decoded struct {
		Board      [][]int `json:"board"`
		Placements []struct {
			Kind  string `json:"kind"`
			Debug struct {
				Lines []string `json:"lines"`
			} `json:"debug"`
		} `json:"placements"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode debug: %v", err)
	}
	if len(decoded.Board) != 6 || decoded.Board[0][0] != int(board.H) {
		t.Fatalf("unexpected board in debug output: %v", decoded.Board)
	}
	if decoded.Placements[0].Kind != "template" || len(decoded.Placements[0].Debug.Lines) != 1 {
		t.Fatalf("unexpected placement in debug output: %+v", decoded.Placements)
	}
}
