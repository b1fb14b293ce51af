package layout

// 该文件定义排版结果与调试信息，供布局计算、CLI 与调试 JSON 共用。

import "github.com/ByLCY/flapboard/board"

// Result holds the composed board and how each component was placed.
type Result struct {
	Board      board.Grid  `json:"board"`
	Rows       int         `json:"rows"`
	Cols       int         `json:"cols"`
	Placements []Placement `json:"placements"`
	// Clipped counts cells dropped because they fell outside the board.
	Clipped int `json:"clipped"`
}

// Kind names the component variant a placement came from.
type Kind string

const (
	KindTemplate Kind = "template"
	KindRaw      Kind = "raw"
)

// Placement describes one component after layout. Row and Col are the
// rectangle origin on the board; StartRow is the alignment offset inside it.
type Placement struct {
	Index    int   `json:"index"`
	Kind     Kind  `json:"kind"`
	Absolute bool  `json:"absolute"`
	Row      int   `json:"row"`
	Col      int   `json:"col"`
	Height   int   `json:"height"`
	Width    int   `json:"width"`
	Content  Box   `json:"content"`
	StartRow int   `json:"startRow"`
	Clipped  int   `json:"clipped"`
	Debug    *Dump `json:"debug,omitempty"`
}

// Box is a content size in cells.
type Box struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// Dump is optional debug output, filled when BuildOptions.Debug asks for it.
type Dump struct {
	Text  string   `json:"text,omitempty"`
	Lines []string `json:"lines,omitempty"`
}
