package layout

import (
	"log/slog"

	"github.com/ByLCY/flapboard/board"
)

// BuildOptions configures the compositor.
type BuildOptions struct {
	// Rows and Cols size the board; zero means the flagship 6×22 board.
	Rows int
	Cols int
	// Logger receives debug records for dropped cells. Nil discards them.
	Logger *slog.Logger
	Debug  DebugOptions
}

// DebugOptions controls extra output in Result.Placements.
type DebugOptions struct {
	Content bool // 在 Placement.Debug 中记录渲染后的文本与各行内容
}

func (o BuildOptions) size() (rows, cols int) {
	rows, cols = o.Rows, o.Cols
	if rows == 0 {
		rows = board.FlagshipRows
	}
	if cols == 0 {
		cols = board.FlagshipCols
	}
	return rows, cols
}

var discard = slog.New(slog.DiscardHandler)

func (o BuildOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return discard
	}
	return o.Logger
}
