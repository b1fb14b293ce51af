package renderer

import "github.com/ByLCY/flapboard/board"

// Renderer 将排版完成的面板输出为最终文件，例如 PDF、图像或终端文本。
// Render 返回生成的字节数据以及可能的错误。
type Renderer interface {
	Render(grid board.Grid) ([]byte, error)
}
