package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/flapboard/board"
	"github.com/ByLCY/flapboard/fonts"
	"github.com/ByLCY/flapboard/renderer"
)

// Format selects the output encoding.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

var (
	ErrUnknownFormat = errors.New("unknown preview format")
	ErrEmptyGrid     = errors.New("grid has no cells")
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatPDF, FormatSVG, FormatPNG:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Options configures the preview.
type Options struct {
	Format Format // 默认 pdf
	Tile   Length // 单个翻牌的边长，默认 10mm
	Gap    Length // 翻牌之间的间距，默认 1.5mm
	Font   string // fonts.Load 可识别的名称或路径，默认 Go Mono
	// DPMM is the PNG resolution in pixels per millimeter.
	DPMM float64
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatPDF
	}
	if o.Tile.IsZero() {
		o.Tile = MM(10)
	}
	if o.Gap.IsZero() {
		o.Gap = MM(1.5)
	}
	if o.DPMM <= 0 {
		o.DPMM = 8
	}
	return o
}

// Renderer draws a board the way the physical display looks: a dark frame
// with one tile per cell.
type Renderer struct {
	opts Options

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates a preview renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

var (
	frameColor = canvas.Hex("#1b1b1b")
	tileColor  = canvas.Hex("#2a2a2a")
	glyphColor = canvas.Hex("#f4f4f4")

	swatches = map[board.Code]color.RGBA{
		board.Red:    canvas.Hex("#da291c"),
		board.Orange: canvas.Hex("#ff7500"),
		board.Yellow: canvas.Hex("#ffb81c"),
		board.Green:  canvas.Hex("#009a44"),
		board.Blue:   canvas.Hex("#0084d5"),
		board.Violet: canvas.Hex("#702f8a"),
		board.White:  canvas.Hex("#ffffff"),
		board.Black:  canvas.Hex("#000000"),
		board.Filled: canvas.Hex("#ffffff"),
	}
)

// Size returns the page size in millimeters for a rows×cols board.
func (r *Renderer) Size(rows, cols int) (width, height float64) {
	tile, gap := r.opts.Tile.ToMM(), r.opts.Gap.ToMM()
	margin := 2 * gap
	width = float64(cols)*tile + float64(cols-1)*gap + 2*margin
	height = float64(rows)*tile + float64(rows-1)*gap + 2*margin
	return width, height
}

// Render draws grid and encodes it in the configured format.
func (r *Renderer) Render(grid board.Grid) ([]byte, error) {
	if grid.Rows() == 0 || grid.Cols() == 0 {
		return nil, ErrEmptyGrid
	}
	face, err := r.face()
	if err != nil {
		return nil, err
	}

	width, height := r.Size(grid.Rows(), grid.Cols())
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与面板行列方向一致
	r.drawBoard(ctx, grid, face, width, height)

	var buf bytes.Buffer
	if err := r.encode(&buf, c, width, height); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBoard(ctx *canvas.Context, grid board.Grid, face *canvas.FontFace, width, height float64) {
	tile, gap := r.opts.Tile.ToMM(), r.opts.Gap.ToMM()
	margin := 2 * gap
	radius := tile * 0.12

	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeWidth(0)
	ctx.SetFillColor(frameColor)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	metrics := face.Metrics()
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			x := margin + float64(col)*(tile+gap)
			y := margin + float64(row)*(tile+gap)
			code := board.Code(grid.At(row, col))

			fill := tileColor
			if swatch, ok := swatches[code]; ok {
				fill = swatch
			}
			ctx.SetFillColor(fill)
			ctx.DrawPath(x, y, canvas.RoundedRectangle(tile, tile, radius))

			if code.IsColor() || code.Rune() == ' ' {
				continue
			}
			// 基线：字形大写高度在翻牌内垂直居中
			baseline := y + (tile+metrics.CapHeight)/2
			ctx.DrawText(x+tile/2, baseline, canvas.NewTextLine(face, string(code.Rune()), canvas.Center))
		}
	}
}

func (r *Renderer) encode(w io.Writer, c *canvas.Canvas, width, height float64) error {
	switch r.opts.Format {
	case FormatPDF:
		writer := pdf.New(w, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return fmt.Errorf("写入 PDF 失败: %w", err)
		}
	case FormatSVG:
		writer := svg.New(w, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return fmt.Errorf("写入 SVG 失败: %w", err)
		}
	case FormatPNG:
		img := rasterizer.Draw(c, canvas.DPMM(r.opts.DPMM), canvas.DefaultColorSpace)
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("写入 PNG 失败: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.opts.Format)
	}
	return nil
}

// face returns the glyph face sized to the tile, loading the font family on
// first use.
func (r *Renderer) face() (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily()
	if err != nil {
		return nil, err
	}
	sizePt := r.opts.Tile.ToPT() * 0.7
	return family.Face(sizePt, glyphColor, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}

	family := canvas.NewFontFamily("flapboard")
	if err := loadFontInto(family, r.opts.Font); err != nil {
		if fonts.Builtin(r.opts.Font) {
			return nil, err
		}
		// 自定义字体不可用时回退到内置 Go Mono
		family = canvas.NewFontFamily("flapboard-fallback")
		if fbErr := loadFontInto(family, fonts.Mono); fbErr != nil {
			return nil, err
		}
	}
	r.family = family
	return family, nil
}

func loadFontInto(family *canvas.FontFamily, name string) error {
	data, err := fonts.Load(name)
	if err != nil {
		return err
	}
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	return nil
}
