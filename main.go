package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/ByLCY/flapboard/board"
	"github.com/ByLCY/flapboard/client"
	"github.com/ByLCY/flapboard/config"
	"github.com/ByLCY/flapboard/dsl"
	"github.com/ByLCY/flapboard/layout"
	"github.com/ByLCY/flapboard/renderer"
	canvasrenderer "github.com/ByLCY/flapboard/renderer/canvas"
	"github.com/ByLCY/flapboard/renderer/terminal"
)

func main() {
	input := flag.String("in", "examples/hello.json", "VBML 文档路径")
	configPath := flag.String("config", "", "TOML 配置文件路径")
	rows := flag.Int("rows", 0, "面板行数，覆盖配置文件")
	cols := flag.Int("cols", 0, "面板列数，覆盖配置文件")
	propsFlag := flag.String("props", "", "覆盖文档 props，格式 name=value,...")
	output := flag.String("out", "", "预览输出路径（.pdf / .svg / .png）")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	colorMode := flag.String("color", "auto", "终端颜色：auto、always 或 never")
	send := flag.String("send", "", "发送到面板：rw、local 或 subscription")
	read := flag.String("read", "", "读取面板当前内容：rw 或 local")
	enableLocal := flag.Bool("enable-local", false, "用 enablement token 换取本地 API key")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *rows > 0 {
		cfg.Board.Rows = *rows
	}
	if *cols > 0 {
		cfg.Board.Cols = *cols
	}
	props, err := parseProps(*propsFlag)
	if err != nil {
		log.Fatalf("解析 props 失败: %v", err)
	}
	color, err := useColor(*colorMode, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	tr := terminal.Renderer{Color: color}
	if color {
		tr.Profile = colorProfile(os.Stdout, *colorMode == "always")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *enableLocal:
		key, err := client.EnableLocalAPI(ctx, cfg.Local.Address, cfg.Local.EnablementToken, client.WithLogger(logger))
		if err != nil {
			log.Fatalf("启用本地 API 失败: %v", err)
		}
		fmt.Printf("本地 API key（仅返回一次，请妥善保存）：%s\n", key)

	case *read != "":
		if err := readBoard(ctx, *read, cfg, tr, os.Stdout, client.WithLogger(logger)); err != nil {
			log.Fatalf("读取面板失败: %v", err)
		}

	default:
		opts := runOptions{
			Input:    *input,
			Output:   *output,
			Debug:    *debug,
			Props:    props,
			Config:   cfg,
			Terminal: tr,
			Send:     *send,
			Logger:   logger,
			Client:   []client.Option{client.WithLogger(logger)},
		}
		if err := run(ctx, opts, os.Stdout); err != nil {
			log.Fatalf("生成面板失败: %v", err)
		}
	}
}

type runOptions struct {
	Input    string
	Output   string // 预览文件，空字符串表示不生成
	Debug    string
	Props    dsl.Props // 覆盖文档中的同名 props
	Config   config.Config
	Terminal renderer.Renderer
	Send     string
	Logger   *slog.Logger
	Client   []client.Option
}

// run 串联解析、排版、终端输出、预览与发送。
func run(ctx context.Context, opts runOptions, stdout io.Writer) error {
	file, err := os.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("无法打开文档 %s: %w", opts.Input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析文档失败: %w", err)
	}
	if len(opts.Props) > 0 && doc.Props == nil {
		doc.Props = dsl.Props{}
	}
	for name, value := range opts.Props {
		doc.Props[name] = value
	}

	result, err := layout.Build(doc, layout.BuildOptions{
		Rows:   opts.Config.Board.Rows,
		Cols:   opts.Config.Board.Cols,
		Logger: opts.Logger,
		Debug:  layout.DebugOptions{Content: opts.Debug != ""},
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	if result.Clipped > 0 && opts.Logger != nil {
		opts.Logger.Warn("cells outside the board were dropped", slog.Int("count", result.Clipped))
	}

	if opts.Debug != "" {
		if err := writeDebug(result, opts.Debug); err != nil {
			return err
		}
	}

	if opts.Terminal != nil {
		text, err := opts.Terminal.Render(result.Board)
		if err != nil {
			return fmt.Errorf("终端输出失败: %w", err)
		}
		if _, err := stdout.Write(text); err != nil {
			return err
		}
	}

	if opts.Output != "" {
		if err := writePreview(result.Board, opts.Config, opts.Output); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "已生成预览：%s\n", opts.Output)
	}

	if opts.Send != "" {
		w, err := newWriter(opts.Send, opts.Config, opts.Client...)
		if err != nil {
			return err
		}
		res, err := w.Write(ctx, result.Board)
		if err != nil {
			return fmt.Errorf("发送到面板失败: %w", err)
		}
		fmt.Fprintf(stdout, "已发送到面板（%s）%s\n", opts.Send, describeWrite(res))
	}
	return nil
}

func writePreview(grid board.Grid, cfg config.Config, path string) error {
	format, err := canvasrenderer.FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := canvasrenderer.NewRenderer(cfg.PreviewOptions(format)).Render(grid)
	if err != nil {
		return fmt.Errorf("渲染预览失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入预览文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func readBoard(ctx context.Context, kind string, cfg config.Config, r renderer.Renderer, stdout io.Writer, opts ...client.Option) error {
	reader, err := newReader(kind, cfg, opts...)
	if err != nil {
		return err
	}
	grid, err := reader.Read(ctx)
	if err != nil {
		return err
	}
	text, err := r.Render(grid)
	if err != nil {
		return err
	}
	_, err = stdout.Write(text)
	return err
}

func newWriter(kind string, cfg config.Config, opts ...client.Option) (client.Writer, error) {
	opts = append([]client.Option{client.WithBoardSize(cfg.Board.Rows, cfg.Board.Cols)}, opts...)
	switch kind {
	case "rw":
		return client.NewRWClient(cfg.RW.Key, opts...)
	case "local":
		return client.NewLocalClient(cfg.Local.APIKey, cfg.Local.Address, opts...)
	case "subscription":
		c, err := client.NewSubscriptionClient(cfg.Subscription.APIKey, cfg.Subscription.APISecret, opts...)
		if err != nil {
			return nil, err
		}
		return c.Bind(cfg.Subscription.ID), nil
	}
	return nil, fmt.Errorf("未知的发送方式 %q（可选 rw、local、subscription）", kind)
}

func newReader(kind string, cfg config.Config, opts ...client.Option) (client.Reader, error) {
	opts = append([]client.Option{client.WithBoardSize(cfg.Board.Rows, cfg.Board.Cols)}, opts...)
	switch kind {
	case "rw":
		return client.NewRWClient(cfg.RW.Key, opts...)
	case "local":
		return client.NewLocalClient(cfg.Local.APIKey, cfg.Local.Address, opts...)
	}
	return nil, fmt.Errorf("未知的读取方式 %q（可选 rw、local）", kind)
}

func describeWrite(res client.WriteResult) string {
	var parts []string
	if res.ID != "" {
		parts = append(parts, "id="+res.ID)
	}
	if res.Status != "" {
		parts = append(parts, "status="+res.Status)
	}
	if res.Muted {
		parts = append(parts, "muted")
	}
	if len(parts) == 0 {
		return ""
	}
	return "：" + strings.Join(parts, " ")
}

// parseProps 解析 name=value,name=value 形式的 props。
func parseProps(s string) (dsl.Props, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	props := dsl.Props{}
	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("无效的 prop %q", pair)
		}
		props[name] = value
	}
	return props, nil
}

func useColor(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("无效的 -color 取值 %q（可选 auto、always、never）", mode)
}

// colorProfile 检测终端支持的颜色级别；forced 时至少使用 16 色。
func colorProfile(f *os.File, forced bool) termenv.Profile {
	out := termenv.NewOutput(f, termenv.WithTTY(forced || term.IsTerminal(int(f.Fd()))))
	p := out.EnvColorProfile()
	if forced && p == termenv.Ascii {
		return termenv.ANSI
	}
	return p
}
