// Package config loads flapboard settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/flapboard/board"
	canvasrenderer "github.com/ByLCY/flapboard/renderer/canvas"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Board        Board        `toml:"board"`
	RW           RW           `toml:"rw"`
	Local        Local        `toml:"local"`
	Subscription Subscription `toml:"subscription"`
	Preview      Preview      `toml:"preview"`
}

// Board is the display size.
type Board struct {
	Rows int `toml:"rows"`
	Cols int `toml:"cols"`
}

// RW holds the read/write API key.
type RW struct {
	Key string `toml:"key"`
}

// Local configures the local network API.
type Local struct {
	APIKey          string `toml:"api_key"`
	Address         string `toml:"address"`
	EnablementToken string `toml:"enablement_token"`
}

// Subscription configures the subscription API.
type Subscription struct {
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
	ID        string `toml:"id"`
}

// Preview configures the rendered preview.
type Preview struct {
	Tile canvasrenderer.Length `toml:"tile"`
	Gap  canvasrenderer.Length `toml:"gap"`
	Font string                `toml:"font"`
	DPMM float64               `toml:"dpmm"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Board: Board{Rows: board.FlagshipRows, Cols: board.FlagshipCols},
		Preview: Preview{
			Tile: canvasrenderer.MM(10),
			Gap:  canvasrenderer.MM(1.5),
			Font: "mono",
			DPMM: 8,
		},
	}
}

// 环境变量覆盖文件中的同名配置。
var envVars = []struct {
	name  string
	field func(*Config) *string
}{
	{"RW_API_KEY", func(c *Config) *string { return &c.RW.Key }},
	{"LOCAL_API_KEY", func(c *Config) *string { return &c.Local.APIKey }},
	{"LOCAL_DEVICE_IP", func(c *Config) *string { return &c.Local.Address }},
	{"LOCAL_ENABLEMENT_TOKEN", func(c *Config) *string { return &c.Local.EnablementToken }},
	{"SUBSCRIPTION_API_KEY", func(c *Config) *string { return &c.Subscription.APIKey }},
	{"SUBSCRIPTION_API_SECRET", func(c *Config) *string { return &c.Subscription.APISecret }},
	{"SUBSCRIPTION_ID", func(c *Config) *string { return &c.Subscription.ID }},
}

// Load reads path on top of Default and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
		}
	}
	cfg.ApplyEnv(lookup)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides credentials with non-empty environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, v := range envVars {
		if val, ok := lookup(v.name); ok && val != "" {
			*v.field(c) = val
		}
	}
}

// Validate checks the values that would otherwise fail late.
func (c Config) Validate() error {
	var errs []error
	if c.Board.Rows <= 0 || c.Board.Cols <= 0 {
		errs = append(errs, fmt.Errorf("%w: board size %dx%d", ErrInvalid, c.Board.Rows, c.Board.Cols))
	}
	if c.Preview.DPMM < 0 {
		errs = append(errs, fmt.Errorf("%w: negative preview dpmm %g", ErrInvalid, c.Preview.DPMM))
	}
	return errors.Join(errs...)
}

// PreviewOptions converts the preview section for the canvas renderer.
func (c Config) PreviewOptions(format canvasrenderer.Format) canvasrenderer.Options {
	return canvasrenderer.Options{
		Format: format,
		Tile:   c.Preview.Tile,
		Gap:    c.Preview.Gap,
		Font:   c.Preview.Font,
		DPMM:   c.Preview.DPMM,
	}
}
