package fonts

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称，对应 golang.org/x/image 附带的 Go 字体。
const (
	Mono     = "mono"
	MonoBold = "mono-bold"
	Regular  = "regular"
)

var builtin = map[string][]byte{
	Mono:     gomono.TTF,
	MonoBold: gomonobold.TTF,
	Regular:  goregular.TTF,
}

// Load 返回字体字节数据。name 可写为内置名称（"mono"、"embed:mono"），
// 其他值按字体文件路径读取。空字符串返回 Go Mono。
func Load(name string) ([]byte, error) {
	if name == "" {
		return gomono.TTF, nil
	}
	key := strings.TrimPrefix(name, "embed:")
	if data, ok := builtin[key]; ok {
		return data, nil
	}
	if strings.HasPrefix(name, "embed:") {
		return nil, fmt.Errorf("未知的内置字体 %s", key)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件 %s 失败: %w", name, err)
	}
	return data, nil
}

// Builtin reports whether name refers to an embedded font.
func Builtin(name string) bool {
	_, ok := builtin[strings.TrimPrefix(name, "embed:")]
	return ok || name == ""
}
