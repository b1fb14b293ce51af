package dsl

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Justify is the horizontal placement of content inside a component.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyCenter
	JustifyRight
	JustifyJustified
)

var justifyNames = map[Justify]string{
	JustifyLeft:      "left",
	JustifyCenter:    "center",
	JustifyRight:     "right",
	JustifyJustified: "justified",
}

func (j Justify) String() string { return justifyNames[j] }

func (j Justify) MarshalText() ([]byte, error) {
	name, ok := justifyNames[j]
	if !ok {
		return nil, fmt.Errorf("unknown justify %d", int(j))
	}
	return []byte(name), nil
}

func (j *Justify) UnmarshalText(text []byte) error {
	for v, name := range justifyNames {
		if name == string(text) {
			*j = v
			return nil
		}
	}
	return fmt.Errorf("unknown justify %q, expected one of center, left, right, justified", text)
}

// Align is the vertical placement of content inside a component.
type Align int

const (
	AlignTop Align = iota
	AlignCenter
	AlignBottom
	AlignJustified
	// AlignAbsolute is informational; placement follows AbsolutePosition.
	AlignAbsolute
)

var alignNames = map[Align]string{
	AlignTop:       "top",
	AlignCenter:    "center",
	AlignBottom:    "bottom",
	AlignJustified: "justified",
	AlignAbsolute:  "absolute",
}

func (a Align) String() string { return alignNames[a] }

func (a Align) MarshalText() ([]byte, error) {
	name, ok := alignNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown align %d", int(a))
	}
	return []byte(name), nil
}

func (a *Align) UnmarshalText(text []byte) error {
	for v, name := range alignNames {
		if name == string(text) {
			*a = v
			return nil
		}
	}
	return fmt.Errorf("unknown align %q, expected one of center, top, bottom, justified, absolute", text)
}

// AbsolutePosition is the top-left cell of an absolutely placed component.
type AbsolutePosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ComponentStyle holds the optional layout hints of a component.
type ComponentStyle struct {
	Justify *Justify `json:"justify,omitempty"`
	Align   *Align   `json:"align,omitempty"`
	// Height and Width size the component, not its content. They default
	// to the board size.
	Height           *int              `json:"height,omitempty"`
	Width            *int              `json:"width,omitempty"`
	AbsolutePosition *AbsolutePosition `json:"absolutePosition,omitempty"`
}

// Size returns the component rectangle on a rows×cols board.
func (s ComponentStyle) Size(rows, cols int) (height, width int) {
	height, width = rows, cols
	if s.Height != nil {
		height = *s.Height
	}
	if s.Width != nil {
		width = *s.Width
	}
	return height, width
}

// IsAbsolute reports whether the component is anchored at AbsolutePosition.
func (s ComponentStyle) IsAbsolute() bool { return s.AbsolutePosition != nil }

func (s ComponentStyle) validate() error {
	if err := checkSize(s.Height, s.Width); err != nil {
		return err
	}
	if p := s.AbsolutePosition; p != nil && (p.X < 0 || p.Y < 0) {
		return fmt.Errorf("negative absolutePosition (%d, %d)", p.X, p.Y)
	}
	return nil
}

func checkSize(height, width *int) error {
	var errs []string
	if height != nil && *height < 0 {
		errs = append(errs, fmt.Sprintf("height %d", *height))
	}
	if width != nil && *width < 0 {
		errs = append(errs, fmt.Sprintf("width %d", *width))
	}
	if len(errs) > 0 {
		return errors.New("negative " + strings.Join(errs, ", "))
	}
	return nil
}

// Ptr is a convenience for building styles in code.
func Ptr[T any](v T) *T { return &v }

var (
	_ json.Marshaler   = Document{}
	_ json.Unmarshaler = (*Document)(nil)
)
