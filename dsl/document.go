package dsl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ByLCY/flapboard/board"
)

// ErrDeserialize is matched by every decoding failure.
var ErrDeserialize = errors.New("failed to deserialize document")

// DeserializeError wraps the reason a document could not be decoded.
type DeserializeError struct {
	Err error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDeserialize, e.Err)
}

func (e *DeserializeError) Unwrap() []error { return []error{ErrDeserialize, e.Err} }

// Document is the root of a board markup document.
type Document struct {
	// Props are substituted into {{name}} escapes.
	Props Props `json:"props,omitempty"`
	// Style is decoded and kept but has no effect on rendering; the board
	// size comes from the caller.
	Style      *DocumentStyle `json:"style,omitempty"`
	Components []Component    `json:"components"`
}

// Props maps property names to values.
type Props map[string]string

// DocumentStyle is the document level style block.
type DocumentStyle struct {
	Height *int `json:"height,omitempty"`
	Width  *int `json:"width,omitempty"`
}

// Component is either a *RawComponent or a *TemplateComponent.
type Component interface {
	Style() ComponentStyle
	isComponent()
}

// RawComponent carries pre-filled cells, typically a background.
type RawComponent struct {
	ComponentStyle
	RawCharacters board.Grid
}

// TemplateComponent carries text to be laid out.
type TemplateComponent struct {
	ComponentStyle
	Template string
}

func (c *RawComponent) Style() ComponentStyle      { return c.ComponentStyle }
func (c *TemplateComponent) Style() ComponentStyle { return c.ComponentStyle }
func (*RawComponent) isComponent()                 {}
func (*TemplateComponent) isComponent()            {}

// wireComponent is the JSON shape shared by both component kinds.
type wireComponent struct {
	Style         *ComponentStyle `json:"style,omitempty"`
	RawCharacters *board.Grid     `json:"rawCharacters,omitempty"`
	Template      *string         `json:"template,omitempty"`
}

type wireDocument struct {
	Props      Props             `json:"props,omitempty"`
	Style      *DocumentStyle    `json:"style,omitempty"`
	Components []json.RawMessage `json:"components"`
}

// Parse decodes a document from r.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DeserializeError{Err: err}
	}
	return ParseBytes(data)
}

// ParseString decodes a document from a string.
func ParseString(input string) (*Document, error) {
	return ParseBytes([]byte(input))
}

// ParseBytes decodes a document. A component must carry exactly one of
// rawCharacters or template.
func ParseBytes(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		var de *DeserializeError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, &DeserializeError{Err: err}
	}
	return &doc, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	var wire wireDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&wire); err != nil {
		return err
	}
	if wire.Components == nil {
		return &DeserializeError{Err: errors.New("missing field `components`")}
	}
	if wire.Style != nil {
		if err := checkSize(wire.Style.Height, wire.Style.Width); err != nil {
			return &DeserializeError{Err: fmt.Errorf("style: %w", err)}
		}
	}
	components := make([]Component, 0, len(wire.Components))
	for i, raw := range wire.Components {
		c, err := decodeComponent(raw)
		if err != nil {
			return &DeserializeError{Err: fmt.Errorf("component %d: %w", i, err)}
		}
		components = append(components, c)
	}
	*d = Document{Props: wire.Props, Style: wire.Style, Components: components}
	return nil
}

func decodeComponent(data json.RawMessage) (Component, error) {
	var wire wireComponent
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	var style ComponentStyle
	if wire.Style != nil {
		style = *wire.Style
	}
	if err := style.validate(); err != nil {
		return nil, err
	}
	switch {
	case wire.RawCharacters != nil && wire.Template != nil:
		return nil, errors.New("component has both `rawCharacters` and `template`")
	case wire.RawCharacters != nil:
		return &RawComponent{ComponentStyle: style, RawCharacters: *wire.RawCharacters}, nil
	case wire.Template != nil:
		return &TemplateComponent{ComponentStyle: style, Template: *wire.Template}, nil
	default:
		return nil, errors.New("component needs `rawCharacters` or `template`")
	}
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	wire := struct {
		Props      Props           `json:"props,omitempty"`
		Style      *DocumentStyle  `json:"style,omitempty"`
		Components []wireComponent `json:"components"`
	}{Props: d.Props, Style: d.Style, Components: make([]wireComponent, 0, len(d.Components))}
	for i, c := range d.Components {
		style := c.Style()
		out := wireComponent{Style: &style}
		switch v := c.(type) {
		case *RawComponent:
			grid := v.RawCharacters
			out.RawCharacters = &grid
		case *TemplateComponent:
			tpl := v.Template
			out.Template = &tpl
		default:
			return nil, fmt.Errorf("component %d: unsupported type %T", i, c)
		}
		wire.Components = append(wire.Components, out)
	}
	return json.Marshal(wire)
}

// Encode writes the document in its wire format.
func (d *Document) Encode(w io.Writer) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Validate checks that every raw component matches the rows×cols board.
func (d *Document) Validate(rows, cols int) error {
	for i, c := range d.Components {
		raw, ok := c.(*RawComponent)
		if !ok {
			continue
		}
		if err := raw.RawCharacters.CheckSize(rows, cols); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}
