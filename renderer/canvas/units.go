package canvasrenderer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unit is the unit a preview length was written in.
type Unit int

const (
	UnitMM Unit = iota // millimeters, also used for bare numbers
	UnitCM             // centimeters
	UnitIN             // inches
	UnitPT             // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

var ErrInvalidLength = errors.New("invalid length")

func (u Unit) String() string {
	switch u {
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return "mm"
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

// MM returns a millimeter length.
func MM(v float64) Length { return Length{Value: v, Unit: UnitMM} }

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts the length to millimeters.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPT converts the length to points.
func (l Length) ToPT() float64 { return l.ToMM() * MmToPt }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ParseLength parses "12", "12mm", "1.2cm", "0.5in" or "18pt". Bare numbers
// are millimeters.
func ParseLength(value string) (Length, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}, fmt.Errorf("%w: empty", ErrInvalidLength)
	}
	unit := UnitMM
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("%w: %q", ErrInvalidLength, value)
	}
	if f < 0 {
		return Length{}, fmt.Errorf("%w: negative %q", ErrInvalidLength, value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// UnmarshalText lets lengths be written as strings in config files.
func (l *Length) UnmarshalText(text []byte) error {
	parsed, err := ParseLength(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l Length) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
