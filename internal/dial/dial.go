package dial

import (
	"fmt"
	"math"
	"strings"
)

// Point is a pointer position in the dial's own coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Range is a closed integer intensity range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultRange is the canonical intensity scale. Zero means "marked, no pain
// chosen yet", which is what a freshly tapped point carries.
var DefaultRange = Range{Min: 0, Max: 10}

// Steps is the number of discrete increments between Min and Max.
func (r Range) Steps() int { return r.Max - r.Min }

// Clamp bounds v into the range.
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

func (r Range) validate() error {
	if r.Max <= r.Min {
		return fmt.Errorf("dial: invalid range [%d,%d]", r.Min, r.Max)
	}
	return nil
}

// Mapper converts pointer positions into intensity levels and back. Level must
// always return a value inside Range, and Level(Position(l)) == l for every
// level in range.
type Mapper interface {
	Level(p Point) int
	Position(level int) Point
	Range() Range
}

// Style names a dial strategy offered to users.
type Style string

const (
	StyleRadial Style = "radial"
	StyleLinear Style = "linear"
)

// ParseStyle normalises s; unknown values map to StyleRadial.
func ParseStyle(s string) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleLinear:
		return StyleLinear
	default:
		return StyleRadial
	}
}

// NewMapper returns the default geometry for style over DefaultRange.
func NewMapper(style Style) Mapper {
	if style == StyleLinear {
		return DefaultLinear()
	}
	return DefaultRadial()
}

// roundLevel rounds half away from zero so the midpoint between two levels
// always resolves upward for non-negative inputs.
func roundLevel(v float64) int {
	return int(math.Round(v))
}
