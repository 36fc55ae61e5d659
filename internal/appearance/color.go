package appearance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit colour. It serialises as "#rrggbb".
type RGB struct {
	R, G, B uint8
}

func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// CSS renders the colour the way the web client styles markers.
func (c RGB) CSS() string { return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B) }

func (c RGB) String() string { return c.Hex() }

func (c RGB) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *RGB) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseHex accepts "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("appearance: bad colour %q", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("appearance: bad colour %q: %w", s, err)
	}
	return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// Lerp interpolates each channel and rounds to the nearest integer.
func Lerp(a, b RGB, t float64) RGB {
	return RGB{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := math.Round(float64(a) + (float64(b)-float64(a))*t)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
