package dial

import "math"

// Linear is a horizontal capsule track; the thumb travels from Start to
// Start+Length and the level grows left to right.
type Linear struct {
	Start  float64
	Length float64
	// Y is where Position places the thumb vertically; Level ignores it.
	Y     float64
	Scale Range
}

// Face-toggle geometry: a 240x100 track whose 50-radius caps bound the thumb.
const (
	trackWidth  = 240.0
	trackHeight = 100.0
	trackCap    = trackHeight / 2
)

// DefaultLinear mirrors the face toggle track.
func DefaultLinear() *Linear {
	return &Linear{
		Start:  trackCap,
		Length: trackWidth - 2*trackCap,
		Y:      trackHeight / 2,
		Scale:  DefaultRange,
	}
}

// NewLinear validates the geometry.
func NewLinear(start, length float64, scale Range) (*Linear, error) {
	if err := scale.validate(); err != nil {
		return nil, err
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, errInvalidGeometry("track length must be positive")
	}
	return &Linear{Start: start, Length: length, Scale: scale}, nil
}

func (l *Linear) Range() Range { return l.Scale }

func (l *Linear) Level(p Point) int {
	frac := (p.X - l.Start) / l.Length
	if math.IsNaN(frac) || frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return l.Scale.Clamp(l.Scale.Min + roundLevel(frac*float64(l.Scale.Steps())))
}

func (l *Linear) Position(level int) Point {
	level = l.Scale.Clamp(level)
	frac := float64(level-l.Scale.Min) / float64(l.Scale.Steps())
	return Point{X: l.Start + frac*l.Length, Y: l.Y}
}
