package dial

import (
	"errors"
	"math"
)

func errInvalidGeometry(msg string) error { return errors.New("dial: " + msg) }

// Radial is a knob rotating around Center. Angles are measured clockwise from
// straight up, so the minimum sits at 12 o'clock and the level grows clockwise.
type Radial struct {
	Center Point
	Radius float64
	// DeadZone is the angle past which input snaps to the maximum, keeping the
	// 0/360 seam from flicking between min and max. Zero means half a step
	// short of a full turn.
	DeadZone float64
	Scale    Range
}

// DefaultRadial mirrors the 100x100 SVG knob with a 36-unit track radius.
func DefaultRadial() *Radial {
	return &Radial{
		Center:   Point{X: 50, Y: 50},
		Radius:   36,
		DeadZone: 342,
		Scale:    DefaultRange,
	}
}

// NewRadial validates the geometry. The dead zone may not start before the
// last level's rounding boundary, otherwise that level would be unreachable.
func NewRadial(center Point, radius, deadZone float64, scale Range) (*Radial, error) {
	if err := scale.validate(); err != nil {
		return nil, err
	}
	if !(radius > 0) {
		return nil, errInvalidGeometry("radius must be positive")
	}
	r := &Radial{Center: center, Radius: radius, DeadZone: deadZone, Scale: scale}
	if deadZone != 0 && (deadZone < 360-r.step()/2 || deadZone >= 360) {
		return nil, errInvalidGeometry("dead zone out of bounds")
	}
	return r, nil
}

func (r *Radial) Range() Range { return r.Scale }

func (r *Radial) step() float64 { return 360 / float64(r.Scale.Steps()) }

func (r *Radial) deadZone() float64 {
	if r.DeadZone <= 0 || r.DeadZone >= 360 {
		return 360 - r.step()/2
	}
	return r.DeadZone
}

// Angle returns the pointer's clockwise angle from up, in [0, 360).
func (r *Radial) Angle(p Point) float64 {
	dx := p.X - r.Center.X
	dy := p.Y - r.Center.Y
	if dx == 0 && dy == 0 {
		return 0
	}
	deg := math.Atan2(dx, -dy) * 180 / math.Pi
	if math.IsNaN(deg) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// LevelAt maps an angle in degrees to a level.
func (r *Radial) LevelAt(angle float64) int {
	if angle > r.deadZone() {
		return r.Scale.Max
	}
	return r.Scale.Clamp(r.Scale.Min + roundLevel(angle/r.step()))
}

// AngleOf is the rendering angle for level. The maximum lands in the middle
// of the dead zone rather than on the seam.
func (r *Radial) AngleOf(level int) float64 {
	level = r.Scale.Clamp(level)
	if level == r.Scale.Max {
		return (r.deadZone() + 360) / 2
	}
	return float64(level-r.Scale.Min) * r.step()
}

func (r *Radial) Level(p Point) int {
	return r.LevelAt(r.Angle(p))
}

func (r *Radial) Position(level int) Point {
	rad := r.AngleOf(level) * math.Pi / 180
	return Point{
		X: r.Center.X + r.Radius*math.Sin(rad),
		Y: r.Center.Y - r.Radius*math.Cos(rad),
	}
}

// Progress is the filled fraction of the ring for level, in [0, 1].
func (r *Radial) Progress(level int) float64 {
	level = r.Scale.Clamp(level)
	return float64(level-r.Scale.Min) / float64(r.Scale.Steps())
}
