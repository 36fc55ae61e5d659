package appearance

import (
	"errors"
	"fmt"
	"math"

	"github.com/soaringjerry/PainMap/internal/dial"
)

// Feature is a named piece of artwork drawn on the dial thumb.
type Feature struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ControlPoint anchors the appearance at one intensity level.
type ControlPoint struct {
	Name     string    `json:"name"`
	Level    float64   `json:"level"`
	Color    RGB       `json:"color"`
	Features []Feature `json:"features,omitempty"`
}

// State is the derived appearance for one intensity value.
type State struct {
	Level    float64   `json:"level"`
	Color    RGB       `json:"color"`
	CSS      string    `json:"css"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	T        float64   `json:"t"`
	Features []Feature `json:"features,omitempty"`
}

// Palette interpolates colour and artwork between ordered control points.
type Palette struct {
	name   string
	points []ControlPoint
	// morphs[i][f] interpolates feature f between points i and i+1.
	morphs [][]Interpolator
}

// NewPalette validates points (at least two, strictly increasing levels, the
// same feature names at every point) and precomputes feature morphs.
func NewPalette(name string, points []ControlPoint, m Morpher) (*Palette, error) {
	if len(points) < 2 {
		return nil, errors.New("appearance: palette needs at least two control points")
	}
	if m == nil {
		m = ResampleMorpher{}
	}
	pts := make([]ControlPoint, len(points))
	copy(pts, points)
	for i := 1; i < len(pts); i++ {
		if !(pts[i].Level > pts[i-1].Level) {
			return nil, fmt.Errorf("appearance: control point %q is not above %q", pts[i].Name, pts[i-1].Name)
		}
		if len(pts[i].Features) != len(pts[0].Features) {
			return nil, fmt.Errorf("appearance: control point %q has %d features, want %d", pts[i].Name, len(pts[i].Features), len(pts[0].Features))
		}
		for f := range pts[i].Features {
			if pts[i].Features[f].Name != pts[0].Features[f].Name {
				return nil, fmt.Errorf("appearance: control point %q feature %d is %q, want %q", pts[i].Name, f, pts[i].Features[f].Name, pts[0].Features[f].Name)
			}
		}
	}

	outlines := make([][]Outline, len(pts))
	for i, p := range pts {
		outlines[i] = make([]Outline, len(p.Features))
		for f, feat := range p.Features {
			o, err := ParsePath(feat.Path)
			if err != nil {
				return nil, fmt.Errorf("appearance: %s/%s: %w", p.Name, feat.Name, err)
			}
			outlines[i][f] = o
		}
	}
	morphs := make([][]Interpolator, len(pts)-1)
	for i := range morphs {
		morphs[i] = make([]Interpolator, len(pts[i].Features))
		for f := range morphs[i] {
			morphs[i][f] = m.Prepare(outlines[i][f], outlines[i+1][f])
		}
	}
	return &Palette{name: name, points: pts, morphs: morphs}, nil
}

// Evenly spreads points across r so that the bracket for a value is the
// fractional index (value-min)*(n-1)/(max-min).
func Evenly(r dial.Range, points []ControlPoint) []ControlPoint {
	out := make([]ControlPoint, len(points))
	copy(out, points)
	if len(out) < 2 {
		return out
	}
	span := float64(r.Max - r.Min)
	for i := range out {
		out[i].Level = float64(r.Min) + span*float64(i)/float64(len(out)-1)
	}
	return out
}

func (p *Palette) Name() string { return p.name }

// Bounds returns the lowest and highest control levels.
func (p *Palette) Bounds() (float64, float64) {
	return p.points[0].Level, p.points[len(p.points)-1].Level
}

// ControlPoints returns a copy of the anchors.
func (p *Palette) ControlPoints() []ControlPoint {
	out := make([]ControlPoint, len(p.points))
	copy(out, p.points)
	return out
}

// At derives the appearance for value, clamped into the palette bounds.
func (p *Palette) At(value float64) State {
	lo, hi := p.Bounds()
	if math.IsNaN(value) || value < lo {
		value = lo
	}
	if value > hi {
		value = hi
	}
	idx := 0
	for idx < len(p.points)-2 && p.points[idx+1].Level <= value {
		idx++
	}
	from, to := p.points[idx], p.points[idx+1]
	t := (value - from.Level) / (to.Level - from.Level)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	st := State{Level: value, From: from.Name, To: to.Name, T: t}
	switch t {
	case 0:
		st.Color = from.Color
		st.Features = copyFeatures(from.Features)
	case 1:
		st.Color = to.Color
		st.Features = copyFeatures(to.Features)
	default:
		st.Color = Lerp(from.Color, to.Color, t)
		st.Features = make([]Feature, len(from.Features))
		for f, feat := range from.Features {
			st.Features[f] = Feature{Name: feat.Name, Path: p.morphs[idx][f](t).Path()}
		}
	}
	st.CSS = st.Color.CSS()
	return st
}

// Color is the marker colour for an integer level.
func (p *Palette) Color(level int) RGB {
	return p.At(float64(level)).Color
}

func copyFeatures(in []Feature) []Feature {
	if len(in) == 0 {
		return nil
	}
	out := make([]Feature, len(in))
	copy(out, in)
	return out
}
