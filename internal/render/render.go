// Package render draws dial faces and marker overlays as PNG images.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/soaringjerry/PainMap/internal/appearance"
	"github.com/soaringjerry/PainMap/internal/dial"
)

const (
	MinSize     = 32
	MaxSize     = 1024
	DefaultSize = 256

	// Dial coordinate boxes.
	radialBox    = 100.0
	linearWidth  = 240.0
	linearHeight = 100.0

	knobRadius  = 7.0
	thumbRadius = 45.0
	ringWidth   = 8.0
)

var (
	trackColor   = color.NRGBA{R: 229, G: 231, B: 235, A: 255}
	featureColor = color.NRGBA{R: 31, G: 41, B: 55, A: 255}
	outlineColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

var ErrUnsupportedMapper = errors.New("render: unsupported dial mapper")

// ClampSize keeps requested image sizes within sane bounds; zero means default.
func ClampSize(n int) int {
	switch {
	case n == 0:
		return DefaultSize
	case n < MinSize:
		return MinSize
	case n > MaxSize:
		return MaxSize
	}
	return n
}

func nrgba(c appearance.RGB) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Dial draws the dial face for level using the mapper's geometry and the
// palette's appearance at that level. size is the output width in pixels.
func Dial(w io.Writer, m dial.Mapper, pal *appearance.Palette, level, size int) error {
	size = ClampSize(size)
	level = m.Range().Clamp(level)
	st := pal.At(float64(level))

	var dc *gg.Context
	var err error
	switch g := m.(type) {
	case *dial.Radial:
		dc, err = radialFace(g, st, level, size)
	case *dial.Linear:
		dc, err = linearFace(g, st, level, size)
	default:
		return ErrUnsupportedMapper
	}
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("render: encode dial: %w", err)
	}
	return nil
}

func radialFace(r *dial.Radial, st appearance.State, level, size int) (*gg.Context, error) {
	dc := gg.NewContext(size, size)
	s := float64(size) / radialBox
	dc.Scale(s, s)

	cx, cy, rad := r.Center.X, r.Center.Y, r.Radius
	dc.SetLineWidth(ringWidth)
	dc.SetColor(trackColor)
	dc.DrawCircle(cx, cy, rad)
	dc.Stroke()

	if p := r.Progress(level); p > 0 {
		start := -math.Pi / 2
		dc.SetColor(nrgba(st.Color))
		dc.DrawArc(cx, cy, rad, start, start+p*2*math.Pi)
		dc.Stroke()
	}

	knob := r.Position(level)
	dc.SetColor(outlineColor)
	dc.DrawCircle(knob.X, knob.Y, knobRadius+1.5)
	dc.Fill()
	dc.SetColor(nrgba(st.Color))
	dc.DrawCircle(knob.X, knob.Y, knobRadius)
	dc.Fill()

	if err := drawFeatures(dc, st.Features, cx, cy, rad*0.8/appearance.FaceBox*2); err != nil {
		return nil, err
	}
	return dc, nil
}

func linearFace(l *dial.Linear, st appearance.State, level, size int) (*gg.Context, error) {
	h := int(math.Round(float64(size) * linearHeight / linearWidth))
	dc := gg.NewContext(size, h)
	s := float64(size) / linearWidth
	dc.Scale(s, s)

	dc.SetColor(trackColor)
	dc.DrawRoundedRectangle(0, 0, linearWidth, linearHeight, linearHeight/2)
	dc.Fill()

	thumb := l.Position(level)
	dc.SetColor(nrgba(st.Color))
	dc.DrawCircle(thumb.X, thumb.Y, thumbRadius)
	dc.Fill()

	if err := drawFeatures(dc, st.Features, thumb.X, thumb.Y, 1); err != nil {
		return nil, err
	}
	return dc, nil
}

// drawFeatures fills each feature outline, centring the FaceBox on (cx, cy).
func drawFeatures(dc *gg.Context, feats []appearance.Feature, cx, cy, scale float64) error {
	if len(feats) == 0 {
		return nil
	}
	half := appearance.FaceBox / 2
	dc.SetColor(featureColor)
	for _, f := range feats {
		o, err := appearance.ParsePath(f.Path)
		if err != nil {
			return fmt.Errorf("render: feature %s: %w", f.Name, err)
		}
		if len(o) < 3 {
			continue
		}
		dc.NewSubPath()
		for i, v := range o {
			x := cx + (v.X-half)*scale
			y := cy + (v.Y-half)*scale
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.Fill()
	}
	return nil
}
