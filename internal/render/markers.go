package render

import (
	"fmt"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/soaringjerry/PainMap/internal/appearance"
)

// Marker is a point on the silhouette grid, X and Y in percent.
type Marker struct {
	X, Y    float64
	Color   appearance.RGB
	Pending bool
}

// Markers draws a transparent overlay the size of the silhouette image.
// Confirmed markers are solid dots with a white rim; the pending marker is
// a ring so the silhouette stays visible underneath.
func Markers(w io.Writer, markers []Marker, width, height int) error {
	width, height = ClampSize(width), ClampSize(height)
	dc := gg.NewContext(width, height)
	r := math.Max(3, 0.025*math.Min(float64(width), float64(height)))

	for _, m := range markers {
		x := clampPct(m.X) / 100 * float64(width)
		y := clampPct(m.Y) / 100 * float64(height)
		if m.Pending {
			dc.SetLineWidth(r / 2)
			dc.SetColor(nrgba(m.Color))
			dc.DrawCircle(x, y, r*1.4)
			dc.Stroke()
			continue
		}
		dc.SetColor(outlineColor)
		dc.DrawCircle(x, y, r+1.5)
		dc.Fill()
		dc.SetColor(nrgba(m.Color))
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("render: encode markers: %w", err)
	}
	return nil
}

func clampPct(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
