package bodymap

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Fallback is returned when no region covers the point.
const Fallback = "Body"

// Classifier maps percentage coordinates on the silhouette to a region name.
type Classifier struct {
	regions []Region
}

// NewClassifier validates the table and returns a classifier over a copy of it.
func NewClassifier(regions []Region) (*Classifier, error) {
	if len(regions) == 0 {
		return nil, errors.New("bodymap: empty region table")
	}
	out := make([]Region, 0, len(regions))
	for i, r := range regions {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("bodymap: region %d has no name", i)
		}
		if r.XMin > r.XMax || r.YMin > r.YMax {
			return nil, fmt.Errorf("bodymap: region %q has inverted bounds", r.Name)
		}
		out = append(out, r)
	}
	return &Classifier{regions: out}, nil
}

var defaultClassifier = &Classifier{regions: canonicalRegions}

// Default returns the classifier over the canonical table.
func Default() *Classifier { return defaultClassifier }

// Classify uses the canonical table.
func Classify(x, y float64) string { return defaultClassifier.Classify(x, y) }

// Classify returns the name of the matching region whose center is nearest to
// (x, y). When two centers are equidistant the earlier table entry wins.
// Coordinates are clamped into [0, 100] first.
func (c *Classifier) Classify(x, y float64) string {
	x, y = ClampPercent(x), ClampPercent(y)
	best := ""
	bestDist := math.Inf(1)
	for _, r := range c.regions {
		if !r.Contains(x, y) {
			continue
		}
		cx, cy := r.Center()
		if d := math.Hypot(x-cx, y-cy); d < bestDist {
			bestDist = d
			best = r.Name
		}
	}
	if best == "" {
		return Fallback
	}
	return best
}

// Regions returns a copy of the classifier's table.
func (c *Classifier) Regions() []Region {
	out := make([]Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// ClampPercent bounds v into [0, 100]. NaN maps to 0.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
