package dial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllStrategies(t *testing.T) {
	for _, style := range []Style{StyleRadial, StyleLinear} {
		m := NewMapper(style)
		rng := m.Range()
		for l := rng.Min; l <= rng.Max; l++ {
			assert.Equal(t, l, m.Level(m.Position(l)), "style %s level %d", style, l)
		}
	}
}

func TestRoundTripCustomRanges(t *testing.T) {
	for _, rng := range []Range{{Min: 1, Max: 10}, {Min: 0, Max: 20}, {Min: -5, Max: 5}} {
		rad, err := NewRadial(Point{X: 0, Y: 0}, 10, 0, rng)
		require.NoError(t, err)
		lin, err := NewLinear(10, 100, rng)
		require.NoError(t, err)
		for l := rng.Min; l <= rng.Max; l++ {
			assert.Equal(t, l, rad.Level(rad.Position(l)), "radial %v level %d", rng, l)
			assert.Equal(t, l, lin.Level(lin.Position(l)), "linear %v level %d", rng, l)
		}
	}
}

func TestRadialAngles(t *testing.T) {
	r := DefaultRadial()
	cases := []struct {
		p     Point
		angle float64
		level int
	}{
		{Point{X: 50, Y: 10}, 0, 0},   // up
		{Point{X: 90, Y: 50}, 90, 3},  // right: 90/36 = 2.5 rounds up
		{Point{X: 50, Y: 90}, 180, 5}, // down
		{Point{X: 10, Y: 50}, 270, 8}, // left: 7.5 rounds up
	}
	for _, c := range cases {
		assert.InDelta(t, c.angle, r.Angle(c.p), 1e-9)
		assert.Equal(t, c.level, r.Level(c.p))
	}
}

func TestRadialDeadZoneSnapsToMax(t *testing.T) {
	r := DefaultRadial()
	assert.Equal(t, 10, r.LevelAt(343))
	assert.Equal(t, 10, r.LevelAt(359.9))
	assert.Equal(t, 0, r.LevelAt(0))
	assert.Equal(t, 9, r.LevelAt(330))
	// Just left of up is max, just right of up is min.
	left := Point{X: 50 - 0.5, Y: 10}
	right := Point{X: 50 + 0.5, Y: 10}
	assert.Equal(t, 10, r.Level(left))
	assert.Equal(t, 0, r.Level(right))
}

func TestRadialOutputAlwaysInRange(t *testing.T) {
	r := DefaultRadial()
	for a := -720.0; a <= 720; a += 7.3 {
		rad := a * math.Pi / 180
		p := Point{X: 50 + 500*math.Sin(rad), Y: 50 - 500*math.Cos(rad)}
		l := r.Level(p)
		assert.True(t, r.Range().Contains(l), "angle %v gave %d", a, l)
	}
	assert.Equal(t, 0, r.Level(r.Center), "pivot itself maps to min")
	assert.InDelta(t, 351.0, r.AngleOf(99), 1e-9, "clamped level renders at max")
}

func TestLinearClampsOffTrack(t *testing.T) {
	l := DefaultLinear()
	assert.Equal(t, 0, l.Level(Point{X: -500}))
	assert.Equal(t, 10, l.Level(Point{X: 5000}))
	assert.Equal(t, 5, l.Level(Point{X: 120}))
	assert.Equal(t, 0, l.Level(Point{X: math.NaN()}))
	assert.InDelta(t, 50.0, l.Position(-3).X, 1e-9)
	assert.InDelta(t, 190.0, l.Position(42).X, 1e-9)
}

func TestGeometryValidation(t *testing.T) {
	_, err := NewRadial(Point{}, 0, 0, DefaultRange)
	assert.Error(t, err)
	_, err = NewRadial(Point{}, 10, 300, DefaultRange)
	assert.Error(t, err)
	_, err = NewRadial(Point{}, 10, 0, Range{Min: 3, Max: 3})
	assert.Error(t, err)
	_, err = NewLinear(0, 0, DefaultRange)
	assert.Error(t, err)
}

func TestParseStyle(t *testing.T) {
	assert.Equal(t, StyleLinear, ParseStyle(" Linear "))
	assert.Equal(t, StyleRadial, ParseStyle("knob"))
	assert.IsType(t, &Radial{}, NewMapper(StyleRadial))
	assert.IsType(t, &Linear{}, NewMapper(StyleLinear))
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Min: 1, Max: 10}
	assert.Equal(t, 9, r.Steps())
	assert.Equal(t, 1, r.Clamp(-4))
	assert.Equal(t, 10, r.Clamp(11))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(0))
}
