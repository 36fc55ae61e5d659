package appearance

import "math"

// Interpolator returns the intermediate outline at fraction t in [0, 1].
type Interpolator func(t float64) Outline

// Morpher prepares an interpolation between two outlines. Implementations
// must be deterministic and return the endpoints' geometry at t=0 and t=1.
type Morpher interface {
	Prepare(from, to Outline) Interpolator
}

// ResampleMorpher resamples both outlines to the same number of points by
// arc length, rotates the target so corresponding points line up, and then
// interpolates pointwise.
type ResampleMorpher struct {
	Samples int
}

const defaultSamples = 64

func (m ResampleMorpher) Prepare(from, to Outline) Interpolator {
	n := m.Samples
	if n <= 0 {
		n = defaultSamples
	}
	if len(from) == 0 || len(to) == 0 {
		return func(t float64) Outline {
			if t < 0.5 {
				return append(Outline(nil), from...)
			}
			return append(Outline(nil), to...)
		}
	}
	a := resample(from, n)
	b := align(a, resample(to, n))
	return func(t float64) Outline {
		if t <= 0 {
			return append(Outline(nil), a...)
		}
		if t >= 1 {
			return append(Outline(nil), b...)
		}
		out := make(Outline, n)
		for i := range a {
			out[i] = Vec{
				X: a[i].X + (b[i].X-a[i].X)*t,
				Y: a[i].Y + (b[i].Y-a[i].Y)*t,
			}
		}
		return out
	}
}

// resample walks the closed polygon and emits n points spaced evenly along
// its perimeter, starting at the first vertex.
func resample(o Outline, n int) Outline {
	segs := len(o)
	lengths := make([]float64, segs)
	total := 0.0
	for i := 0; i < segs; i++ {
		p, q := o[i], o[(i+1)%segs]
		lengths[i] = math.Hypot(q.X-p.X, q.Y-p.Y)
		total += lengths[i]
	}
	out := make(Outline, n)
	if total == 0 {
		for i := range out {
			out[i] = o[0]
		}
		return out
	}
	seg, walked := 0, 0.0
	for i := 0; i < n; i++ {
		target := total * float64(i) / float64(n)
		for seg < segs-1 && walked+lengths[seg] < target {
			walked += lengths[seg]
			seg++
		}
		p, q := o[seg], o[(seg+1)%segs]
		f := 0.0
		if lengths[seg] > 0 {
			f = (target - walked) / lengths[seg]
		}
		out[i] = Vec{X: p.X + (q.X-p.X)*f, Y: p.Y + (q.Y-p.Y)*f}
	}
	return out
}

// align rotates b so that the summed squared distance to a is smallest.
// Ties keep the lowest offset.
func align(a, b Outline) Outline {
	n := len(a)
	best, bestCost := 0, math.Inf(1)
	for k := 0; k < n; k++ {
		cost := 0.0
		for i := 0; i < n; i++ {
			q := b[(i+k)%n]
			dx, dy := q.X-a[i].X, q.Y-a[i].Y
			cost += dx*dx + dy*dy
		}
		if cost < bestCost {
			best, bestCost = k, cost
		}
	}
	out := make(Outline, n)
	for i := 0; i < n; i++ {
		out[i] = b[(i+best)%n]
	}
	return out
}
