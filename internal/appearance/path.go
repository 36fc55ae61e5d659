package appearance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vec is a 2D point in outline space.
type Vec struct {
	X, Y float64
}

// Outline is a closed polygon. Curves are flattened when parsed.
type Outline []Vec

// curveSegments is how many line segments replace each cubic Bézier.
const curveSegments = 8

// ParsePath reads the subset of SVG path data used by the dial artwork:
// M, L, H, V, C and Z in both absolute and relative forms. Subpaths are
// concatenated into a single outline.
func ParsePath(d string) (Outline, error) {
	toks, err := tokenizePath(d)
	if err != nil {
		return nil, err
	}
	var (
		out        Outline
		cur, start Vec
		cmd        byte
		i          int
	)
	num := func() (float64, error) {
		if i >= len(toks) || toks[i].isCmd {
			return 0, fmt.Errorf("appearance: path %q: missing number after %c", d, cmd)
		}
		v := toks[i].num
		i++
		return v, nil
	}
	pair := func(rel bool) (Vec, error) {
		x, err := num()
		if err != nil {
			return Vec{}, err
		}
		y, err := num()
		if err != nil {
			return Vec{}, err
		}
		if rel {
			return Vec{cur.X + x, cur.Y + y}, nil
		}
		return Vec{x, y}, nil
	}
	for i < len(toks) {
		if toks[i].isCmd {
			cmd = toks[i].cmd
			i++
		} else if cmd == 0 {
			return nil, fmt.Errorf("appearance: path %q: number before command", d)
		}
		rel := cmd >= 'a' && cmd <= 'z'
		switch cmd {
		case 'M', 'm':
			p, err := pair(rel)
			if err != nil {
				return nil, err
			}
			cur, start = p, p
			out = append(out, p)
			// Implicit lineto for extra coordinate pairs.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			p, err := pair(rel)
			if err != nil {
				return nil, err
			}
			cur = p
			out = append(out, p)
		case 'H', 'h':
			x, err := num()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur.X
			}
			cur = Vec{x, cur.Y}
			out = append(out, cur)
		case 'V', 'v':
			y, err := num()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur.Y
			}
			cur = Vec{cur.X, y}
			out = append(out, cur)
		case 'C', 'c':
			p0 := cur
			c1, err := pair(rel)
			if err != nil {
				return nil, err
			}
			c2, err := pair(rel)
			if err != nil {
				return nil, err
			}
			p3, err := pair(rel)
			if err != nil {
				return nil, err
			}
			for s := 1; s <= curveSegments; s++ {
				out = append(out, cubic(p0, c1, c2, p3, float64(s)/curveSegments))
			}
			cur = p3
		case 'Z', 'z':
			cur = start
			// Z takes no arguments; a following number is an error.
			if i < len(toks) && !toks[i].isCmd {
				return nil, fmt.Errorf("appearance: path %q: number after Z", d)
			}
			cmd = 0
		default:
			return nil, fmt.Errorf("appearance: path %q: unsupported command %c", d, cmd)
		}
	}
	return out, nil
}

func cubic(p0, p1, p2, p3 Vec, t float64) Vec {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	e := t * t * t
	return Vec{
		X: a*p0.X + b*p1.X + c*p2.X + e*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + e*p3.Y,
	}
}

type pathToken struct {
	isCmd bool
	cmd   byte
	num   float64
}

func tokenizePath(d string) ([]pathToken, error) {
	var toks []pathToken
	for i := 0; i < len(d); {
		ch := d[i]
		switch {
		case ch == ' ' || ch == ',' || ch == '\n' || ch == '\t' || ch == '\r':
			i++
		case strings.IndexByte("MmLlHhVvCcZz", ch) >= 0:
			toks = append(toks, pathToken{isCmd: true, cmd: ch})
			i++
		case ch == '-' || ch == '+' || ch == '.' || (ch >= '0' && ch <= '9'):
			j := scanNumber(d, i)
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("appearance: path number %q: %w", d[i:j], err)
			}
			toks = append(toks, pathToken{num: v})
			i = j
		default:
			return nil, fmt.Errorf("appearance: unexpected %q in path", ch)
		}
	}
	return toks, nil
}

// scanNumber returns the end of the number starting at i. SVG allows
// "1.5.5" to mean 1.5 then .5, and "3-2" to mean 3 then -2.
func scanNumber(s string, i int) int {
	j := i
	if s[j] == '-' || s[j] == '+' {
		j++
	}
	seenDot, seenExp := false, false
	for j < len(s) {
		c := s[j]
		switch {
		case c >= '0' && c <= '9':
			j++
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			j++
		case (c == 'e' || c == 'E') && !seenExp && j+1 < len(s):
			seenExp = true
			j++
			if s[j] == '-' || s[j] == '+' {
				j++
			}
		default:
			return j
		}
	}
	return j
}

// Path renders the outline back to SVG path data.
func (o Outline) Path() string {
	if len(o) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range o {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString("L")
		}
		b.WriteString(formatCoord(p.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.Y))
	}
	b.WriteString("Z")
	return b.String()
}

func formatCoord(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
