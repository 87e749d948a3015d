package export

import (
	"image/color"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/state"
)

// dashPattern returns alternating on/off lengths for style at the given
// stroke width, or nil for a solid line.
func dashPattern(style state.LineStyle, width float64) []float64 {
	width = max(width, 1)
	switch style {
	case state.StyleDashed:
		return []float64{4 * width, 2 * width}
	case state.StyleDotted:
		return []float64{width, 2 * width}
	}
	return nil
}

// dashes cuts poly into the "on" runs of pattern.
func dashes(poly []geom.Point, pattern []float64) [][]geom.Point {
	if len(pattern) == 0 || len(poly) < 2 {
		return [][]geom.Point{poly}
	}
	var out [][]geom.Point
	idx, left, on := 0, pattern[0], true
	cur := []geom.Point{poly[0]}
	for i := 1; i < len(poly); i++ {
		a, b := poly[i-1], poly[i]
		seg := a.Dist(b)
		pos := 0.0
		for seg-pos > left {
			pos += left
			p := a.Lerp(b, pos/seg)
			if on {
				out = append(out, append(cur, p))
				cur = nil
			} else {
				cur = []geom.Point{p}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = pattern[idx]
		}
		left -= seg - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func toRGBA(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}
