// Package spline fits pointer samples to clamped B-splines and evaluates
// them back to polylines for painting, bounds and hit testing.
package spline

import (
	"errors"
	"fmt"
	"slices"

	"VectorBoard/internal/geom"
)

var (
	// ErrInsufficientPoints is returned when a stroke has fewer than
	// degree+1 distinct positions.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrNumericalFit is returned when the least-squares system could not be
	// solved or produced non-finite control points.
	ErrNumericalFit = errors.New("numerical fit failure")
	// ErrInvalidSpline marks a spline that violates its structural invariants.
	ErrInvalidSpline = errors.New("invalid spline")
)

// Sample is one pointer sample as delivered by the host toolkit.
type Sample struct {
	Pos      geom.Point
	Pressure float32
}

// Spline is a clamped B-spline together with the parameter value assigned to
// each fitted sample. After fitting only ControlPoints may change.
type Spline struct {
	ControlPoints []geom.Point `json:"control_points"`
	Knots         []float64    `json:"knots"`
	Degree        int          `json:"degree"`
	Parameters    []float64    `json:"parameters"`
}

// Clone returns a deep copy of s.
func (s Spline) Clone() Spline {
	return Spline{
		ControlPoints: geom.ClonePoints(s.ControlPoints),
		Knots:         slices.Clone(s.Knots),
		Degree:        s.Degree,
		Parameters:    slices.Clone(s.Parameters),
	}
}

// Domain returns the parameter interval [0, u_max] the spline is evaluated on.
func (s Spline) Domain() (lo, hi float64) {
	if n := len(s.Parameters); n > 0 {
		return 0, s.Parameters[n-1]
	}
	if len(s.Knots) > 0 {
		return s.Knots[0], s.Knots[len(s.Knots)-1]
	}
	return 0, 0
}

// Validate checks the structural invariants of s.
func (s Spline) Validate() error {
	p, n := s.Degree, len(s.ControlPoints)
	switch {
	case p < 1:
		return fmt.Errorf("%w: degree %d", ErrInvalidSpline, p)
	case n < p+1:
		return fmt.Errorf("%w: %d control points for degree %d", ErrInvalidSpline, n, p)
	case len(s.Knots) != n+p+1:
		return fmt.Errorf("%w: %d knots, want %d", ErrInvalidSpline, len(s.Knots), n+p+1)
	case len(s.Parameters) == 0:
		return fmt.Errorf("%w: no parameters", ErrInvalidSpline)
	}
	for i := 1; i < len(s.Knots); i++ {
		if !(s.Knots[i] >= s.Knots[i-1]) {
			return fmt.Errorf("%w: knots decrease at %d", ErrInvalidSpline, i)
		}
	}
	if !(s.Knots[p] < s.Knots[n]) {
		return fmt.Errorf("%w: empty knot domain", ErrInvalidSpline)
	}
	if s.Parameters[0] != 0 {
		return fmt.Errorf("%w: parameters start at %g", ErrInvalidSpline, s.Parameters[0])
	}
	for i := 1; i < len(s.Parameters); i++ {
		if !(s.Parameters[i] > s.Parameters[i-1]) {
			return fmt.Errorf("%w: parameters not increasing at %d", ErrInvalidSpline, i)
		}
	}
	for i, cp := range s.ControlPoints {
		if !cp.IsFinite() {
			return fmt.Errorf("%w: control point %d not finite", ErrInvalidSpline, i)
		}
	}
	return nil
}

// findSpan returns the knot span index k with knots[k] <= u < knots[k+1],
// clamping u to the valid domain. The last span is closed on the right.
func findSpan(knots []float64, p, n int, u float64) int {
	if u >= knots[n] {
		return n - 1
	}
	if u <= knots[p] {
		return p
	}
	lo, hi := p, n
	mid := (lo + hi) / 2
	for u < knots[mid] || u >= knots[mid+1] {
		if u < knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
		mid = (lo + hi) / 2
	}
	return mid
}

// basis fills out[0..p] with the non-zero basis functions at u for span k.
func basis(knots []float64, p, k int, u float64, out []float64) {
	var leftA, rightA [8]float64
	left, right := leftA[:], rightA[:]
	if p+1 > len(leftA) {
		left, right = make([]float64, p+1), make([]float64, p+1)
	}
	out[0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - knots[k+1-j]
		right[j] = knots[k+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			den := right[r+1] + left[j-r]
			tmp := 0.0
			if den != 0 {
				tmp = out[r] / den
			}
			out[r] = saved + right[r+1]*tmp
			saved = left[j-r] * tmp
		}
		out[j] = saved
	}
}

// pointAt evaluates s at u without validating it.
func (s Spline) pointAt(u float64, buf []float64) geom.Point {
	p, n := s.Degree, len(s.ControlPoints)
	k := findSpan(s.Knots, p, n, u)
	basis(s.Knots, p, k, u, buf)
	var out geom.Point
	for j := 0; j <= p; j++ {
		cp := s.ControlPoints[k-p+j]
		out.X += buf[j] * cp.X
		out.Y += buf[j] * cp.Y
	}
	return out
}

// At evaluates the spline at parameter u.
func (s Spline) At(u float64) (geom.Point, error) {
	if err := s.Validate(); err != nil {
		return geom.Point{}, err
	}
	return s.pointAt(u, make([]float64, s.Degree+1)), nil
}
