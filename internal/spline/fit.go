package spline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"VectorBoard/internal/geom"
)

// Options tune Fit. The zero value is replaced by DefaultOptions.
type Options struct {
	Degree int
	// SmoothingPerSample bounds the sum of squared residuals at
	// SmoothingPerSample * n for n fitted samples.
	SmoothingPerSample float64
	// MaxSamples caps the number of samples entering the solver. Longer
	// strokes are downsampled evenly first.
	MaxSamples int
}

func DefaultOptions() Options {
	return Options{Degree: 3, SmoothingPerSample: 1, MaxSamples: 256}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Degree <= 0 {
		o.Degree = d.Degree
	}
	if o.SmoothingPerSample < 0 {
		o.SmoothingPerSample = d.SmoothingPerSample
	}
	if o.MaxSamples <= o.Degree {
		o.MaxSamples = d.MaxSamples
	}
	return o
}

// Result carries the fitted spline and fit diagnostics.
type Result struct {
	Spline Spline
	// Residual is the sum of squared distances between each fitted sample and
	// the spline at that sample's parameter.
	Residual float64
	// Bound is the smoothing bound the fit aimed for.
	Bound float64
	// Samples is the number of samples after dedup and downsampling.
	Samples int
}

// Tolerance is the documented bound on the distance from any fitted sample
// to the curve when the fit reached its smoothing bound.
func (r Result) Tolerance() float64 { return math.Sqrt(r.Bound) }

// Dedup drops consecutive samples at identical positions.
func Dedup(samples []Sample) []Sample {
	out := make([]Sample, 0, len(samples))
	for i, s := range samples {
		if i > 0 && s.Pos == out[len(out)-1].Pos {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Downsample keeps max samples evenly spread over samples, always including
// the first and last one.
func Downsample(samples []Sample, max int) []Sample {
	n := len(samples)
	if n <= max || max < 2 {
		return samples
	}
	out := make([]Sample, max)
	for i := range out {
		idx := int(math.Round(float64(i) * float64(n-1) / float64(max-1)))
		out[i] = samples[idx]
	}
	return out
}

// MeanPressure returns the average pressure of samples. Missing pressure
// (zero) counts as full pressure.
func MeanPressure(samples []Sample) float32 {
	if len(samples) == 0 {
		return 1
	}
	var sum float64
	for _, s := range samples {
		p := float64(s.Pressure)
		if p <= 0 {
			p = 1
		}
		sum += p
	}
	return float32(sum / float64(len(samples)))
}

// chordParams returns cumulative chord-length parameters for pts. Callers
// must have removed consecutive duplicates so the result strictly increases.
func chordParams(pts []geom.Point) []float64 {
	u := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		u[i] = u[i-1] + pts[i].Dist(pts[i-1])
	}
	return u
}

// averagedKnots places m-p-1 interior knots so that every knot span holds
// at least one parameter value.
func averagedKnots(u []float64, p, m int) []float64 {
	n := len(u)
	umax := u[n-1]
	knots := make([]float64, m+p+1)
	for i := m; i < len(knots); i++ {
		knots[i] = umax
	}
	interior := m - p - 1
	d := float64(n) / float64(interior+1)
	for j := 1; j <= interior; j++ {
		i := int(float64(j) * d)
		alpha := float64(j)*d - float64(i)
		if i < 1 {
			i = 1
		}
		if i > n-1 {
			i = n - 1
		}
		knots[p+j] = (1-alpha)*u[i-1] + alpha*u[i]
	}
	return knots
}

// solve computes m control points for a least-squares fit of pts at
// parameters u with the end points pinned to the first and last sample.
func solve(pts []geom.Point, u []float64, p, m int) (Spline, error) {
	n := len(pts)
	knots := averagedKnots(u, p, m)
	ctrl := make([]geom.Point, m)
	ctrl[0], ctrl[m-1] = pts[0], pts[n-1]
	s := Spline{ControlPoints: ctrl, Knots: knots, Degree: p, Parameters: u}

	unknowns := m - 2
	if unknowns <= 0 {
		return s, nil
	}

	// Row k of the collocation matrix for samples 1..n-2, columns 1..m-2.
	rows := n - 2
	nm := mat.NewDense(rows, unknowns, nil)
	rx := make([]float64, rows)
	ry := make([]float64, rows)
	buf := make([]float64, p+1)
	for k := 1; k <= rows; k++ {
		span := findSpan(knots, p, m, u[k])
		basis(knots, p, span, u[k], buf)
		qx, qy := pts[k].X, pts[k].Y
		for j := 0; j <= p; j++ {
			col := span - p + j
			switch col {
			case 0:
				qx -= buf[j] * pts[0].X
				qy -= buf[j] * pts[0].Y
			case m - 1:
				qx -= buf[j] * pts[n-1].X
				qy -= buf[j] * pts[n-1].Y
			default:
				nm.Set(k-1, col-1, buf[j])
			}
		}
		rx[k-1], ry[k-1] = qx, qy
	}

	var ntn mat.Dense
	ntn.Mul(nm.T(), nm)
	sym := mat.NewSymDense(unknowns, nil)
	for i := 0; i < unknowns; i++ {
		for j := i; j < unknowns; j++ {
			sym.SetSym(i, j, ntn.At(i, j))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return Spline{}, fmt.Errorf("%w: normal matrix not positive definite (m=%d)", ErrNumericalFit, m)
	}

	var bx, by, x, y mat.VecDense
	bx.MulVec(nm.T(), mat.NewVecDense(rows, rx))
	by.MulVec(nm.T(), mat.NewVecDense(rows, ry))
	if err := chol.SolveVecTo(&x, &bx); err != nil {
		return Spline{}, fmt.Errorf("%w: %v", ErrNumericalFit, err)
	}
	if err := chol.SolveVecTo(&y, &by); err != nil {
		return Spline{}, fmt.Errorf("%w: %v", ErrNumericalFit, err)
	}
	for i := 0; i < unknowns; i++ {
		cp := geom.Pt(x.AtVec(i), y.AtVec(i))
		if !cp.IsFinite() {
			return Spline{}, fmt.Errorf("%w: non-finite control point", ErrNumericalFit)
		}
		ctrl[i+1] = cp
	}
	return s, nil
}

func residual(s Spline, pts []geom.Point) float64 {
	buf := make([]float64, s.Degree+1)
	var sum float64
	for i, q := range pts {
		sum += s.pointAt(s.Parameters[i], buf).DistSq(q)
	}
	return sum
}

// Fit converts raw samples into a smoothing B-spline. The control-point
// count starts at degree+1 and grows until the squared residual drops under
// the smoothing bound or every sample has its own control point.
func Fit(samples []Sample, opts Options) (Result, error) {
	opts = opts.withDefaults()
	p := opts.Degree

	samples = Dedup(samples)
	if len(samples) < p+1 {
		return Result{}, fmt.Errorf("%w: %d unique points, need %d", ErrInsufficientPoints, len(samples), p+1)
	}
	// Downsampling can bring equal positions next to each other again.
	samples = Dedup(Downsample(samples, opts.MaxSamples))
	if len(samples) < p+1 {
		return Result{}, fmt.Errorf("%w: %d unique points after downsampling, need %d", ErrInsufficientPoints, len(samples), p+1)
	}

	pts := make([]geom.Point, len(samples))
	for i, s := range samples {
		if !s.Pos.IsFinite() {
			return Result{}, fmt.Errorf("%w: sample %d not finite", ErrNumericalFit, i)
		}
		pts[i] = s.Pos
	}
	u := chordParams(pts)
	n := len(pts)
	bound := opts.SmoothingPerSample * float64(n)

	var best Result
	found := false
	for m := p + 1; ; {
		s, err := solve(pts, u, p, m)
		if err != nil {
			if found {
				break
			}
			return Result{}, err
		}
		best = Result{Spline: s, Residual: residual(s, pts), Bound: bound, Samples: n}
		found = true
		if best.Residual <= bound || m >= n {
			break
		}
		m = min(n, m+max(1, m/2))
	}
	if err := best.Spline.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNumericalFit, err)
	}
	return best, nil
}
