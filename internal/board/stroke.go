package board

import (
	"errors"
	"fmt"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/spline"
	"VectorBoard/internal/state"
	"VectorBoard/internal/undo"
)

// ErrNoStroke is returned by stroke calls made without BeginStroke.
var ErrNoStroke = errors.New("no stroke in progress")

type stroke struct {
	fit     bool
	samples []spline.Sample
}

// BeginStroke starts collecting samples. With fit set the stroke becomes a
// fitted curve on EndStroke, otherwise a free line.
func (s *Session) BeginStroke(p geom.Point, pressure float32, fit bool) {
	s.stroke = &stroke{fit: fit, samples: []spline.Sample{{Pos: p, Pressure: pressure}}}
	s.notify()
}

func (s *Session) ExtendStroke(p geom.Point, pressure float32) error {
	if s.stroke == nil {
		return ErrNoStroke
	}
	s.stroke.samples = append(s.stroke.samples, spline.Sample{Pos: p, Pressure: pressure})
	s.notify()
	return nil
}

// EndStroke turns the collected samples into an item and records its
// insertion. A stroke too short to keep is dropped: the returned error
// wraps spline.ErrInsufficientPoints (or spline.ErrNumericalFit when the
// solver failed) and the scene is unchanged.
func (s *Session) EndStroke() (state.ID, error) {
	st := s.stroke
	s.stroke = nil
	if st == nil {
		return state.ID{}, ErrNoStroke
	}
	defer s.notify()

	var it state.Item
	if st.fit {
		res, err := spline.Fit(st.samples, s.fitOptions())
		if err != nil {
			if errors.Is(err, spline.ErrInsufficientPoints) {
				s.log.Debug("stroke dropped", "samples", len(st.samples), "err", err)
			} else {
				s.log.Warn("curve fit failed", "samples", len(st.samples), "err", err)
			}
			return state.ID{}, err
		}
		s.log.Debug("curve fitted", "samples", res.Samples, "control_points", len(res.Spline.ControlPoints),
			"residual", res.Residual, "bound", res.Bound)
		it = &state.Curve{
			Spline:    res.Spline,
			Color:     s.style.Color,
			Thickness: s.style.Width * spline.MeanPressure(st.samples),
		}
	} else {
		samples := spline.Dedup(st.samples)
		if len(samples) < 2 {
			return state.ID{}, fmt.Errorf("%w: %d unique points, need 2", spline.ErrInsufficientPoints, len(samples))
		}
		pts := make([]geom.Point, len(samples))
		for i, sm := range samples {
			pts[i] = sm.Pos
		}
		it = &state.Line{Points: pts, Color: s.style.Color, Width: s.style.Width}
	}
	return s.add(it)
}

func (s *Session) add(it state.Item) (state.ID, error) {
	cmd := undo.NewAdd(it)
	if err := s.history.Do(cmd); err != nil {
		return state.ID{}, err
	}
	return cmd.IDs()[0], nil
}

// Drafts returns the unfinished items being drawn, for painting on top of
// the scene.
func (s *Session) Drafts() []state.Item {
	var out []state.Item
	if s.stroke != nil && len(s.stroke.samples) > 0 {
		pts := make([]geom.Point, len(s.stroke.samples))
		for i, sm := range s.stroke.samples {
			pts[i] = sm.Pos
		}
		out = append(out, &state.Line{Points: pts, Color: s.style.Color, Width: s.style.Width})
	}
	if s.draft != nil {
		out = append(out, s.draft.shape(s.style))
	}
	if len(s.editLine) > 0 {
		out = append(out, s.editableShape(s.editLine))
	}
	return out
}
