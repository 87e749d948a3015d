package board

import (
	"math"

	"VectorBoard/internal/eraser"
	"VectorBoard/internal/geom"
	"VectorBoard/internal/state"
	"VectorBoard/internal/transform"
	"VectorBoard/internal/undo"
)

type band struct {
	start, end geom.Point
	add        bool
}

func (b *band) rect() geom.Rect { return geom.RectFromCorners(b.start, b.end) }

// RubberBand returns the selection rectangle being dragged out, if any.
func (s *Session) RubberBand() (geom.Rect, bool) {
	if s.band == nil {
		return geom.Rect{}, false
	}
	return s.band.rect(), true
}

type shapeDraft struct {
	kind       state.ShapeKind
	start, end geom.Point
	square     bool
}

// corner is the end point after the square constraint.
func (d *shapeDraft) corner() geom.Point {
	if !d.square {
		return d.end
	}
	dx, dy := d.end.X-d.start.X, d.end.Y-d.start.Y
	side := math.Max(math.Abs(dx), math.Abs(dy))
	return geom.Pt(d.start.X+math.Copysign(side, dx), d.start.Y+math.Copysign(side, dy))
}

func (d *shapeDraft) shape(st Style) *state.Shape {
	sh := &state.Shape{Shape: d.kind, Color: st.Color, Width: st.Width, Style: st.LineStyle, Fill: st.Fill}
	end := d.corner()
	if d.kind.RectBased() {
		sh.Rect = geom.RectFromCorners(d.start, end)
	} else {
		sh.Points = []geom.Point{d.start, end}
	}
	return sh
}

func (d *shapeDraft) degenerate() bool {
	end := d.corner()
	if d.kind.RectBased() {
		return d.start.X == end.X || d.start.Y == end.Y
	}
	return d.start == end
}

type eraseGesture struct {
	last geom.Point
	cmds []undo.Command
}

var shapeTools = map[Tool]state.ShapeKind{
	ToolLine:      state.ShapeLine,
	ToolRectangle: state.ShapeRectangle,
	ToolCircle:    state.ShapeCircle,
}

// PointerDown starts a gesture with the active tool at world position p.
func (s *Session) PointerDown(p geom.Point, pressure float32, mods Modifiers) {
	if !p.IsFinite() {
		return
	}
	switch s.tool {
	case ToolPen, ToolCurve:
		if !mods.RightButton {
			s.BeginStroke(p, pressure, s.tool == ToolCurve)
		}
	case ToolEraser:
		s.erasing = &eraseGesture{last: p}
		s.eraseTo(p)
	case ToolSelect:
		s.selectDown(p, mods)
	case ToolEditableLine:
		if mods.RightButton {
			if _, err := s.FinishEditableLine(); err != nil {
				s.log.Debug("editable line dropped", "err", err)
			}
			return
		}
		s.editLine = append(s.editLine, p)
		s.notify()
	default:
		if k, ok := shapeTools[s.tool]; ok && !mods.RightButton {
			s.draft = &shapeDraft{kind: k, start: p, end: p, square: mods.Shift}
			s.notify()
		}
	}
}

// PointerMove continues the current gesture.
func (s *Session) PointerMove(p geom.Point, pressure float32, mods Modifiers) {
	if !p.IsFinite() {
		return
	}
	switch {
	case s.stroke != nil:
		_ = s.ExtendStroke(p, pressure)
	case s.erasing != nil:
		s.eraseTo(p)
	case s.drag != nil:
		s.drag.aspect = mods.Shift
		_ = s.UpdateDrag(p)
	case s.band != nil:
		s.band.end = p
		s.notify()
	case s.draft != nil:
		s.draft.end, s.draft.square = p, mods.Shift
		s.notify()
	}
}

// PointerUp ends the current gesture, committing its result.
func (s *Session) PointerUp(p geom.Point, pressure float32, mods Modifiers) {
	finite := p.IsFinite()
	switch {
	case s.stroke != nil:
		if finite {
			_ = s.ExtendStroke(p, pressure)
		}
		_, _ = s.EndStroke()
	case s.erasing != nil:
		if finite {
			s.eraseTo(p)
		}
		s.finishErase()
	case s.drag != nil:
		if finite {
			s.drag.aspect = mods.Shift
			_ = s.UpdateDrag(p)
		}
		if _, err := s.EndDrag(); err != nil {
			s.log.Warn("drag not recorded", "err", err)
		}
	case s.band != nil:
		if finite {
			s.band.end = p
		}
		b := s.band
		s.band = nil
		if !b.add {
			s.sel.Clear()
		}
		for _, id := range s.scene.Within(b.rect()) {
			s.sel.Add(id)
		}
		s.notify()
	case s.draft != nil:
		d := s.draft
		s.draft = nil
		if finite {
			d.end, d.square = p, mods.Shift
		}
		if !d.degenerate() {
			if _, err := s.add(d.shape(s.style)); err != nil {
				s.log.Warn("shape not added", "err", err)
			}
		}
		s.notify()
	}
}

func (s *Session) selectDown(p geom.Point, mods Modifiers) {
	if mods.RightButton {
		s.CancelDrag()
		return
	}
	if s.sel.Len() > 0 && !mods.Ctrl {
		if cp, ok := s.pickControlPoint(p, s.sel.Has); ok {
			s.beginDrag(PointTarget(cp), p, mods)
			return
		}
		if hs, err := s.HandlesFor(s.sel.ids); err == nil {
			if h := transform.HandleAt(hs, p, s.worldTol(s.cfg.Edit.HandleRadiusPx)); h != transform.HandleNone {
				s.beginDrag(HandleTarget(h), p, mods)
				return
			}
		}
	}
	if !mods.Ctrl {
		if _, id, ok := s.HitTest(p); ok {
			if mods.Shift {
				s.sel.Toggle(id)
				s.notify()
				return
			}
			if !s.sel.Has(id) {
				s.sel.Set(id)
			}
			s.beginDrag(BodyTarget(), p, mods)
			return
		}
	}
	if !mods.Shift && !mods.Ctrl {
		s.sel.Clear()
	}
	s.band = &band{start: p, end: p, add: mods.Shift || mods.Ctrl}
	s.notify()
}

func (s *Session) beginDrag(t Target, p geom.Point, mods Modifiers) {
	if err := s.BeginDrag(t, p, mods); err != nil {
		s.log.Debug("drag not started", "err", err)
	}
	s.notify()
}

func (s *Session) eraseRadius() float64 { return s.worldTol(s.cfg.Edit.EraserRadius) }

// eraseTo erases along the segment from the previous eraser position to p
// and applies the result at once. The gesture is recorded as one command
// by finishErase.
func (s *Session) eraseTo(p geom.Point) {
	g := s.erasing
	cs := eraser.Plan(s.scene, []geom.Point{g.last, p}, s.eraseRadius())
	g.last = p
	if cs.Len() == 0 {
		return
	}
	cmd := undo.NewErase(cs)
	if err := cmd.Execute(s.scene); err != nil {
		s.log.Warn("erase incomplete", "err", err)
	}
	g.cmds = append(g.cmds, cmd)
	s.sel.prune(s.scene)
	s.notify()
}

func (s *Session) finishErase() {
	g := s.erasing
	s.erasing = nil
	if len(g.cmds) > 0 {
		s.history.Commit(undo.NewGroup("erase", g.cmds...))
	}
	s.notify()
}

func (s *Session) editableShape(pts []geom.Point) *state.Shape {
	return &state.Shape{
		Shape:  state.ShapeEditableLine,
		Color:  s.style.Color,
		Width:  s.style.Width,
		Style:  s.style.LineStyle,
		Points: geom.ClonePoints(pts),
	}
}

// FinishEditableLine commits the editable line placed so far. It needs at
// least two points.
func (s *Session) FinishEditableLine() (state.ID, error) {
	pts := s.editLine
	s.editLine = nil
	defer s.notify()
	if len(pts) < 2 {
		return state.ID{}, ErrNoStroke
	}
	return s.add(s.editableShape(pts))
}
