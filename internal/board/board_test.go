package board

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VectorBoard/internal/config"
	"VectorBoard/internal/geom"
	"VectorBoard/internal/spline"
	"VectorBoard/internal/state"
	"VectorBoard/internal/transform"
	"VectorBoard/internal/undo"
)

var none Modifiers

func newSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(config.Default())
}

// drawStroke feeds pts to the active stroke tool.
func drawStroke(s *Session, pts ...geom.Point) {
	s.PointerDown(pts[0], 1, none)
	for _, p := range pts[1:] {
		s.PointerMove(p, 1, none)
	}
	s.PointerUp(pts[len(pts)-1], 1, none)
}

// penLine draws a free line through the stroke API, whatever the tool.
func penLine(t *testing.T, s *Session, pts ...geom.Point) state.ID {
	t.Helper()
	s.BeginStroke(pts[0], 1, false)
	for _, p := range pts[1:] {
		require.NoError(t, s.ExtendStroke(p, 1))
	}
	id, err := s.EndStroke()
	require.NoError(t, err)
	return id
}

func gesture(s *Session, from, to geom.Point, mods Modifiers) {
	s.PointerDown(from, 1, mods)
	s.PointerMove(to, 1, mods)
	s.PointerUp(to, 1, mods)
}

func onlyID(t *testing.T, s *Session, k state.Kind) state.ID {
	t.Helper()
	ids := s.Scene().IDs(k)
	require.Len(t, ids, 1)
	return ids[0]
}

func get[T state.Item](t *testing.T, s *Session, id state.ID) T {
	t.Helper()
	it, err := s.Scene().Get(id)
	require.NoError(t, err)
	v, ok := it.(T)
	require.True(t, ok, "item %s is %T", id, it)
	return v
}

func TestSessionAppliesCurveResolution(t *testing.T) {
	t.Cleanup(func() { state.SetCurveResolution(config.Default().Fit.Resolution) })
	cfg := config.Default()
	cfg.Fit.Resolution = 12
	s := NewSession(cfg)
	assert.Equal(t, 12, state.CurveResolution())

	id := twelvePointCurve(t, s)
	assert.Len(t, state.Outline(get[*state.Curve](t, s, id)), 12)
}

func twelvePointCurve(t *testing.T, s *Session) state.ID {
	t.Helper()
	s.SetTool(ToolCurve)
	pts := make([]geom.Point, 12)
	for i := range pts {
		pts[i] = geom.Pt(float64(i*10), 50)
	}
	drawStroke(s, pts...)
	return onlyID(t, s, state.KindCurve)
}

func TestTwelvePointStrokeAndControlPointDrag(t *testing.T) {
	s := newSession(t)
	id := twelvePointCurve(t, s)
	before := get[*state.Curve](t, s, id).Clone().(*state.Curve)
	require.Less(t, len(before.Spline.ControlPoints), 12)
	require.NoError(t, before.Spline.Validate())

	s.SetTool(ToolSelect)
	s.Select(id)
	cp := before.Spline.ControlPoints[2]
	target := cp.Add(geom.Pt(10, 5))
	s.PointerDown(cp, 1, none)
	require.True(t, s.Dragging())
	s.PointerMove(cp.Add(geom.Pt(4, 2)), 1, none)
	s.PointerMove(target, 1, none)
	s.PointerUp(target, 1, none)

	assert.Equal(t, []string{"add", undo.NameEditPoint}, s.History().Names())
	after := get[*state.Curve](t, s, id)
	for i, p := range after.Spline.ControlPoints {
		if i == 2 {
			assert.InDelta(t, cp.X+10, p.X, 1e-9)
			assert.InDelta(t, cp.Y+5, p.Y, 1e-9)
			continue
		}
		assert.Equal(t, before.Spline.ControlPoints[i], p)
	}
	// Knots, degree and parameters stay frozen.
	assert.Equal(t, before.Spline.Knots, after.Spline.Knots)
	assert.Equal(t, before.Spline.Degree, after.Spline.Degree)
	assert.Equal(t, before.Spline.Parameters, after.Spline.Parameters)

	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, before.Spline.ControlPoints, get[*state.Curve](t, s, id).Spline.ControlPoints)
}

func TestControlPointDragCommandDiffersOnlyAtPoint(t *testing.T) {
	s := newSession(t)
	id := twelvePointCurve(t, s)
	cp, ok := s.PickControlPoint(get[*state.Curve](t, s, id).Spline.ControlPoints[2].Add(geom.Pt(1, 1)))
	require.True(t, ok)
	require.Equal(t, 2, cp.Index)

	require.NoError(t, s.BeginDrag(PointTarget(cp), cp.Pos, none))
	require.NoError(t, s.UpdateDrag(cp.Pos.Add(geom.Pt(10, 5))))
	cmd, err := s.EndDrag()
	require.NoError(t, err)
	require.NotNil(t, cmd)

	orig := cmd.Original(0).(*state.Curve)
	final := cmd.Final(0).(*state.Curve)
	assert.Equal(t, orig.Color, final.Color)
	assert.Equal(t, orig.Thickness, final.Thickness)
	assert.Equal(t, orig.Spline.Knots, final.Spline.Knots)
	diff := 0
	for i := range orig.Spline.ControlPoints {
		if orig.Spline.ControlPoints[i] != final.Spline.ControlPoints[i] {
			diff++
			assert.Equal(t, 2, i)
		}
	}
	assert.Equal(t, 1, diff)
	assert.Len(t, s.History().Names(), 2)
}

func TestDragWithoutMotionRecordsNothing(t *testing.T) {
	s := newSession(t)
	id := twelvePointCurve(t, s)
	cp := get[*state.Curve](t, s, id).Spline.ControlPoints[1]
	require.NoError(t, s.BeginDrag(PointTarget(ControlPoint{Curve: id, Index: 1}), cp, none))
	require.NoError(t, s.UpdateDrag(cp.Add(geom.Pt(3, 3))))
	require.NoError(t, s.UpdateDrag(cp))
	cmd, err := s.EndDrag()
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"add"}, s.History().Names())
	assert.Equal(t, cp, get[*state.Curve](t, s, id).Spline.ControlPoints[1])
}

func TestLastCurveWinsControlPointTie(t *testing.T) {
	s := newSession(t)
	first := twelvePointCurve(t, s)
	cp := get[*state.Curve](t, s, first).Spline.ControlPoints[0]
	second, err := s.add(get[*state.Curve](t, s, first))
	require.NoError(t, err)

	got, ok := s.PickControlPoint(cp)
	require.True(t, ok)
	assert.Equal(t, second, got.Curve)
	assert.Equal(t, 0, got.Index)
}

func TestShortStrokeIsDropped(t *testing.T) {
	s := newSession(t)
	s.SetTool(ToolCurve)
	drawStroke(s, geom.Pt(0, 0), geom.Pt(1, 1))
	assert.Zero(t, s.Scene().Count())
	assert.False(t, s.History().CanUndo())

	s.BeginStroke(geom.Pt(5, 5), 1, false)
	_, err := s.EndStroke()
	assert.ErrorIs(t, err, spline.ErrInsufficientPoints)
	_, err = s.EndStroke()
	assert.ErrorIs(t, err, ErrNoStroke)
}

func TestPenStrokeMakesLine(t *testing.T) {
	s := newSession(t)
	drawStroke(s, geom.Pt(0, 0), geom.Pt(5, 0), geom.Pt(10, 0))
	l := get[*state.Line](t, s, onlyID(t, s, state.KindLine))
	assert.Equal(t, []geom.Point{geom.Pt(0, 0), geom.Pt(5, 0), geom.Pt(10, 0)}, l.Points)
	assert.Equal(t, color.RGBA{A: 255}, l.Color)
	assert.Equal(t, float32(3), l.Width)
	assert.Empty(t, s.Drafts())
}

func TestCurveThicknessFollowsPressure(t *testing.T) {
	s := newSession(t)
	s.SetTool(ToolCurve)
	s.PointerDown(geom.Pt(0, 0), 0.5, none)
	for i := 1; i < 8; i++ {
		s.PointerMove(geom.Pt(float64(i*10), float64(i%2)), 0.5, none)
	}
	require.Len(t, s.Drafts(), 1)
	s.PointerUp(geom.Pt(70, 1), 0.5, none)
	c := get[*state.Curve](t, s, onlyID(t, s, state.KindCurve))
	assert.InDelta(t, 1.5, c.Thickness, 1e-6)
}

func rectSession(t *testing.T) (*Session, state.ID) {
	t.Helper()
	s := newSession(t)
	s.SetTool(ToolSelect)
	id, err := s.AddShape(&state.Shape{Shape: state.ShapeRectangle, Rect: geom.R(0, 0, 100, 50)})
	require.NoError(t, err)
	return s, id
}

func TestMoveBySelectDrag(t *testing.T) {
	s, id := rectSession(t)
	gesture(s, geom.Pt(50, 25), geom.Pt(60, 35), none)
	assert.Equal(t, []state.ID{id}, s.Selection())
	assert.Equal(t, geom.R(10, 10, 100, 50), get[*state.Shape](t, s, id).Rect)
	assert.Equal(t, []string{"add", undo.NameMove}, s.History().Names())

	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, geom.R(0, 0, 100, 50), get[*state.Shape](t, s, id).Rect)
	_, err = s.Redo()
	require.NoError(t, err)
	assert.Equal(t, geom.R(10, 10, 100, 50), get[*state.Shape](t, s, id).Rect)
}

func TestResizeByHandle(t *testing.T) {
	s, id := rectSession(t)
	s.Select(id)
	gesture(s, geom.Pt(100, 50), geom.Pt(200, 100), none)
	assert.Equal(t, geom.R(0, 0, 200, 100), get[*state.Shape](t, s, id).Rect)
	assert.Equal(t, undo.NameResize, s.History().Names()[1])

	_, err := s.Undo()
	require.NoError(t, err)
	gesture(s, geom.Pt(100, 50), geom.Pt(200, 100), Modifiers{Shift: true})
	r := get[*state.Shape](t, s, id).Rect
	assert.InDelta(t, 2.0, r.W/r.H, 1e-9)
	assert.Equal(t, geom.Pt(0, 0), r.Min(), "opposite corner stays put")
	assert.Equal(t, geom.R(0, 0, 200, 100), r)
}

func TestResizeMultiSelection(t *testing.T) {
	s, id := rectSession(t)
	lid, err := s.AddShape(&state.Shape{Shape: state.ShapeLine, Points: []geom.Point{geom.Pt(0, 100), geom.Pt(100, 100)}})
	require.NoError(t, err)
	s.Select(id, lid)
	box, err := s.BBoxOf(s.Selection())
	require.NoError(t, err)
	require.Equal(t, geom.R(0, 0, 100, 100), box)

	gesture(s, geom.Pt(100, 50), geom.Pt(200, 50), none)
	assert.Equal(t, geom.R(0, 0, 200, 50), get[*state.Shape](t, s, id).Rect)
	assert.Equal(t, []geom.Point{geom.Pt(0, 100), geom.Pt(200, 100)}, get[*state.Shape](t, s, lid).Points)
}

func TestRotateByHandle(t *testing.T) {
	s, id := rectSession(t)
	s.Select(id)
	hs, err := s.HandlesFor(s.Selection())
	require.NoError(t, err)
	require.Equal(t, geom.Pt(50, 80), hs[transform.Rotate])

	gesture(s, geom.Pt(50, 80), geom.Pt(-5, 25), none)
	sh := get[*state.Shape](t, s, id)
	assert.InDelta(t, 90, sh.Angle, 1e-9)
	assert.Equal(t, geom.Pt(50, 25), sh.Rect.Center())
	assert.Equal(t, undo.NameRotate, s.History().Names()[1])

	// Handles now follow the rotated frame.
	hs, err = s.HandlesFor(s.Selection())
	require.NoError(t, err)
	assert.InDelta(t, 25, hs[transform.BottomMiddle].X, 1e-9)
}

func TestCancelDragRestores(t *testing.T) {
	s, id := rectSession(t)
	s.PointerDown(geom.Pt(50, 25), 1, none)
	s.PointerMove(geom.Pt(80, 80), 1, none)
	assert.NotEqual(t, geom.R(0, 0, 100, 50), get[*state.Shape](t, s, id).Rect)
	s.PointerDown(geom.Pt(80, 80), 1, Modifiers{RightButton: true})
	assert.False(t, s.Dragging())
	assert.Equal(t, geom.R(0, 0, 100, 50), get[*state.Shape](t, s, id).Rect)
	assert.Equal(t, []string{"add"}, s.History().Names())
}

func TestDegenerateResizeKeepsGeometry(t *testing.T) {
	s := newSession(t)
	s.SetTool(ToolSelect)
	id, err := s.AddShape(&state.Shape{Shape: state.ShapeLine, Points: []geom.Point{geom.Pt(0, 10), geom.Pt(100, 10)}})
	require.NoError(t, err)
	s.Select(id)
	require.NoError(t, s.BeginDrag(HandleTarget(transform.BottomMiddle), geom.Pt(50, 10), none))
	assert.ErrorIs(t, s.UpdateDrag(geom.Pt(50, 60)), transform.ErrInvalidGeometry)
	cmd, err := s.EndDrag()
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Equal(t, []geom.Point{geom.Pt(0, 10), geom.Pt(100, 10)}, get[*state.Shape](t, s, id).Points)
}

func TestHitTestPrefersTopmost(t *testing.T) {
	s := newSession(t)
	img, err := s.AddImage("bg.png", image.NewRGBA(image.Rect(0, 0, 200, 100)), geom.Rect{})
	require.NoError(t, err)
	drawStroke(s, geom.Pt(0, 50), geom.Pt(200, 50))
	line := onlyID(t, s, state.KindLine)

	ref, id, ok := s.HitTest(geom.Pt(100, 53))
	require.True(t, ok)
	assert.Equal(t, line, id)
	assert.Equal(t, state.Ref{Kind: state.KindLine, Index: 0}, ref)

	_, id, ok = s.HitTest(geom.Pt(100, 90))
	require.True(t, ok)
	assert.Equal(t, img, id)

	_, _, ok = s.HitTest(geom.Pt(500, 500))
	assert.False(t, ok)

	// The pick tolerance is in screen pixels.
	_, _, ok = s.HitTest(geom.Pt(300, 50))
	assert.False(t, ok)
	s.SetZoom(0.1)
	_, _, ok = s.HitTest(geom.Pt(260, 50))
	assert.True(t, ok)
}

func TestHitTestCircle(t *testing.T) {
	s := newSession(t)
	id, err := s.AddShape(&state.Shape{Shape: state.ShapeCircle, Rect: geom.R(0, 0, 100, 100)})
	require.NoError(t, err)
	_, got, ok := s.HitTest(geom.Pt(50, 50))
	require.True(t, ok)
	assert.Equal(t, id, got)
	// The box corner lies outside the ellipse.
	_, _, ok = s.HitTest(geom.Pt(1, 1))
	assert.False(t, ok)
}

func TestEraserTool(t *testing.T) {
	s := newSession(t)
	pts := make([]geom.Point, 11)
	for i := range pts {
		pts[i] = geom.Pt(float64(i*10), 0)
	}
	drawStroke(s, pts...)
	id := onlyID(t, s, state.KindLine)

	s.SetTool(ToolEraser)
	s.PointerDown(geom.Pt(50, -20), 1, none)
	s.PointerMove(geom.Pt(50, 20), 1, none)
	s.PointerUp(geom.Pt(50, 20), 1, none)

	assert.Len(t, get[*state.Line](t, s, id).Points, 8)
	assert.Equal(t, []string{"add", "erase"}, s.History().Names())
	_, err := s.Undo()
	require.NoError(t, err)
	assert.Len(t, get[*state.Line](t, s, id).Points, 11)
}

func TestEraseAlong(t *testing.T) {
	s := newSession(t)
	drawStroke(s, geom.Pt(0, 0), geom.Pt(10, 0))
	n, err := s.EraseAlong([]geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, s.Scene().Count())

	n, err = s.EraseAlong([]geom.Point{geom.Pt(0, 0)}, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestShapeTools(t *testing.T) {
	s := newSession(t)
	s.SetTool(ToolRectangle)
	gesture(s, geom.Pt(10, 10), geom.Pt(60, 40), none)
	gesture(s, geom.Pt(0, 0), geom.Pt(30, -10), Modifiers{Shift: true})
	gesture(s, geom.Pt(5, 5), geom.Pt(5, 5), none) // a click draws nothing
	gesture(s, geom.Pt(100, 0), geom.Pt(100, 40), Modifiers{Shift: true})

	ids := s.Scene().IDs(state.KindShape)
	require.Len(t, ids, 3)
	assert.Equal(t, geom.R(10, 10, 50, 30), get[*state.Shape](t, s, ids[0]).Rect)
	assert.Equal(t, geom.R(0, -30, 30, 30), get[*state.Shape](t, s, ids[1]).Rect)
	assert.Equal(t, geom.R(100, 0, 40, 40), get[*state.Shape](t, s, ids[2]).Rect, "straight drag squares up")

	s.SetTool(ToolLine)
	gesture(s, geom.Pt(1, 2), geom.Pt(3, 4), none)
	ids = s.Scene().IDs(state.KindShape)
	l := get[*state.Shape](t, s, ids[3])
	assert.Equal(t, state.ShapeLine, l.Shape)
	assert.Equal(t, []geom.Point{geom.Pt(1, 2), geom.Pt(3, 4)}, l.Points)

	s.SetTool(ToolCircle)
	s.PointerDown(geom.Pt(0, 0), 1, none)
	s.PointerMove(geom.Pt(20, 20), 1, none)
	assert.Len(t, s.Drafts(), 1)
	s.PointerUp(geom.Pt(20, 20), 1, none)
	assert.Equal(t, state.ShapeCircle, get[*state.Shape](t, s, s.Scene().IDs(state.KindShape)[4]).Shape)
}

func TestEditableLineTool(t *testing.T) {
	s := newSession(t)
	s.SetTool(ToolEditableLine)
	for _, p := range []geom.Point{geom.Pt(0, 0), geom.Pt(10, 20), geom.Pt(30, 20), geom.Pt(40, 0)} {
		s.PointerDown(p, 1, none)
		s.PointerUp(p, 1, none)
	}
	require.Len(t, s.Drafts(), 1)
	s.PointerDown(geom.Pt(40, 0), 1, Modifiers{RightButton: true})
	sh := get[*state.Shape](t, s, onlyID(t, s, state.KindShape))
	assert.Equal(t, state.ShapeEditableLine, sh.Shape)
	assert.Len(t, sh.Points, 4)
	assert.Empty(t, s.Drafts())

	// The curve passes near its middle, not just the control polygon.
	_, _, ok := s.HitTest(geom.Pt(20, 15))
	assert.True(t, ok)
}

func TestRubberBand(t *testing.T) {
	s := newSession(t)
	drawStroke(s, geom.Pt(0, 0), geom.Pt(10, 10))
	_, err := s.AddShape(&state.Shape{Shape: state.ShapeRectangle, Rect: geom.R(20, 20, 10, 10)})
	require.NoError(t, err)
	_, err = s.AddShape(&state.Shape{Shape: state.ShapeRectangle, Rect: geom.R(400, 400, 10, 10)})
	require.NoError(t, err)

	s.SetTool(ToolSelect)
	s.PointerDown(geom.Pt(-50, -50), 1, none)
	s.PointerMove(geom.Pt(100, 100), 1, none)
	r, ok := s.RubberBand()
	require.True(t, ok)
	assert.Equal(t, geom.R(-50, -50, 150, 150), r)
	s.PointerUp(geom.Pt(100, 100), 1, none)
	assert.Len(t, s.Selection(), 2)
	_, ok = s.RubberBand()
	assert.False(t, ok)
}

func TestShiftClickToggles(t *testing.T) {
	s, id := rectSession(t)
	other, err := s.AddShape(&state.Shape{Shape: state.ShapeRectangle, Rect: geom.R(200, 0, 10, 10)})
	require.NoError(t, err)
	s.PointerDown(geom.Pt(50, 25), 1, none)
	s.PointerUp(geom.Pt(50, 25), 1, none)
	s.PointerDown(geom.Pt(205, 5), 1, Modifiers{Shift: true})
	s.PointerUp(geom.Pt(205, 5), 1, Modifiers{Shift: true})
	assert.Equal(t, []state.ID{id, other}, s.Selection())
	s.PointerDown(geom.Pt(50, 25), 1, Modifiers{Shift: true})
	assert.Equal(t, []state.ID{other}, s.Selection())
}

func TestDeleteAndClearUndo(t *testing.T) {
	s, id := rectSession(t)
	penLine(t, s, geom.Pt(0, 0), geom.Pt(10, 10))
	assert.ErrorIs(t, s.DeleteSelection(), ErrNothingSelected)

	s.Select(id)
	require.NoError(t, s.DeleteSelection())
	assert.Zero(t, s.Scene().Len(state.KindShape))
	assert.Empty(t, s.Selection())
	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, []state.ID{id}, s.Scene().IDs(state.KindShape))

	require.NoError(t, s.ClearAll())
	assert.Zero(t, s.Scene().Count())
	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Scene().Count())
}

func TestZOrder(t *testing.T) {
	s := newSession(t)
	var ids []state.ID
	for i := 0; i < 4; i++ {
		id, err := s.AddShape(&state.Shape{Shape: state.ShapeRectangle, Rect: geom.R(float64(i), 0, 10, 10)})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	s.Select(ids[2], ids[0])
	require.NoError(t, s.BringToFront())
	assert.Equal(t, []state.ID{ids[1], ids[3], ids[0], ids[2]}, s.Scene().IDs(state.KindShape))

	require.NoError(t, s.SendToBack())
	assert.Equal(t, []state.ID{ids[0], ids[2], ids[1], ids[3]}, s.Scene().IDs(state.KindShape))

	_, err := s.Undo()
	require.NoError(t, err)
	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, ids, s.Scene().IDs(state.KindShape))
}

func TestSetStyle(t *testing.T) {
	s, id := rectSession(t)
	s.Select(id)
	red := color.RGBA{R: 255, A: 255}
	fill := color.RGBA{B: 255, A: 128}
	require.NoError(t, s.SetStyle(Style{Color: red, Width: 7, LineStyle: state.StyleDotted, Fill: &fill}))
	sh := get[*state.Shape](t, s, id)
	assert.Equal(t, red, sh.Color)
	assert.Equal(t, float32(7), sh.Width)
	assert.Equal(t, state.StyleDotted, sh.Style)
	require.NotNil(t, sh.Fill)
	assert.Equal(t, fill, *sh.Fill)
	assert.Equal(t, undo.NameStyle, s.History().Names()[1])

	_, err := s.Undo()
	require.NoError(t, err)
	sh = get[*state.Shape](t, s, id)
	assert.Equal(t, color.RGBA{A: 255}, sh.Color)
	assert.Nil(t, sh.Fill)
	assert.Equal(t, red, s.Style().Color)
}

func TestSaveLoad(t *testing.T) {
	s := newSession(t)
	twelvePointCurve(t, s)
	_, err := s.AddShape(&state.Shape{Shape: state.ShapeCircle, Rect: geom.R(0, 0, 5, 5)})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))

	loaded := newSession(t)
	require.NoError(t, loaded.Load(&buf, nil))
	assert.Equal(t, 2, loaded.Scene().Count())
	assert.False(t, loaded.History().CanUndo())
}

func TestOnChangeAndZoom(t *testing.T) {
	s := newSession(t)
	calls := 0
	s.OnChange = func() { calls++ }
	drawStroke(s, geom.Pt(0, 0), geom.Pt(10, 10))
	assert.Positive(t, calls)

	s.SetZoom(100)
	assert.Equal(t, float64(MaxZoom), s.Zoom())
	s.SetZoom(2)
	s.PanBy(geom.Pt(10, 20))
	w := s.ToWorld(geom.Pt(30, 40))
	assert.Equal(t, geom.Pt(10, 10), w)
	assert.Equal(t, geom.Pt(30, 40), s.ToScreen(w))
}
