package transform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/spline"
	"VectorBoard/internal/state"
)

const eps = 1e-9

func assertNear(t *testing.T, got, want geom.Point, epsilon float64) {
	t.Helper()
	if d := got.Dist(want); d > epsilon {
		t.Fatalf("got %s, expected %s", got, want)
	}
}

func TestHandlesUnrotated(t *testing.T) {
	h := Handles(geom.R(0, 0, 100, 50), 0, 20)
	assertNear(t, h[TopLeft], geom.Pt(0, 0), eps)
	assertNear(t, h[TopMiddle], geom.Pt(50, 0), eps)
	assertNear(t, h[MiddleRight], geom.Pt(100, 25), eps)
	assertNear(t, h[BottomRight], geom.Pt(100, 50), eps)
	assertNear(t, h[BottomMiddle], geom.Pt(50, 50), eps)
	assertNear(t, h[Rotate], geom.Pt(50, 70), eps)
	assert.Len(t, h, 9)
}

func TestHandlesRotated(t *testing.T) {
	r := geom.R(0, 0, 100, 50)
	h := Handles(r, 90, 20)
	// Rotating 90 degrees about (50, 25) sends the bottom midpoint (50, 50)
	// to (25, 25) and the outward normal +Y to -X.
	assertNear(t, h[BottomMiddle], geom.Pt(25, 25), eps)
	assertNear(t, h[Rotate], geom.Pt(5, 25), eps)
	assertNear(t, h[TopLeft], geom.Pt(75, -25), eps)

	assert.Equal(t, Rotate, HandleAt(h, geom.Pt(6, 26), 5))
	assert.Equal(t, HandleNone, HandleAt(h, geom.Pt(500, 500), 5))
}

func TestPointInRotatedRect(t *testing.T) {
	r := geom.R(0, 0, 100, 10)
	assert.True(t, PointInRotatedRect(geom.Pt(90, 5), r, 0))
	assert.False(t, PointInRotatedRect(geom.Pt(90, 5), r, 90))
	assert.True(t, PointInRotatedRect(geom.Pt(50, 45), r, 90))
	assert.False(t, PointInRotatedRect(geom.Pt(50, 45), r, 0))
}

func TestResizeBoxEdges(t *testing.T) {
	box := geom.R(0, 0, 100, 50)
	got, err := ResizeBox(box, MiddleRight, geom.Pt(150, 999), 5, false)
	require.NoError(t, err)
	assert.Equal(t, geom.R(0, 0, 150, 50), got)

	got, err = ResizeBox(box, TopLeft, geom.Pt(-10, -20), 5, false)
	require.NoError(t, err)
	assert.Equal(t, geom.R(-10, -20, 110, 70), got)

	// Dragging past the opposite edge clamps at minSize.
	got, err = ResizeBox(box, MiddleLeft, geom.Pt(300, 0), 5, false)
	require.NoError(t, err)
	assert.Equal(t, geom.R(95, 0, 5, 50), got)
}

func TestResizeBoxAspectLocked(t *testing.T) {
	box := geom.R(10, 10, 100, 50)
	got, err := ResizeBox(box, BottomRight, geom.Pt(310, 70), 5, true)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got.W/got.H, eps)
	assert.Equal(t, box.Min(), got.Min())
	assert.InDelta(t, 300, got.W, eps)

	got, err = ResizeBox(box, TopLeft, geom.Pt(100, -200), 5, true)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got.W/got.H, eps)
	assertNear(t, got.Max(), box.Max(), eps)
}

func TestResizeBoxRejectsDegenerate(t *testing.T) {
	flat := geom.R(0, 0, 100, 0)
	_, err := ResizeBox(flat, BottomMiddle, geom.Pt(50, 20), 5, false)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	// Moving only the x edge of a flat box is fine.
	got, err := ResizeBox(flat, MiddleRight, geom.Pt(200, 0), 5, false)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.W)

	_, err = ResizeBox(geom.R(0, 0, 1, 1), Rotate, geom.Pt(0, 0), 5, false)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestRemap(t *testing.T) {
	old := geom.R(0, 0, 100, 50)
	m := Remap(old, geom.R(0, 0, 200, 50))
	assertNear(t, m.Apply(geom.Pt(100, 50)), geom.Pt(200, 50), eps)
	assertNear(t, m.Apply(geom.Pt(0, 0)), geom.Pt(0, 0), eps)
	assertNear(t, m.Apply(geom.Pt(50, 25)), geom.Pt(100, 25), eps)

	flat := Remap(geom.R(0, 5, 100, 0), geom.R(0, 5, 50, 0))
	assert.Equal(t, 1.0, flat.ScaleY)
	assertNear(t, flat.Apply(geom.Pt(100, 5)), geom.Pt(50, 5), eps)
}

func TestResizeRotatedAspectLockKeepsRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	corners := []Handle{TopLeft, TopRight, BottomLeft, BottomRight}
	for i := 0; i < 500; i++ {
		rect := geom.R(rng.Float64()*100, rng.Float64()*100, 1+rng.Float64()*200, 1+rng.Float64()*200)
		angle := rng.Float64()*360 - 180
		pointer := geom.Pt(rng.Float64()*600-200, rng.Float64()*600-200)
		h := corners[rng.Intn(len(corners))]
		got, err := ResizeRotated(rect, angle, h, pointer, 5, true)
		require.NoError(t, err)
		assert.InDelta(t, rect.W/rect.H, got.W/got.H, 1e-9)
		assertNear(t, got.Center(), rect.Center(), 1e-9)
		assert.GreaterOrEqual(t, got.W, 5-1e-9)
		assert.GreaterOrEqual(t, got.H, 5-1e-9)
	}
}

func TestResizeRotatedAspectDominantAxis(t *testing.T) {
	rect := geom.R(-50, -25, 100, 50) // centered at origin, aspect 2
	// Rotated 90 degrees, local +X points along world +Y.
	got, err := ResizeRotated(rect, 90, BottomRight, geom.Pt(0, 100), 5, true)
	require.NoError(t, err)
	assert.InDelta(t, 200, got.W, eps)
	assert.InDelta(t, 100, got.H, eps)

	got, err = ResizeRotated(rect, 90, BottomRight, geom.Pt(-80, 10), 5, true)
	require.NoError(t, err)
	assert.InDelta(t, 160, got.H, eps)
	assert.InDelta(t, 320, got.W, eps)

	// Min size is applied on the short axis and the long one follows.
	got, err = ResizeRotated(rect, 0, BottomRight, geom.Pt(0.1, 0.1), 10, true)
	require.NoError(t, err)
	assert.InDelta(t, 10, got.H, eps)
	assert.InDelta(t, 20, got.W, eps)
}

func TestResizeRotatedEdge(t *testing.T) {
	rect := geom.R(0, 0, 100, 50)
	got, err := ResizeRotated(rect, 0, MiddleRight, geom.Pt(150, 12), 5, false)
	require.NoError(t, err)
	assert.Equal(t, geom.R(0, 0, 150, 50), got)

	// At 90 degrees the local right edge faces world +Y. Dragging it keeps
	// the opposite edge fixed in world space.
	before := state.RotatedCorners(rect, 90)
	got, err = ResizeRotated(rect, 90, MiddleRight, geom.Pt(25, 125), 5, false)
	require.NoError(t, err)
	assert.InDelta(t, 150, got.W, eps)
	assert.InDelta(t, 50, got.H, eps)
	after := state.RotatedCorners(got, 90)
	assertNear(t, after[0], before[0], 1e-9)
	assertNear(t, after[3], before[3], 1e-9)

	// Crossing the opposite edge clamps at minSize.
	got, err = ResizeRotated(rect, 30, MiddleLeft, geom.Pt(1000, 1000), 5, false)
	require.NoError(t, err)
	assert.InDelta(t, 5, got.W, eps)
	assert.InDelta(t, 50, got.H, eps)
}

func TestRotationDelta(t *testing.T) {
	c := geom.Pt(0, 0)
	assert.InDelta(t, 90, RotationDelta(c, geom.Pt(1, 0), geom.Pt(0, 5)), eps)
	assert.InDelta(t, -90, RotationDelta(c, geom.Pt(1, 0), geom.Pt(0, -5)), eps)
	assert.InDelta(t, 180, RotationDelta(c, geom.Pt(1, 0), geom.Pt(-1, 0)), eps)
	assert.InDelta(t, 10, RotationDelta(c, geom.Pt(-1, 0.1763269807), geom.Pt(-1, 0)), 1e-6)
	// Crossing the +-180 seam takes the short way round.
	assert.InDelta(t, -20, RotationDelta(c, geom.Pt(-1, -0.1763269807), geom.Pt(-1, 0.1763269807)), 1e-6)
}

func sampleItems(t *testing.T) []state.Item {
	t.Helper()
	res, err := spline.Fit([]spline.Sample{
		{Pos: geom.Pt(0, 0)}, {Pos: geom.Pt(10, 8)}, {Pos: geom.Pt(20, 3)},
		{Pos: geom.Pt(30, 12)}, {Pos: geom.Pt(40, 0)},
	}, spline.DefaultOptions())
	require.NoError(t, err)
	return []state.Item{
		&state.Line{Points: []geom.Point{geom.Pt(1, 2), geom.Pt(30, 40), geom.Pt(-5, 7)}},
		&state.Shape{Shape: state.ShapeRectangle, Rect: geom.R(10, 10, 40, 20), Angle: 170},
		&state.Shape{Shape: state.ShapePath, Points: []geom.Point{geom.Pt(3, 3), geom.Pt(9, 1)}},
		&state.Image{Rect: geom.R(-20, 5, 16, 9), Angle: -35},
		&state.Curve{Spline: res.Spline},
	}
}

func itemPoints(it state.Item) []geom.Point {
	if r, a, ok := RectOf(it); ok {
		c := state.RotatedCorners(r, a)
		return c[:]
	}
	return state.ItemPoints(it)
}

func TestRotationClosure(t *testing.T) {
	items := sampleItems(t)
	center, err := Bounds(items)
	require.NoError(t, err)
	for _, theta := range []float64{1, 45, 90, 179, 250, -33} {
		for _, it := range items {
			back := RotateItem(RotateItem(it, center.Center(), theta), center.Center(), -theta)
			want, got := itemPoints(it), itemPoints(back)
			require.Len(t, got, len(want))
			for i := range want {
				assertNear(t, got[i], want[i], 1e-9)
			}
		}
	}
}

func TestRotateItemLeavesOriginal(t *testing.T) {
	l := &state.Line{Points: []geom.Point{geom.Pt(10, 0), geom.Pt(20, 0)}}
	r := RotateItem(l, geom.Pt(0, 0), 90).(*state.Line)
	assertNear(t, r.Points[0], geom.Pt(0, 10), eps)
	assertNear(t, l.Points[0], geom.Pt(10, 0), 0)

	im := &state.Image{Rect: geom.R(0, 0, 10, 10), Angle: 170}
	ri := RotateItem(im, geom.Pt(5, 5), 20).(*state.Image)
	assert.InDelta(t, -170, ri.Angle, eps)
	assertNear(t, ri.Rect.Center(), geom.Pt(5, 5), eps)
}

func TestMapItem(t *testing.T) {
	old := geom.R(0, 0, 100, 100)
	m := Remap(old, geom.R(0, 0, 200, 100))

	sh := MapItem(&state.Shape{Shape: state.ShapeCircle, Rect: geom.R(0, 0, 100, 100)}, m).(*state.Shape)
	assert.Equal(t, geom.R(0, 0, 200, 100), sh.Rect)

	// A 90 degree image stretched along world X grows its local height.
	im := MapItem(&state.Image{Rect: geom.R(25, 25, 50, 50), Angle: 90}, m).(*state.Image)
	assert.InDelta(t, 50, im.Rect.W, eps)
	assert.InDelta(t, 100, im.Rect.H, eps)
	assertNear(t, im.Rect.Center(), geom.Pt(100, 50), eps)

	mv := Translate(&state.Line{Points: []geom.Point{geom.Pt(1, 1)}}, geom.Pt(2, 3)).(*state.Line)
	assertNear(t, mv.Points[0], geom.Pt(3, 4), eps)
}

func TestBoundsAndFrame(t *testing.T) {
	_, err := Bounds(nil)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	items := []state.Item{
		&state.Line{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(10, 10)}},
		&state.Image{Rect: geom.R(20, 20, 10, 10)},
	}
	b, err := Bounds(items)
	require.NoError(t, err)
	assert.Equal(t, geom.R(0, 0, 30, 30), b)

	r, a, err := Frame(items[1:])
	require.NoError(t, err)
	assert.Equal(t, geom.R(20, 20, 10, 10), r)
	assert.Equal(t, 0.0, a)

	r, a, err = Frame([]state.Item{&state.Image{Rect: geom.R(0, 0, 4, 4), Angle: 30}})
	require.NoError(t, err)
	assert.Equal(t, 30.0, a)
	assert.Equal(t, geom.R(0, 0, 4, 4), r)

	assert.InDelta(t, -170, normAngle(190), eps)
	assert.InDelta(t, 180, normAngle(-180), eps)
	assert.False(t, math.IsNaN(normAngle(720)))
}
