package state

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync/atomic"

	"github.com/jinzhu/copier"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/logx"
	"VectorBoard/internal/spline"
)

// Kind tags the collection an item lives in. Collections are painted in
// Kind order, so images sit beneath shapes, lines and curves.
type Kind uint8

const (
	KindImage Kind = iota
	KindShape
	KindLine
	KindCurve
	kindCount
)

// Kinds lists every collection in paint order.
var Kinds = [kindCount]Kind{KindImage, KindShape, KindLine, KindCurve}

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindShape:
		return "shape"
	case KindLine:
		return "line"
	case KindCurve:
		return "curve"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Item is a scene payload. The concrete types are *Line, *Shape, *Image
// and *Curve.
type Item interface {
	Kind() Kind
	// Bounds is the axis-aligned world bounding box of the geometry,
	// excluding stroke width.
	Bounds() geom.Rect
	// Clone returns a deep copy that shares no mutable state with the
	// receiver. Image pixmaps are shared.
	Clone() Item
	sealed()
}

// Line is a freehand polyline.
type Line struct {
	Points []geom.Point
	Color  color.RGBA
	Width  float32
}

type ShapeKind uint8

const (
	ShapeLine ShapeKind = iota
	ShapeRectangle
	ShapeCircle
	ShapePath
	ShapeEditableLine
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeLine:
		return "line"
	case ShapeRectangle:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	case ShapePath:
		return "path"
	case ShapeEditableLine:
		return "editable_line"
	}
	return fmt.Sprintf("shape(%d)", uint8(k))
}

// RectBased reports whether the shape is described by Rect and Angle rather
// than by Points.
func (k ShapeKind) RectBased() bool { return k == ShapeRectangle || k == ShapeCircle }

type LineStyle uint8

const (
	StyleSolid LineStyle = iota
	StyleDashed
	StyleDotted
)

func (s LineStyle) String() string {
	switch s {
	case StyleDashed:
		return "dashed"
	case StyleDotted:
		return "dotted"
	}
	return "solid"
}

// Shape is a tool-drawn figure. Rectangle and Circle use Rect and Angle
// (degrees about Rect.Center); the circle is the ellipse inscribed in Rect.
// Line, Path and EditableLine use Points. EditableLine points are piecewise
// cubic control points: on-curve, handle, handle, on-curve, ...
type Shape struct {
	Shape  ShapeKind
	Color  color.RGBA
	Width  float32
	Style  LineStyle
	Fill   *color.RGBA
	Rect   geom.Rect
	Angle  float64
	Points []geom.Point
}

// Image is a raster placed in Rect (unrotated bounds) and rotated by Angle
// degrees about Rect.Center.
type Image struct {
	Rect   geom.Rect
	Angle  float64
	Path   string
	Pixmap image.Image
}

// Curve is a fitted, editable B-spline stroke.
type Curve struct {
	Spline    spline.Spline
	Color     color.RGBA
	Thickness float32
}

func (*Line) Kind() Kind  { return KindLine }
func (*Shape) Kind() Kind { return KindShape }
func (*Image) Kind() Kind { return KindImage }
func (*Curve) Kind() Kind { return KindCurve }

func (*Line) sealed()  {}
func (*Shape) sealed() {}
func (*Image) sealed() {}
func (*Curve) sealed() {}

func (l *Line) Bounds() geom.Rect {
	r, _ := geom.BoundsOf(l.Points)
	return r
}

func (s *Shape) Bounds() geom.Rect {
	if s.Shape.RectBased() {
		c := RotatedCorners(s.Rect, s.Angle)
		r, _ := geom.BoundsOf(c[:])
		return r
	}
	r, _ := geom.BoundsOf(s.Points)
	return r
}

func (im *Image) Bounds() geom.Rect {
	c := RotatedCorners(im.Rect, im.Angle)
	r, _ := geom.BoundsOf(c[:])
	return r
}

var curveResolution atomic.Int64

func init() { curveResolution.Store(spline.DefaultResolution) }

// CurveResolution is the polyline resolution used for curve bounds, hit
// tests, outlines and export.
func CurveResolution() int { return int(curveResolution.Load()) }

// SetCurveResolution changes CurveResolution for the whole process. Values
// below 2 are ignored.
func SetCurveResolution(n int) {
	if n >= 2 {
		curveResolution.Store(int64(n))
	}
}

func (c *Curve) Bounds() geom.Rect {
	return spline.Bounds(c.Spline, CurveResolution())
}

func (l *Line) Clone() Item {
	c := deepCopy(l)
	c.Points = keepNil(l.Points, c.Points)
	return c
}

func (s *Shape) Clone() Item {
	c := deepCopy(s)
	c.Points = keepNil(s.Points, c.Points)
	if s.Fill == nil {
		c.Fill = nil
	}
	return c
}

func (c *Curve) Clone() Item {
	d := deepCopy(c)
	d.Spline.ControlPoints = keepNil(c.Spline.ControlPoints, d.Spline.ControlPoints)
	d.Spline.Knots = keepNil(c.Spline.Knots, d.Spline.Knots)
	d.Spline.Parameters = keepNil(c.Spline.Parameters, d.Spline.Parameters)
	return d
}

func (im *Image) Clone() Item {
	c := *im
	return &c
}

func deepCopy[T any](src *T) *T {
	dst := new(T)
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		logx.For("state").Error("deep copy failed", "type", fmt.Sprintf("%T", src), "err", err)
	}
	return dst
}

// keepNil makes dst match the nilness of src; copier turns nil slices into
// empty ones.
func keepNil[S ~[]E, E any](src, dst S) S {
	switch {
	case src == nil:
		return nil
	case dst == nil:
		return S{}
	}
	return dst
}

// RotatedCorners rotates the corners of r about its center by angle degrees.
func RotatedCorners(r geom.Rect, angle float64) [4]geom.Point {
	c := r.Corners()
	if angle == 0 {
		return c
	}
	center := r.Center()
	for i := range c {
		c[i] = c[i].RotateAbout(center, angle)
	}
	return c
}

// ItemPoints returns the defining points of point-based items and nil for
// rect-based ones.
func ItemPoints(it Item) []geom.Point {
	switch v := it.(type) {
	case *Line:
		return v.Points
	case *Shape:
		if !v.Shape.RectBased() {
			return v.Points
		}
	case *Curve:
		return v.Spline.ControlPoints
	}
	return nil
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa". Bare names black, red,
// green, blue and white are also accepted.
func ParseColor(s string) (color.RGBA, error) {
	switch strings.ToLower(s) {
	case "black":
		return color.RGBA{A: 255}, nil
	case "white":
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil
	case "red":
		return color.RGBA{R: 255, A: 255}, nil
	case "green":
		return color.RGBA{G: 255, A: 255}, nil
	case "blue":
		return color.RGBA{B: 255, A: 255}, nil
	}
	var c color.RGBA
	c.A = 255
	var err error
	switch len(s) {
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("bad length %d", len(s))
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}

// FormatColor renders c as "#rrggbbaa".
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// EditableSteps is the number of segments each cubic piece of an editable
// line is flattened into.
const EditableSteps = 16

// FlattenEditable turns editable-line control points (on-curve, handle,
// handle, on-curve, ...) into a polyline. A tail too short for a full cubic
// piece is joined with straight segments.
func FlattenEditable(pts []geom.Point, steps int) []geom.Point {
	if len(pts) < 4 || steps < 1 {
		return geom.ClonePoints(pts)
	}
	out := []geom.Point{pts[0]}
	i := 0
	for ; i+3 < len(pts); i += 3 {
		p0, p1, p2, p3 := pts[i], pts[i+1], pts[i+2], pts[i+3]
		for k := 1; k <= steps; k++ {
			t := float64(k) / float64(steps)
			mt := 1 - t
			a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
			out = append(out, geom.Point{
				X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
				Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
			})
		}
	}
	return append(out, pts[i+1:]...)
}

// Outline returns the polyline drawn for point-based items: the points of
// lines and paths, the flattened editable line, and the evaluated curve.
// Rect-based items yield nil.
func Outline(it Item) []geom.Point {
	switch v := it.(type) {
	case *Line:
		return v.Points
	case *Shape:
		switch v.Shape {
		case ShapeEditableLine:
			return FlattenEditable(v.Points, EditableSteps)
		case ShapeRectangle, ShapeCircle:
			return nil
		}
		return v.Points
	case *Curve:
		poly, err := spline.Evaluate(v.Spline, CurveResolution())
		if err != nil {
			return nil
		}
		return poly
	}
	return nil
}
