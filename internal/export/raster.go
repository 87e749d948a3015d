package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/state"
)

var ErrBadSize = errors.New("bad raster size")

const (
	discSegments    = 16
	ellipseSegments = 64
	viewSlack       = 32 // pixels
)

// PNG writes a thumbnail of s whose longer side is maxSide pixels.
func PNG(w io.Writer, s *state.Scene, maxSide int, opt Options) error {
	img, err := Raster(s, maxSide, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("png export: %w", err)
	}
	return nil
}

// Raster draws s scaled so the longer side of its page is maxSide pixels.
// Lines are stroked with round joins; dash styles are honoured.
func Raster(s *state.Scene, maxSide int, opt Options) (*image.RGBA, error) {
	if maxSide <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, maxSide)
	}
	pg := page(s, opt.Margin)
	scale := float64(maxSide) / math.Max(pg.W, pg.H)
	// The epsilon keeps the longer side at exactly maxSide.
	w := max(1, int(math.Ceil(pg.W*scale-1e-9)))
	h := max(1, int(math.Ceil(pg.H*scale-1e-9)))

	c := newRasterCanvas(w, h, pg.Min(), scale, opt.Background)
	s.Each(func(_ state.ID, it state.Item) bool {
		c.item(it)
		return true
	})
	return c.dst, nil
}

// View draws s, then extra on top, as seen through the world rect view
// into a w by h image. The board widget paints the visible part of the
// scene with it.
func View(s *state.Scene, extra []state.Item, view geom.Rect, w, h int, bg color.Color) (*image.RGBA, error) {
	if w <= 0 || h <= 0 || view.W <= 0 || view.H <= 0 {
		return nil, fmt.Errorf("%w: %dx%d over %s", ErrBadSize, w, h, view)
	}
	c := newRasterCanvas(w, h, view.Min(), float64(w)/view.W, bg)
	// Bounds leave out stroke width; widen the query so edges are not cut.
	for _, hit := range s.Query(view.Inflate(viewSlack / c.scale)) {
		c.item(hit.Item)
	}
	for _, it := range extra {
		c.item(it)
	}
	return c.dst, nil
}

func newRasterCanvas(w, h int, origin geom.Point, scale float64, bg color.Color) *rasterCanvas {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	return &rasterCanvas{dst: dst, z: vector.NewRasterizer(w, h), origin: origin, scale: scale}
}

type rasterCanvas struct {
	dst    *image.RGBA
	z      *vector.Rasterizer
	origin geom.Point
	scale  float64
}

func (c *rasterCanvas) px(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - c.origin.X) * c.scale, Y: (p.Y - c.origin.Y) * c.scale}
}

func (c *rasterCanvas) reset() {
	b := c.dst.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
}

func (c *rasterCanvas) paint(col color.RGBA) {
	src := image.NewUniform(color.NRGBA{R: col.R, G: col.G, B: col.B, A: col.A})
	c.z.Draw(c.dst, c.dst.Bounds(), src, image.Point{})
}

// polygon adds a closed path through pts, already in pixel space.
func (c *rasterCanvas) polygon(pts []geom.Point) {
	if len(pts) < 3 {
		return
	}
	c.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		c.z.LineTo(float32(p.X), float32(p.Y))
	}
	c.z.ClosePath()
}

// stroke adds the outline of a round-joined polyline of half-width hw. Every
// piece winds the same way so overlaps saturate instead of cancelling.
func (c *rasterCanvas) stroke(poly []geom.Point, hw float64) {
	for i, p := range poly {
		disc := make([]geom.Point, discSegments)
		for k := range disc {
			sin, cos := math.Sincos(-2 * math.Pi * float64(k) / discSegments)
			disc[k] = geom.Pt(p.X+hw*cos, p.Y+hw*sin)
		}
		c.polygon(disc)
		if i == 0 {
			continue
		}
		a := poly[i-1]
		d := p.Sub(a)
		l := d.Hypot()
		if l == 0 {
			continue
		}
		n := geom.Pt(-d.Y, d.X).Mul(hw / l)
		c.polygon([]geom.Point{a.Add(n), p.Add(n), p.Sub(n), a.Sub(n)})
	}
}

func (c *rasterCanvas) line(pts []geom.Point, col color.RGBA, width float32, style state.LineStyle) {
	if len(pts) == 0 {
		return
	}
	poly := make([]geom.Point, len(pts))
	for i, p := range pts {
		poly[i] = c.px(p)
	}
	w := float64(width) * c.scale
	c.reset()
	for _, run := range dashes(poly, dashPattern(style, w)) {
		c.stroke(run, max(w/2, 0.5))
	}
	c.paint(col)
}

func (c *rasterCanvas) item(it state.Item) {
	switch v := it.(type) {
	case *state.Line:
		c.line(v.Points, v.Color, v.Width, state.StyleSolid)
	case *state.Curve:
		c.line(state.Outline(v), v.Color, v.Thickness, state.StyleSolid)
	case *state.Shape:
		if !v.Shape.RectBased() {
			c.line(state.Outline(v), v.Color, v.Width, v.Style)
			return
		}
		outline := rectOutline(v)
		if v.Fill != nil {
			c.reset()
			px := make([]geom.Point, len(outline))
			for i, p := range outline {
				px[i] = c.px(p)
			}
			c.polygon(px)
			c.paint(*v.Fill)
		}
		c.line(append(outline, outline[0]), v.Color, v.Width, v.Style)
	case *state.Image:
		c.image(v)
	}
}

// rectOutline returns the world outline of a rectangle or circle shape.
func rectOutline(sh *state.Shape) []geom.Point {
	if sh.Shape == state.ShapeRectangle {
		corners := state.RotatedCorners(sh.Rect, sh.Angle)
		return corners[:]
	}
	center := sh.Rect.Center()
	rx, ry := sh.Rect.W/2, sh.Rect.H/2
	out := make([]geom.Point, ellipseSegments)
	for k := range out {
		sin, cos := math.Sincos(2 * math.Pi * float64(k) / ellipseSegments)
		out[k] = geom.Pt(center.X+rx*cos, center.Y+ry*sin).RotateAbout(center, sh.Angle)
	}
	return out
}

// image maps the pixmap onto its rotated rect with bilinear sampling.
func (c *rasterCanvas) image(im *state.Image) {
	if im.Pixmap == nil {
		corners := state.RotatedCorners(im.Rect, im.Angle)
		c.line(append(corners[:], corners[0]), color.RGBA{R: 160, G: 160, B: 160, A: 255}, 1, state.StyleDashed)
		return
	}
	sb := im.Pixmap.Bounds()
	if sb.Empty() || im.Rect.Empty() {
		return
	}
	kx, ky := im.Rect.W/float64(sb.Dx()), im.Rect.H/float64(sb.Dy())
	center := im.Rect.Center()
	ox := im.Rect.X - center.X - kx*float64(sb.Min.X)
	oy := im.Rect.Y - center.Y - ky*float64(sb.Min.Y)
	sin, cos := math.Sincos(geom.Radians(im.Angle))
	s := c.scale
	s2d := f64.Aff3{
		s * cos * kx, -s * sin * ky, s * (cos*ox - sin*oy + center.X - c.origin.X),
		s * sin * kx, s * cos * ky, s * (sin*ox + cos*oy + center.Y - c.origin.Y),
	}
	draw.BiLinear.Transform(c.dst, s2d, im.Pixmap, sb, draw.Over, nil)
}
