// Package export renders a scene to PDF and PNG.
package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/logx"
	"VectorBoard/internal/state"
)

// Options tunes an exported page.
type Options struct {
	// Margin is added around the scene bounds, in world units.
	Margin float64
	// Background fills the page. Nil leaves PDF pages white and PNGs
	// transparent.
	Background color.Color
}

var DefaultOptions = Options{Margin: 20}

// emptyPage is the page used for a scene with nothing on it.
var emptyPage = geom.R(0, 0, 800, 600)

// page returns the world rect an export covers.
func page(s *state.Scene, margin float64) geom.Rect {
	r, ok := s.Bounds()
	if !ok {
		return emptyPage
	}
	r = r.Inflate(margin)
	r.W = max(r.W, 1)
	r.H = max(r.H, 1)
	return r
}

// ExportPDF writes s to a single-page PDF at path. One world unit is one
// point.
func ExportPDF(path string, s *state.Scene) error {
	pdf, err := buildPDF(s, DefaultOptions)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// PDF writes s as a single-page PDF to w.
func PDF(w io.Writer, s *state.Scene, opt Options) error {
	pdf, err := buildPDF(s, opt)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildPDF(s *state.Scene, opt Options) (*gofpdf.Fpdf, error) {
	pg := page(s, opt.Margin)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pg.W, Ht: pg.H},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	pdf.AddPage()

	c := &pdfCanvas{pdf: pdf, origin: pg.Min()}
	if opt.Background != nil {
		c.fillColor(toRGBA(opt.Background))
		pdf.Rect(0, 0, pg.W, pg.H, "F")
	}
	s.Each(func(_ state.ID, it state.Item) bool {
		c.item(it)
		return pdf.Ok()
	})
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf export: %w", err)
	}
	logx.For("export").Debug("pdf built", "items", s.Count(), "images", c.images, "page", pg)
	return pdf, nil
}

type pdfCanvas struct {
	pdf    *gofpdf.Fpdf
	origin geom.Point
	images int
}

func (c *pdfCanvas) pt(p geom.Point) (float64, float64) {
	return p.X - c.origin.X, p.Y - c.origin.Y
}

func (c *pdfCanvas) points(pts []geom.Point) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		out[i].X, out[i].Y = c.pt(p)
	}
	return out
}

func (c *pdfCanvas) pen(col color.RGBA, width float32, style state.LineStyle) {
	c.pdf.SetDrawColor(int(col.R), int(col.G), int(col.B))
	c.pdf.SetAlpha(float64(col.A)/255, "Normal")
	c.pdf.SetLineWidth(float64(width))
	c.pdf.SetDashPattern(dashPattern(style, float64(width)), 0)
}

func (c *pdfCanvas) fillColor(col color.RGBA) {
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	c.pdf.SetAlpha(float64(col.A)/255, "Normal")
}

func (c *pdfCanvas) polyline(pts []geom.Point) {
	if len(pts) == 0 {
		return
	}
	c.pdf.MoveTo(c.pt(pts[0]))
	if len(pts) == 1 {
		// Zero-length segment; the round cap paints a dot.
		c.pdf.LineTo(c.pt(pts[0]))
	}
	for _, p := range pts[1:] {
		c.pdf.LineTo(c.pt(p))
	}
	c.pdf.DrawPath("D")
}

func (c *pdfCanvas) item(it state.Item) {
	switch v := it.(type) {
	case *state.Line:
		c.pen(v.Color, v.Width, state.StyleSolid)
		c.polyline(v.Points)
	case *state.Curve:
		c.pen(v.Color, v.Thickness, state.StyleSolid)
		c.polyline(state.Outline(v))
	case *state.Shape:
		c.shape(v)
	case *state.Image:
		c.image(v)
	}
}

func (c *pdfCanvas) shape(sh *state.Shape) {
	if !sh.Shape.RectBased() {
		c.pen(sh.Color, sh.Width, sh.Style)
		c.polyline(state.Outline(sh))
		return
	}
	paint := func(style string) {
		if sh.Shape == state.ShapeCircle {
			x, y := c.pt(sh.Rect.Center())
			// gofpdf turns counter-clockwise; scene angles turn clockwise.
			c.pdf.Ellipse(x, y, sh.Rect.W/2, sh.Rect.H/2, -sh.Angle, style)
			return
		}
		corners := state.RotatedCorners(sh.Rect, sh.Angle)
		c.pdf.Polygon(c.points(corners[:]), style)
	}
	if sh.Fill != nil {
		c.fillColor(*sh.Fill)
		paint("F")
	}
	c.pen(sh.Color, sh.Width, sh.Style)
	paint("D")
}

func (c *pdfCanvas) image(im *state.Image) {
	if im.Pixmap == nil {
		// Unresolved image: keep its footprint visible.
		c.pen(color.RGBA{R: 160, G: 160, B: 160, A: 255}, 1, state.StyleDashed)
		corners := state.RotatedCorners(im.Rect, im.Angle)
		c.pdf.Polygon(c.points(corners[:]), "D")
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, im.Pixmap); err != nil {
		logx.For("export").Warn("image skipped", "path", im.Path, "err", err)
		return
	}
	name := fmt.Sprintf("img%d", c.images)
	c.images++
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader(name, opts, &buf)

	c.pdf.SetAlpha(1, "Normal")
	cx, cy := c.pt(im.Rect.Center())
	x, y := c.pt(im.Rect.Min())
	c.pdf.TransformBegin()
	c.pdf.TransformRotate(-im.Angle, cx, cy)
	c.pdf.ImageOptions(name, x, y, im.Rect.W, im.Rect.H, false, opts, 0, "")
	c.pdf.TransformEnd()
}
