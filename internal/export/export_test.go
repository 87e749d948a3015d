package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/spline"
	"VectorBoard/internal/state"
)

var (
	black = color.RGBA{A: 255}
	red   = color.RGBA{R: 255, A: 255}
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// near compares colors allowing for rasteriser rounding.
func near(t *testing.T, want, got color.RGBA, msg string) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 3, msg)
	assert.InDelta(t, want.G, got.G, 3, msg)
	assert.InDelta(t, want.B, got.B, 3, msg)
	assert.InDelta(t, want.A, got.A, 3, msg)
}

func mixedScene(t *testing.T) *state.Scene {
	t.Helper()
	s := state.NewScene()
	fill := color.RGBA{G: 200, A: 128}
	s.Insert(&state.Line{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(50, 20)}, Color: black, Width: 2})
	s.Insert(&state.Shape{Shape: state.ShapeRectangle, Color: red, Width: 1, Style: state.StyleDashed,
		Fill: &fill, Rect: geom.R(10, 10, 40, 20), Angle: 30})
	s.Insert(&state.Shape{Shape: state.ShapeCircle, Color: black, Width: 1, Style: state.StyleDotted,
		Rect: geom.R(60, 0, 30, 30)})
	s.Insert(&state.Shape{Shape: state.ShapeEditableLine, Color: black, Width: 1,
		Points: []geom.Point{geom.Pt(0, 50), geom.Pt(10, 70), geom.Pt(30, 70), geom.Pt(40, 50)}})
	s.Insert(&state.Image{Rect: geom.R(100, 0, 20, 20), Angle: 45, Path: "a.png", Pixmap: solid(4, 4, red)})
	s.Insert(&state.Image{Rect: geom.R(100, 40, 20, 20), Path: "missing.png"})

	samples := make([]spline.Sample, 12)
	for i := range samples {
		samples[i] = spline.Sample{Pos: geom.Pt(float64(i*10), 100+float64(i%3)*5), Pressure: 1}
	}
	res, err := spline.Fit(samples, spline.DefaultOptions())
	require.NoError(t, err)
	s.Insert(&state.Curve{Spline: res.Spline, Color: black, Thickness: 2})
	return s
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, mixedScene(t), Options{Margin: 10, Background: color.White}))
	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	// One embedded pixmap; the missing one is drawn as an outline.
	assert.Equal(t, 1, bytes.Count(out, []byte("/Subtype /Image")))
}

func TestPDFEmptyScene(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, state.NewScene(), DefaultOptions))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportPDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pdf")
	require.NoError(t, ExportPDF(path, mixedScene(t)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRasterLine(t *testing.T) {
	s := state.NewScene()
	s.Insert(&state.Line{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(100, 0)}, Color: black, Width: 4})

	img, err := Raster(s, 120, Options{Margin: 10})
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 120, 20), img.Bounds())
	near(t, black, img.RGBAAt(60, 10), "on the line")
	near(t, black, img.RGBAAt(9, 10), "round cap at the start")
	assert.Equal(t, uint8(0), img.RGBAAt(60, 2).A, "above the line")
	assert.Equal(t, uint8(0), img.RGBAAt(116, 10).A, "past the end cap")
}

func TestRasterFilledRect(t *testing.T) {
	s := state.NewScene()
	s.Insert(&state.Shape{Shape: state.ShapeRectangle, Color: black, Width: 4, Fill: &red, Rect: geom.R(0, 0, 40, 40)})

	img, err := Raster(s, 60, Options{Margin: 10, Background: color.White})
	require.NoError(t, err)
	near(t, red, img.RGBAAt(30, 30), "fill")
	near(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(2, 2), "background")
	near(t, black, img.RGBAAt(10, 30), "left edge stroke")
}

func TestRasterRotatedImage(t *testing.T) {
	s := state.NewScene()
	s.Insert(&state.Image{Rect: geom.R(0, 0, 40, 20), Angle: 90, Pixmap: solid(2, 2, red)})

	// Rotated bounds are (10,-10)-(30,30); with the margin the page starts
	// at (0,-20) and is drawn at scale 1.
	img, err := Raster(s, 60, Options{Margin: 10})
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 40, 60), img.Bounds())
	near(t, red, img.RGBAAt(20, 15), "inside the rotated rect")
	assert.Equal(t, uint8(0), img.RGBAAt(5, 30).A, "inside the unrotated rect only")
}

func TestRasterErrors(t *testing.T) {
	_, err := Raster(state.NewScene(), 0, DefaultOptions)
	assert.ErrorIs(t, err, ErrBadSize)

	img, err := Raster(state.NewScene(), 80, DefaultOptions)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 80, 60), img.Bounds())
}

func TestView(t *testing.T) {
	s := state.NewScene()
	s.Insert(&state.Line{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(100, 0)}, Color: black, Width: 2})
	s.Insert(&state.Line{Points: []geom.Point{geom.Pt(500, 500), geom.Pt(600, 500)}, Color: black, Width: 2})
	draft := &state.Line{Points: []geom.Point{geom.Pt(-5, 5), geom.Pt(5, 5)}, Color: red, Width: 2}

	// Scale 2: world (-10,-10)-(10,10) fills 40x40 pixels.
	img, err := View(s, []state.Item{draft}, geom.R(-10, -10, 20, 20), 40, 40, color.White)
	require.NoError(t, err)
	near(t, black, img.RGBAAt(30, 20), "scene line")
	near(t, red, img.RGBAAt(20, 30), "draft on top")
	near(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(5, 5), "background")

	_, err = View(s, nil, geom.R(0, 0, 0, 10), 40, 40, nil)
	assert.ErrorIs(t, err, ErrBadSize)
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, mixedScene(t), 256, DefaultOptions))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 256, max(img.Bounds().Dx(), img.Bounds().Dy()))
}

func TestDashes(t *testing.T) {
	straight := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}
	assert.Equal(t, [][]geom.Point{straight}, dashes(straight, nil))

	assert.Equal(t, [][]geom.Point{
		{geom.Pt(0, 0), geom.Pt(2, 0)},
		{geom.Pt(5, 0), geom.Pt(7, 0)},
	}, dashes(straight, []float64{2, 3}))

	corner := []geom.Point{geom.Pt(0, 0), geom.Pt(3, 0), geom.Pt(3, 4)}
	assert.Equal(t, [][]geom.Point{
		{geom.Pt(0, 0), geom.Pt(3, 0), geom.Pt(3, 1)},
	}, dashes(corner, []float64{4, 10}))

	assert.Nil(t, dashPattern(state.StyleSolid, 3))
	assert.Equal(t, []float64{4, 2}, dashPattern(state.StyleDashed, 0.5))
}
