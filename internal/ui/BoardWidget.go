package ui

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"VectorBoard/internal/board"
	"VectorBoard/internal/export"
	"VectorBoard/internal/geom"
	"VectorBoard/internal/logx"
	"VectorBoard/internal/state"
	"VectorBoard/internal/transform"
)

var (
	paperColor  = color.White
	selectColor = color.NRGBA{R: 30, G: 120, B: 230, A: 255}
	bandFill    = color.NRGBA{R: 30, G: 120, B: 230, A: 40}
)

const handleSize = 8

// BoardWidget hosts a board.Session: mouse input becomes pointer calls in
// world coordinates and the scene is painted through export.View. A
// read-only widget only pans and zooms.
type BoardWidget struct {
	widget.BaseWidget
	session   *board.Session
	readOnly  bool
	mods      board.Modifiers
	pressed   bool
	panning   bool
	statusBar *widget.Label
	log       *slog.Logger
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ fyne.DoubleTappable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(s *board.Session, readOnly bool) *BoardWidget {
	b := &BoardWidget{
		session:   s,
		readOnly:  readOnly,
		statusBar: widget.NewLabel("Ready"),
		log:       logx.For("ui"),
	}
	s.OnChange = b.Refresh
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) Session() *board.Session { return b.session }

// SetStatus may be called from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() { b.statusBar.SetText(text) })
}

// report shows err in the status bar, or ok when err is nil.
func (b *BoardWidget) report(err error, ok string) {
	if err != nil {
		b.log.Warn("action failed", "err", err)
		b.statusBar.SetText(err.Error())
		return
	}
	if ok != "" {
		b.statusBar.SetText(ok)
	}
}

// ShowScene replaces the displayed board with a snapshot from the host.
// It may be called from any goroutine.
func (b *BoardWidget) ShowScene(s *state.Scene) {
	fyne.Do(func() {
		b.session.Replace(s)
		b.statusBar.SetText(fmt.Sprintf("Showing %d items", s.Count()))
	})
}

func toGeom(p fyne.Position) geom.Point { return geom.Pt(float64(p.X), float64(p.Y)) }

func toFyne(p geom.Point) fyne.Position { return fyne.NewPos(float32(p.X), float32(p.Y)) }

func (b *BoardWidget) world(p fyne.Position) geom.Point { return b.session.ToWorld(toGeom(p)) }

func modifiers(m fyne.KeyModifier, button desktop.MouseButton) board.Modifiers {
	return board.Modifiers{
		Ctrl:        m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0,
		Shift:       m&fyne.KeyModifierShift != 0,
		RightButton: button == desktop.MouseButtonSecondary,
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonTertiary || b.readOnly {
		b.panning = true
		return
	}
	b.mods = modifiers(e.Modifier, e.Button)
	b.pressed = true
	b.session.PointerDown(b.world(e.Position), 1, b.mods)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.panning {
		b.session.PanBy(geom.Pt(float64(e.Dragged.DX), float64(e.Dragged.DY)))
		return
	}
	if b.pressed {
		b.session.PointerMove(b.world(e.Position), 1, b.mods)
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if b.panning {
		b.panning = false
		return
	}
	if !b.pressed {
		return
	}
	b.pressed = false
	b.session.PointerUp(b.world(e.Position), 1, b.mods)
}

func (b *BoardWidget) DragEnd() {}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.session.PanBy(geom.Pt(float64(e.Scrolled.DX), float64(e.Scrolled.DY)))
}

// DoubleTapped completes an editable line.
func (b *BoardWidget) DoubleTapped(*fyne.PointEvent) {
	if b.readOnly || b.session.Tool() != board.ToolEditableLine {
		return
	}
	_, err := b.session.FinishEditableLine()
	b.report(err, "")
}

// TypedKey handles the editing keys; the window forwards them.
func (b *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	if b.readOnly {
		return
	}
	switch e.Name {
	case fyne.KeyDelete, fyne.KeyBackspace:
		b.report(b.session.DeleteSelection(), "")
	case fyne.KeyEscape:
		b.session.CancelDrag()
		b.session.Select()
	case fyne.KeyReturn, fyne.KeyEnter:
		if b.session.Tool() == board.ToolEditableLine {
			_, err := b.session.FinishEditableLine()
			b.report(err, "")
		}
	}
}

// ZoomBy multiplies the zoom, keeping the widget center fixed on screen.
func (b *BoardWidget) ZoomBy(f float64) {
	size := b.Size()
	center := geom.Pt(float64(size.Width)/2, float64(size.Height)/2)
	anchor := b.session.ToWorld(center)
	b.session.SetZoom(b.session.Zoom() * f)
	b.session.PanBy(center.Sub(b.session.ToScreen(anchor)))
}

func (b *BoardWidget) Undo() {
	name, err := b.session.Undo()
	b.report(err, "Undid "+name)
}

func (b *BoardWidget) Redo() {
	name, err := b.session.Redo()
	b.report(err, "Redid "+name)
}

func (b *BoardWidget) SaveToFile(w io.WriteCloser) {
	defer w.Close()
	b.report(b.session.Save(w), fmt.Sprintf("Saved %d items", b.session.Scene().Count()))
}

func (b *BoardWidget) LoadFromFile(r io.ReadCloser) {
	defer r.Close()
	b.report(b.session.Load(r, LoadPixmap), fmt.Sprintf("Loaded %d items", b.session.Scene().Count()))
}

func (b *BoardWidget) ExportPDF(w io.WriteCloser) {
	defer w.Close()
	b.report(export.PDF(w, b.session.Scene(), export.Options{Margin: 20, Background: paperColor}), "Exported PDF")
}

func (b *BoardWidget) ExportPNG(w io.WriteCloser) {
	defer w.Close()
	b.report(export.PNG(w, b.session.Scene(), 2048, export.Options{Margin: 20, Background: paperColor}), "Exported PNG")
}

// InsertImage places the image at path near the top-left of the view.
func (b *BoardWidget) InsertImage(path string) {
	img, err := LoadPixmap(path)
	if err != nil {
		b.report(err, "")
		return
	}
	at := b.session.ToWorld(geom.Pt(20, 20))
	_, err = b.session.AddImage(path, img, geom.Rect{X: at.X, Y: at.Y})
	b.report(err, "Inserted "+path)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(paperColor)
	r.scene = canvas.NewRaster(r.paint)
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	scene      *canvas.Raster
	overlay    []fyne.CanvasObject
}

// paint rasterises the visible world rect at the raster's pixel size.
func (r *boardWidgetRenderer) paint(w, h int) image.Image {
	s := r.board.session
	size := r.board.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	view := geom.RectFromCorners(s.ToWorld(geom.Point{}), s.ToWorld(toGeom(fyne.NewPos(size.Width, size.Height))))
	img, err := export.View(s.Scene(), s.Drafts(), view, w, h, nil)
	if err != nil {
		r.board.log.Debug("paint skipped", "err", err)
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return img
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return append([]fyne.CanvasObject{r.background, r.scene}, r.overlay...)
}

func (r *boardWidgetRenderer) Refresh() {
	r.overlay = r.buildOverlay()
	r.scene.Refresh()
	canvas.Refresh(r.board)
}

// buildOverlay draws selection frame, handles, curve control points and
// the rubber band in screen space.
func (r *boardWidgetRenderer) buildOverlay() []fyne.CanvasObject {
	s := r.board.session
	var out []fyne.CanvasObject
	line := func(a, b geom.Point, c color.Color) {
		l := canvas.NewLine(c)
		l.StrokeWidth = 1
		l.Position1, l.Position2 = toFyne(s.ToScreen(a)), toFyne(s.ToScreen(b))
		out = append(out, l)
	}
	dot := func(p geom.Point, round bool) {
		c := toFyne(s.ToScreen(p)).SubtractXY(handleSize/2, handleSize/2)
		var o fyne.CanvasObject
		if round {
			ci := canvas.NewCircle(color.White)
			ci.StrokeColor, ci.StrokeWidth = selectColor, 1.5
			o = ci
		} else {
			re := canvas.NewRectangle(color.White)
			re.StrokeColor, re.StrokeWidth = selectColor, 1.5
			o = re
		}
		o.Resize(fyne.NewSize(handleSize, handleSize))
		o.Move(c)
		out = append(out, o)
	}

	if ids := s.Selection(); len(ids) > 0 && !r.board.readOnly {
		if hs, err := s.HandlesFor(ids); err == nil {
			corners := []transform.Handle{transform.TopLeft, transform.TopRight, transform.BottomRight, transform.BottomLeft}
			for i, h := range corners {
				line(hs[h], hs[corners[(i+1)%len(corners)]], selectColor)
			}
			line(hs[transform.BottomMiddle], hs[transform.Rotate], selectColor)
			for h := transform.TopLeft; h < transform.Rotate; h++ {
				dot(hs[h], false)
			}
			dot(hs[transform.Rotate], true)
		}
		cps := s.EditablePoints()
		for i, cp := range cps {
			if i > 0 && cps[i-1].Curve == cp.Curve {
				line(cps[i-1].Pos, cp.Pos, color.Gray{Y: 160})
			}
		}
		for _, cp := range cps {
			dot(cp.Pos, true)
		}
	}
	if band, ok := s.RubberBand(); ok {
		re := canvas.NewRectangle(bandFill)
		re.StrokeColor, re.StrokeWidth = selectColor, 1
		re.Move(toFyne(s.ToScreen(band.Min())))
		re.Resize(fyne.NewSize(float32(band.W*s.Zoom()), float32(band.H*s.Zoom())))
		out = append(out, re)
	}
	return out
}

func (r *boardWidgetRenderer) Destroy() {}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.scene.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}
