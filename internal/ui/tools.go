package ui

import (
	"image/color"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"VectorBoard/internal/board"
	"VectorBoard/internal/state"
)

var palette = []color.NRGBA{
	{A: 255},
	{R: 255, A: 255},
	{G: 160, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 200, A: 255},
}

var toolOrder = []board.Tool{
	board.ToolPen, board.ToolCurve, board.ToolEraser, board.ToolSelect,
	board.ToolLine, board.ToolRectangle, board.ToolCircle, board.ToolEditableLine,
}

var lineStyles = []state.LineStyle{state.StyleSolid, state.StyleDashed, state.StyleDotted}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

func toRGBA(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}

// UpdateStyle edits the current style and applies it to the selection.
func (b *BoardWidget) UpdateStyle(edit func(*board.Style)) {
	st := b.session.Style()
	edit(&st)
	b.report(b.session.SetStyle(st), "")
}

// NewToolbar builds the editing controls for b. win hosts the file dialogs.
func NewToolbar(b *BoardWidget, win fyne.Window) fyne.CanvasObject {
	names := make([]string, len(toolOrder))
	for i, t := range toolOrder {
		names[i] = t.String()
	}
	toolSelect := widget.NewSelect(names, func(name string) {
		for _, t := range toolOrder {
			if t.String() == name {
				b.session.SetTool(t)
				b.statusBar.SetText("Tool: " + name)
			}
		}
	})
	toolSelect.SetSelected(b.session.Tool().String())

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), b.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), b.Redo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { b.report(b.session.DeleteSelection(), "") }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { b.report(b.session.ClearAll(), "Cleared") }),
		widget.NewToolbarAction(theme.MoveUpIcon(), func() { b.report(b.session.BringToFront(), "") }),
		widget.NewToolbarAction(theme.MoveDownIcon(), func() { b.report(b.session.SendToBack(), "") }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { b.ZoomBy(1.25) }),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { b.ZoomBy(0.8) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { showSave(b, win, ".json", b.SaveToFile) }),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() { showOpen(b, win) }),
		widget.NewToolbarAction(theme.FileImageIcon(), func() { showInsertImage(b, win) }),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() { showSave(b, win, ".pdf", b.ExportPDF) }),
		widget.NewToolbarAction(theme.DownloadIcon(), func() { showSave(b, win, ".png", b.ExportPNG) }),
	)

	onColorTapped := func(c color.Color) {
		b.UpdateStyle(func(st *board.Style) {
			st.Color = toRGBA(c)
			if st.Fill != nil {
				fill := st.Color
				st.Fill = &fill
			}
		})
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(float64(b.session.Style().Width))
	strokeSlider.OnChangeEnded = func(val float64) {
		b.UpdateStyle(func(st *board.Style) { st.Width = float32(val) })
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	styleNames := make([]string, len(lineStyles))
	for i, ls := range lineStyles {
		styleNames[i] = ls.String()
	}
	styleSelect := widget.NewSelect(styleNames, func(name string) {
		for _, ls := range lineStyles {
			if ls.String() == name && ls != b.session.Style().LineStyle {
				b.UpdateStyle(func(st *board.Style) { st.LineStyle = ls })
			}
		}
	})
	styleSelect.SetSelected(b.session.Style().LineStyle.String())

	fillCheck := widget.NewCheck("Fill", func(on bool) {
		b.UpdateStyle(func(st *board.Style) {
			st.Fill = nil
			if on {
				fill := st.Color
				st.Fill = &fill
			}
		})
	})

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolSelect,
		tb,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		styleSelect,
		fillCheck,
		layout.NewSpacer(),
	)
}

func showSave(b *BoardWidget, win fyne.Window, ext string, write func(io.WriteCloser)) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			b.report(err, "")
			return
		}
		if w == nil {
			return
		}
		write(w)
	}, win)
	d.SetFileName("board" + ext)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}

func showOpen(b *BoardWidget, win fyne.Window) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			b.report(err, "")
			return
		}
		if r == nil {
			return
		}
		b.LoadFromFile(r)
	}, win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func showInsertImage(b *BoardWidget, win fyne.Window) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			b.report(err, "")
			return
		}
		if r == nil {
			return
		}
		r.Close()
		b.InsertImage(r.URI().Path())
	}, win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".bmp", ".webp"}))
	d.Show()
}
