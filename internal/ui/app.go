package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const appID = "io.vectorboard.app"

// RunApp shows the board window and blocks until it is closed.
func RunApp(title, shareLink string, b *BoardWidget) {
	myApp := app.NewWithID(appID)
	NewWindow(myApp, title, shareLink, b).ShowAndRun()
}

// NewWindow lays out b with its toolbar and status bar. Editable boards
// get the toolbar and shortcuts; shareLink, if set, can be copied from the
// status bar.
func NewWindow(a fyne.App, title, shareLink string, b *BoardWidget) fyne.Window {
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(1024, 768))

	var top fyne.CanvasObject
	if !b.readOnly {
		top = NewToolbar(b, w)
	}
	bottom := container.NewHBox(b.statusBar, layout.NewSpacer())
	if shareLink != "" {
		bottom.Add(widget.NewLabel(shareLink))
		bottom.Add(widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
			w.Clipboard().SetContent(shareLink)
			b.statusBar.SetText("Link copied")
		}))
	}
	installShortcuts(w, b)
	w.SetContent(container.NewBorder(top, bottom, nil, nil, b))
	return w
}

func installShortcuts(w fyne.Window, b *BoardWidget) {
	c := w.Canvas()
	c.SetOnTypedKey(b.TypedKey)
	add := func(key fyne.KeyName, mod fyne.KeyModifier, fn func()) {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
	}
	add(fyne.KeyEqual, fyne.KeyModifierShortcutDefault, func() { b.ZoomBy(1.25) })
	add(fyne.KeyMinus, fyne.KeyModifierShortcutDefault, func() { b.ZoomBy(0.8) })
	if b.readOnly {
		return
	}
	add(fyne.KeyZ, fyne.KeyModifierShortcutDefault, b.Undo)
	add(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift, b.Redo)
	add(fyne.KeyY, fyne.KeyModifierShortcutDefault, b.Redo)
	add(fyne.KeyA, fyne.KeyModifierShortcutDefault, b.session.SelectAll)
}
