// Package board is the editing session behind a VectorBoard canvas. A
// Session turns pointer input into scene edits through the active tool and
// records every structural change in its undo history.
//
// A Session is not safe for concurrent use: the host calls it from its UI
// goroutine only.
package board

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"

	"VectorBoard/internal/config"
	"VectorBoard/internal/geom"
	"VectorBoard/internal/logx"
	"VectorBoard/internal/spline"
	"VectorBoard/internal/state"
	"VectorBoard/internal/undo"
)

type Tool uint8

const (
	ToolPen Tool = iota
	ToolCurve
	ToolEraser
	ToolSelect
	ToolLine
	ToolRectangle
	ToolCircle
	ToolEditableLine
)

var toolNames = [...]string{"pen", "curve", "eraser", "select", "line", "rectangle", "circle", "editable-line"}

func (t Tool) String() string {
	if int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("tool(%d)", uint8(t))
}

// Modifiers is the button and key state accompanying a pointer event.
type Modifiers struct {
	Ctrl        bool
	Shift       bool
	RightButton bool
}

// Style is applied to newly drawn items and, through SetStyle, to the
// selection.
type Style struct {
	Color     color.RGBA
	Width     float32
	LineStyle state.LineStyle
	Fill      *color.RGBA
}

const (
	MinZoom = 0.1
	MaxZoom = 10
)

type Session struct {
	cfg     config.Config
	scene   *state.Scene
	history *undo.Manager
	log     *slog.Logger

	tool  Tool
	style Style
	zoom  float64
	pan   geom.Point

	sel Selection

	stroke   *stroke
	drag     *drag
	band     *band
	draft    *shapeDraft
	editLine []geom.Point
	erasing  *eraseGesture

	// OnChange runs after every change to the scene, selection or view.
	OnChange func()
}

// NewSession returns a session over an empty scene. cfg.Fit.Resolution
// becomes the process-wide curve resolution.
func NewSession(cfg config.Config) *Session {
	state.SetCurveResolution(cfg.Fit.Resolution)
	s := &Session{
		cfg:  cfg,
		zoom: 1,
		log:  logx.For("board"),
	}
	c, err := state.ParseColor(cfg.Edit.Color)
	if err != nil {
		s.log.Warn("bad default color", "color", cfg.Edit.Color, "err", err)
		c = color.RGBA{A: 255}
	}
	s.style = Style{Color: c, Width: cfg.Edit.StrokeWidth}
	s.reset(state.NewScene())
	return s
}

func (s *Session) reset(scene *state.Scene) {
	s.scene = scene
	s.history = undo.NewManager(scene, s.cfg.Undo.Limit)
	s.sel.Clear()
	s.stroke, s.drag, s.band, s.draft, s.editLine, s.erasing = nil, nil, nil, nil, nil, nil
}

func (s *Session) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// Scene gives read access to the items. Mutate through the session only.
func (s *Session) Scene() *state.Scene { return s.scene }

// History returns the undo manager of the current scene.
func (s *Session) History() *undo.Manager { return s.history }

func (s *Session) Config() config.Config { return s.cfg }

func (s *Session) Tool() Tool { return s.tool }

// SetTool switches tools, abandoning any gesture in progress.
func (s *Session) SetTool(t Tool) {
	s.abandon()
	if t != ToolSelect {
		s.sel.Clear()
	}
	s.tool = t
	s.log.Debug("tool", "tool", t)
	s.notify()
}

func (s *Session) Style() Style { return s.style }

func (s *Session) Zoom() float64 { return s.zoom }

// SetZoom clamps z to [MinZoom, MaxZoom]. Pick tolerances are divided by
// the zoom so they stay constant on screen.
func (s *Session) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	s.zoom = math.Max(MinZoom, math.Min(MaxZoom, z))
	s.notify()
}

func (s *Session) Pan() geom.Point { return s.pan }

func (s *Session) PanBy(d geom.Point) {
	s.pan = s.pan.Add(d)
	s.notify()
}

// ToWorld converts a screen position to world coordinates.
func (s *Session) ToWorld(p geom.Point) geom.Point {
	return p.Sub(s.pan).Mul(1 / s.zoom)
}

// ToScreen converts a world position to screen coordinates.
func (s *Session) ToScreen(p geom.Point) geom.Point {
	return p.Mul(s.zoom).Add(s.pan)
}

// worldTol converts a screen-pixel tolerance into world units.
func (s *Session) worldTol(px float64) float64 { return px / s.zoom }

func (s *Session) fitOptions() spline.Options {
	return spline.Options{
		Degree:             s.cfg.Fit.Degree,
		SmoothingPerSample: s.cfg.Fit.SmoothingPerSample,
		MaxSamples:         s.cfg.Fit.MaxSamples,
	}
}

// abandon drops every unfinished gesture. A live drag is rolled back; a
// partial erase gesture is kept and recorded.
func (s *Session) abandon() {
	if s.drag != nil {
		s.CancelDrag()
	}
	if s.erasing != nil {
		s.finishErase()
	}
	s.stroke, s.band, s.draft, s.editLine = nil, nil, nil, nil
}

// Undo reverts the latest command.
func (s *Session) Undo() (string, error) {
	s.abandon()
	name, err := s.history.Undo()
	s.sel.prune(s.scene)
	s.notify()
	return name, err
}

// Redo re-applies the latest undone command.
func (s *Session) Redo() (string, error) {
	s.abandon()
	name, err := s.history.Redo()
	s.sel.prune(s.scene)
	s.notify()
	return name, err
}

// Save writes the scene as a JSON document.
func (s *Session) Save(w io.Writer) error {
	return state.Encode(w, s.scene)
}

// Load replaces the scene with a decoded document. History starts over.
func (s *Session) Load(r io.Reader, load state.PixmapLoader) error {
	scene, err := state.Decode(r, load)
	if err != nil {
		return err
	}
	s.Replace(scene)
	s.log.Info("loaded board", "items", scene.Count())
	return nil
}

// Replace swaps in scene and starts a fresh history. Viewers use it to show
// each snapshot received from the host.
func (s *Session) Replace(scene *state.Scene) {
	s.reset(scene)
	s.notify()
}
