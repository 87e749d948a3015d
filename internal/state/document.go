package state

import (
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/google/uuid"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/spline"
)

// DocumentVersion is written into every saved board.
const DocumentVersion = 1

// Document is the on-disk and on-wire form of a scene.
type Document struct {
	Version  int        `json:"version"`
	Site     string     `json:"site,omitempty"`
	Revision uint64     `json:"revision"`
	Images   []ImageDoc `json:"images"`
	Shapes   []ShapeDoc `json:"shapes"`
	Lines    []LineDoc  `json:"lines"`
	Curves   []CurveDoc `json:"curves"`
}

type LineDoc struct {
	UID    string       `json:"uid"`
	Points []geom.Point `json:"points"`
	Color  string       `json:"color"`
	Width  float32      `json:"width"`
}

type ShapeDoc struct {
	UID    string       `json:"uid"`
	Shape  string       `json:"shape"`
	Color  string       `json:"color"`
	Width  float32      `json:"width"`
	Style  string       `json:"line_style"`
	Fill   string       `json:"fill,omitempty"`
	Rect   geom.Rect    `json:"rect"`
	Angle  float64      `json:"angle"`
	Points []geom.Point `json:"points,omitempty"`
}

type ImageDoc struct {
	UID   string    `json:"uid"`
	Rect  geom.Rect `json:"rect"`
	Angle float64   `json:"angle"`
	Path  string    `json:"path"`
}

// CurveDoc stores a fitted curve losslessly: re-evaluating it after a round
// trip yields the same polyline.
type CurveDoc struct {
	UID           string       `json:"uid"`
	ControlPoints []geom.Point `json:"control_points"`
	Knots         []float64    `json:"knots"`
	Degree        int          `json:"degree"`
	Parameters    []float64    `json:"parameters"`
	Color         string       `json:"color"`
	Width         float32      `json:"width"`
}

// PixmapLoader resolves an image path to pixels when a document is loaded.
type PixmapLoader func(path string) (image.Image, error)

var shapeNames = map[string]ShapeKind{
	"line": ShapeLine, "rectangle": ShapeRectangle, "circle": ShapeCircle,
	"path": ShapePath, "editable_line": ShapeEditableLine,
}

var styleNames = map[string]LineStyle{"solid": StyleSolid, "dashed": StyleDashed, "dotted": StyleDotted}

// Export converts the scene into a Document.
func Export(s *Scene) Document {
	doc := Document{Version: DocumentVersion, Site: SiteID(), Revision: s.Revision()}
	sn := s.Snapshot()
	for _, entries := range sn {
		for _, e := range entries {
			uid := e.UID.String()
			switch v := e.Item.(type) {
			case *Line:
				doc.Lines = append(doc.Lines, LineDoc{UID: uid, Points: v.Points, Color: FormatColor(v.Color), Width: v.Width})
			case *Shape:
				sd := ShapeDoc{
					UID: uid, Shape: v.Shape.String(), Color: FormatColor(v.Color), Width: v.Width,
					Style: v.Style.String(), Rect: v.Rect, Angle: v.Angle, Points: v.Points,
				}
				if v.Fill != nil {
					sd.Fill = FormatColor(*v.Fill)
				}
				doc.Shapes = append(doc.Shapes, sd)
			case *Image:
				doc.Images = append(doc.Images, ImageDoc{UID: uid, Rect: v.Rect, Angle: v.Angle, Path: v.Path})
			case *Curve:
				doc.Curves = append(doc.Curves, CurveDoc{
					UID: uid, ControlPoints: v.Spline.ControlPoints, Knots: v.Spline.Knots,
					Degree: v.Spline.Degree, Parameters: v.Spline.Parameters,
					Color: FormatColor(v.Color), Width: v.Thickness,
				})
			}
		}
	}
	return doc
}

// Encode writes the scene as indented JSON.
func Encode(w io.Writer, s *Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(s)); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Decode reads a JSON document into a fresh scene. load may be nil, in
// which case images carry no pixmap.
func Decode(r io.Reader, load PixmapLoader) (*Scene, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return Import(doc, load)
}

// Import builds a scene from doc.
func Import(doc Document, load PixmapLoader) (*Scene, error) {
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("document version %d is newer than %d", doc.Version, DocumentVersion)
	}
	s := NewScene()
	add := func(uid string, it Item) error {
		u, err := uuid.Parse(uid)
		if err != nil {
			u = uuid.Nil
		}
		_, err = s.InsertWithUID(it, -1, u)
		return err
	}
	for _, d := range doc.Images {
		im := &Image{Rect: d.Rect, Angle: d.Angle, Path: d.Path}
		if load != nil && d.Path != "" {
			px, err := load(d.Path)
			if err != nil {
				return nil, fmt.Errorf("load image %s: %w", d.Path, err)
			}
			im.Pixmap = px
		}
		if err := add(d.UID, im); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Shapes {
		kind, ok := shapeNames[d.Shape]
		if !ok {
			return nil, fmt.Errorf("unknown shape %q", d.Shape)
		}
		c, err := ParseColor(d.Color)
		if err != nil {
			return nil, err
		}
		sh := &Shape{Shape: kind, Color: c, Width: d.Width, Style: styleNames[d.Style],
			Rect: d.Rect, Angle: d.Angle, Points: d.Points}
		if d.Fill != "" {
			f, err := ParseColor(d.Fill)
			if err != nil {
				return nil, err
			}
			sh.Fill = &f
		}
		if err := add(d.UID, sh); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Lines {
		c, err := ParseColor(d.Color)
		if err != nil {
			return nil, err
		}
		if err := add(d.UID, &Line{Points: d.Points, Color: c, Width: d.Width}); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Curves {
		c, err := ParseColor(d.Color)
		if err != nil {
			return nil, err
		}
		sp := spline.Spline{ControlPoints: d.ControlPoints, Knots: d.Knots, Degree: d.Degree, Parameters: d.Parameters}
		if err := sp.Validate(); err != nil {
			return nil, fmt.Errorf("curve %s: %w", d.UID, err)
		}
		if err := add(d.UID, &Curve{Spline: sp, Color: c, Thickness: d.Width}); err != nil {
			return nil, err
		}
	}
	s.clock.Update(doc.Revision)
	return s, nil
}
