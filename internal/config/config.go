// Package config loads VectorBoard settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Fit controls stroke-to-curve fitting.
type Fit struct {
	Degree int `toml:"degree"`
	// SmoothingPerSample scales the residual bound: s = SmoothingPerSample * n.
	SmoothingPerSample float64 `toml:"smoothing_per_sample"`
	MaxSamples         int     `toml:"max_samples"`
	Resolution         int     `toml:"resolution"`
}

// Edit holds interaction tolerances, in screen pixels unless noted.
type Edit struct {
	PickTolerancePx    float64 `toml:"pick_tolerance_px"`
	HandleRadiusPx     float64 `toml:"handle_radius_px"`
	RotateHandleOffset float64 `toml:"rotate_handle_offset_px"`
	MinSize            float64 `toml:"min_size"` // world units
	EraserRadius       float64 `toml:"eraser_radius"`
	StrokeWidth        float32 `toml:"stroke_width"`
	Color              string  `toml:"color"`
}

type Undo struct {
	// Limit caps the history length: 0 uses the built-in default and a
	// negative value keeps everything.
	Limit int `toml:"limit"`
}

// Mirror configures the read-only LAN mirror of the board.
type Mirror struct {
	Enabled   bool   `toml:"enabled"`
	Port      int    `toml:"port"`
	Advertise bool   `toml:"advertise"`
	Scheme    string `toml:"scheme"`
}

type Log struct {
	Level string `toml:"level"`
}

type Config struct {
	Fit    Fit    `toml:"fit"`
	Edit   Edit   `toml:"edit"`
	Undo   Undo   `toml:"undo"`
	Mirror Mirror `toml:"mirror"`
	Log    Log    `toml:"log"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Fit: Fit{
			Degree:             3,
			SmoothingPerSample: 1.0,
			MaxSamples:         256,
			Resolution:         100,
		},
		Edit: Edit{
			PickTolerancePx:    10,
			HandleRadiusPx:     6,
			RotateHandleOffset: 30,
			MinSize:            5,
			EraserRadius:       10,
			StrokeWidth:        3,
			Color:              "#000000ff",
		},
		Undo:   Undo{Limit: 200},
		Mirror: Mirror{Enabled: true, Port: 8888, Advertise: true, Scheme: "vectorboard://"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path and overlays its values on Default. A missing file is not
// an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

var ErrInvalid = errors.New("invalid config")

// Validate rejects settings the engine cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Fit.Degree < 1 || c.Fit.Degree > 5:
		return fmt.Errorf("%w: fit.degree %d out of range 1..5", ErrInvalid, c.Fit.Degree)
	case c.Fit.SmoothingPerSample < 0:
		return fmt.Errorf("%w: fit.smoothing_per_sample must be >= 0", ErrInvalid)
	case c.Fit.MaxSamples < c.Fit.Degree+1:
		return fmt.Errorf("%w: fit.max_samples must be > degree", ErrInvalid)
	case c.Fit.Resolution < 2:
		return fmt.Errorf("%w: fit.resolution must be >= 2", ErrInvalid)
	case c.Edit.MinSize <= 0:
		return fmt.Errorf("%w: edit.min_size must be > 0", ErrInvalid)
	case c.Edit.PickTolerancePx <= 0 || c.Edit.EraserRadius <= 0:
		return fmt.Errorf("%w: edit tolerances must be > 0", ErrInvalid)
	case c.Mirror.Port < 0 || c.Mirror.Port > 65535:
		return fmt.Errorf("%w: mirror.port %d", ErrInvalid, c.Mirror.Port)
	}
	return nil
}
