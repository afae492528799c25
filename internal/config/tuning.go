// Package config loads analysis thresholds from JSON tuning files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/mudra/internal/vision"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// maxFileSize bounds tuning files; anything larger is not a tuning file.
const maxFileSize = 1 * 1024 * 1024

// Range is an inclusive [min, max] interval for one color channel.
type Range [2]float64

// TuningConfig holds optional overrides for vision.Params. Fields omitted
// from the JSON keep the vision defaults, so partial files are safe.
type TuningConfig struct {
	// Skin color ranges
	Hue        *Range `json:"hue,omitempty"`
	Saturation *Range `json:"saturation,omitempty"`
	Value      *Range `json:"value,omitempty"`
	Luma       *Range `json:"luma,omitempty"`
	Cr         *Range `json:"cr,omitempty"`
	Cb         *Range `json:"cb,omitempty"`

	// Contour and finger geometry
	MinHandArea    *float64 `json:"min_hand_area,omitempty"`
	MinDefectDepth *float64 `json:"min_defect_depth,omitempty"`
	MaxValleyAngle *float64 `json:"max_valley_angle,omitempty"`
	MinTipGap      *float64 `json:"min_tip_gap,omitempty"`

	// Thumbs-up test
	ThumbMinRise       *float64 `json:"thumb_min_rise,omitempty"`
	ThumbVerticality   *float64 `json:"thumb_verticality,omitempty"`
	ThumbMinElongation *float64 `json:"thumb_min_elongation,omitempty"`
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that every set value is in range.
func (c *TuningConfig) Validate() error {
	channels := []struct {
		name string
		r    *Range
		max  float64
	}{
		{"hue", c.Hue, 180},
		{"saturation", c.Saturation, 255},
		{"value", c.Value, 255},
		{"luma", c.Luma, 255},
		{"cr", c.Cr, 255},
		{"cb", c.Cb, 255},
	}
	for _, ch := range channels {
		if ch.r == nil {
			continue
		}
		lo, hi := ch.r[0], ch.r[1]
		if lo < 0 || hi > ch.max || lo > hi {
			return fmt.Errorf("%s range must satisfy 0 <= min <= max <= %.0f, got [%g, %g]", ch.name, ch.max, lo, hi)
		}
	}

	positives := []struct {
		name string
		v    *float64
	}{
		{"min_hand_area", c.MinHandArea},
		{"min_defect_depth", c.MinDefectDepth},
		{"min_tip_gap", c.MinTipGap},
		{"thumb_min_rise", c.ThumbMinRise},
		{"thumb_verticality", c.ThumbVerticality},
	}
	for _, p := range positives {
		if p.v != nil && *p.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %g", p.name, *p.v)
		}
	}

	if c.MaxValleyAngle != nil && (*c.MaxValleyAngle <= 0 || *c.MaxValleyAngle > 180) {
		return fmt.Errorf("max_valley_angle must be in (0, 180], got %g", *c.MaxValleyAngle)
	}
	if c.ThumbMinElongation != nil && *c.ThumbMinElongation < 1 {
		return fmt.Errorf("thumb_min_elongation must be >= 1, got %g", *c.ThumbMinElongation)
	}

	return nil
}

// Apply returns a copy of p with every set field overridden.
func (c *TuningConfig) Apply(p vision.Params) vision.Params {
	if c == nil {
		return p
	}

	setRange := func(r *Range, cr *vision.ColorRange, ch int) {
		if r != nil {
			cr.Lower[ch], cr.Upper[ch] = r[0], r[1]
		}
	}
	setRange(c.Hue, &p.HSV, 0)
	setRange(c.Saturation, &p.HSV, 1)
	setRange(c.Value, &p.HSV, 2)
	setRange(c.Luma, &p.YCrCb, 0)
	setRange(c.Cr, &p.YCrCb, 1)
	setRange(c.Cb, &p.YCrCb, 2)

	setFloat := func(v *float64, dst *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setFloat(c.MinHandArea, &p.MinHandArea)
	setFloat(c.MinDefectDepth, &p.MinDefectDepth)
	setFloat(c.MaxValleyAngle, &p.MaxValleyAngle)
	setFloat(c.MinTipGap, &p.MinTipGap)
	setFloat(c.ThumbMinRise, &p.ThumbMinRise)
	setFloat(c.ThumbVerticality, &p.ThumbVerticality)
	setFloat(c.ThumbMinElongation, &p.ThumbMinElongation)

	return p
}

// FromParams captures every field of p as a fully populated TuningConfig.
func FromParams(p vision.Params) *TuningConfig {
	rng := func(cr vision.ColorRange, ch int) *Range {
		return &Range{cr.Lower[ch], cr.Upper[ch]}
	}
	f := func(v float64) *float64 { return &v }

	return &TuningConfig{
		Hue:                rng(p.HSV, 0),
		Saturation:         rng(p.HSV, 1),
		Value:              rng(p.HSV, 2),
		Luma:               rng(p.YCrCb, 0),
		Cr:                 rng(p.YCrCb, 1),
		Cb:                 rng(p.YCrCb, 2),
		MinHandArea:        f(p.MinHandArea),
		MinDefectDepth:     f(p.MinDefectDepth),
		MaxValleyAngle:     f(p.MaxValleyAngle),
		MinTipGap:          f(p.MinTipGap),
		ThumbMinRise:       f(p.ThumbMinRise),
		ThumbVerticality:   f(p.ThumbVerticality),
		ThumbMinElongation: f(p.ThumbMinElongation),
	}
}

// LoadParams returns vision defaults with the overrides from path applied.
// An empty path yields the defaults unchanged.
func LoadParams(path string) (vision.Params, error) {
	p := vision.DefaultParams()
	if path == "" {
		return p, nil
	}
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		return p, err
	}
	return cfg.Apply(p), nil
}
