// Package config defines the pipeline's configuration surface: every
// spec.md §6 processing option, the additional core tunables named in
// spec.md §4 but not exposed as flags there, and the capture-only
// options for the ambient `record` subcommand. Loaded via viper with
// flags > env > YAML file > defaults precedence.
package config

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/focusframe/focusframe/internal/pipelineerr"
)

// Config is the fully resolved, flat configuration for a `process` run.
type Config struct {
	// Processing (spec.md §6)
	Background      string  `mapstructure:"background"`
	TrimStart       float64 `mapstructure:"trim_start"`
	TrimEnd         float64 `mapstructure:"trim_end"`
	CursorScale     float64 `mapstructure:"cursor_scale"`
	// CursorTimeout is the seconds of inactivity before the cursor
	// starts fading (internal/cursor.Config.InactivityTimeout).
	CursorTimeout    float64 `mapstructure:"cursor_timeout"`
	NoCursor         bool    `mapstructure:"no_cursor"`
	NoMotionBlur     bool    `mapstructure:"no_motion_blur"`
	NoClickHighlight bool    `mapstructure:"no_click_highlight"`

	// Trajectory tunables, named in spec.md §4.1 but not CLI flags there.
	MaxZoom  float64 `mapstructure:"max_zoom"`
	EaseIn   float64 `mapstructure:"ease_in"`
	Hold     float64 `mapstructure:"hold"`
	EaseOut  float64 `mapstructure:"ease_out"`
	Debounce float64 `mapstructure:"debounce"`

	// Cursor smoother tunables (spec.md §4.2). Inactivity timeout is
	// CursorTimeout above, not duplicated here.
	SmoothWindow float64 `mapstructure:"smooth_window"`
	FadeDuration float64 `mapstructure:"fade_duration"`

	// Ripple tunables (spec.md §4.3).
	RippleDuration  float64 `mapstructure:"ripple_duration"`
	RippleMaxRadius float64 `mapstructure:"ripple_max_radius"`
	RippleRingWidth float64 `mapstructure:"ripple_ring_width"`

	// Motion blur tunables (spec.md §4.5).
	ZoomBlurStrength  float64 `mapstructure:"zoom_blur_strength"`
	ZoomBlurSamples   int     `mapstructure:"zoom_blur_samples"`
	PanBlurStrength   float64 `mapstructure:"pan_blur_strength"`
	PanBlurSamples    int     `mapstructure:"pan_blur_samples"`
	VelocityThreshold float64 `mapstructure:"velocity_threshold"`

	// Concurrency
	Workers int `mapstructure:"workers"`

	// Capture-only, outside the core pipeline.
	Capture struct {
		DisplayIndex int    `mapstructure:"display_index"`
		OutputDir    string `mapstructure:"output_dir"`
		TargetFPS    int    `mapstructure:"target_fps"`
	} `mapstructure:"capture"`

	Verbose bool `mapstructure:"verbose"`
}

// NewDefaultConfig returns Config populated with spec.md's literal
// defaults, before any layer (file/env/flags) is applied.
func NewDefaultConfig() *Config {
	cfg := &Config{
		TrimStart:        0,
		TrimEnd:          0,
		CursorScale:      1.5,
		CursorTimeout:    2.0,
		MaxZoom:          1.5,
		EaseIn:           0.6,
		Hold:             4.0,
		EaseOut:          0.8,
		Debounce:         0.5,
		SmoothWindow:     0.15,
		FadeDuration:     0.3,
		RippleDuration:   0.4,
		RippleMaxRadius:  50,
		RippleRingWidth:  3,
		ZoomBlurStrength: 90,
		ZoomBlurSamples:  16,
		PanBlurStrength:  60,
		PanBlurSamples:   12,
		VelocityThreshold: 0.05,
		Workers:          0, // 0 => runtime.NumCPU()
	}
	cfg.Capture.OutputDir = "."
	cfg.Capture.TargetFPS = 30
	return cfg
}

// Load builds a Config from defaults, an optional YAML file, the
// FOCUSFRAME_-prefixed environment, and cobra flags bound onto v
// before this call, in ascending precedence.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	cfg := NewDefaultConfig()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &pipelineerr.ConfigError{Field: "config", Err: err}
		}
	}

	v.SetEnvPrefix("FOCUSFRAME")
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, &pipelineerr.ConfigError{Err: err}
	}
	return cfg, nil
}

// Validate checks cross-field invariants that can only be judged once
// every layer has been applied. sourceDuration is the original video's
// duration in seconds, 0 if not yet known.
func (c *Config) Validate(sourceDuration float64) error {
	if c.TrimStart < 0 {
		return &pipelineerr.ConfigError{Field: "trim_start", Err: fmt.Errorf("must be >= 0, got %v", c.TrimStart)}
	}
	if c.TrimEnd < 0 {
		return &pipelineerr.ConfigError{Field: "trim_end", Err: fmt.Errorf("must be >= 0, got %v", c.TrimEnd)}
	}
	if sourceDuration > 0 && c.TrimStart+c.TrimEnd >= sourceDuration {
		return &pipelineerr.ConfigError{
			Field: "trim_start/trim_end",
			Err:   fmt.Errorf("trim_start+trim_end (%.2fs) exceeds source duration (%.2fs)", c.TrimStart+c.TrimEnd, sourceDuration),
		}
	}
	if _, err := ParseBackground(c.Background); err != nil {
		return &pipelineerr.ConfigError{Field: "background", Err: err}
	}
	return nil
}

// ParseBackground validates a background spec without loading the full
// image, for use by Validate. A "" spec and a "#rrggbb" spec always
// validate; anything else must be a readable file.
func ParseBackground(spec string) (bool, error) {
	if spec == "" {
		return true, nil
	}
	if isHexColor(spec) {
		return true, nil
	}
	f, err := os.Open(spec)
	if err != nil {
		return false, fmt.Errorf("background %q is neither a #rrggbb color nor a readable image path: %w", spec, err)
	}
	defer f.Close()
	_, _, err = image.DecodeConfig(f)
	if err != nil {
		return false, fmt.Errorf("background image %q could not be decoded: %w", spec, err)
	}
	return true, nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	return strings.IndexFunc(s[1:], func(r rune) bool {
		return !strings.ContainsRune("0123456789abcdefABCDEF", r)
	}) == -1
}
