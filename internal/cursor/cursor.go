// Package cursor implements the cursor smoother and visibility model:
// Gaussian-weighted position smoothing with a slight past-bias, plus an
// activity-driven opacity state machine.
package cursor

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/focusframe/focusframe/internal/blend"
	"github.com/focusframe/focusframe/internal/ease"
	"github.com/focusframe/focusframe/internal/eventlog"
)

// Config holds the cursor smoother's tunables.
type Config struct {
	SmoothWindow      float64 // sigma, seconds
	InactivityTimeout float64 // seconds before fade begins
	FadeDuration      float64 // seconds
	Scale             float64 // multiplicative sprite scale
}

// DefaultConfig returns the spec's literal default cursor tunables.
func DefaultConfig() Config {
	return Config{
		SmoothWindow:      0.15,
		InactivityTimeout: 2.0,
		FadeDuration:      0.3,
		Scale:             1.5,
	}
}

// State is the smoothed cursor position and visibility at a point in time.
type State struct {
	X, Y    float64
	Opacity float64
}

// At evaluates C(t): the smoothed cursor state for timestamp t.
func At(t float64, log *eventlog.EventLog, cfg Config) State {
	x, y := smoothedPosition(t, log.CursorEvents, cfg.SmoothWindow)
	opacity := activityOpacity(t, log.CursorEvents, cfg)
	return State{X: x, Y: y, Opacity: opacity}
}

// smoothedPosition implements the two-sided Gaussian-weighted window
// described in spec.md §4.2: window [t-2*sigma, t+0.5*sigma], with
// positive (future) deltas doubled to bias the average toward the past.
func smoothedPosition(t float64, events []eventlog.PointerEvent, sigma float64) (float64, float64) {
	windowStart := t - sigma*2
	windowEnd := t + sigma*0.5

	var inWindow []eventlog.PointerEvent
	for _, e := range events {
		if e.Timestamp >= windowStart && e.Timestamp <= windowEnd {
			inWindow = append(inWindow, e)
		}
	}

	if len(inWindow) == 0 {
		var last eventlog.PointerEvent
		found := false
		for _, e := range events {
			if e.Timestamp <= t {
				last = e
				found = true
			}
		}
		if !found {
			return 0, 0
		}
		return last.X, last.Y
	}

	if len(inWindow) == 1 {
		return inWindow[0].X, inWindow[0].Y
	}

	xs := make([]float64, len(inWindow))
	ys := make([]float64, len(inWindow))
	weights := make([]float64, len(inWindow))
	var totalWeight float64
	for i, e := range inWindow {
		delta := e.Timestamp - t
		if delta > 0 {
			delta *= 2
		}
		w := math.Exp(-delta * delta / (2 * sigma * sigma))
		xs[i], ys[i], weights[i] = e.X, e.Y, w
		totalWeight += w
	}

	if totalWeight <= 0 {
		return inWindow[0].X, inWindow[0].Y
	}
	return stat.Mean(xs, weights), stat.Mean(ys, weights)
}

// activityOpacity implements the inactivity-fade state machine of
// spec.md §4.2.
func activityOpacity(t float64, events []eventlog.PointerEvent, cfg Config) float64 {
	var lastT float64
	found := false
	for _, e := range events {
		if e.Timestamp <= t {
			lastT = e.Timestamp
			found = true
		}
	}
	if !found {
		return 0
	}

	idle := t - lastT
	switch {
	case idle < cfg.InactivityTimeout:
		return 1
	case idle < cfg.InactivityTimeout+cfg.FadeDuration:
		progress := (idle - cfg.InactivityTimeout) / cfg.FadeDuration
		return 1 - ease.OutCubic(progress)
	default:
		return 0
	}
}

func blendRGBA(dst, src color.RGBA, alpha uint8) color.RGBA {
	return color.RGBA{
		R: blend.Channel(dst.R, src.R, alpha),
		G: blend.Channel(dst.G, src.G, alpha),
		B: blend.Channel(dst.B, src.B, alpha),
		A: 255,
	}
}

// CursorBaseHeight is the sprite's nominal height in pixels before any
// user or layout scale is applied.
const CursorBaseHeight = 32.0

// Draw composites the cursor sprite onto canvas at (x, y) in canvas
// space, tip-anchored, scaled to CursorBaseHeight*scale and faded by
// opacity. Draw does not check opacity against the compositor's
// visibility threshold; callers skip the call below that threshold.
func Draw(canvas *image.RGBA, sprite *image.RGBA, x, y, scale, opacity float64) {
	scaled := Resize(sprite, scale)
	px, py := int(x), int(y)
	bounds := canvas.Bounds()
	sb := scaled.Bounds()

	for cy := 0; cy < sb.Dy(); cy++ {
		for cx := 0; cx < sb.Dx(); cx++ {
			canvasX := px + cx
			canvasY := py + cy
			if canvasX < bounds.Min.X || canvasX >= bounds.Max.X || canvasY < bounds.Min.Y || canvasY >= bounds.Max.Y {
				continue
			}
			sp := scaled.RGBAAt(sb.Min.X+cx, sb.Min.Y+cy)
			if sp.A == 0 {
				continue
			}
			a := uint8(float64(sp.A) * opacity)
			if a == 0 {
				continue
			}
			dst := canvas.RGBAAt(canvasX, canvasY)
			canvas.SetRGBA(canvasX, canvasY, blendRGBA(dst, sp, a))
		}
	}
}
