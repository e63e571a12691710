// Package ripple implements the click-ripple renderer: transient
// expanding ring animations drawn over every click event, independent of
// trajectory debouncing.
package ripple

import (
	"image"
	"image/color"
	"math"

	"github.com/focusframe/focusframe/internal/blend"
	"github.com/focusframe/focusframe/internal/ease"
	"github.com/focusframe/focusframe/internal/eventlog"
)

// Config holds the ripple renderer's tunables.
type Config struct {
	Enabled   bool
	Duration  float64 // seconds
	MaxRadius float64 // px
	RingWidth float64 // px
	Color     color.RGBA
}

// DefaultConfig returns the spec's literal default ripple tunables.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Duration:  0.4,
		MaxRadius: 50,
		RingWidth: 3,
		Color:     color.RGBA{255, 255, 255, 255},
	}
}

// Ripple is a single active ring in event-space coordinates.
type Ripple struct {
	X, Y     float64
	Progress float64 // 0..1
}

// Active returns R(t): every click whose animation window still covers
// t, regardless of whether it was debounced out of the trajectory.
func Active(t float64, log *eventlog.EventLog, cfg Config) []Ripple {
	var out []Ripple
	for _, e := range log.CursorEvents {
		if !e.IsClick() {
			continue
		}
		elapsed := t - e.Timestamp
		if elapsed >= 0 && elapsed < cfg.Duration {
			out = append(out, Ripple{X: e.X, Y: e.Y, Progress: elapsed / cfg.Duration})
		}
	}
	return out
}

// Draw renders every ripple (already transformed to canvas space via
// centerX, centerY per ripple) onto canvas.
func Draw(canvas *image.RGBA, ripples []Ripple, cfg Config) {
	if !cfg.Enabled {
		return
	}
	for _, r := range ripples {
		drawRing(canvas, r.X, r.Y, r.Progress, cfg)
	}
}

func drawRing(canvas *image.RGBA, centerX, centerY, progress float64, cfg Config) {
	eased := ease.OutCubic(progress)
	radius := cfg.MaxRadius * eased
	opacity := 1 - eased

	if radius < 1 || opacity < 0.01 {
		return
	}

	shadowWidth := cfg.RingWidth + 3
	shadowInner := math.Max(radius-shadowWidth/2, 0)
	shadowOuter := radius + shadowWidth/2
	shadowColor := color.RGBA{0, 0, 0, 150}
	drawRingPixels(canvas, centerX, centerY, shadowInner, shadowOuter, opacity*0.6, shadowColor)

	innerRadius := math.Max(radius-cfg.RingWidth/2, 0)
	outerRadius := radius + cfg.RingWidth/2
	drawRingPixels(canvas, centerX, centerY, innerRadius, outerRadius, opacity, cfg.Color)
}

func drawRingPixels(canvas *image.RGBA, centerX, centerY, innerRadius, outerRadius, opacity float64, c color.RGBA) {
	if outerRadius < 1 {
		return
	}

	bounds := canvas.Bounds()
	minX := maxInt(int(centerX-outerRadius-1), bounds.Min.X)
	minY := maxInt(int(centerY-outerRadius-1), bounds.Min.Y)
	maxX := minInt(int(centerX+outerRadius+1), bounds.Max.X-1)
	maxY := minInt(int(centerY+outerRadius+1), bounds.Max.Y-1)

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			dx := float64(px) - centerX
			dy := float64(py) - centerY
			dist := math.Sqrt(dx*dx + dy*dy)

			if dist < innerRadius || dist > outerRadius {
				continue
			}

			var edgeAlpha float64
			switch {
			case dist < innerRadius+1:
				edgeAlpha = dist - innerRadius
			case dist > outerRadius-1:
				edgeAlpha = outerRadius - dist
			default:
				edgeAlpha = 1
			}

			finalAlpha := uint8(edgeAlpha * opacity * float64(c.A) / 255 * 255)
			if finalAlpha == 0 {
				continue
			}

			dst := canvas.RGBAAt(px, py)
			canvas.SetRGBA(px, py, color.RGBA{
				R: blend.Channel(dst.R, c.R, finalAlpha),
				G: blend.Channel(dst.G, c.G, finalAlpha),
				B: blend.Channel(dst.B, c.B, finalAlpha),
				A: 255,
			})
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
