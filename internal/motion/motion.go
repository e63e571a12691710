// Package motion implements the motion estimator: numeric
// differentiation of the trajectory to classify motion phase, and the
// radial/directional blur applied according to that phase.
package motion

import (
	"image"
	"image/color"
	"math"

	"github.com/focusframe/focusframe/internal/eventlog"
	"github.com/focusframe/focusframe/internal/layout"
	"github.com/focusframe/focusframe/internal/trajectory"
)

// dt is the central-difference step, half a frame at 60fps.
const dt = 1.0 / 120.0

const (
	zoomThreshold = 0.05
	panThreshold  = 50.0 // px/s
)

// Phase tags the kind of motion at a timestamp.
type Phase int

const (
	Idle Phase = iota
	ZoomIn
	Hold
	ZoomOut
	Pan
)

// State is the estimated motion at a timestamp: current zoom, its
// velocity, the canvas-space focus position, and pan velocity.
type State struct {
	Zoom         float64
	ZoomVelocity float64
	CursorX      float64
	CursorY      float64
	PanVelocityX float64
	PanVelocityY float64
	Phase        Phase
}

// Estimate computes the motion state at timestamp t via central
// differences over the trajectory, mapped into canvas space.
func Estimate(t float64, log *eventlog.EventLog, trajCfg trajectory.Config, l layout.ContentLayout, scaleFactor float64, windowOffsetX, windowOffsetY int) State {
	prev := trajectory.At(math.Max(t-dt, 0), log, trajCfg)
	curr := trajectory.At(t, log, trajCfg)
	next := trajectory.At(t+dt, log, trajCfg)

	zoomVelocity := (next.Zoom - prev.Zoom) / (2 * dt)

	toCanvas := func(s trajectory.Sample) (float64, float64) {
		return l.ToCanvas(s.FocusX, s.FocusY, scaleFactor, windowOffsetX, windowOffsetY)
	}
	prevX, prevY := toCanvas(prev)
	currX, currY := toCanvas(curr)
	nextX, nextY := toCanvas(next)

	panVX := (nextX - prevX) / (2 * dt)
	panVY := (nextY - prevY) / (2 * dt)

	phase := determinePhase(curr.Zoom, zoomVelocity, panVX, panVY)

	return State{
		Zoom:         curr.Zoom,
		ZoomVelocity: zoomVelocity,
		CursorX:      currX,
		CursorY:      currY,
		PanVelocityX: panVX,
		PanVelocityY: panVY,
		Phase:        phase,
	}
}

func determinePhase(zoom, zoomVelocity, panVX, panVY float64) Phase {
	if zoom < 1.01 {
		return Idle
	}
	if zoomVelocity > zoomThreshold {
		return ZoomIn
	}
	if zoomVelocity < -zoomThreshold {
		return ZoomOut
	}
	panSpeed := math.Hypot(panVX, panVY)
	if panSpeed > panThreshold {
		return Pan
	}
	return Hold
}

// BlurConfig holds the motion blur tunables.
type BlurConfig struct {
	Enabled           bool
	ZoomBlurStrength  float64
	ZoomBlurSamples   int
	PanBlurStrength   float64
	PanBlurSamples    int
	VelocityThreshold float64
}

// DefaultBlurConfig returns the spec's literal default motion-blur
// tunables.
func DefaultBlurConfig() BlurConfig {
	return BlurConfig{
		Enabled:           true,
		ZoomBlurStrength:  90,
		ZoomBlurSamples:   16,
		PanBlurStrength:   60,
		PanBlurSamples:    12,
		VelocityThreshold: 0.05,
	}
}

// Apply applies motion blur to img according to the given motion state
// and config. img is never mutated: a blurred result is a new image, and
// img itself is returned when blur is disabled or no blur applies.
func Apply(img *image.RGBA, m State, cfg BlurConfig) *image.RGBA {
	if !cfg.Enabled {
		return img
	}
	switch m.Phase {
	case ZoomIn, ZoomOut:
		return radialBlur(img, m.CursorX, m.CursorY, m.ZoomVelocity, cfg)
	case Pan:
		return directionalBlur(img, m.PanVelocityX, m.PanVelocityY, cfg)
	default:
		return img
	}
}

func radialBlur(img *image.RGBA, centerX, centerY, zoomVelocity float64, cfg BlurConfig) *image.RGBA {
	if math.Abs(zoomVelocity) < cfg.VelocityThreshold {
		return img
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	out := image.NewRGBA(b)

	const maxVelocity = 2.0
	normalizedVelocity := ease0to1(math.Abs(zoomVelocity) / maxVelocity)
	blurAmount := cfg.ZoomBlurStrength * normalizedVelocity
	direction := 1.0
	if zoomVelocity <= 0 {
		direction = -1.0
	}

	samples := cfg.ZoomBlurSamples
	maxDist := float64(maxI(width, height)) * 0.5

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			dist := math.Max(math.Hypot(dx, dy), 1.0)

			distFactor := math.Min(dist/maxDist, 1.0)
			pixelBlur := blurAmount * distFactor

			if pixelBlur < 0.5 {
				out.SetRGBA(b.Min.X+x, b.Min.Y+y, img.RGBAAt(b.Min.X+x, b.Min.Y+y))
				continue
			}

			dirX := dx / dist
			dirY := dy / dist

			var rSum, gSum, bSum, aSum, weightSum float64
			for i := 0; i < samples; i++ {
				t := float64(i) / float64(samples-1)
				offset := t * pixelBlur * direction

				sx := clampF(float64(x)+dirX*offset, 0, float64(width-1))
				sy := clampF(float64(y)+dirY*offset, 0, float64(height-1))

				r, g, bl, a := bilinearSample(img, sx, sy)
				weight := 1 - t*0.7

				rSum += float64(r) * weight
				gSum += float64(g) * weight
				bSum += float64(bl) * weight
				aSum += float64(a) * weight
				weightSum += weight
			}

			out.SetRGBA(b.Min.X+x, b.Min.Y+y, rgbaFromSums(rSum, gSum, bSum, aSum, weightSum))
		}
	}

	return out
}

func directionalBlur(img *image.RGBA, velocityX, velocityY float64, cfg BlurConfig) *image.RGBA {
	speed := math.Hypot(velocityX, velocityY)
	if speed < cfg.VelocityThreshold*500 {
		return img
	}

	const maxSpeed = 1500.0
	normalizedSpeed := ease0to1(speed / maxSpeed)
	blurAmount := cfg.PanBlurStrength * normalizedSpeed
	if blurAmount < 0.5 {
		return img
	}

	dirX := velocityX / speed
	dirY := velocityY / speed

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	out := image.NewRGBA(b)
	samples := cfg.PanBlurSamples

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var rSum, gSum, bSum, aSum, weightSum float64
			for i := 0; i < samples; i++ {
				t := float64(i) / float64(samples-1)
				offset := -t * blurAmount

				sx := clampF(float64(x)+dirX*offset, 0, float64(width-1))
				sy := clampF(float64(y)+dirY*offset, 0, float64(height-1))

				r, g, bl, a := bilinearSample(img, sx, sy)
				weight := 1 - t*0.7

				rSum += float64(r) * weight
				gSum += float64(g) * weight
				bSum += float64(bl) * weight
				aSum += float64(a) * weight
				weightSum += weight
			}
			out.SetRGBA(b.Min.X+x, b.Min.Y+y, rgbaFromSums(rSum, gSum, bSum, aSum, weightSum))
		}
	}

	return out
}

// bilinearSample reads an interpolated RGBA sample at fractional
// coordinates (x, y) relative to img's bounds origin.
func bilinearSample(img *image.RGBA, x, y float64) (r, g, bl, a uint8) {
	b := img.Bounds()
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := minI(x0+1, b.Dx()-1)
	y1 := minI(y0+1, b.Dy()-1)

	fx := x - float64(x0)
	fy := y - float64(y0)

	p00 := img.RGBAAt(b.Min.X+x0, b.Min.Y+y0)
	p10 := img.RGBAAt(b.Min.X+x1, b.Min.Y+y0)
	p01 := img.RGBAAt(b.Min.X+x0, b.Min.Y+y1)
	p11 := img.RGBAAt(b.Min.X+x1, b.Min.Y+y1)

	lerp := func(a, b uint8, t float64) float64 {
		return float64(a)*(1-t) + float64(b)*t
	}

	top := [4]float64{lerp(p00.R, p10.R, fx), lerp(p00.G, p10.G, fx), lerp(p00.B, p10.B, fx), lerp(p00.A, p10.A, fx)}
	bottom := [4]float64{lerp(p01.R, p11.R, fx), lerp(p01.G, p11.G, fx), lerp(p01.B, p11.B, fx), lerp(p01.A, p11.A, fx)}

	return uint8(lerp2(top[0], bottom[0], fy)), uint8(lerp2(top[1], bottom[1], fy)), uint8(lerp2(top[2], bottom[2], fy)), uint8(lerp2(top[3], bottom[3], fy))
}

func lerp2(a, b, t float64) float64 { return a*(1-t) + b*t }

func rgbaFromSums(r, g, bl, a, weightSum float64) color.RGBA {
	if weightSum <= 0 {
		return color.RGBA{}
	}
	return color.RGBA{
		R: uint8(r / weightSum),
		G: uint8(g / weightSum),
		B: uint8(bl / weightSum),
		A: uint8(a / weightSum),
	}
}

func ease0to1(v float64) float64 { return clampF(v, 0, 1) }

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
