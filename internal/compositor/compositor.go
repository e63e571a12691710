// Package compositor renders a single output frame: background canvas,
// drop shadow, rounded-corner content placement, fixed-point zoom, and
// overlay ordering, per the per-frame rendering order.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/focusframe/focusframe/internal/blend"
	"github.com/focusframe/focusframe/internal/layout"
)

// Output canvas dimensions, mirroring layout.CanvasWidth/Height.
const (
	OutputWidth  = layout.CanvasWidth
	OutputHeight = layout.CanvasHeight

	CornerRadius = 12

	shadowOffset     = 8
	shadowBlurRadius = 20
)

var shadowColor = color.RGBA{0, 0, 0, 80}

// Background is either a solid fill color or a pre-loaded, canvas-sized
// image.
type Background struct {
	color color.RGBA
	img   *image.RGBA
}

// ParseBackground parses a background spec: a "#rrggbb" hex color, a
// path to an image file, or "" for the default dark slate fill.
func ParseBackground(spec string) (Background, error) {
	if spec == "" {
		return Background{color: color.RGBA{26, 26, 46, 255}}, nil
	}

	if c, ok := parseHexColor(spec); ok {
		return Background{color: c}, nil
	}

	f, err := os.Open(spec)
	if err != nil {
		return Background{}, fmt.Errorf("open background image %q: %w", spec, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Background{}, fmt.Errorf("decode background image %q: %w", spec, err)
	}
	resized := imaging.Fill(img, OutputWidth, OutputHeight, imaging.Center, imaging.Lanczos)
	return Background{img: toRGBA(resized)}, nil
}

func parseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	r, err1 := strconv.ParseUint(s[1:3], 16, 8)
	g, err2 := strconv.ParseUint(s[3:5], 16, 8)
	b, err3 := strconv.ParseUint(s[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, true
}

// Canvas returns a fresh OutputWidth x OutputHeight canvas filled with
// this background.
func (b Background) Canvas() *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, OutputWidth, OutputHeight))
	if b.img != nil {
		draw.Draw(canvas, canvas.Bounds(), b.img, image.Point{}, draw.Src)
		return canvas
	}
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: b.color}, image.Point{}, draw.Src)
	return canvas
}

// PlaceContent scales source to fit l, rounds its corners, draws the
// drop shadow beneath it, and overlays it onto canvas. This is steps
// 2-3 (shadow and content) of the per-frame render order.
func PlaceContent(canvas *image.RGBA, source image.Image, l layout.ContentLayout) {
	drawShadow(canvas, l.OffsetX, l.OffsetY, l.ScaledW, l.ScaledH, CornerRadius)

	scaled := imaging.Resize(source, l.ScaledW, l.ScaledH, imaging.Lanczos)
	rounded := toRGBA(scaled)
	applyRoundedCorners(rounded, CornerRadius)

	draw.Draw(canvas, image.Rect(l.OffsetX, l.OffsetY, l.OffsetX+l.ScaledW, l.OffsetY+l.ScaledH), rounded, image.Point{}, draw.Over)
}

// applyRoundedCorners masks img's alpha channel by distance from each
// corner's rounding circle, in place.
func applyRoundedCorners(img *image.RGBA, radius int) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	r := minInt(radius, minInt(width/2, height/2))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			alpha := cornerAlpha(x, y, width, height, r)
			if alpha == 255 {
				continue
			}
			px := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			px.A = uint8(uint32(px.A) * uint32(alpha) / 255)
			img.SetRGBA(b.Min.X+x, b.Min.Y+y, px)
		}
	}
}

func cornerAlpha(x, y, width, height, radius int) uint8 {
	radiusF := float64(radius)
	type pt struct{ cx, cy int }
	corners := [4]pt{
		{radius, radius},
		{width - radius - 1, radius},
		{radius, height - radius - 1},
		{width - radius - 1, height - radius - 1},
	}

	for _, c := range corners {
		inCornerX := (x <= radius && c.cx == radius) || (x >= width-radius-1 && c.cx == width-radius-1)
		inCornerY := (y <= radius && c.cy == radius) || (y >= height-radius-1 && c.cy == height-radius-1)
		if !inCornerX || !inCornerY {
			continue
		}
		dx := float64(x - c.cx)
		dy := float64(y - c.cy)
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist > radiusF {
			return 0
		}
		if dist > radiusF-1.5 {
			alpha := clampF(radiusF-dist+0.5, 0, 1)
			return uint8(alpha * 255)
		}
	}
	return 255
}

// drawShadow paints a soft drop shadow beneath a rounded rectangle of
// the given geometry, directly onto canvas.
func drawShadow(canvas *image.RGBA, x, y, width, height, radius int) {
	shadowX := x + shadowOffset
	shadowY := y + shadowOffset
	bounds := canvas.Bounds()

	for blurLayer := 0; blurLayer < shadowBlurRadius; blurLayer++ {
		expand := blurLayer
		layerAlpha := uint32(shadowColor.A) * uint32(shadowBlurRadius-blurLayer) / uint32(shadowBlurRadius*shadowBlurRadius)
		if layerAlpha == 0 {
			continue
		}

		sx := maxInt(shadowX-expand, 0)
		sy := maxInt(shadowY-expand, 0)
		sw := minInt(width+expand*2, bounds.Dx()-sx)
		sh := minInt(height+expand*2, bounds.Dy()-sy)
		layerWidth := width + 2*expand
		layerHeight := height + 2*expand
		layerRadius := radius + expand

		for py := sy; py < sy+sh; py++ {
			for px := sx; px < sx+sw; px++ {
				if px >= bounds.Dx() || py >= bounds.Dy() {
					continue
				}
				localX := px - shadowX + expand
				localY := py - shadowY + expand
				if !insideRoundedRect(localX, localY, layerWidth, layerHeight, layerRadius) {
					continue
				}
				dst := canvas.RGBAAt(px, py)
				alpha := uint8(layerAlpha)
				canvas.SetRGBA(px, py, color.RGBA{
					R: blend.Channel(dst.R, shadowColor.R, alpha),
					G: blend.Channel(dst.G, shadowColor.G, alpha),
					B: blend.Channel(dst.B, shadowColor.B, alpha),
					A: dst.A,
				})
			}
		}
	}
}

func insideRoundedRect(x, y, width, height, radius int) bool {
	if x < 0 || y < 0 || x >= width || y >= height {
		return false
	}
	radiusF := float64(radius)
	type pt struct{ cx, cy int }
	corners := [4]pt{
		{radius, radius},
		{width - radius - 1, radius},
		{radius, height - radius - 1},
		{width - radius - 1, height - radius - 1},
	}
	for _, c := range corners {
		inCornerX := (x <= radius && c.cx == radius) || (x >= width-radius-1 && c.cx == width-radius-1)
		inCornerY := (y <= radius && c.cy == radius) || (y >= height-radius-1 && c.cy == height-radius-1)
		if !inCornerX || !inCornerY {
			continue
		}
		dx := float64(x - c.cx)
		dy := float64(y - c.cy)
		if dx*dx+dy*dy > radiusF*radiusF {
			return false
		}
	}
	return true
}

// ApplyZoom applies fixed-point zoom to img: content scales around
// (cursorX, cursorY) in canvas space while that point stays fixed on
// screen. Both axes share one factor, guaranteeing symmetric motion.
func ApplyZoom(img *image.RGBA, zoom, cursorX, cursorY float64) *image.RGBA {
	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	viewWidth := width / zoom
	viewHeight := height / zoom

	zoomFactor := 1 - 1/zoom
	viewLeft := clampF(cursorX*zoomFactor, 0, math.Max(width-viewWidth, 0))
	viewTop := clampF(cursorY*zoomFactor, 0, math.Max(height-viewHeight, 0))

	cropRect := image.Rect(
		b.Min.X+int(viewLeft), b.Min.Y+int(viewTop),
		b.Min.X+int(viewLeft)+int(viewWidth), b.Min.Y+int(viewTop)+int(viewHeight),
	)
	cropped := imaging.Crop(img, cropRect)
	resized := imaging.Resize(cropped, b.Dx(), b.Dy(), imaging.Linear)
	return toRGBA(resized)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
