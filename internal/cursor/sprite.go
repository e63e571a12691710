package cursor

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// spriteSupersample is the internal resolution the arrow outline is
// rasterized at before downsampling to the final size; the downsample
// through a high-quality filter is what anti-aliases the polygon edges.
const spriteSupersample = 8

// arrowPolygon is the classic pointer-arrow outline, normalized to a
// 12x19 design grid (tip at the origin), matching the silhouette used by
// every desktop cursor theme.
var arrowPolygon = []image.Point{
	{X: 0, Y: 0},
	{X: 0, Y: 16},
	{X: 4, Y: 12},
	{X: 7, Y: 19},
	{X: 9, Y: 18},
	{X: 6, Y: 11},
	{X: 11, Y: 11},
}

// GenerateSprite procedurally renders the synthetic cursor glyph at
// baseHeight pixels tall (before any additional scale). There is no
// bundled cursor image asset; the shape is drawn as a filled, outlined
// polygon and anti-aliased by supersampled downscale, the same role a
// shipped PNG plays in the reference implementation.
func GenerateSprite(baseHeight int) *image.RGBA {
	designH := 19
	designW := 12
	ss := spriteSupersample

	big := image.NewRGBA(image.Rect(0, 0, designW*ss, designH*ss))
	poly := make([]image.Point, len(arrowPolygon))
	for i, p := range arrowPolygon {
		poly[i] = image.Point{X: p.X * ss, Y: p.Y * ss}
	}
	fillPolygon(big, poly, color.RGBA{255, 255, 255, 255})
	strokePolygon(big, poly, color.RGBA{20, 20, 20, 255}, ss)

	targetW := baseHeight * designW / designH
	return toRGBA(imaging.Resize(big, targetW, baseHeight, imaging.Lanczos))
}

// Resize scales a sprite so its height is CursorBaseHeight*scale,
// preserving aspect ratio, using the same reference filter the
// compositor uses for content resizing.
func Resize(sprite *image.RGBA, scale float64) *image.RGBA {
	b := sprite.Bounds()
	targetH := int(CursorBaseHeight * scale)
	if targetH < 1 {
		targetH = 1
	}
	targetW := targetH * b.Dx() / maxInt(b.Dy(), 1)
	return toRGBA(imaging.Resize(sprite, targetW, targetH, imaging.Lanczos))
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// fillPolygon performs an even-odd scanline fill of a simple polygon.
func fillPolygon(img *image.RGBA, poly []image.Point, c color.RGBA) {
	b := img.Bounds()
	n := len(poly)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		var xs []int
		yf := float64(y) + 0.5
		for i := 0; i < n; i++ {
			p1 := poly[i]
			p2 := poly[(i+1)%n]
			y1, y2 := float64(p1.Y), float64(p2.Y)
			if (y1 <= yf && y2 > yf) || (y2 <= yf && y1 > yf) {
				t := (yf - y1) / (y2 - y1)
				x := float64(p1.X) + t*float64(p2.X-p1.X)
				xs = append(xs, int(x))
			}
		}
		sortInts(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := xs[i]; x < xs[i+1]; x++ {
				if x >= b.Min.X && x < b.Max.X {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
}

// strokePolygon draws the polygon outline at the given stroke width to
// mimic the dark border most cursor themes draw around the white arrow.
func strokePolygon(img *image.RGBA, poly []image.Point, c color.RGBA, width int) {
	n := len(poly)
	for i := 0; i < n; i++ {
		p1, p2 := poly[i], poly[(i+1)%n]
		drawLine(img, p1, p2, c, width)
	}
}

func drawLine(img *image.RGBA, p1, p2 image.Point, c color.RGBA, width int) {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	steps := maxInt(absInt(dx), absInt(dy))
	if steps == 0 {
		steps = 1
	}
	b := img.Bounds()
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := p1.X + int(float64(dx)*t)
		y := p1.Y + int(float64(dy)*t)
		for wy := -width / 2; wy <= width/2; wy++ {
			for wx := -width / 2; wx <= width/2; wx++ {
				px, py := x+wx, y+wy
				if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
					img.SetRGBA(px, py, c)
				}
			}
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
