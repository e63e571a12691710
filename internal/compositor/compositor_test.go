package compositor

import (
	"image"
	"image/color"
	"testing"
)

func gradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func TestApplyZoomNoZoomPreservesDimensions(t *testing.T) {
	img := gradientImage(1920, 1080)
	result := ApplyZoom(img, 1.0, 960, 540)

	b := result.Bounds()
	if b.Dx() != 1920 || b.Dy() != 1080 {
		t.Fatalf("dimensions = %dx%d, want 1920x1080", b.Dx(), b.Dy())
	}
}

func TestApplyZoomMagnifiesContent(t *testing.T) {
	img := gradientImage(1920, 1080)
	result := ApplyZoom(img, 1.8, 960, 540)

	orig := img.RGBAAt(200, 200)
	zoomed := result.RGBAAt(200, 200)
	if orig == zoomed {
		t.Fatal("zoom should change visible content away from the fixed point")
	}
}

func TestApplyZoomClampsNearEdges(t *testing.T) {
	img := gradientImage(1920, 1080)
	result := ApplyZoom(img, 1.8, 1800, 900)

	b := result.Bounds()
	if b.Dx() != 1920 || b.Dy() != 1080 {
		t.Fatalf("dimensions = %dx%d, want 1920x1080", b.Dx(), b.Dy())
	}
}

func TestRoundedCornersClipOutsideRadius(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	applyRoundedCorners(img, 20)

	if img.RGBAAt(0, 0).A != 0 {
		t.Fatal("corner pixel (0,0) should be fully transparent")
	}
	if img.RGBAAt(50, 50).A != 255 {
		t.Fatal("center pixel should remain opaque")
	}
}

func TestParseBackgroundHexColor(t *testing.T) {
	bg, err := ParseBackground("#1a1a2e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	canvas := bg.Canvas()
	px := canvas.RGBAAt(0, 0)
	if px.R != 0x1a || px.G != 0x1a || px.B != 0x2e {
		t.Fatalf("canvas color = %v, want #1a1a2e", px)
	}
}

func TestParseBackgroundDefaultsWhenEmpty(t *testing.T) {
	bg, err := ParseBackground("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	canvas := bg.Canvas()
	if canvas.Bounds().Dx() != OutputWidth || canvas.Bounds().Dy() != OutputHeight {
		t.Fatal("default background canvas should be full output size")
	}
}
