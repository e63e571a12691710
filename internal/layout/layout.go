// Package layout computes the one-time content placement on the output
// canvas and the coordinate transform chain between event space,
// source-pixel space, window-pixel space, and canvas space.
package layout

import "math"

// CanvasWidth and CanvasHeight are the fixed output dimensions.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
	// margin is the fixed padding 1920x1080 reserves around inset content.
	margin = 200
)

// ContentLayout describes where the resized source content sits on the
// canvas. Computed once from the source frame dimensions.
type ContentLayout struct {
	Scale            float64
	OffsetX, OffsetY int
	ScaledW, ScaledH int
}

// Compute derives the ContentLayout for a source frame of sourceW x
// sourceH, per spec.md §3's invariant:
// scale = min(1, (1920-200)/source_w, (1080-200)/source_h), centered.
func Compute(sourceW, sourceH int) ContentLayout {
	scale := 1.0
	scale = math.Min(scale, float64(CanvasWidth-margin)/float64(sourceW))
	scale = math.Min(scale, float64(CanvasHeight-margin)/float64(sourceH))

	scaledW := int(math.Round(float64(sourceW) * scale))
	scaledH := int(math.Round(float64(sourceH) * scale))

	return ContentLayout{
		Scale:   scale,
		OffsetX: (CanvasWidth - scaledW) / 2,
		OffsetY: (CanvasHeight - scaledH) / 2,
		ScaledW: scaledW,
		ScaledH: scaledH,
	}
}

// ToCanvas is the canonical event-space -> canvas-space transform E->C
// from spec.md §4.6: event point (x, y) is scaled to source pixels,
// shifted by the captured window's offset (zero for display captures),
// then placed by the content layout.
func (l ContentLayout) ToCanvas(x, y, scaleFactor float64, windowOffsetX, windowOffsetY int) (float64, float64) {
	offsetX := float64(windowOffsetX) * scaleFactor
	offsetY := float64(windowOffsetY) * scaleFactor
	windowX := x*scaleFactor - offsetX
	windowY := y*scaleFactor - offsetY
	cx := float64(l.OffsetX) + windowX*l.Scale
	cy := float64(l.OffsetY) + windowY*l.Scale
	return cx, cy
}
