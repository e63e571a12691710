// Package pipeline drives the frame-by-frame render: decode source
// frames, compute the output frame count and timing offset, render
// each output frame through the compositor in a bounded worker pool,
// and encode the result.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	vidio "github.com/AlexEidt/Vidio"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/focusframe/focusframe/internal/compositor"
	"github.com/focusframe/focusframe/internal/config"
	"github.com/focusframe/focusframe/internal/cursor"
	"github.com/focusframe/focusframe/internal/eventlog"
	"github.com/focusframe/focusframe/internal/layout"
	"github.com/focusframe/focusframe/internal/motion"
	"github.com/focusframe/focusframe/internal/pipelineerr"
	"github.com/focusframe/focusframe/internal/progress"
	"github.com/focusframe/focusframe/internal/ripple"
	"github.com/focusframe/focusframe/internal/trajectory"
)

// TargetFPS is the fixed output frame rate: spec.md §4.7 step 5 targets
// 60fps regardless of the source's capture rate.
const TargetFPS = 60.0

// Pipeline holds the fixed, read-only state shared by every worker:
// the decoded source frames, the event log, and the resolved configs.
type Pipeline struct {
	log           *eventlog.EventLog
	sourceFrames  []*image.RGBA
	sourceFPS     float64
	trimmedDur    float64
	timeOffset    float64
	layoutInfo    layout.ContentLayout
	background    compositor.Background
	trajCfg       trajectory.Config
	cursorCfg     cursor.Config
	rippleCfg     ripple.Config
	blurCfg       motion.BlurConfig
	cursorEnabled bool
	cursorSprite  *image.RGBA
	workers       int
	logger        *zap.SugaredLogger
}

// New loads the source video and event log, computes trim/FPS/offset,
// pre-loads every trimmed source frame, and returns a ready Pipeline.
func New(videoPath, eventLogPath string, cfg *config.Config, logger *zap.SugaredLogger) (*Pipeline, error) {
	log, err := eventlog.Load(eventLogPath)
	if err != nil {
		return nil, &pipelineerr.InputError{Field: "events", Err: err}
	}

	video, err := vidio.NewVideo(videoPath)
	if err != nil {
		return nil, &pipelineerr.InputError{Field: "input", Err: err}
	}
	defer video.Close()

	originalDuration := video.Duration()
	trimmedDuration := math.Max(0, originalDuration-cfg.TrimStart-cfg.TrimEnd)
	if trimmedDuration <= 0 {
		return nil, &pipelineerr.ConfigError{
			Field: "trim_start/trim_end",
			Err:   fmt.Errorf("trim (%.2fs + %.2fs) exceeds source duration (%.2fs)", cfg.TrimStart, cfg.TrimEnd, originalDuration),
		}
	}

	if err := cfg.Validate(originalDuration); err != nil {
		return nil, err
	}

	frames, err := decodeTrimmedFrames(video, cfg.TrimStart, trimmedDuration)
	if err != nil {
		return nil, &pipelineerr.IOError{Err: err}
	}
	if len(frames) == 0 {
		return nil, &pipelineerr.InputError{Field: "input", Err: fmt.Errorf("no frames decoded")}
	}

	sourceFPS := float64(len(frames)) / trimmedDuration
	if sourceFPS <= 0 {
		sourceFPS = 30.0
	}

	timeOffset := computeTimeOffset(log, originalDuration) + cfg.TrimStart

	l := layout.Compute(video.Width(), video.Height())

	bg, err := compositor.ParseBackground(cfg.Background)
	if err != nil {
		return nil, &pipelineerr.ConfigError{Field: "background", Err: err}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Pipeline{
		log:          log,
		sourceFrames: frames,
		sourceFPS:    sourceFPS,
		trimmedDur:   trimmedDuration,
		timeOffset:   timeOffset,
		layoutInfo:   l,
		background:   bg,
		trajCfg: trajectory.Config{
			MaxZoom: cfg.MaxZoom, EaseIn: cfg.EaseIn, Hold: cfg.Hold, EaseOut: cfg.EaseOut, Debounce: cfg.Debounce,
		},
		cursorCfg: cursor.Config{
			SmoothWindow: cfg.SmoothWindow, InactivityTimeout: cfg.CursorTimeout, FadeDuration: cfg.FadeDuration, Scale: cfg.CursorScale,
		},
		rippleCfg: ripple.Config{
			Enabled: !cfg.NoClickHighlight, Duration: cfg.RippleDuration, MaxRadius: cfg.RippleMaxRadius, RingWidth: cfg.RippleRingWidth,
			Color: ripple.DefaultConfig().Color,
		},
		blurCfg: motion.BlurConfig{
			Enabled: !cfg.NoMotionBlur, ZoomBlurStrength: cfg.ZoomBlurStrength, ZoomBlurSamples: cfg.ZoomBlurSamples,
			PanBlurStrength: cfg.PanBlurStrength, PanBlurSamples: cfg.PanBlurSamples, VelocityThreshold: cfg.VelocityThreshold,
		},
		cursorEnabled: !cfg.NoCursor,
		cursorSprite:  cursor.GenerateSprite(int(cursor.CursorBaseHeight)),
		workers:       workers,
		logger:        logger,
	}, nil
}

// computeTimeOffset follows spec.md §4.7 step 7 and §9's precedence:
// the precise offset if recorded, else an approximation from the
// tracking duration, else zero.
func computeTimeOffset(log *eventlog.EventLog, originalDuration float64) float64 {
	if log.CursorToVideoOffset > 0 {
		return log.CursorToVideoOffset
	}
	if log.CursorTrackingDuration > 0 {
		return log.CursorTrackingDuration - originalDuration
	}
	return 0
}

// decodeTrimmedFrames reads every frame of video starting at trimStart
// for duration seconds, converting Vidio's packed RGB frame buffer into
// individual *image.RGBA frames.
func decodeTrimmedFrames(video *vidio.Video, trimStart, duration float64) ([]*image.RGBA, error) {
	fps := video.FPS()
	if fps <= 0 {
		fps = 30.0
	}
	startFrame := int(trimStart * fps)
	endFrame := startFrame + int(math.Ceil(duration*fps))

	width, height := video.Width(), video.Height()
	var frames []*image.RGBA

	idx := 0
	for video.Read() {
		if idx >= startFrame && idx < endFrame {
			frames = append(frames, rgbBufferToRGBA(video.FrameBuffer(), width, height))
		}
		idx++
		if idx >= endFrame {
			break
		}
	}
	return frames, nil
}

// rgbBufferToRGBA copies a packed 3-channel RGB buffer (Vidio's decode
// format) into a fresh *image.RGBA with alpha fully opaque.
func rgbBufferToRGBA(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		src := i * 3
		dst := i * 4
		if src+2 >= len(buf) {
			break
		}
		img.Pix[dst] = buf[src]
		img.Pix[dst+1] = buf[src+1]
		img.Pix[dst+2] = buf[src+2]
		img.Pix[dst+3] = 255
	}
	return img
}

// OutputFrameCount is F_out, spec.md §4.7 step 6.
func (p *Pipeline) OutputFrameCount() int {
	return int(math.Ceil(p.trimmedDur * TargetFPS))
}

// Run renders every output frame through the compositor using a
// bounded worker pool, reporting progress, and returns them in
// ascending-k order. Cancellation via ctx stops dispatch of new frames;
// in-flight frames complete but no partial slot is ever read back by
// the caller on error.
func (p *Pipeline) Run(ctx context.Context, reporter progress.Reporter) ([]*image.RGBA, error) {
	outCount := p.OutputFrameCount()
	frames := make([]*image.RGBA, outCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	var completed int64
	var reportMu sync.Mutex
	for k := 0; k < outCount; k++ {
		k := k
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			frames[k] = p.renderFrame(k)
			done := atomic.AddInt64(&completed, 1)
			if reporter != nil {
				reportMu.Lock()
				reporter.Report(float64(done) / float64(outCount))
				reportMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if reporter != nil {
			reporter.ReportError(err)
		}
		return nil, &pipelineerr.Internal{Err: err}
	}
	if reporter != nil {
		reporter.ReportComplete()
	}
	return frames, nil
}

// renderFrame implements spec.md §4.6's rendering order for output
// frame index k.
func (p *Pipeline) renderFrame(k int) *image.RGBA {
	t := float64(k) / TargetFPS
	srcIdx := int(math.Floor(t * p.sourceFPS))
	if srcIdx >= len(p.sourceFrames) {
		srcIdx = len(p.sourceFrames) - 1
	}
	source := p.sourceFrames[srcIdx]

	adjustedT := t + p.timeOffset
	scaleFactor := math.Max(p.log.ScaleFactor, 1.0)
	windowOffsetX, windowOffsetY := p.log.WindowOffset[0], p.log.WindowOffset[1]

	canvas := p.background.Canvas()
	compositor.PlaceContent(canvas, source, p.layoutInfo)

	traj := trajectory.At(adjustedT, p.log, p.trajCfg)
	canvasCursorX, canvasCursorY := p.layoutInfo.ToCanvas(traj.FocusX, traj.FocusY, scaleFactor, windowOffsetX, windowOffsetY)

	if p.cursorEnabled {
		state := cursor.At(adjustedT, p.log, p.cursorCfg)
		if state.Opacity > 0.01 {
			smoothedCanvasX, smoothedCanvasY := p.layoutInfo.ToCanvas(state.X, state.Y, scaleFactor, windowOffsetX, windowOffsetY)
			cursor.Draw(canvas, p.cursorSprite, smoothedCanvasX, smoothedCanvasY, p.cursorCfg.Scale*p.layoutInfo.Scale, state.Opacity)
		}
	}

	ripples := ripple.Active(adjustedT, p.log, p.rippleCfg)
	canvasRipples := make([]ripple.Ripple, len(ripples))
	for i, r := range ripples {
		cx, cy := p.layoutInfo.ToCanvas(r.X, r.Y, scaleFactor, windowOffsetX, windowOffsetY)
		canvasRipples[i] = ripple.Ripple{X: cx, Y: cy, Progress: r.Progress}
	}
	ripple.Draw(canvas, canvasRipples, p.rippleCfg)

	result := canvas
	if traj.Zoom > 1.01 {
		result = compositor.ApplyZoom(canvas, traj.Zoom, canvasCursorX, canvasCursorY)
	}

	if p.blurCfg.Enabled {
		state := motion.Estimate(adjustedT, p.log, p.trajCfg, p.layoutInfo, scaleFactor, windowOffsetX, windowOffsetY)
		result = motion.Apply(result, state, p.blurCfg)
	}

	return result
}

// Encode writes frames to outputPath at TargetFPS, spec.md §4.7 step 11.
// If a frame write fails, the partial output file is removed.
func Encode(outputPath string, frames []*image.RGBA) error {
	if len(frames) == 0 {
		return &pipelineerr.Internal{Err: fmt.Errorf("no frames to encode")}
	}
	bounds := frames[0].Bounds()
	writer, err := vidio.NewVideoWriter(outputPath, bounds.Dx(), bounds.Dy(), &vidio.Options{FPS: TargetFPS})
	if err != nil {
		return &pipelineerr.IOError{Err: fmt.Errorf("create video writer: %w", err)}
	}

	for _, frame := range frames {
		if err := writer.Write(rgbaToPackedRGB(frame)); err != nil {
			writer.Close()
			os.Remove(outputPath)
			return &pipelineerr.IOError{Err: fmt.Errorf("write frame: %w", err)}
		}
	}
	writer.Close()
	return nil
}

// rgbaToPackedRGB converts a rendered *image.RGBA into the packed
// 3-channel RGB buffer Vidio's writer expects, dropping alpha (every
// composited frame is fully opaque by construction).
func rgbaToPackedRGB(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, b.Dx()*b.Dy()*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.RGBAAt(x, y)
			out[i] = px.R
			out[i+1] = px.G
			out[i+2] = px.B
			i += 3
		}
	}
	return out
}
