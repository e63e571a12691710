// Package capture implements the out-of-core "external collaborator":
// recording a display to an MP4 alongside a companion event log, by
// polling the cursor, hooking global clicks, and grabbing frames on a
// ticker. This is the producer of the two inputs the core pipeline
// consumes; it carries no trajectory/cursor/ripple/motion semantics of
// its own.
package capture

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"time"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"

	"github.com/focusframe/focusframe/internal/eventlog"
)

// DisplayInfo describes one enumerated display.
type DisplayInfo struct {
	Index  int
	Width  int
	Height int
}

// ListDisplays enumerates the active displays.
func ListDisplays() ([]DisplayInfo, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	displays := make([]DisplayInfo, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		displays[i] = DisplayInfo{Index: i, Width: bounds.Dx(), Height: bounds.Dy()}
	}
	return displays, nil
}

// Session is a single live recording: a frame-grab goroutine, a
// cursor-poll goroutine, and a global click hook, coordinated by a
// cancellable context and guarded by a mutex over the shared event log.
type Session struct {
	logger *zap.SugaredLogger

	mu      sync.Mutex
	running bool
	log     *eventlog.EventLog
	writer  *vidio.VideoWriter

	cancel        context.CancelFunc
	wg            sync.WaitGroup
	trackingStart time.Time
	firstFrame    time.Time
	videoPath     string
	eventLogPath  string
}

// NewSession constructs an idle capture session.
func NewSession(logger *zap.SugaredLogger) *Session {
	return &Session{logger: logger}
}

// Start begins capturing displayIndex into outDir at targetFPS,
// spawning the frame-grab, cursor-poll, and click-hook goroutines.
func (s *Session) Start(ctx context.Context, displayIndex int, outDir string, targetFPS int) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("capture session already running")
	}

	bounds := screenshot.GetDisplayBounds(displayIndex)
	width, height := bounds.Dx(), bounds.Dy()

	s.videoPath = filepath.Join(outDir, "recording.mp4")
	s.eventLogPath = strings.TrimSuffix(s.videoPath, filepath.Ext(s.videoPath)) + ".json"

	writer, err := vidio.NewVideoWriter(s.videoPath, width, height, &vidio.Options{FPS: float64(targetFPS)})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create video writer: %w", err)
	}
	s.writer = writer

	s.log = &eventlog.EventLog{
		SourceType:   eventlog.Display,
		SourceIndex:  displayIndex,
		Width:        width,
		Height:       height,
		ScaleFactor:  1.0,
		WindowOffset: [2]int{0, 0},
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.trackingStart = time.Now()
	s.mu.Unlock()

	s.wg.Add(2)
	go s.grabFrames(ctx, bounds, targetFPS)
	go s.pollCursor(ctx, targetFPS)
	s.startClickHook(ctx)

	return nil
}

// grabFrames captures bounds at targetFPS and writes each frame into
// the Vidio writer, recording the wall-clock gap to the first captured
// frame for the event log's cursor_to_video_offset field.
func (s *Session) grabFrames(ctx context.Context, bounds image.Rectangle, targetFPS int) {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Second / time.Duration(targetFPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			img, err := screenshot.CaptureRect(bounds)
			if err != nil {
				if s.logger != nil {
					s.logger.Warnw("frame capture failed", "error", err)
				}
				continue
			}
			s.mu.Lock()
			if s.firstFrame.IsZero() {
				s.firstFrame = time.Now()
			}
			if err := s.writer.Write(rgbaToPacked(img)); err != nil && s.logger != nil {
				s.logger.Warnw("frame write failed", "error", err)
			}
			s.mu.Unlock()
		}
	}
}

// pollCursor samples the cursor location at targetFPS and appends Move
// events to the shared log, matching the teacher's polling pattern.
func (s *Session) pollCursor(ctx context.Context, targetFPS int) {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Second / time.Duration(targetFPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			x, y := robotgo.Location()
			s.appendEvent(eventlog.PointerEvent{
				X: float64(x), Y: float64(y),
				Timestamp: time.Since(s.trackingStart).Seconds(),
				EventType: eventlog.Move,
			})
		}
	}
}

// startClickHook registers a global mouse-down hook and runs its event
// loop in its own goroutine until ctx is cancelled.
func (s *Session) startClickHook(ctx context.Context) {
	hook.Register(hook.MouseDown, []string{}, func(e hook.Event) {
		kind := eventlog.LeftClick
		if e.Button != hook.MouseMap["left"] && e.Button != 1 {
			kind = eventlog.RightClick
		}
		x, y := robotgo.Location()
		s.appendEvent(eventlog.PointerEvent{
			X: float64(x), Y: float64(y),
			Timestamp: time.Since(s.trackingStart).Seconds(),
			EventType: kind,
		})
	})

	evChan := hook.Start()
	go func() {
		<-ctx.Done()
		hook.End()
	}()
	go func() {
		<-hook.Process(evChan)
	}()
}

func (s *Session) appendEvent(e eventlog.PointerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log != nil {
		s.log.CursorEvents = append(s.log.CursorEvents, e)
	}
}

// Stop ends capture, flushes the writer, and persists the event log
// next to the video. Safe to call once.
func (s *Session) Stop() (videoPath, eventLogPath string, err error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return "", "", fmt.Errorf("capture session not running")
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Close()

	s.log.CursorTrackingDuration = time.Since(s.trackingStart).Seconds()
	if !s.firstFrame.IsZero() {
		s.log.CursorToVideoOffset = s.firstFrame.Sub(s.trackingStart).Seconds()
	}

	if err := eventlog.Save(s.eventLogPath, s.log); err != nil {
		return "", "", fmt.Errorf("save event log: %w", err)
	}

	return s.videoPath, s.eventLogPath, nil
}

// rgbaToPacked converts a captured *image.RGBA into the packed 3-byte
// RGB buffer Vidio's writer expects.
func rgbaToPacked(img *image.RGBA) []byte {
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
