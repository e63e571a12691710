package cursor

import (
	"math"
	"testing"

	"github.com/focusframe/focusframe/internal/eventlog"
)

func move(x, y, t float64) eventlog.PointerEvent {
	return eventlog.PointerEvent{X: x, Y: y, Timestamp: t, EventType: eventlog.Move}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestSmoothedPositionSingleEvent(t *testing.T) {
	log := &eventlog.EventLog{CursorEvents: []eventlog.PointerEvent{move(100, 200, 1.0)}}
	cfg := DefaultConfig()

	s := At(1.0, log, cfg)
	if !approx(s.X, 100) || !approx(s.Y, 200) {
		t.Fatalf("got (%v,%v), want (100,200)", s.X, s.Y)
	}
}

func TestSmoothedPositionMultipleEvents(t *testing.T) {
	log := &eventlog.EventLog{CursorEvents: []eventlog.PointerEvent{
		move(100, 100, 0.98),
		move(110, 110, 1.0),
		move(120, 120, 1.02),
	}}
	cfg := DefaultConfig()

	s := At(1.0, log, cfg)
	if !(s.X > 105 && s.X < 115) {
		t.Fatalf("X = %v, want in (105,115)", s.X)
	}
	if !(s.Y > 105 && s.Y < 115) {
		t.Fatalf("Y = %v, want in (105,115)", s.Y)
	}
}

func TestOpacityActive(t *testing.T) {
	log := &eventlog.EventLog{CursorEvents: []eventlog.PointerEvent{move(100, 100, 1.0)}}
	cfg := DefaultConfig()

	if s := At(1.0, log, cfg); !approx(s.Opacity, 1.0) {
		t.Fatalf("opacity = %v at t=1.0, want 1.0", s.Opacity)
	}
	if s := At(2.5, log, cfg); !approx(s.Opacity, 1.0) {
		t.Fatalf("opacity = %v at t=2.5 (still within timeout), want 1.0", s.Opacity)
	}
}

func TestOpacityFading(t *testing.T) {
	log := &eventlog.EventLog{CursorEvents: []eventlog.PointerEvent{move(100, 100, 1.0)}}
	cfg := DefaultConfig()

	s := At(3.15, log, cfg)
	if !(s.Opacity > 0 && s.Opacity < 1) {
		t.Fatalf("opacity = %v at t=3.15, want fading (0,1)", s.Opacity)
	}
}

func TestOpacityHidden(t *testing.T) {
	log := &eventlog.EventLog{CursorEvents: []eventlog.PointerEvent{move(100, 100, 1.0)}}
	cfg := DefaultConfig()

	if s := At(3.5, log, cfg); s.Opacity > 0.01 {
		t.Fatalf("opacity = %v at t=3.5, want hidden", s.Opacity)
	}
}

func TestNoEventsHidden(t *testing.T) {
	log := &eventlog.EventLog{}
	cfg := DefaultConfig()

	if s := At(1.0, log, cfg); s.Opacity > 0.01 {
		t.Fatalf("opacity = %v with no events, want hidden", s.Opacity)
	}
}

func TestSmoothingBoundedWithinWindow(t *testing.T) {
	log := &eventlog.EventLog{CursorEvents: []eventlog.PointerEvent{
		move(0, 0, 0.9),
		move(100, 100, 1.0),
		move(50, 50, 1.05),
	}}
	cfg := DefaultConfig()

	s := At(1.0, log, cfg)
	// Window is [1.0-0.3, 1.0+0.075] = [0.7, 1.075], all three events qualify;
	// the smoothed point must lie within their bounding box.
	if s.X < 0 || s.X > 100 || s.Y < 0 || s.Y > 100 {
		t.Fatalf("smoothed (%v,%v) escaped bounding box [0,100]", s.X, s.Y)
	}
}

func TestOpacityMonotonicAfterLastEvent(t *testing.T) {
	log := &eventlog.EventLog{CursorEvents: []eventlog.PointerEvent{move(0, 0, 1.0)}}
	cfg := DefaultConfig()

	prev := At(1.0, log, cfg).Opacity
	for tm := 1.1; tm <= 4.0; tm += 0.1 {
		cur := At(tm, log, cfg).Opacity
		if cur > prev+1e-9 {
			t.Fatalf("opacity increased at t=%v: %v -> %v", tm, prev, cur)
		}
		prev = cur
	}
}
