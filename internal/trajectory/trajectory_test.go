package trajectory

import (
	"math"
	"testing"

	"github.com/focusframe/focusframe/internal/eventlog"
)

func click(x, y, t float64) eventlog.PointerEvent {
	return eventlog.PointerEvent{X: x, Y: y, Timestamp: t, EventType: eventlog.LeftClick}
}

func logOf(events ...eventlog.PointerEvent) *eventlog.EventLog {
	return &eventlog.EventLog{ScaleFactor: 1, CursorEvents: events}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestAnticipatoryZoomSingleClick(t *testing.T) {
	cfg := DefaultConfig()
	log := logOf(click(100, 100, 1.0))

	if s := At(0.3, log, cfg); !approx(s.Zoom, 1.0) {
		t.Fatalf("t=0.3: zoom = %v, want ~1.0 (idle before anticipatory window)", s.Zoom)
	}

	s := At(0.6, log, cfg)
	if !(s.Zoom > 1.0 && s.Zoom < cfg.MaxZoom) {
		t.Fatalf("t=0.6: zoom = %v, want in (1.0, %v)", s.Zoom, cfg.MaxZoom)
	}
	if !approx(s.FocusX, 100) || !approx(s.FocusY, 100) {
		t.Fatalf("t=0.6: focus = (%v,%v), want (100,100)", s.FocusX, s.FocusY)
	}

	if s := At(1.0, log, cfg); !approx(s.Zoom, cfg.MaxZoom) {
		t.Fatalf("t=1.0: zoom = %v, want max zoom %v", s.Zoom, cfg.MaxZoom)
	}
	if s := At(3.0, log, cfg); !approx(s.Zoom, cfg.MaxZoom) {
		t.Fatalf("t=3.0 (hold): zoom = %v, want max zoom", s.Zoom)
	}

	s = At(5.5, log, cfg)
	if !(s.Zoom > 1.0 && s.Zoom < cfg.MaxZoom) {
		t.Fatalf("t=5.5 (zoom out): zoom = %v, want in (1.0, max)", s.Zoom)
	}

	if s := At(6.0, log, cfg); !approx(s.Zoom, 1.0) {
		t.Fatalf("t=6.0: zoom = %v, want back to idle", s.Zoom)
	}
}

func TestPanningBetweenCloseClicks(t *testing.T) {
	cfg := DefaultConfig()
	// pan_window = 4.0 + 0.8 + 0.6 = 5.4s; clicks 4.0s apart.
	log := logOf(click(100, 100, 1.0), click(200, 200, 5.0))

	s := At(1.0, log, cfg)
	if !approx(s.Zoom, cfg.MaxZoom) || !approx(s.FocusX, 100) {
		t.Fatalf("t=1.0: got %+v", s)
	}

	s = At(3.0, log, cfg)
	if !approx(s.Zoom, cfg.MaxZoom) || !approx(s.FocusX, 100) {
		t.Fatalf("t=3.0 (hold at first click): got %+v", s)
	}

	s = At(4.7, log, cfg)
	if !approx(s.Zoom, cfg.MaxZoom) {
		t.Fatalf("t=4.7: zoom = %v, want max zoom during pan", s.Zoom)
	}
	if !(s.FocusX > 100 && s.FocusX < 200) {
		t.Fatalf("t=4.7: focusX = %v, want interpolating between 100 and 200", s.FocusX)
	}

	s = At(5.0, log, cfg)
	if !approx(s.Zoom, cfg.MaxZoom) || !approx(s.FocusX, 200) || !approx(s.FocusY, 200) {
		t.Fatalf("t=5.0: got %+v", s)
	}
}

func TestZoomOutBetweenFarClicks(t *testing.T) {
	cfg := DefaultConfig()
	// Clicks 10s apart, well outside the 5.4s pan window.
	log := logOf(click(100, 100, 1.0), click(200, 200, 11.0))

	if s := At(6.0, log, cfg); !approx(s.Zoom, 1.0) {
		t.Fatalf("t=6.0: zoom = %v, want idle between far clicks", s.Zoom)
	}
	if s := At(10.0, log, cfg); !approx(s.Zoom, 1.0) {
		t.Fatalf("t=10.0: zoom = %v, want idle before second click", s.Zoom)
	}

	s := At(10.6, log, cfg)
	if !(s.Zoom > 1.0) {
		t.Fatalf("t=10.6: zoom = %v, want zooming in to second click", s.Zoom)
	}
	if !approx(s.FocusX, 200) {
		t.Fatalf("t=10.6: focusX = %v, want 200", s.FocusX)
	}
}

func TestDoubleClickDebounce(t *testing.T) {
	cfg := DefaultConfig()
	log := logOf(click(100, 100, 1.0), click(150, 150, 1.1))

	effective := EffectiveClicks(log, cfg)
	if len(effective) != 1 {
		t.Fatalf("len(effective) = %d, want 1 (second click debounced)", len(effective))
	}
	if !approx(effective[0].Timestamp, 1.0) {
		t.Fatalf("effective[0].Timestamp = %v, want 1.0", effective[0].Timestamp)
	}
}

func TestThreeRapidClicksPanThrough(t *testing.T) {
	cfg := DefaultConfig()
	log := logOf(click(100, 100, 1.0), click(200, 200, 4.0), click(300, 300, 7.0))

	if s := At(2.0, log, cfg); !approx(s.Zoom, cfg.MaxZoom) {
		t.Fatalf("t=2.0: zoom = %v, want max zoom throughout", s.Zoom)
	}
	if s := At(5.0, log, cfg); !approx(s.Zoom, cfg.MaxZoom) {
		t.Fatalf("t=5.0: zoom = %v, want max zoom through second click", s.Zoom)
	}
	// Third click at 7.0 + hold 4.0 + ease_out 0.8 = 11.8s fully zoomed out.
	if s := At(12.0, log, cfg); !approx(s.Zoom, 1.0) {
		t.Fatalf("t=12.0: zoom = %v, want zoomed out after last click", s.Zoom)
	}
}

func TestEmptyEventLogAlwaysIdle(t *testing.T) {
	cfg := DefaultConfig()
	log := logOf()
	for _, tm := range []float64{0, 1, 5, 100} {
		s := At(tm, log, cfg)
		if !approx(s.Zoom, 1.0) || !approx(s.FocusX, 0) || !approx(s.FocusY, 0) {
			t.Fatalf("t=%v: got %+v, want (1.0, 0, 0)", tm, s)
		}
	}
}

func TestCoincidentClicksOnlyFirstKept(t *testing.T) {
	cfg := DefaultConfig()
	log := logOf(click(10, 10, 2.0), click(20, 20, 2.0))
	effective := EffectiveClicks(log, cfg)
	if len(effective) != 1 {
		t.Fatalf("len(effective) = %d, want 1 (coincident clicks collapse to first)", len(effective))
	}
}

func TestTrajectoryContinuity(t *testing.T) {
	cfg := DefaultConfig()
	log := logOf(click(100, 100, 1.0), click(200, 200, 11.0))

	// Sample away from click/phase-transition boundaries and check that a
	// tiny perturbation doesn't jump the trajectory.
	for _, tm := range []float64{0.2, 2.0, 3.0, 8.0, 10.6, 10.8} {
		a := At(tm-1e-6, log, cfg)
		b := At(tm+1e-6, log, cfg)
		if math.Abs(a.Zoom-b.Zoom) > 1e-4 {
			t.Fatalf("t=%v: zoom discontinuity %v -> %v", tm, a.Zoom, b.Zoom)
		}
		if math.Abs(a.FocusX-b.FocusX) > 1e-4 || math.Abs(a.FocusY-b.FocusY) > 1e-4 {
			t.Fatalf("t=%v: focus discontinuity (%v,%v) -> (%v,%v)", tm, a.FocusX, a.FocusY, b.FocusX, b.FocusY)
		}
	}
}

func TestPanConsistency(t *testing.T) {
	cfg := DefaultConfig()
	log := logOf(click(100, 100, 1.0), click(200, 200, 5.0))
	for tm := 1.0; tm <= 5.0; tm += 0.2 {
		s := At(tm, log, cfg)
		if s.Zoom < cfg.MaxZoom-1e-9 {
			t.Fatalf("t=%v: zoom = %v, want >= max zoom while panning between close clicks", tm, s.Zoom)
		}
	}
}
