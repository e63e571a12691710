package eventlog

import (
	"strings"
	"testing"
)

func TestDecodeValid(t *testing.T) {
	raw := `{
		"source_type": "Display",
		"source_index": 0,
		"width": 1280,
		"height": 720,
		"scale_factor": 2,
		"window_offset": [0, 0],
		"cursor_to_video_offset": 0.05,
		"cursor_events": [
			{"x": 10, "y": 10, "timestamp": 0.0, "event_type": "Move"},
			{"x": 400, "y": 300, "timestamp": 1.0, "event_type": "LeftClick"}
		]
	}`

	log, err := Decode(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if log.ScaleFactor != 2 {
		t.Fatalf("ScaleFactor = %v, want 2", log.ScaleFactor)
	}
	if len(log.CursorEvents) != 2 {
		t.Fatalf("len(CursorEvents) = %d, want 2", len(log.CursorEvents))
	}
	if len(log.Clicks()) != 1 {
		t.Fatalf("len(Clicks()) = %d, want 1", len(log.Clicks()))
	}
}

func TestDecodeOutOfOrderTimestamps(t *testing.T) {
	raw := `{
		"source_type": "Display",
		"source_index": 0,
		"width": 1280,
		"height": 720,
		"scale_factor": 1,
		"window_offset": [0, 0],
		"cursor_events": [
			{"x": 0, "y": 0, "timestamp": 2.0, "event_type": "Move"},
			{"x": 0, "y": 0, "timestamp": 1.0, "event_type": "Move"}
		]
	}`
	if _, err := Decode(strings.NewReader(raw)); err == nil {
		t.Fatal("expected error for out-of-order timestamps")
	}
}

func TestDecodeDefaultsScaleFactor(t *testing.T) {
	raw := `{
		"source_type": "Display",
		"source_index": 0,
		"width": 100,
		"height": 100,
		"window_offset": [0, 0],
		"cursor_events": []
	}`
	log, err := Decode(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if log.ScaleFactor != 1 {
		t.Fatalf("ScaleFactor = %v, want 1", log.ScaleFactor)
	}
}

func TestLatestAt(t *testing.T) {
	log := &EventLog{
		ScaleFactor: 1,
		CursorEvents: []PointerEvent{
			{X: 1, Y: 1, Timestamp: 0.0, EventType: Move},
			{X: 2, Y: 2, Timestamp: 1.0, EventType: Move},
			{X: 3, Y: 3, Timestamp: 2.0, EventType: Move},
		},
	}

	e, ok := log.LatestAt(1.5)
	if !ok || e.X != 2 {
		t.Fatalf("LatestAt(1.5) = %+v, %v; want x=2, true", e, ok)
	}

	e, ok = log.LatestAt(-1)
	if ok {
		t.Fatalf("LatestAt(-1) = %+v, %v; want not found", e, ok)
	}
}
