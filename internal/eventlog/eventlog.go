// Package eventlog loads and represents the pointer-event stream that
// accompanies a screen recording.
package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Kind identifies the type of a pointer event.
type Kind string

const (
	Move       Kind = "Move"
	LeftClick  Kind = "LeftClick"
	RightClick Kind = "RightClick"
)

// SourceType identifies what was recorded.
type SourceType string

const (
	Display SourceType = "Display"
	Window  SourceType = "Window"
)

// PointerEvent is a single timestamped pointer sample or click.
type PointerEvent struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp float64 `json:"timestamp"`
	EventType Kind    `json:"event_type"`
}

// IsClick reports whether the event is a left or right click.
func (e PointerEvent) IsClick() bool {
	return e.EventType == LeftClick || e.EventType == RightClick
}

// EventLog is the ordered, read-only pointer-event stream for a recording,
// together with the scale and offset metadata needed to map its
// coordinates onto the source frame.
type EventLog struct {
	SourceType             SourceType     `json:"source_type"`
	SourceIndex            int            `json:"source_index"`
	Width                  int            `json:"width"`
	Height                 int            `json:"height"`
	ScaleFactor            float64        `json:"scale_factor"`
	WindowOffset           [2]int         `json:"window_offset"`
	CursorTrackingDuration float64        `json:"cursor_tracking_duration,omitempty"`
	CursorToVideoOffset    float64        `json:"cursor_to_video_offset,omitempty"`
	CursorEvents           []PointerEvent `json:"cursor_events"`
}

// Validate checks the structural invariants required by the pipeline:
// non-decreasing timestamps and a sane scale factor.
func (l *EventLog) Validate() error {
	if l.ScaleFactor < 1 {
		return fmt.Errorf("scale_factor must be >= 1, got %v", l.ScaleFactor)
	}
	last := -1.0
	for i, e := range l.CursorEvents {
		if e.Timestamp < last {
			return fmt.Errorf("cursor_events[%d] timestamp %v is out of order (previous %v)", i, e.Timestamp, last)
		}
		last = e.Timestamp
	}
	return nil
}

// Load reads an EventLog from a JSON file at path.
func Load(path string) (*EventLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads an EventLog from JSON on r.
func Decode(r io.Reader) (*EventLog, error) {
	var l EventLog
	dec := json.NewDecoder(r)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("decode event log: %w", err)
	}
	if l.ScaleFactor == 0 {
		l.ScaleFactor = 1
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Save writes an EventLog to path as indented JSON.
func Save(path string, l *EventLog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create event log: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// LatestAt returns the most recent event with timestamp <= t, or false if
// no such event exists.
func (l *EventLog) LatestAt(t float64) (PointerEvent, bool) {
	var best PointerEvent
	found := false
	for _, e := range l.CursorEvents {
		if e.Timestamp <= t {
			best = e
			found = true
		} else {
			break
		}
	}
	return best, found
}

// Clicks returns every left/right click event, in order, unfiltered by
// debounce.
func (l *EventLog) Clicks() []PointerEvent {
	var clicks []PointerEvent
	for _, e := range l.CursorEvents {
		if e.IsClick() {
			clicks = append(clicks, e)
		}
	}
	return clicks
}
