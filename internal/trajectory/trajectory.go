// Package trajectory implements the zoom/pan trajectory planner: a
// stateless, time-indexed function over the click sequence that yields a
// (zoom, focus_x, focus_y) triple for any timestamp.
package trajectory

import (
	"github.com/focusframe/focusframe/internal/ease"
	"github.com/focusframe/focusframe/internal/eventlog"
)

// Config holds the trajectory planner's tunables. Defaults mirror the
// reference recording/editing tool this pipeline reimplements.
type Config struct {
	MaxZoom  float64 // target zoom factor at peak
	EaseIn   float64 // anticipatory lead time before a click, seconds
	Hold     float64 // time at MaxZoom after a click, seconds
	EaseOut  float64 // return-to-1.0 duration, seconds
	Debounce float64 // minimum inter-click gap to count, seconds
}

// DefaultConfig returns the spec's literal default trajectory tunables.
func DefaultConfig() Config {
	return Config{
		MaxZoom:  1.5,
		EaseIn:   0.6,
		Hold:     4.0,
		EaseOut:  0.8,
		Debounce: 0.5,
	}
}

// PanWindow is the maximum inter-click gap within which the view stays
// zoomed and pans through rather than zooming fully out and back in.
func (c Config) PanWindow() float64 {
	return c.Hold + c.EaseOut + c.EaseIn
}

// Sample is a single (zoom, focus) pair at a point in time.
type Sample struct {
	Zoom   float64
	FocusX float64
	FocusY float64
}

// EffectiveClicks returns the debounced subsequence of click events: the
// longest prefix-closed subsequence such that each kept click's timestamp
// exceeds the previously kept click's timestamp by more than
// config.Debounce. Stateless over the whole log, and stable under any
// prefix (property: debounce idempotence).
func EffectiveClicks(log *eventlog.EventLog, cfg Config) []eventlog.PointerEvent {
	var effective []eventlog.PointerEvent
	for _, e := range log.CursorEvents {
		if !e.IsClick() {
			continue
		}
		if len(effective) == 0 {
			effective = append(effective, e)
			continue
		}
		prev := effective[len(effective)-1]
		if e.Timestamp-prev.Timestamp > cfg.Debounce {
			effective = append(effective, e)
		}
	}
	return effective
}

// At evaluates T(t): the trajectory sample for timestamp t given the
// event log and config. Total; cannot fail.
func At(t float64, log *eventlog.EventLog, cfg Config) Sample {
	clicks := EffectiveClicks(log, cfg)

	var prev, next eventlog.PointerEvent
	havePrev, haveNext := false, false
	for _, c := range clicks {
		if c.Timestamp <= t {
			prev = c
			havePrev = true
		} else if !haveNext {
			next = c
			haveNext = true
		}
	}

	defaultX, defaultY := 0.0, 0.0
	if e, ok := log.LatestAt(t); ok {
		defaultX, defaultY = e.X, e.Y
	}

	panWindow := cfg.PanWindow()

	// Case (a): anticipatory zoom-in.
	if haveNext {
		timeToNext := next.Timestamp - t
		if timeToNext > 0 && timeToNext <= cfg.EaseIn {
			progress := 1 - timeToNext/cfg.EaseIn
			zoom := 1 + (cfg.MaxZoom-1)*ease.OutCubic(progress)

			if havePrev && (next.Timestamp-prev.Timestamp) <= panWindow {
				zoom = maxF(zoom, cfg.MaxZoom)
				p := ease.InOutCubic(progress)
				return Sample{
					Zoom:   zoom,
					FocusX: ease.Lerp(prev.X, next.X, p),
					FocusY: ease.Lerp(prev.Y, next.Y, p),
				}
			}
			return Sample{Zoom: zoom, FocusX: next.X, FocusY: next.Y}
		}
	}

	// Case (b): at/after prev.
	if havePrev {
		elapsed := t - prev.Timestamp

		if haveNext && (next.Timestamp-prev.Timestamp) <= panWindow {
			timeToNext := next.Timestamp - t
			if elapsed <= cfg.Hold && timeToNext > cfg.EaseIn {
				return Sample{Zoom: cfg.MaxZoom, FocusX: prev.X, FocusY: prev.Y}
			}

			panStart := minF(prev.Timestamp+cfg.Hold, next.Timestamp-cfg.EaseIn)
			if t >= panStart {
				panDuration := next.Timestamp - panStart
				panElapsed := t - panStart
				pp := ease.Clamp(panElapsed/panDuration, 0, 1)
				p := ease.InOutCubic(pp)
				return Sample{
					Zoom:   cfg.MaxZoom,
					FocusX: ease.Lerp(prev.X, next.X, p),
					FocusY: ease.Lerp(prev.Y, next.Y, p),
				}
			}
			return Sample{Zoom: cfg.MaxZoom, FocusX: prev.X, FocusY: prev.Y}
		}

		if elapsed <= cfg.Hold {
			return Sample{Zoom: cfg.MaxZoom, FocusX: prev.X, FocusY: prev.Y}
		}
		if elapsed <= cfg.Hold+cfg.EaseOut {
			q := (elapsed - cfg.Hold) / cfg.EaseOut
			zoom := cfg.MaxZoom - (cfg.MaxZoom-1)*ease.InCubic(q)
			return Sample{Zoom: zoom, FocusX: prev.X, FocusY: prev.Y}
		}
	}

	// Case (c): idle.
	return Sample{Zoom: 1.0, FocusX: defaultX, FocusY: defaultY}
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
