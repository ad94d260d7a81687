// Package fwlog is the on-controller debug sink: a non-blocking, allocation
// free print path plus a small ring buffer for post-mortem inspection after
// a fault. It deliberately does not reach for a structured logging library
// — the hot paths it is called from (tick, stepper event, heater tick) must
// not allocate, which rules out the ecosystem's logging packages. Host-side
// tooling uses go.uber.org/zap instead; see cmd/isochron-bridge.
package fwlog

import "sync/atomic"

// Writer is a platform-supplied sink (UART, USB CDC, stdout, ...).
type Writer func(string)

const ringSize = 32

// Event codes for the timing ring buffer.
const (
	EvtNone uint8 = iota
	EvtFault
	EvtStateTransition
	EvtSchedulerEvent
	EvtAutotunePeak
)

// Event captures one timing-relevant occurrence for post-mortem dumps.
type Event struct {
	Kind   uint8
	Detail uint8
	Clock  uint32
	Value1 uint32
	Value2 uint32
}

var (
	writer  atomic.Pointer[Writer]
	enabled atomic.Bool

	ring     [ringSize]Event
	ringHead atomic.Uint32
)

// SetWriter installs the platform-specific sink. Nil disables output.
func SetWriter(w Writer) {
	if w == nil {
		writer.Store(nil)
		return
	}
	writer.Store(&w)
}

// SetEnabled turns debug printing on or off without touching the writer.
// Disabled by default so release builds pay no string-formatting cost.
func SetEnabled(on bool) { enabled.Store(on) }

// Enabled reports whether Print will actually emit anything.
func Enabled() bool { return enabled.Load() }

// Print writes msg through the installed writer if logging is enabled.
func Print(msg string) {
	if !enabled.Load() {
		return
	}
	if w := writer.Load(); w != nil {
		(*w)(msg)
	}
}

// Record appends an event to the ring buffer. Always non-blocking and does
// not allocate; safe to call from interrupt-adjacent contexts.
func Record(kind, detail uint8, clock, v1, v2 uint32) {
	idx := ringHead.Add(1) - 1
	ring[idx%ringSize] = Event{Kind: kind, Detail: detail, Clock: clock, Value1: v1, Value2: v2}
}

// Dump returns a snapshot of the ring buffer, oldest first. Intended for use
// after a fault has already halted time-critical work.
func Dump() []Event {
	head := ringHead.Load()
	out := make([]Event, 0, ringSize)
	for i := uint32(0); i < ringSize; i++ {
		idx := (head + i) % ringSize
		if ring[idx].Kind == EvtNone {
			continue
		}
		out = append(out, ring[idx])
	}
	return out
}

// Clear empties the ring buffer.
func Clear() {
	for i := range ring {
		ring[i] = Event{}
	}
	ringHead.Store(0)
}
