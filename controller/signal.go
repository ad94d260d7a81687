// Package controller wires the cooperative task set described in spec.md
// §5 around the scheduler, state machine, and safety monitor: a Tick task,
// a display RX/TX pair, the controller dispatch loop itself, and a
// calibration writer, communicating through single-slot overwrite signals
// and a bounded drop-on-full input channel. Grounded on the teacher's
// targets/rp2040/main.go (`go usbReaderLoop()` plus a polling main loop)
// for the goroutine-per-activity shape, generalized from USB framing to
// this firmware's tick/display/safety task set.
package controller

import "sync"

// Signal is a single-slot, overwrite-semantics value shared between one
// publisher and any number of readers (spec.md §5: "Motor and heater
// command signals use overwrite semantics: the latest published value
// wins; consumers tolerate missing intermediate values"). Zero value is
// usable with Set called at least once before Get is meaningful, or use
// NewSignal to seed an initial value.
type Signal[T any] struct {
	mu     sync.Mutex
	val    T
	notify chan struct{}
}

// NewSignal returns a Signal seeded with initial.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{val: initial, notify: make(chan struct{}, 1)}
}

// Set overwrites the held value and wakes at most one pending Wait.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	s.val = v
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Get returns the most recently Set value.
func (s *Signal[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

// Changed returns the channel a waiter selects on to be woken by the next
// Set call. It is not itself guaranteed to carry the new value — callers
// should follow a receive with Get.
func (s *Signal[T]) Changed() <-chan struct{} { return s.notify }
