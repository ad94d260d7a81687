package controller

import "testing"

func TestSignalGetReturnsLatestSet(t *testing.T) {
	s := NewSignal(0)
	s.Set(1)
	s.Set(2)
	if got := s.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2 (overwrite semantics)", got)
	}
}

func TestSignalChangedWakesOnSet(t *testing.T) {
	s := NewSignal("")
	s.Set("hello")
	select {
	case <-s.Changed():
	default:
		t.Fatalf("expected Changed() to be ready after Set")
	}
}

func TestSignalChangedDoesNotBlockOnRepeatedSet(t *testing.T) {
	s := NewSignal(0)
	// Two Sets before any read must not block (buffered notify, size 1).
	s.Set(1)
	s.Set(2)
	if got := s.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2", got)
	}
}
