package statemachine

import "testing"

// allStates and allEvents enumerate every defined value for the exhaustive
// property check below.
var allStates = []State{
	Boot, Idle, ProgramSelected, EditProgram, AwaitingJar, Running,
	AwaitingSpinOff, SpinOff, Paused, StepComplete, ProgramComplete,
	Autotuning, ErrorState,
}

var allEvents = []Event{
	BootComplete, SelectProgram, StartAutotune, EditParameter, Start, Back,
	ConfirmEdit, UserConfirm, Abort, Pause, ProfileFinished, StartSpinOff,
	PromptSpinOff, SpinOffFinished, Resume, NextStep, PromptNextJar,
	ProgramFinished, AutotuneComplete, AutotuneFailed, CancelAutotune,
	ErrorDetected, AcknowledgeError,
}

// TestAcknowledgeErrorAlwaysReturnsToIdle is testable property 1: for all
// (state, event), transition(event).transition(AcknowledgeError) is Idle
// whenever the first transition produced an Error.
func TestAcknowledgeErrorAlwaysReturnsToIdle(t *testing.T) {
	for _, s := range allStates {
		for _, ev := range allEvents {
			m := &Machine{state: s}
			first := m.Transition(ev)
			becameError := first == ErrorState
			second := m.Transition(AcknowledgeError)
			if becameError && second != Idle {
				t.Fatalf("from=%v event=%v: became Error but AcknowledgeError gave %v, want Idle", s, ev, second)
			}
		}
	}
}

func TestBootToIdle(t *testing.T) {
	m := New()
	if m.State() != Boot {
		t.Fatalf("expected Boot initial state")
	}
	if got := m.Transition(BootComplete); got != Idle {
		t.Fatalf("Boot+BootComplete = %v, want Idle", got)
	}
}

func TestUnlistedPairIsNoOp(t *testing.T) {
	m := &Machine{state: Idle}
	got := m.Transition(Resume)
	if got != Idle {
		t.Fatalf("unlisted (Idle, Resume) should be a no-op, got %v", got)
	}
}

func TestErrorDetectedFromAnyNonErrorState(t *testing.T) {
	for _, s := range allStates {
		if s == ErrorState {
			continue
		}
		m := &Machine{state: s}
		got := m.Fault(MotorStall)
		if got != ErrorState {
			t.Fatalf("from %v: Fault should enter ErrorState, got %v", s, got)
		}
		if m.ErrorKind() != MotorStall {
			t.Fatalf("from %v: expected ErrorKind MotorStall, got %v", s, m.ErrorKind())
		}
	}
}

func TestOnlyAcknowledgeErrorAcceptedInErrorState(t *testing.T) {
	m := &Machine{state: ErrorState, kind: LinkLost}
	if got := m.Transition(Start); got != ErrorState {
		t.Fatalf("Error state should ignore Start, got %v", got)
	}
	if got := m.Transition(AcknowledgeError); got != Idle {
		t.Fatalf("AcknowledgeError should return to Idle, got %v", got)
	}
	if m.ErrorKind() != NoError {
		t.Fatalf("expected NoError after acknowledge")
	}
}

func TestMotorAllowedOnlyRunningAndSpinOff(t *testing.T) {
	for _, s := range allStates {
		m := &Machine{state: s}
		want := s == Running || s == SpinOff
		if m.MotorAllowed() != want {
			t.Fatalf("MotorAllowed in %v = %v, want %v", s, m.MotorAllowed(), want)
		}
	}
}

func TestHeaterAllowedRunningAndAutotuningOnly(t *testing.T) {
	for _, s := range allStates {
		m := &Machine{state: s}
		want := s == Running || s == Autotuning
		if m.HeaterAllowed() != want {
			t.Fatalf("HeaterAllowed in %v = %v, want %v (SpinOff must be excluded)", s, m.HeaterAllowed(), want)
		}
	}
}

func TestFullHappyPathWalk(t *testing.T) {
	m := New()
	steps := []struct {
		ev   Event
		want State
	}{
		{BootComplete, Idle},
		{SelectProgram, ProgramSelected},
		{Start, Running},
		{ProfileFinished, StepComplete},
		{NextStep, Running},
		{ProfileFinished, StepComplete},
		{ProgramFinished, ProgramComplete},
		{Back, Idle},
	}
	for i, st := range steps {
		got := m.Transition(st.ev)
		if got != st.want {
			t.Fatalf("step %d: event %v from prior state gave %v, want %v", i, st.ev, got, st.want)
		}
	}
}

func TestSpinOffPath(t *testing.T) {
	m := &Machine{state: Running}
	if got := m.Transition(StartSpinOff); got != SpinOff {
		t.Fatalf("Running+StartSpinOff = %v, want SpinOff", got)
	}
	if got := m.Transition(SpinOffFinished); got != StepComplete {
		t.Fatalf("SpinOff+SpinOffFinished = %v, want StepComplete", got)
	}
}

func TestPauseResume(t *testing.T) {
	m := &Machine{state: Running}
	if got := m.Transition(Pause); got != Paused {
		t.Fatalf("Running+Pause = %v, want Paused", got)
	}
	if got := m.Transition(Resume); got != Running {
		t.Fatalf("Paused+Resume = %v, want Running", got)
	}
}
