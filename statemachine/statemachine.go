// Package statemachine implements the firmware's top-level state machine
// (spec.md §4.7): a total, deterministic function from (State, Event) to a
// new State, gating motor and heater authority on the current state.
// Grounded on the teacher's core/command.go dispatch-table idiom (a fixed
// registry mapping an identifier to behavior), generalized here from
// command-name lookup to (state, event) transition lookup, and on
// original_source/isochron-core/src/state/machine.rs for the transition
// table's exact shape.
package statemachine

// State is one node of the top-level state machine.
type State uint8

const (
	Boot State = iota
	Idle
	ProgramSelected
	EditProgram
	AwaitingJar
	Running
	AwaitingSpinOff
	SpinOff
	Paused
	StepComplete
	ProgramComplete
	Autotuning
	ErrorState
)

func (s State) String() string {
	switch s {
	case Boot:
		return "Boot"
	case Idle:
		return "Idle"
	case ProgramSelected:
		return "ProgramSelected"
	case EditProgram:
		return "EditProgram"
	case AwaitingJar:
		return "AwaitingJar"
	case Running:
		return "Running"
	case AwaitingSpinOff:
		return "AwaitingSpinOff"
	case SpinOff:
		return "SpinOff"
	case Paused:
		return "Paused"
	case StepComplete:
		return "StepComplete"
	case ProgramComplete:
		return "ProgramComplete"
	case Autotuning:
		return "Autotuning"
	case ErrorState:
		return "Error"
	default:
		return "Unknown"
	}
}

// ErrorKind distinguishes the reason the machine entered ErrorState.
type ErrorKind uint8

const (
	NoError ErrorKind = iota
	ThermistorFault
	OverTemperature
	MotorStall
	LinkLost
	ConfigError
	UnknownFault
)

// Event is a stimulus that may trigger a transition.
type Event uint8

const (
	NoEvent Event = iota
	BootComplete
	SelectProgram
	StartAutotune
	EditParameter
	Start
	Back
	ConfirmEdit
	UserConfirm
	Abort
	Pause
	ProfileFinished
	StartSpinOff
	PromptSpinOff
	SpinOffFinished
	Resume
	NextStep
	PromptNextJar
	ProgramFinished
	AutotuneComplete
	AutotuneFailed
	CancelAutotune
	ErrorDetected
	AcknowledgeError
)

// Machine holds the current state plus the error kind active while in
// ErrorState (zero-value NoError otherwise).
type Machine struct {
	state State
	kind  ErrorKind
}

// New returns a Machine in Boot.
func New() *Machine {
	return &Machine{state: Boot}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// ErrorKind returns the active fault kind, or NoError if not in ErrorState.
func (m *Machine) ErrorKind() ErrorKind {
	if m.state != ErrorState {
		return NoError
	}
	return m.kind
}

// Transition applies event to the current state and returns the resulting
// state. It is total: an (state, event) pair not named by the table leaves
// the state unchanged. ErrorDetected is accepted from any non-Error state
// but records no ErrorKind; Fault enters ErrorState with a kind.
func (m *Machine) Transition(ev Event) State {
	if ev == ErrorDetected {
		if m.state != ErrorState {
			m.state = ErrorState
		}
		return m.state
	}
	if m.state == ErrorState {
		if ev == AcknowledgeError {
			m.state = Idle
			m.kind = NoError
		}
		return m.state
	}

	next, ok := table[transitionKey{m.state, ev}]
	if ok {
		m.state = next
	}
	return m.state
}

// Fault drives the machine into ErrorState with the given kind, from any
// non-Error state. Equivalent to Transition(ErrorDetected) but also records
// the kind atomically so ErrorKind() reflects the cause of this fault.
func (m *Machine) Fault(kind ErrorKind) State {
	if m.state != ErrorState {
		m.state = ErrorState
		m.kind = kind
	}
	return m.state
}

type transitionKey struct {
	from State
	ev   Event
}

// table is the explicit transition table from spec.md §4.7. Entries for
// ConfirmEdit and Back from EditProgram both land on ProgramSelected; Error
// handling and ErrorDetected are handled specially in Transition/Fault above
// since they apply uniformly across every non-Error state.
var table = map[transitionKey]State{
	{Boot, BootComplete}: Idle,

	{Idle, SelectProgram}: ProgramSelected,
	{Idle, StartAutotune}: Autotuning,

	{ProgramSelected, EditParameter}: EditProgram,
	{ProgramSelected, Start}:         Running,
	{ProgramSelected, Back}:          Idle,

	{EditProgram, ConfirmEdit}: ProgramSelected,
	{EditProgram, Back}:        ProgramSelected,

	{AwaitingJar, UserConfirm}: Running,
	{AwaitingJar, Abort}:       Idle,

	{Running, Pause}:           Paused,
	{Running, ProfileFinished}: StepComplete,
	{Running, StartSpinOff}:    SpinOff,
	{Running, PromptSpinOff}:   AwaitingSpinOff,
	{Running, Abort}:           Idle,

	{AwaitingSpinOff, UserConfirm}: SpinOff,

	{SpinOff, SpinOffFinished}: StepComplete,
	{SpinOff, Abort}:           Idle,

	{Paused, Resume}: Running,
	{Paused, Abort}:  Idle,

	{StepComplete, NextStep}:        Running,
	{StepComplete, PromptNextJar}:   AwaitingJar,
	{StepComplete, ProgramFinished}: ProgramComplete,

	{ProgramComplete, SelectProgram}: ProgramSelected,
	{ProgramComplete, Back}:          Idle,

	{Autotuning, AutotuneComplete}: Idle,
	{Autotuning, AutotuneFailed}:   Idle,
	{Autotuning, CancelAutotune}:   Idle,
}

// MotorAllowed reports whether motor output may be non-zero in the current
// state (spec.md §4.7, §8 property 1): true exactly in Running and SpinOff.
func (m *Machine) MotorAllowed() bool {
	return m.state == Running || m.state == SpinOff
}

// HeaterAllowed reports whether the heater may be enabled in the current
// state (spec.md §4.7, §8 property 2): true in Running and Autotuning,
// explicitly excluding SpinOff (basket is out of solution).
func (m *Machine) HeaterAllowed() bool {
	return m.state == Running || m.state == Autotuning
}

// Terminal reports whether the state awaits user action with no
// autonomous progression: Idle, ProgramComplete, or ErrorState.
func (m *Machine) Terminal() bool {
	return m.state == Idle || m.state == ProgramComplete || m.state == ErrorState
}
