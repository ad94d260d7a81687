// Package stepper implements the stepper abstraction (spec.md §4.2): the
// contract the scheduler drives (set_rpm, set_direction, enable, stop, plus
// status queries) over a pulse-generating backend. Grounded on the
// teacher's core/stepper.go move-queue/acceleration model and
// targets/pio/stepper_pio.go's hardware state-machine pulse generator,
// generalized from Klipper-style queued step intervals to a direct
// target-RPM-to-clock-divider conversion since this firmware drives one
// continuously spinning axis rather than a G-code motion queue.
package stepper

import "fmt"

// Direction is the spin direction a Stepper drives.
type Direction uint8

const (
	CW Direction = iota
	CCW
)

func (d Direction) String() string {
	if d == CCW {
		return "ccw"
	}
	return "cw"
}

// MaxStepFreqHz is the hard clamp on commanded step frequency, preserving a
// pulse width of at least 2.5us (spec.md §4.2).
const MaxStepFreqHz = 200_000

// StallDebounceMs is the typical debounce window for the stall input line
// (spec.md §4.2).
const StallDebounceMs = 50

// Geometry describes the mechanical conversion from RPM to step frequency.
type Geometry struct {
	FullSteps uint32
	Microsteps uint32
	GearNum    uint32
	GearDen    uint32
}

// StepsPerRev returns full_steps * microsteps * gear_num / gear_den.
func (g Geometry) StepsPerRev() uint32 {
	return g.FullSteps * g.Microsteps * g.GearNum / g.GearDen
}

// FreqHz converts a target RPM into a step frequency given this geometry,
// clamped to MaxStepFreqHz.
func (g Geometry) FreqHz(rpm uint16) uint32 {
	freq := uint64(rpm) * uint64(g.StepsPerRev()) / 60
	if freq > MaxStepFreqHz {
		freq = MaxStepFreqHz
	}
	return uint32(freq)
}

// DividerFixed88 computes the PIO clock divider in 8.8 fixed point for a
// given step frequency and system clock, per spec.md §4.2: two PIO
// instructions per step pulse, hence the factor of 2 in the denominator.
func DividerFixed88(sysClkHz, freqHz uint32) uint32 {
	if freqHz == 0 {
		return 0
	}
	return uint32(uint64(sysClkHz) * 256 / (uint64(freqHz) * 2))
}

// Backend is the hardware-facing pulse generator a Stepper drives. PIO and
// software-timer implementations both satisfy it.
type Backend interface {
	// SetFrequency programs the backend to pulse at freqHz (already
	// clamped to MaxStepFreqHz by the caller).
	SetFrequency(freqHz uint32)
	SetDirection(dir Direction)
	Enable(on bool)
	Stop()
}

// StallSource reports the debounced stall input.
type StallSource interface {
	Stalled() bool
}

// Stepper is the scheduler-facing stepper axis: target/current RPM,
// direction, enable state, and stall status, translated into backend pulse
// commands.
type Stepper struct {
	geometry  Geometry
	sysClkHz  uint32
	backend   Backend
	stall     StallSource

	targetRPM  uint16
	currentRPM uint16
	direction  Direction
	enabled    bool
	stalled    bool
	clearedStall bool
}

// New builds a Stepper over the given backend and stall source.
func New(geometry Geometry, sysClkHz uint32, backend Backend, stall StallSource) *Stepper {
	return &Stepper{geometry: geometry, sysClkHz: sysClkHz, backend: backend, stall: stall}
}

// SetRPM requests a new target RPM. The backend is reprogrammed
// immediately; ramping toward this target is the motion planner's job
// (package motion), not the stepper's.
func (s *Stepper) SetRPM(rpm uint16) {
	s.targetRPM = rpm
	s.currentRPM = rpm
	if s.enabled {
		s.backend.SetFrequency(s.geometry.FreqHz(rpm))
	}
}

// SetDirection changes spin direction. Per spec.md §4.2, direction changes
// while running are serialised: stop, set the direction line, restart.
func (s *Stepper) SetDirection(dir Direction) error {
	if dir == s.direction {
		return nil
	}
	wasEnabled := s.enabled
	if wasEnabled {
		s.backend.Stop()
	}
	s.direction = dir
	s.backend.SetDirection(dir)
	if wasEnabled {
		s.backend.Enable(true)
		s.backend.SetFrequency(s.geometry.FreqHz(s.currentRPM))
	}
	return nil
}

// Enable turns the pulse stream on or off.
func (s *Stepper) Enable(on bool) {
	s.enabled = on
	s.backend.Enable(on)
	if on {
		s.backend.SetFrequency(s.geometry.FreqHz(s.currentRPM))
	} else {
		s.backend.Stop()
	}
}

// Stop halts pulse generation immediately, independent of Enable state.
func (s *Stepper) Stop() {
	s.enabled = false
	s.currentRPM = 0
	s.targetRPM = 0
	s.backend.Stop()
}

// IsAtSpeed reports whether current RPM has reached the target.
func (s *Stepper) IsAtSpeed() bool { return s.currentRPM == s.targetRPM }

// IsStalled polls the stall source and latches the result until
// ClearStall is called.
func (s *Stepper) IsStalled() bool {
	if s.stall != nil && s.stall.Stalled() {
		s.stalled = true
	}
	return s.stalled
}

// ClearStall resets the latched stall flag.
func (s *Stepper) ClearStall() { s.stalled = false }

// String renders the stepper's current commanded state, useful for
// debug-sink logging.
func (s *Stepper) String() string {
	return fmt.Sprintf("rpm=%d dir=%v enabled=%v stalled=%v", s.currentRPM, s.direction, s.enabled, s.stalled)
}
