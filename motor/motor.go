// Package motor generalizes the spin axis's motor-driver contract across
// three physically different actuators: a stepper (closed-loop RPM via
// package stepper), a brushed DC motor (open-loop PWM duty), and a
// capacitor-start AC motor (power relay + discrete speed-tap selection). The
// scheduler commands all three the same way: (rpm, direction) in, on/off
// authority gated by the state machine.
//
// Grounded on original_source's motor/{ac,dc}.rs split for the existence
// of three distinct actuator kinds behind one trait, and on the teacher's
// core/pwm.go hardware-PWM-output idiom (cycle ticks + duty value) for the
// DC/AC duty-cycle implementations.
package motor

import "isochron/stepper"

// Direction mirrors stepper.Direction so non-stepper motors don't need to
// import the stepper package just to name a spin direction.
type Direction = stepper.Direction

const (
	CW  = stepper.CW
	CCW = stepper.CCW
)

// SpinMotor is the capability every jar's spin actuator implements,
// regardless of kind.
type SpinMotor interface {
	// SetRPM commands a target RPM. The DC implementation approximates it
	// via a linear duty curve and the AC implementation selects the nearest
	// speed tap; neither has closed-loop speed control.
	SetRPM(rpm uint16)
	SetDirection(dir Direction) error
	Enable(on bool)
	Stop()
	IsAtSpeed() bool
	IsStalled() bool
	ClearStall()
}

// StepperDriven wraps a stepper.Stepper as a SpinMotor.
type StepperDriven struct {
	s *stepper.Stepper
}

// NewStepperDriven wraps an existing stepper axis.
func NewStepperDriven(s *stepper.Stepper) *StepperDriven { return &StepperDriven{s: s} }

func (m *StepperDriven) SetRPM(rpm uint16)            { m.s.SetRPM(rpm) }
func (m *StepperDriven) SetDirection(dir Direction) error { return m.s.SetDirection(dir) }
func (m *StepperDriven) Enable(on bool)               { m.s.Enable(on) }
func (m *StepperDriven) Stop()                        { m.s.Stop() }
func (m *StepperDriven) IsAtSpeed() bool              { return m.s.IsAtSpeed() }
func (m *StepperDriven) IsStalled() bool              { return m.s.IsStalled() }
func (m *StepperDriven) ClearStall()                  { m.s.ClearStall() }
