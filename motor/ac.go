package motor

import "fmt"

// PowerRelay energizes or de-energizes an AC motor's run winding.
type PowerRelay interface {
	SetOn(on bool)
}

// SpeedSelector picks one of a fixed set of discrete speed taps on a
// multi-tap capacitor-start AC motor (common on inexpensive ultrasonic
// spin units — unlike a DC drive there is no continuous duty control).
type SpeedSelector interface {
	SelectTap(tap int)
}

// ACDriven drives a capacitor-start AC motor with a small number of
// discrete speed taps rather than continuous PWM. Reversing a
// capacitor-start motor requires it be fully stopped first (reversing the
// start-winding phase while energized can stall or damage the motor), so
// SetDirection is rejected while enabled — same serialisation rule the
// stepper abstraction applies to direction changes, for a different
// hardware reason.
type ACDriven struct {
	power     PowerRelay
	dir       DirectionRelay
	speed     SpeedSelector
	tapsRPM   []uint16 // ascending RPM each tap produces
	direction Direction
	enabled   bool
	rpm       uint16
}

// NewACDriven builds an ACDriven motor with the given ascending list of
// RPM values its speed taps produce (tap 0 is the slowest).
func NewACDriven(power PowerRelay, dir DirectionRelay, speed SpeedSelector, tapsRPM []uint16) *ACDriven {
	return &ACDriven{power: power, dir: dir, speed: speed, tapsRPM: tapsRPM}
}

func (m *ACDriven) nearestTap(rpm uint16) int {
	best := 0
	bestDiff := int32(1<<31 - 1)
	for i, tapRPM := range m.tapsRPM {
		diff := int32(rpm) - int32(tapRPM)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}

func (m *ACDriven) SetRPM(rpm uint16) {
	m.rpm = rpm
	if m.enabled && len(m.tapsRPM) > 0 {
		m.speed.SelectTap(m.nearestTap(rpm))
	}
}

func (m *ACDriven) SetDirection(dir Direction) error {
	if m.enabled {
		return fmt.Errorf("motor: cannot reverse a capacitor-start AC motor while running")
	}
	m.direction = dir
	m.dir.SetDirection(dir == CCW)
	return nil
}

func (m *ACDriven) Enable(on bool) {
	m.enabled = on
	m.power.SetOn(on)
	if on && len(m.tapsRPM) > 0 {
		m.speed.SelectTap(m.nearestTap(m.rpm))
	}
}

func (m *ACDriven) Stop() {
	m.enabled = false
	m.rpm = 0
	m.power.SetOn(false)
}

// IsAtSpeed always reports true: a discrete-tap AC drive has no continuous
// feedback, so "at speed" means "the nearest tap has been selected".
func (m *ACDriven) IsAtSpeed() bool { return true }

// IsStalled is always false: this motor kind has no stall sensing.
func (m *ACDriven) IsStalled() bool { return false }

func (m *ACDriven) ClearStall() {}
