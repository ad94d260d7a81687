// Package motion implements the motion planner (spec.md §4.1): a smooth
// ramp between the current and target RPM, fixed-point throughout per
// spec.md §9 (no floating point in hot paths). Grounded on the teacher's
// saturating accel/interval arithmetic in core/stepper.go's
// stepperEventHandler ("apply acceleration ... clamp to minimum interval"),
// adapted here from step-interval space to RPM space.
package motion

// State is the motion planner's coarse phase.
type State uint8

const (
	Stopped State = iota
	Accelerating
	AtSpeed
	Decelerating
)

// MaxAccelRPMPerSec is the hard cap on commanded acceleration (spec.md §4.1).
const MaxAccelRPMPerSec = 100

// Planner holds current/target RPM in x10 fixed point (0.1 RPM resolution)
// and an acceleration rate in RPM/s.
type Planner struct {
	currentX10 int32
	targetX10  int32
	accelRPMs  int32 // RPM/s, capped at MaxAccelRPMPerSec
	state      State
}

// New returns a Planner with the given acceleration rate, clamped to the
// spec's cap.
func New(accelRPMPerSec int32) *Planner {
	return &Planner{accelRPMs: clampAccel(accelRPMPerSec)}
}

func clampAccel(a int32) int32 {
	if a > MaxAccelRPMPerSec {
		return MaxAccelRPMPerSec
	}
	if a < 0 {
		return 0
	}
	return a
}

// SetAccel updates the acceleration rate, clamped to the spec's cap.
func (p *Planner) SetAccel(rpmPerSec int32) { p.accelRPMs = clampAccel(rpmPerSec) }

// SetTarget updates the target RPM (not x10 — whole RPM, as commanded by a
// segment or spin-off phase).
func (p *Planner) SetTarget(rpm uint16) {
	p.targetX10 = int32(rpm) * 10
	p.updateState()
}

// CurrentX10 returns the current RPM in x10 fixed point.
func (p *Planner) CurrentX10() int32 { return p.currentX10 }

// TargetX10 returns the target RPM in x10 fixed point.
func (p *Planner) TargetX10() int32 { return p.targetX10 }

// CurrentRPM returns the current RPM rounded to the nearest whole RPM.
func (p *Planner) CurrentRPM() uint16 {
	return uint16((p.currentX10 + 5) / 10)
}

// Update advances current RPM toward target by deltaMs of motion, saturating
// so it never overshoots (monotonic approach).
func (p *Planner) Update(deltaMs uint32) {
	if p.accelRPMs == 0 {
		p.currentX10 = p.targetX10
		p.updateState()
		return
	}
	// delta = accel(RPM/s) * deltaMs / 1000, in x10 units: *10/1000 = /100.
	deltaX10 := int32(int64(p.accelRPMs) * int64(deltaMs) / 100)
	if deltaX10 <= 0 {
		deltaX10 = 0
	}
	if p.currentX10 < p.targetX10 {
		p.currentX10 += deltaX10
		if p.currentX10 > p.targetX10 {
			p.currentX10 = p.targetX10
		}
	} else if p.currentX10 > p.targetX10 {
		p.currentX10 -= deltaX10
		if p.currentX10 < p.targetX10 {
			p.currentX10 = p.targetX10
		}
	}
	p.updateState()
}

func (p *Planner) updateState() {
	switch {
	case p.currentX10 == p.targetX10:
		if p.currentX10 == 0 {
			p.state = Stopped
		} else {
			p.state = AtSpeed
		}
	case p.currentX10 < p.targetX10:
		p.state = Accelerating
	default:
		p.state = Decelerating
	}
}

// State returns the planner's current motion state.
func (p *Planner) State() State { return p.state }

// EmergencyStop zeroes both target and current in the same step.
func (p *Planner) EmergencyStop() {
	p.targetX10 = 0
	p.currentX10 = 0
	p.state = Stopped
}

// TimeToTargetMs returns the time, in milliseconds, until current reaches
// target at the configured acceleration. Returns 0 if already at target or
// if acceleration is zero (instantaneous).
func (p *Planner) TimeToTargetMs() uint32 {
	diff := p.targetX10 - p.currentX10
	if diff < 0 {
		diff = -diff
	}
	if diff == 0 || p.accelRPMs == 0 {
		return 0
	}
	// diff(x10) * 100 / accel(RPM/s) = ms.
	return uint32(int64(diff) * 100 / int64(p.accelRPMs))
}
