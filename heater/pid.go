package heater

// DefaultDeadbandX10 is the default error deadband (0.2 degC) below which
// error is treated as zero (spec.md §4.3 step 3).
const DefaultDeadbandX10 = 2

// DefaultIntegralLimitX10 is the default clamp on the accumulated integral
// term, expressed in the same x10 units as temperature (20.0 degC).
const DefaultIntegralLimitX10 = 200

// DefaultPWMPeriod is the number of control ticks in one time-proportioning
// PWM period (spec.md §4.3 step 5).
const DefaultPWMPeriod = 20

// PID is a Q16.16 fixed-point PID controller with time-proportioning PWM
// output, ticked every 500ms per spec.md §4.3.
type PID struct {
	kp, ki, kd Q16

	targetX10        int16
	maxTempX10       int16
	deadbandX10      int16
	integralLimitX10 int16
	pwmPeriod        uint16

	integral     Q16
	prevErrorX10 int16
	pwmTick      uint16
}

// NewPID builds a PID controller from config-native x100 gains (spec.md
// §3's HeaterControl.{Kp,Ki,Kd}X100) and whole-degree target/max
// temperatures. Deadband, integral limit, and PWM period take the spec's
// defaults; override via the setters below if a profile needs otherwise.
func NewPID(kpX100, kiX100, kdX100 int32, targetC, maxTempC int16) *PID {
	return &PID{
		kp:               FromX100(kpX100),
		ki:               FromX100(kiX100),
		kd:               FromX100(kdX100),
		targetX10:        targetC * 10,
		maxTempX10:       maxTempC * 10,
		deadbandX10:      DefaultDeadbandX10,
		integralLimitX10: DefaultIntegralLimitX10,
		pwmPeriod:        DefaultPWMPeriod,
	}
}

// SetTarget updates the setpoint (whole degrees C). Per spec.md §4.3 step 6,
// the integral resets to zero when the setpoint moves by more than 2 degC.
func (p *PID) SetTarget(targetC int16) {
	newTargetX10 := targetC * 10
	if abs16(newTargetX10-p.targetX10) > 20 {
		p.integral = 0
	}
	p.targetX10 = newTargetX10
}

// Fault reports why a PID tick forced the heater off, if any.
type Fault uint8

const (
	NoFault Fault = iota
	SensorFault
	OverTemp
)

// Tick consumes one temperature reading and advances the controller by one
// control period, returning whether the heater output should be on this
// tick and any fault that forced it off.
func (p *PID) Tick(tempX10 int16, valid bool) (on bool, fault Fault) {
	if !valid {
		return false, SensorFault
	}
	if tempX10 >= p.maxTempX10 {
		return false, OverTemp
	}

	errorX10 := p.targetX10 - tempX10
	if abs16(errorX10) <= p.deadbandX10 {
		errorX10 = 0
	}

	pTerm := p.kp.Mul(FromInt(int32(errorX10)))

	p.integral += p.ki.Mul(FromInt(int32(errorX10)))
	p.integral = clampQ16(p.integral, FromInt(int32(p.integralLimitX10)))

	dTerm := p.kd.Mul(FromInt(int32(errorX10 - p.prevErrorX10)))
	p.prevErrorX10 = errorX10

	dutyQ := pTerm + p.integral + dTerm
	duty := clampInt32(dutyQ.ToInt(), 0, 255)

	p.pwmTick = (p.pwmTick + 1) % p.pwmPeriod
	threshold := int32(p.pwmTick) * 255 / int32(p.pwmPeriod)
	return duty > threshold, NoFault
}
