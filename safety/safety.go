// Package safety implements the safety monitor (spec.md §4.4): a pure
// fault-fusion function over temperature, stall, and link-health signals.
// Grounded on the teacher's trsync.go ("trigger sync") pattern of fusing
// several independent hardware signals into one authoritative stop
// decision, adapted here from a stepper endstop fan-in to a
// sensor/thermal/stall/link fan-in with explicit priority ordering.
package safety

// Fault is the result of Check, in priority order from most to least severe.
type Fault uint8

const (
	Ok Fault = iota
	ThermistorFault
	OverTemperature
	MotorStall
	LinkLost
)

// HeartbeatTimeoutMs is the interval after which a missing display
// heartbeat counts as one miss (spec.md §4.4).
const HeartbeatTimeoutMs = 3000

// LinkLostThreshold is the number of consecutive missed heartbeats that
// trips LinkLost.
const LinkLostThreshold = 3

// Monitor holds the observed-over-time inputs to the fault-fusion function.
// It is pure: Check never disables outputs itself, it only reports; the
// controller observes the result and drives the state machine.
type Monitor struct {
	tempX10      int16
	tempValid    bool
	maxTempX10   int16
	stalled      bool
	missed       uint32
	sinceLastHbMs uint32
}

// New returns a Monitor configured with the heater's max temperature
// (degrees C, whole units — converted to x10 internally).
func New(maxTempC int16) *Monitor {
	return &Monitor{maxTempX10: maxTempC * 10, tempValid: true}
}

// SetTemperature records the latest temperature reading, x10 fixed point.
// Pass valid=false when the sensor read failed (open/shorted thermistor).
func (m *Monitor) SetTemperature(tempX10 int16, valid bool) {
	m.tempX10 = tempX10
	m.tempValid = valid
}

// SetStalled records the latest motor-stall flag.
func (m *Monitor) SetStalled(stalled bool) {
	m.stalled = stalled
}

// UpdateTime ages the heartbeat accumulator by deltaMs. Each time the
// accumulator crosses HeartbeatTimeoutMs it increments the missed counter
// and resets the accumulator (so repeated long gaps keep counting misses).
func (m *Monitor) UpdateTime(deltaMs uint32) {
	m.sinceLastHbMs += deltaMs
	for m.sinceLastHbMs >= HeartbeatTimeoutMs {
		m.missed++
		m.sinceLastHbMs -= HeartbeatTimeoutMs
	}
}

// HeartbeatReceived resets both the missed counter and the accumulator.
func (m *Monitor) HeartbeatReceived() {
	m.missed = 0
	m.sinceLastHbMs = 0
}

// Missed returns the current missed-heartbeat counter, for diagnostics.
func (m *Monitor) Missed() uint32 { return m.missed }

// Check evaluates every input in priority order and returns the first
// fault found: sensor invalid, then over-temperature, then stall, then
// link loss; Ok if none apply.
func (m *Monitor) Check() Fault {
	if !m.tempValid {
		return ThermistorFault
	}
	if m.tempX10 > m.maxTempX10 {
		return OverTemperature
	}
	if m.stalled {
		return MotorStall
	}
	if m.missed >= LinkLostThreshold {
		return LinkLost
	}
	return Ok
}
