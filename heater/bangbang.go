package heater

// BangBang is the simplest heater mode: on below target-hysteresis, off
// above target+hysteresis, holding whatever state it was in inside the
// band. A hard max-temperature check unconditionally forces off regardless
// of band position (spec.md §4.3).
type BangBang struct {
	targetX10     int16
	hysteresisX10 int16
	maxTempX10    int16
	on            bool
}

// NewBangBang builds a BangBang controller. targetC, hysteresisC, and
// maxTempC are whole degrees C; internally everything is tracked x10.
func NewBangBang(targetC, hysteresisC, maxTempC int16) *BangBang {
	return &BangBang{
		targetX10:     targetC * 10,
		hysteresisX10: hysteresisC * 10,
		maxTempX10:    maxTempC * 10,
	}
}

// SetTarget updates the target temperature (whole degrees C).
func (b *BangBang) SetTarget(targetC int16) { b.targetX10 = targetC * 10 }

// Evaluate consumes one temperature reading and returns whether the heater
// should be on. An invalid reading unconditionally forces off.
func (b *BangBang) Evaluate(tempX10 int16, valid bool) bool {
	if !valid {
		b.on = false
		return false
	}
	if tempX10 >= b.maxTempX10 {
		b.on = false
		return false
	}
	low := b.targetX10 - b.hysteresisX10
	high := b.targetX10 + b.hysteresisX10
	switch {
	case tempX10 < low:
		b.on = true
	case tempX10 > high:
		b.on = false
	}
	return b.on
}
