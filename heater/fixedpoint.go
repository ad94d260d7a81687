package heater

// Q16 is a Q16.16 signed fixed-point number, used for the PID gains and
// their intermediate products (spec.md §4.3: "Q16.16 fixed-point
// coefficients"). Multiplication widens to int64 to avoid overflow before
// shifting back down.
type Q16 int32

const q16Shift = 16

// FromInt promotes a plain integer to Q16.16.
func FromInt(i int32) Q16 { return Q16(i) << q16Shift }

// FromX100 converts a gain stored as signed-integer-times-100 (the config
// wire format, spec.md §3) into Q16.16.
func FromX100(x100 int32) Q16 {
	return Q16(int64(x100) << q16Shift / 100)
}

// Mul multiplies two Q16.16 values, widening through int64.
func (a Q16) Mul(b Q16) Q16 {
	return Q16((int64(a) * int64(b)) >> q16Shift)
}

// ToInt truncates back to a plain integer.
func (a Q16) ToInt() int32 { return int32(a >> q16Shift) }

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampQ16(v, limit Q16) Q16 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
