package heater

import "testing"

func TestBangBangHoldsBand(t *testing.T) {
	b := NewBangBang(50, 2, 80) // target 50, hyst 2 -> band [48,52]
	if on := b.Evaluate(400, true); !on {
		t.Fatalf("below low should turn on")
	}
	if on := b.Evaluate(500, true); !on {
		t.Fatalf("inside band should hold previous (on)")
	}
	if on := b.Evaluate(530, true); on {
		t.Fatalf("above high should turn off")
	}
	if on := b.Evaluate(500, true); on {
		t.Fatalf("inside band should hold previous (off)")
	}
}

func TestBangBangForcesOffAboveMax(t *testing.T) {
	b := NewBangBang(50, 2, 80)
	b.Evaluate(400, true)
	if on := b.Evaluate(900, true); on {
		t.Fatalf("at/above max must force off")
	}
}

func TestBangBangForcesOffOnInvalidReading(t *testing.T) {
	b := NewBangBang(50, 2, 80)
	b.Evaluate(400, true)
	if on := b.Evaluate(0, false); on {
		t.Fatalf("invalid reading must force off")
	}
}

// TestPIDHeaterOffAboveMaxAlways is testable property 6: for all
// temperature sequences monotonically >= max, the PID controller outputs
// heater-off on every tick.
func TestPIDHeaterOffAboveMaxAlways(t *testing.T) {
	p := NewPID(800, 40, 150, 50, 55)
	for temp := int16(550); temp < 650; temp += 5 {
		on, fault := p.Tick(temp, true)
		if on {
			t.Fatalf("temp=%d: heater on above max", temp)
		}
		if fault != OverTemp {
			t.Fatalf("temp=%d: expected OverTemp fault, got %v", temp, fault)
		}
	}
}

func TestPIDSensorFaultForcesOff(t *testing.T) {
	p := NewPID(800, 40, 150, 50, 55)
	on, fault := p.Tick(0, false)
	if on || fault != SensorFault {
		t.Fatalf("expected off+SensorFault, got on=%v fault=%v", on, fault)
	}
}

func TestPIDConvergesTowardTarget(t *testing.T) {
	p := NewPID(800, 40, 150, 50, 80)
	temp := int16(200) // 20.0 C, well below target of 50.0 C
	onCount := 0
	for i := 0; i < 40; i++ {
		on, fault := p.Tick(temp, true)
		if fault != NoFault {
			t.Fatalf("unexpected fault: %v", fault)
		}
		if on {
			onCount++
			temp += 5
		} else {
			temp -= 1
		}
	}
	if onCount == 0 {
		t.Fatalf("expected heater to turn on while well below target")
	}
}

func TestPIDIntegralResetsOnLargeSetpointChange(t *testing.T) {
	p := NewPID(800, 40, 150, 50, 80)
	for i := 0; i < 10; i++ {
		p.Tick(300, true)
	}
	if p.integral == 0 {
		t.Fatalf("expected nonzero integral to accumulate")
	}
	p.SetTarget(80) // moved by 30C, > 2C threshold
	if p.integral != 0 {
		t.Fatalf("expected integral reset after large setpoint change, got %v", p.integral)
	}
}

func TestDeriveGainsNoOscillationOnFlatSignal(t *testing.T) {
	outcome, _ := DeriveGains(200, nil, nil, nil, nil)
	if outcome != NoOscillation {
		t.Fatalf("expected NoOscillation with no peaks, got %v", outcome)
	}
}

// TestDeriveGainsMonotoneInKu is testable property 8: Ziegler-Nichols
// derivation is monotone in Ku (holding Tu fixed) — larger amplitude means
// smaller Ku, hence smaller Kp/Ki/Kd.
func TestDeriveGainsMonotoneInKu(t *testing.T) {
	highTicks := []uint32{10, 20, 30, 40}
	lowTicks := []uint32{15, 25, 35, 45}

	smallAmpHighs := []int16{110, 112, 111, 113}
	smallAmpLows := []int16{90, 91, 89, 90}
	outcome1, r1 := DeriveGains(200, smallAmpHighs, smallAmpLows, highTicks, lowTicks)
	if outcome1 != TuneSuccess {
		t.Fatalf("expected success for small-amplitude case, got %v", outcome1)
	}

	largeAmpHighs := []int16{160, 162, 161, 163}
	largeAmpLows := []int16{40, 41, 39, 40}
	outcome2, r2 := DeriveGains(200, largeAmpHighs, largeAmpLows, highTicks, lowTicks)
	if outcome2 != TuneSuccess {
		t.Fatalf("expected success for large-amplitude case, got %v", outcome2)
	}

	if r2.KpX100 >= r1.KpX100 {
		t.Fatalf("larger amplitude should yield smaller Kp: got small=%d large=%d", r1.KpX100, r2.KpX100)
	}
	if r2.KiX100 >= r1.KiX100 {
		t.Fatalf("larger amplitude should yield smaller Ki: got small=%d large=%d", r1.KiX100, r2.KiX100)
	}
	if r2.KdX100 >= r1.KdX100 {
		t.Fatalf("larger amplitude should yield smaller Kd: got small=%d large=%d", r1.KdX100, r2.KdX100)
	}
}

func TestAutotuneOverTempAborts(t *testing.T) {
	a := NewAutotuner(50, 55, 200)
	on, done, outcome, _ := a.Tick(600, true)
	if on || !done || outcome != TuneOverTemp {
		t.Fatalf("expected immediate overtemp abort, got on=%v done=%v outcome=%v", on, done, outcome)
	}
}

func TestAutotuneSensorFaultAborts(t *testing.T) {
	a := NewAutotuner(50, 55, 200)
	on, done, outcome, _ := a.Tick(0, false)
	if on || !done || outcome != TuneSensorFault {
		t.Fatalf("expected immediate sensor fault abort, got on=%v done=%v outcome=%v", on, done, outcome)
	}
}

func TestAutotuneCancelled(t *testing.T) {
	a := NewAutotuner(50, 55, 200)
	a.Cancel()
	_, done, outcome, _ := a.Tick(300, true)
	if !done || outcome != TuneCancelled {
		t.Fatalf("expected cancelled outcome, got done=%v outcome=%v", done, outcome)
	}
}

func TestAutotuneWarmupFullOnUntilBand(t *testing.T) {
	a := NewAutotuner(50, 80, 200)
	on, done, _, _ := a.Tick(300, true) // 30.0C, well below 50.0C target
	if !on || done {
		t.Fatalf("expected full-on warmup, got on=%v done=%v", on, done)
	}
}
