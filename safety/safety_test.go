package safety

import "testing"

// TestCheckPriorityOrder is testable property 7: injecting multiple faults
// always reports the highest-priority one (sensor > over-temp > stall > link).
func TestCheckPriorityOrder(t *testing.T) {
	m := New(55)
	m.SetTemperature(600, false) // invalid reading, also way over max
	m.SetStalled(true)
	for i := 0; i < 4; i++ {
		m.UpdateTime(HeartbeatTimeoutMs)
	}
	if got := m.Check(); got != ThermistorFault {
		t.Fatalf("Check() = %v, want ThermistorFault (highest priority)", got)
	}

	m2 := New(55)
	m2.SetTemperature(600, true) // valid but over max
	m2.SetStalled(true)
	for i := 0; i < 4; i++ {
		m2.UpdateTime(HeartbeatTimeoutMs)
	}
	if got := m2.Check(); got != OverTemperature {
		t.Fatalf("Check() = %v, want OverTemperature", got)
	}

	m3 := New(55)
	m3.SetTemperature(400, true)
	m3.SetStalled(true)
	for i := 0; i < 4; i++ {
		m3.UpdateTime(HeartbeatTimeoutMs)
	}
	if got := m3.Check(); got != MotorStall {
		t.Fatalf("Check() = %v, want MotorStall", got)
	}

	m4 := New(55)
	m4.SetTemperature(400, true)
	for i := 0; i < 3; i++ {
		m4.UpdateTime(HeartbeatTimeoutMs)
	}
	if got := m4.Check(); got != LinkLost {
		t.Fatalf("Check() = %v, want LinkLost", got)
	}
}

// TestCheckOkOnFreshMonitor ensures a just-constructed Monitor reads Ok
// before any SetTemperature call, matching original_source's
// temp_sensor_valid: true default (a controller ticking before the first
// sensor reading must not boot straight into Error(ThermistorFault)).
func TestCheckOkOnFreshMonitor(t *testing.T) {
	m := New(55)
	if got := m.Check(); got != Ok {
		t.Fatalf("Check() on fresh Monitor = %v, want Ok", got)
	}
}

func TestCheckOkWhenNothingWrong(t *testing.T) {
	m := New(55)
	m.SetTemperature(400, true)
	if got := m.Check(); got != Ok {
		t.Fatalf("Check() = %v, want Ok", got)
	}
}

func TestHeartbeatReceivedResetsMissed(t *testing.T) {
	m := New(55)
	m.SetTemperature(400, true)
	for i := 0; i < 3; i++ {
		m.UpdateTime(HeartbeatTimeoutMs)
	}
	if m.Missed() != 3 {
		t.Fatalf("expected 3 misses, got %d", m.Missed())
	}
	m.HeartbeatReceived()
	if m.Missed() != 0 {
		t.Fatalf("expected 0 misses after heartbeat, got %d", m.Missed())
	}
	if got := m.Check(); got != Ok {
		t.Fatalf("Check() after heartbeat = %v, want Ok", got)
	}
}

func TestUpdateTimeAccumulatesAcrossMultipleCalls(t *testing.T) {
	m := New(55)
	m.SetTemperature(400, true)
	m.UpdateTime(1000)
	m.UpdateTime(1000)
	if m.Missed() != 0 {
		t.Fatalf("expected no miss yet, got %d", m.Missed())
	}
	m.UpdateTime(1000)
	if m.Missed() != 1 {
		t.Fatalf("expected 1 miss after crossing threshold, got %d", m.Missed())
	}
}

func TestUpdateTimeCountsMultipleMissesInOneLongGap(t *testing.T) {
	m := New(55)
	m.SetTemperature(400, true)
	m.UpdateTime(HeartbeatTimeoutMs * 3)
	if m.Missed() != 3 {
		t.Fatalf("expected 3 misses from one long gap, got %d", m.Missed())
	}
}
