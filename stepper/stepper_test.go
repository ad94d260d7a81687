package stepper

import "testing"

func testGeometry() Geometry {
	return Geometry{FullSteps: 200, Microsteps: 16, GearNum: 1, GearDen: 1}
}

func TestStepsPerRev(t *testing.T) {
	g := testGeometry()
	if got := g.StepsPerRev(); got != 3200 {
		t.Fatalf("StepsPerRev = %d, want 3200", got)
	}
}

func TestFreqHzConversion(t *testing.T) {
	g := testGeometry()
	// 60 RPM * 3200 steps/rev / 60 = 3200 Hz
	if got := g.FreqHz(60); got != 3200 {
		t.Fatalf("FreqHz(60) = %d, want 3200", got)
	}
}

func TestFreqHzClampedTo200kHz(t *testing.T) {
	g := Geometry{FullSteps: 200, Microsteps: 256, GearNum: 1, GearDen: 1}
	// 60rpm * 200*256/60 = 51200 Hz, push rpm way up to exceed 200kHz
	if got := g.FreqHz(1000); got != MaxStepFreqHz {
		t.Fatalf("FreqHz should clamp to %d, got %d", MaxStepFreqHz, got)
	}
}

func TestDividerFixed88(t *testing.T) {
	// sysClk=125MHz, freq=125kHz, two instructions per pulse => div should
	// represent 125e6*256/(125e3*2) = 128000 (i.e. 500.0 in 8.8 fixed point)
	got := DividerFixed88(125_000_000, 125_000)
	want := uint32(128000)
	if got != want {
		t.Fatalf("DividerFixed88 = %d, want %d", got, want)
	}
}

func TestDividerFixed88ZeroFreq(t *testing.T) {
	if got := DividerFixed88(125_000_000, 0); got != 0 {
		t.Fatalf("expected 0 divider at zero frequency, got %d", got)
	}
}

type fakeBackend struct {
	freqHz  uint32
	dir     Direction
	enabled bool
	stopped int
}

func (f *fakeBackend) SetFrequency(freqHz uint32) { f.freqHz = freqHz }
func (f *fakeBackend) SetDirection(dir Direction) { f.dir = dir }
func (f *fakeBackend) Enable(on bool)             { f.enabled = on }
func (f *fakeBackend) Stop()                      { f.stopped++; f.enabled = false }

type fakeStall struct{ stalled bool }

func (f *fakeStall) Stalled() bool { return f.stalled }

func TestSetRPMProgramsBackendWhenEnabled(t *testing.T) {
	fb := &fakeBackend{}
	s := New(testGeometry(), 125_000_000, fb, &fakeStall{})
	s.Enable(true)
	s.SetRPM(60)
	if fb.freqHz != 3200 {
		t.Fatalf("expected backend programmed to 3200Hz, got %d", fb.freqHz)
	}
	if !s.IsAtSpeed() {
		t.Fatalf("expected IsAtSpeed true after SetRPM (no ramping in this layer)")
	}
}

func TestSetDirectionSerialisesStopRestart(t *testing.T) {
	fb := &fakeBackend{}
	s := New(testGeometry(), 125_000_000, fb, &fakeStall{})
	s.Enable(true)
	s.SetRPM(60)
	stopsBeforeDirChange := fb.stopped
	if err := s.SetDirection(CCW); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}
	if fb.stopped != stopsBeforeDirChange+1 {
		t.Fatalf("expected exactly one Stop() call across direction change, got delta %d", fb.stopped-stopsBeforeDirChange)
	}
	if fb.dir != CCW {
		t.Fatalf("expected backend direction CCW, got %v", fb.dir)
	}
	if fb.freqHz != 3200 {
		t.Fatalf("expected backend refrequenced after restart, got %d", fb.freqHz)
	}
}

func TestSetDirectionNoOpWhenUnchanged(t *testing.T) {
	fb := &fakeBackend{}
	s := New(testGeometry(), 125_000_000, fb, &fakeStall{})
	s.Enable(true)
	stops := fb.stopped
	if err := s.SetDirection(CW); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}
	if fb.stopped != stops {
		t.Fatalf("setting the same direction should not stop/restart")
	}
}

func TestStopZeroesRPM(t *testing.T) {
	fb := &fakeBackend{}
	s := New(testGeometry(), 125_000_000, fb, &fakeStall{})
	s.Enable(true)
	s.SetRPM(60)
	s.Stop()
	if s.currentRPM != 0 || s.targetRPM != 0 || s.enabled {
		t.Fatalf("expected stepper fully stopped and zeroed")
	}
}

func TestStallLatchesUntilCleared(t *testing.T) {
	fs := &fakeStall{stalled: true}
	s := New(testGeometry(), 125_000_000, &fakeBackend{}, fs)
	if !s.IsStalled() {
		t.Fatalf("expected stall detected")
	}
	fs.stalled = false
	if !s.IsStalled() {
		t.Fatalf("expected stall to remain latched after input clears")
	}
	s.ClearStall()
	if s.IsStalled() {
		t.Fatalf("expected stall cleared")
	}
}

func TestSoftwareBackendTickCallsOnlyWhenEnabled(t *testing.T) {
	calls := 0
	b := NewSoftwareBackend(func() { calls++ })
	b.Tick()
	if calls != 0 {
		t.Fatalf("disabled backend should not pulse")
	}
	b.SetFrequency(1000)
	b.Enable(true)
	b.Tick()
	if calls != 1 {
		t.Fatalf("expected 1 pulse, got %d", calls)
	}
}

func TestSoftwareBackendIntervalTicks(t *testing.T) {
	b := NewSoftwareBackend(nil)
	b.SetFrequency(1000)
	if got := b.IntervalTicks(1_000_000); got != 1000 {
		t.Fatalf("IntervalTicks = %d, want 1000", got)
	}
	b.SetFrequency(0)
	if got := b.IntervalTicks(1_000_000); got != 0 {
		t.Fatalf("expected 0 interval at zero frequency, got %d", got)
	}
}
