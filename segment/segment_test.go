package segment

import (
	"testing"

	"isochron/config"
)

func TestGenerateClockwiseSingleSegment(t *testing.T) {
	p := config.Profile{RPM: 80, TotalSeconds: 30, Direction: config.Clockwise}
	segs, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(segs) != 1 || segs[0].Direction != config.CW || segs[0].DurationS != 30 || segs[0].RPM != 80 {
		t.Fatalf("unexpected segments: %+v", segs)
	}
}

func TestGenerateCounterClockwiseSingleSegment(t *testing.T) {
	p := config.Profile{RPM: 80, TotalSeconds: 30, Direction: config.CounterClockwise}
	segs, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(segs) != 1 || segs[0].Direction != config.CCW {
		t.Fatalf("unexpected segments: %+v", segs)
	}
}

// TestGenerateAlternateScenarioS2 covers spec scenario S2: profile (rpm 120,
// time_s 60, Alternate, iter 3) must expand to 6 segments of 10s each,
// directions CW, CCW, CW, CCW, CW, CCW.
func TestGenerateAlternateScenarioS2(t *testing.T) {
	p := config.Profile{RPM: 120, TotalSeconds: 60, Direction: config.Alternate, Iterations: 3}
	segs, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wantDirs := []config.Direction{config.CW, config.CCW, config.CW, config.CCW, config.CW, config.CCW}
	if len(segs) != len(wantDirs) {
		t.Fatalf("expected %d segments, got %d", len(wantDirs), len(segs))
	}
	for i, s := range segs {
		if s.DurationS != 10 {
			t.Fatalf("segment %d duration = %d, want 10", i, s.DurationS)
		}
		if s.Direction != wantDirs[i] {
			t.Fatalf("segment %d direction = %v, want %v", i, s.Direction, wantDirs[i])
		}
		if s.RPM != 120 {
			t.Fatalf("segment %d rpm = %d, want 120", i, s.RPM)
		}
	}
}

func TestGenerateAlternateZeroIterationsFails(t *testing.T) {
	p := config.Profile{RPM: 100, TotalSeconds: 60, Direction: config.Alternate, Iterations: 0}
	if _, err := Generate(p); err == nil {
		t.Fatalf("expected error for zero iterations")
	}
}

func TestGenerateAlternateBelowFloorFails(t *testing.T) {
	p := config.Profile{RPM: 100, TotalSeconds: 20, Direction: config.Alternate, Iterations: 3}
	if _, err := Generate(p); err == nil {
		t.Fatalf("expected floor violation error")
	}
}

// TestGenerateAlternateAlwaysStartsClockwise is the testable-property-3
// check: whatever the iteration count, the first segment of an Alternate
// profile is always Clockwise and segments strictly alternate thereafter.
func TestGenerateAlternateAlwaysStartsClockwise(t *testing.T) {
	for iter := uint8(1); iter <= 5; iter++ {
		p := config.Profile{RPM: 60, TotalSeconds: uint16(iter) * 20, Direction: config.Alternate, Iterations: iter}
		segs, err := Generate(p)
		if err != nil {
			t.Fatalf("iter=%d: Generate: %v", iter, err)
		}
		if len(segs) != int(iter)*2 {
			t.Fatalf("iter=%d: expected %d segments, got %d", iter, iter*2, len(segs))
		}
		if segs[0].Direction != config.CW {
			t.Fatalf("iter=%d: first segment must be CW, got %v", iter, segs[0].Direction)
		}
		for i := 1; i < len(segs); i++ {
			if segs[i].Direction == segs[i-1].Direction {
				t.Fatalf("iter=%d: segment %d did not alternate direction from previous", iter, i)
			}
		}
	}
}
