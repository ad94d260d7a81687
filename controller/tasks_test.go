package controller

import (
	"bytes"
	"context"
	"testing"
	"time"

	"isochron/calibration"
	"isochron/config"
	"isochron/heater"
	"isochron/motion"
	"isochron/motor"
	"isochron/scheduler"
)

func TestAwaitLongPressShortClickReturnsFalse(t *testing.T) {
	release := make(chan struct{}, 1)
	release <- struct{}{}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if AwaitLongPress(ctx, release) {
		t.Fatalf("expected false for a release arriving before the timeout")
	}
}

func TestAwaitLongPressTimeoutThenReleaseReturnsTrue(t *testing.T) {
	release := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(LongPressTimeout + 50*time.Millisecond)
		close(release)
	}()

	if !AwaitLongPress(ctx, release) {
		t.Fatalf("expected true once the 500ms timeout fires before release")
	}
}

func TestTickTaskPublishesMonotonicTimestamps(t *testing.T) {
	out := NewSignal(uint32(0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go TickTask(ctx, out)

	time.Sleep(TickInterval*3 + 50*time.Millisecond)
	cancel()

	got := out.Get()
	if got < uint32(TickInterval/time.Millisecond)*2 {
		t.Fatalf("out.Get() = %d, want at least 2 ticks worth", got)
	}
}

type fakeSensorLogic struct{ on bool }

func (f *fakeSensorLogic) Evaluate(tempX10 int16, valid bool) bool { return f.on }

type fakeHeaterOutput struct{ on bool }

func (f *fakeHeaterOutput) SetOn(on bool) { f.on = on }

func TestHeaterTaskAppliesLogicOnEachTick(t *testing.T) {
	temp := NewSignal(TempReading{TempX10: 250, Valid: true})
	logic := &fakeSensorLogic{on: true}
	out := &fakeHeaterOutput{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go HeaterTask(ctx, temp, logic, out)

	time.Sleep(HeaterTickInterval + 100*time.Millisecond)
	cancel()

	if !out.on {
		t.Fatalf("expected heater output on after at least one tick")
	}
}

type fakeSpinMotor struct {
	rpm     uint16
	dir     motor.Direction
	enabled bool
	stops   int
}

func (f *fakeSpinMotor) SetRPM(rpm uint16)               { f.rpm = rpm }
func (f *fakeSpinMotor) SetDirection(d motor.Direction) error { f.dir = d; return nil }
func (f *fakeSpinMotor) Enable(on bool)                  { f.enabled = on }
func (f *fakeSpinMotor) Stop()                           { f.stops++; f.enabled = false; f.rpm = 0 }
func (f *fakeSpinMotor) IsAtSpeed() bool                 { return true }
func (f *fakeSpinMotor) IsStalled() bool                 { return false }
func (f *fakeSpinMotor) ClearStall()                     {}

func TestMotorDriverTaskRampsTowardCommandedRPM(t *testing.T) {
	cmd := NewSignal(scheduler.MotorCommand{RPM: 120, Direction: config.CW})
	planner := motion.New(100)
	m := &fakeSpinMotor{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go MotorDriverTask(ctx, cmd, planner, m)

	time.Sleep(200 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	if !m.enabled {
		t.Fatalf("expected motor enabled once a nonzero RPM is commanded")
	}
	if m.dir != motor.CW {
		t.Fatalf("expected direction CW, got %v", m.dir)
	}
	if m.rpm == 0 {
		t.Fatalf("expected nonzero RPM after ramping")
	}
}

func TestMotorDriverTaskStopsOnZeroCommand(t *testing.T) {
	cmd := NewSignal(scheduler.MotorCommand{RPM: 0, Direction: config.CW})
	planner := motion.New(100)
	m := &fakeSpinMotor{enabled: true, rpm: 50}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go MotorDriverTask(ctx, cmd, planner, m)

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	if m.enabled {
		t.Fatalf("expected motor disabled for a zero-RPM command")
	}
}

func TestPIDLogicAdapterEvaluates(t *testing.T) {
	pid := heater.NewPID(100, 10, 0, 50, 80)
	logic := PIDLogic{PID: pid}
	// Cold reading far below target should drive the output on.
	if !logic.Evaluate(100, true) {
		t.Fatalf("expected PIDLogic to report on for a cold reading")
	}
}

func TestCalibrationWriterWritesEncodedRecord(t *testing.T) {
	requests := make(chan calibration.Record, 1)
	var buf bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- CalibrationWriter(ctx, requests, &buf) }()

	rec := calibration.Record{}
	rec.Entries[0] = calibration.Entry{HeaterIndex: 0, Valid: true, KpX100: 100}
	requests <- rec

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	want := rec.Encode()
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("flash contents = %x, want %x", buf.Bytes(), want)
	}
}
