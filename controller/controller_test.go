package controller

import (
	"testing"

	"isochron/config"
	"isochron/display"
	"isochron/safety"
	"isochron/scheduler"
	"isochron/statemachine"
)

func pingFrame() display.Frame { return display.Frame{Type: byte(display.MsgPing)} }

func inputFrame() display.Frame {
	return display.Frame{Type: byte(display.MsgInput), Payload: []byte{byte(display.EncoderCw)}}
}

func newRunningController(t *testing.T) *Controller {
	t.Helper()
	sch := scheduler.New(false)
	sch.LoadProfiles(map[string]config.Profile{
		"Clean": {Label: "Clean", RPM: 120, TotalSeconds: 60, Direction: config.Clockwise},
	})
	sch.LoadJars(map[string]config.Jar{"j": {Name: "j"}})
	sch.StartProgram(config.Program{Steps: []config.Step{{JarName: "j", ProfileName: "Clean"}}})

	m := statemachine.New()
	m.Transition(statemachine.BootComplete)
	m.Transition(statemachine.SelectProgram)
	m.Transition(statemachine.Start)

	return New(m, sch, safety.New(55))
}

// TestScenarioS4OverTemperatureOverride replays scenario S4: a fault
// detected on a tick must win over whatever the scheduler would otherwise
// produce, force the motor/heater outputs off, and land the state machine
// in Error(OverTemperature).
func TestScenarioS4OverTemperatureOverride(t *testing.T) {
	c := newRunningController(t)
	c.TempSignal.Set(TempReading{TempX10: 560, Valid: true})

	ev := c.Tick(100, 1)
	if ev != statemachine.ErrorDetected {
		t.Fatalf("applied event = %v, want ErrorDetected", ev)
	}
	if c.Machine.State() != statemachine.ErrorState {
		t.Fatalf("state = %v, want Error", c.Machine.State())
	}
	if c.Machine.ErrorKind() != statemachine.OverTemperature {
		t.Fatalf("error kind = %v, want OverTemperature", c.Machine.ErrorKind())
	}
	if mc := c.MotorCmd.Get(); mc.RPM != 0 {
		t.Fatalf("motor command = %+v, want rpm 0", mc)
	}
	if hc := c.HeaterCmd.Get(); hc.On {
		t.Fatalf("heater command = %+v, want absent", hc)
	}
}

// TestFaultBeatsSchedulerEventOnSameTick is the general form of the
// ordering guarantee behind S4: even when the scheduler tick would also
// have produced an event (here, ProgramFinished, since elapsedS completes
// the only segment), an outstanding fault preempts it entirely.
func TestFaultBeatsSchedulerEventOnSameTick(t *testing.T) {
	c := newRunningController(t)
	c.TempSignal.Set(TempReading{TempX10: 560, Valid: true})

	ev := c.Tick(100, 60) // would otherwise finish the 60s profile
	if ev != statemachine.ErrorDetected {
		t.Fatalf("applied event = %v, want ErrorDetected (fault must win the tie)", ev)
	}
	if c.Machine.State() != statemachine.ErrorState {
		t.Fatalf("state = %v, want Error", c.Machine.State())
	}
}

func TestTickWithNoFaultAppliesSchedulerEvent(t *testing.T) {
	c := newRunningController(t)
	c.TempSignal.Set(TempReading{TempX10: 300, Valid: true})

	ev := c.Tick(100, 60)
	if ev != statemachine.ProgramFinished {
		t.Fatalf("applied event = %v, want ProgramFinished", ev)
	}
	if c.Machine.State() != statemachine.ProgramComplete {
		t.Fatalf("state = %v, want ProgramComplete", c.Machine.State())
	}
}

func TestHandleDisplayFramePingTriggersPongAndHeartbeat(t *testing.T) {
	c := newRunningController(t)
	c.Safety.UpdateTime(4000) // force a miss before the ping arrives
	if c.Safety.Missed() == 0 {
		t.Fatalf("expected a missed heartbeat before Ping")
	}

	pongDue := c.HandleDisplayFrame(pingFrame())
	if !pongDue {
		t.Fatalf("expected pongDue=true for a Ping frame")
	}
	if c.Safety.Missed() != 0 {
		t.Fatalf("Missed() = %d, want 0 after heartbeat received", c.Safety.Missed())
	}
}

func TestHandleDisplayFrameInputForwardsToQueue(t *testing.T) {
	c := newRunningController(t)
	pongDue := c.HandleDisplayFrame(inputFrame())
	if pongDue {
		t.Fatalf("Input frame should not request a Pong")
	}
	select {
	case ev := <-c.Input.C():
		if ev != 0x01 {
			t.Fatalf("input event = %v, want 0x01", ev)
		}
	default:
		t.Fatalf("expected an input event to be queued")
	}
}

func TestAcknowledgeErrorReturnsToIdle(t *testing.T) {
	c := newRunningController(t)
	c.Machine.Fault(statemachine.MotorStall)
	c.AcknowledgeError()
	if c.Machine.State() != statemachine.Idle {
		t.Fatalf("state after acknowledge = %v, want Idle", c.Machine.State())
	}
}
