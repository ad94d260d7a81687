package controller

import (
	"isochron/display"
	"isochron/safety"
	"isochron/scheduler"
	"isochron/statemachine"
)

// TempReading is the single-slot temperature signal payload (spec.md §5:
// "Safety inputs (stall, temperature): signalled into single-slot slots
// the controller drains on every tick").
type TempReading struct {
	TempX10 int16
	Valid   bool
}

// Controller is the dispatch hub spec.md §5 calls the "Controller" task:
// it drains the safety-input signals, evaluates the safety monitor ahead
// of the scheduler on every tick (faults win ties), advances the
// scheduler/state machine, and republishes the resulting motor/heater
// commands. Grounded on the teacher's core/command.go short-critical-
// section idiom, generalized from a command dispatch table to this
// tick/fault/event dispatch.
type Controller struct {
	Machine   *statemachine.Machine
	Scheduler *scheduler.Scheduler
	Safety    *safety.Monitor

	MotorCmd  *Signal[scheduler.MotorCommand]
	HeaterCmd *Signal[scheduler.HeaterCommand]

	StallSignal *Signal[bool]
	TempSignal  *Signal[TempReading]

	Input  *InputQueue[display.EncoderEvent]
	Screen *ScreenBuffer
}

// New wires a Controller around an already-constructed Machine, Scheduler,
// and Safety monitor.
func New(m *statemachine.Machine, sch *scheduler.Scheduler, saf *safety.Monitor) *Controller {
	return &Controller{
		Machine:     m,
		Scheduler:   sch,
		Safety:      saf,
		MotorCmd:    NewSignal(scheduler.MotorCommand{}),
		HeaterCmd:   NewSignal(scheduler.HeaterCommand{}),
		StallSignal: NewSignal(false),
		TempSignal:  NewSignal(TempReading{}),
		Input:       NewInputQueue[display.EncoderEvent](8),
		Screen:      &ScreenBuffer{},
	}
}

func faultToErrorKind(f safety.Fault) statemachine.ErrorKind {
	switch f {
	case safety.ThermistorFault:
		return statemachine.ThermistorFault
	case safety.OverTemperature:
		return statemachine.OverTemperature
	case safety.MotorStall:
		return statemachine.MotorStall
	case safety.LinkLost:
		return statemachine.LinkLost
	default:
		return statemachine.NoError
	}
}

// Tick runs one controller cycle: drain safety inputs, age the heartbeat
// by deltaMs, evaluate the safety monitor, and only if no fault fired,
// advance the scheduler by elapsedS seconds and apply whatever event it
// produces to the state machine (spec.md §5: "a fault wins when both
// occur"). It always republishes the motor/heater command signals,
// including the forced-off values a fault or a non-Running/SpinOff phase
// already produces. Returns the statemachine.Event actually applied, or
// NoEvent if nothing happened.
func (c *Controller) Tick(deltaMs uint32, elapsedS uint16) statemachine.Event {
	c.Safety.SetStalled(c.StallSignal.Get())
	temp := c.TempSignal.Get()
	c.Safety.SetTemperature(temp.TempX10, temp.Valid)
	c.Safety.UpdateTime(deltaMs)

	applied := statemachine.NoEvent
	if fault := c.Safety.Check(); fault != safety.Ok {
		c.Machine.Fault(faultToErrorKind(fault))
		c.Scheduler.Abort()
		applied = statemachine.ErrorDetected
	} else if ev, ok := c.Scheduler.Tick(elapsedS); ok {
		c.Machine.Transition(ev)
		applied = ev
	}

	c.MotorCmd.Set(c.Scheduler.MotorCommand())
	c.HeaterCmd.Set(c.Scheduler.HeaterCommand())
	return applied
}

// HandleDisplayFrame routes one decoded display frame: a Ping yields a
// Pong reply (the caller is responsible for actually writing it), an Ack
// or Ping each count as heartbeat liveness, and an Input is forwarded into
// the bounded input queue, dropping the newest on overflow.
func (c *Controller) HandleDisplayFrame(f display.Frame) (pongDue bool) {
	if display.IsPing(f) {
		c.Safety.HeartbeatReceived()
		return true
	}
	if _, ok := display.IsAck(f); ok {
		c.Safety.HeartbeatReceived()
		return false
	}
	if ev, ok := display.DecodeInput(f); ok {
		c.Input.TrySend(ev)
	}
	return false
}

// AcknowledgeError clears a fault once the operator presses the
// acknowledge control, returning the state machine to Idle.
func (c *Controller) AcknowledgeError() {
	c.Machine.Transition(statemachine.AcknowledgeError)
}
