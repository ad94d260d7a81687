package controller

import (
	"context"
	"io"
	"time"

	"isochron/calibration"
	"isochron/config"
	"isochron/display"
	"isochron/heater"
	"isochron/motion"
	"isochron/motor"
	"isochron/scheduler"
)

// TickInterval is the Tick task's sleep period (spec.md §5).
const TickInterval = 100 * time.Millisecond

// HeaterTickInterval is the heater task's ticker period (spec.md §5).
const HeaterTickInterval = 500 * time.Millisecond

// LongPressTimeout is how long a button must be held before it counts as
// a long press rather than a click (spec.md §5).
const LongPressTimeout = 500 * time.Millisecond

// TickTask sleeps TickInterval in a loop and publishes a monotonically
// increasing millisecond timestamp on out, until ctx is cancelled.
// Grounded on the teacher's targets/rp2040/main.go main-loop poll idiom,
// turned into its own cooperative task rather than an inline busy loop.
func TickTask(ctx context.Context, out *Signal[uint32]) {
	var nowMs uint32
	t := time.NewTicker(TickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			nowMs += uint32(TickInterval / time.Millisecond)
			out.Set(nowMs)
		}
	}
}

// AwaitLongPress races a 500 ms timeout against the button's release
// signal (spec.md §5: "Long button press is a 500 ms timeout wrapped
// around an await-for-release; on expiry, signal LongPress then await the
// actual release to suppress phantom clicks"). It returns true if the
// timeout fired first (a long press occurred; the caller already has the
// LongPress notification and this call then blocks until the actual
// release to swallow the trailing click), or false if release arrived
// within the window (a plain click).
func AwaitLongPress(ctx context.Context, release <-chan struct{}) bool {
	timer := time.NewTimer(LongPressTimeout)
	defer timer.Stop()
	select {
	case <-release:
		return false
	case <-timer.C:
		select {
		case <-release:
		case <-ctx.Done():
		}
		return true
	case <-ctx.Done():
		return false
	}
}

// MotionTickInterval is the motor-driver task's ramp granularity (spec.md
// §4.2: "the scheduler can safely ramp target RPM at 10 ms granularity").
const MotionTickInterval = 10 * time.Millisecond

// MotorDriverTask is the "Stepper driver" task of spec.md §5: it awaits
// the latest MotorCommand, feeds its RPM through a motion.Planner so
// on-axis ramping stays smooth, and applies direction/enable/RPM to m.
// Direction changes are serialised through a stop, matching spec.md §4.2
// ("stop -> set direction line -> restart"); enable/disable follows
// whether the commanded RPM is zero. Grounded on the teacher's
// targets/rp2040/stepper_pio.go pulse-generator task shape, generalized
// from a queued-move consumer to this planner-fed ramp loop.
func MotorDriverTask(ctx context.Context, cmd *Signal[scheduler.MotorCommand], planner *motion.Planner, m motor.SpinMotor) {
	t := time.NewTicker(MotionTickInterval)
	defer t.Stop()

	var dir config.Direction
	enabled := false

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-t.C:
			c := cmd.Get()
			planner.SetTarget(c.RPM)

			if c.RPM == 0 {
				if enabled {
					m.Stop()
					enabled = false
				}
				planner.Update(uint32(MotionTickInterval / time.Millisecond))
				continue
			}

			if c.Direction != dir || !enabled {
				m.Stop()
				if err := m.SetDirection(motor.Direction(c.Direction)); err == nil {
					dir = c.Direction
				}
			}
			if !enabled {
				m.Enable(true)
				enabled = true
			}

			planner.Update(uint32(MotionTickInterval / time.Millisecond))
			m.SetRPM(planner.CurrentRPM())
		}
	}
}

// HeaterLogic is what HeaterTask drives each tick: heater.BangBang and the
// PIDLogic adapter below both satisfy it.
type HeaterLogic interface {
	Evaluate(tempX10 int16, valid bool) bool
}

// PIDLogic adapts heater.PID (whose Tick also reports a Fault) to the
// plain HeaterLogic interface; the fault, if any, is left for the safety
// monitor to pick up via the shared temperature signal instead of being
// reported twice.
type PIDLogic struct{ PID *heater.PID }

// Evaluate implements HeaterLogic.
func (p PIDLogic) Evaluate(tempX10 int16, valid bool) bool {
	on, _ := p.PID.Tick(tempX10, valid)
	return on
}

// SetTarget forwards to the wrapped PID, letting callers retarget PIDLogic
// through the same method name heater.BangBang exposes.
func (p PIDLogic) SetTarget(targetC int16) { p.PID.SetTarget(targetC) }

// HeaterTask ticks every HeaterTickInterval: reads the latest temperature
// signal, runs it through logic, and drives output accordingly (spec.md
// §5: "500 ms ticker; reads ADC, applies controller logic"). temp is the
// same signal the safety monitor reads, published by the ADC-reading task;
// HeaterTask only reads it, so the heater loop and the safety monitor
// always observe the same value.
func HeaterTask(ctx context.Context, temp *Signal[TempReading], logic HeaterLogic, output heater.Output) {
	t := time.NewTicker(HeaterTickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			reading := temp.Get()
			on := logic.Evaluate(reading.TempX10, reading.Valid)
			output.SetOn(on)
		}
	}
}

// DisplayRXTask awaits bytes from r, feeding them through parser, until
// ctx is cancelled or r returns an error (spec.md §5: "awaits bytes from
// the serial port; feeds the frame parser"). Frame/error dispatch
// (including forwarding Input into the bounded queue and replying Pong to
// Ping) lives in parser's callbacks, wired by the caller via
// Controller.HandleDisplayFrame.
func DisplayRXTask(ctx context.Context, r io.Reader, parser *display.Parser) error {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := r.Read(buf)
		if n > 0 {
			parser.FeedBytes(buf[:n])
		}
		if err != nil {
			return err
		}
	}
}

// DisplayTXTask awaits either a pending Pong (heartbeat reply) or a dirty
// screen buffer, serialising whichever frames are due and writing them to
// w (spec.md §5: "awaits either a heartbeat-pending flag ... or a
// screen-updated flag").
func DisplayTXTask(ctx context.Context, w io.Writer, pongDue *Signal[bool], screen *ScreenBuffer) error {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if pongDue.Get() {
				pongDue.Set(false)
				if _, err := w.Write(display.EncodePong()); err != nil {
					return err
				}
			}
			rows, changed := screen.TakeDirty()
			if !changed {
				continue
			}
			if _, err := w.Write(display.EncodeClear()); err != nil {
				return err
			}
			for row, text := range rows {
				if text == "" {
					continue
				}
				if _, err := w.Write(display.EncodeText(byte(row), 0, text)); err != nil {
					return err
				}
			}
		}
	}
}

// CalibrationWriter awaits save requests and writes each one to flash,
// isolated from every control task so a slow flash write never stalls the
// motor/heater loops (spec.md §5: "Flash storage is owned by exactly one
// task (the calibration writer) after boot").
func CalibrationWriter(ctx context.Context, requests <-chan calibration.Record, flash io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec := <-requests:
			if _, err := flash.Write(rec.Encode()); err != nil {
				return err
			}
		}
	}
}
