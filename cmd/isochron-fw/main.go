//go:build rp2040

// Command isochron-fw is the controller board's firmware entry point: it
// loads and validates the on-flash configuration, builds the hardware
// drivers and domain objects spec.md §3-§4 describe, and launches the
// cooperative task set of spec.md §5 (tick, heater, motor driver, display
// RX/TX, calibration writer) around a shared Controller. Grounded on the
// teacher's targets/rp2040/main.go boot sequence (driver construction,
// then `go` each long-running activity), generalized from the Klipper
// command-dispatch transport it originally wired up to this firmware's
// display-link protocol and domain tasks.
package main

import (
	_ "embed"
	"context"
	"machine"
	"time"

	"isochron/calibration"
	"isochron/config"
	"isochron/controller"
	"isochron/core"
	"isochron/display"
	"isochron/driverlink"
	"isochron/heater"
	"isochron/internal/fwlog"
	"isochron/motion"
	"isochron/motor"
	"isochron/safety"
	"isochron/scheduler"
	"isochron/sensor"
	"isochron/statemachine"
	"isochron/stepper"
)

// Driver-link register addresses for the configuration this firmware
// writes at boot (spec.md §6's [tmc2209.<name>] section).
const (
	regMicrosteps = 0x10
	regRunCurrent = 0x11
	regHoldCurrent = 0x12
)

//go:embed isochron.toml
var defaultConfig []byte

// sysClockHz is the RP2040 system clock the PIO divider is computed
// against (spec.md §4.2's 125MHz reference clock).
const sysClockHz = 125_000_000

func main() {
	time.Sleep(100 * time.Millisecond) // let USB/UART settle before first output

	machine.UART0.Configure(machine.UARTConfig{BaudRate: 115200})
	fwlog.SetWriter(func(s string) { machine.UART0.Write([]byte(s)) })
	fwlog.SetEnabled(true)

	mach, err := config.Load(defaultConfig)
	if err != nil {
		haltOnFault("config load: " + err.Error())
	}
	if err := config.Validate(mach); err != nil {
		haltOnFault("config validate: " + err.Error())
	}
	stepperWiring, heaterWiring, driverWiring, err := config.LoadWiring(defaultConfig)
	if err != nil {
		haltOnFault("config wiring: " + err.Error())
	}

	pins := config.NewPinBank()

	gpioDrv := NewRPGPIODriver()
	core.SetGPIODriver(gpioDrv)
	adcDrv := NewRPAdcDriver()
	if err := adcDrv.Init(core.ADCConfig{Reference: 3300}); err != nil {
		haltOnFault("adc init: " + err.Error())
	}
	core.SetADCDriver(adcDrv)

	// Exactly one spin axis per spec.md §4.2; "spin" is this board's only
	// configured stepper section.
	spinWiring, ok := stepperWiring["spin"]
	if !ok {
		haltOnFault("config: no [stepper.spin] section")
	}
	stepPin, err := config.ParsePin(spinWiring.StepPin)
	if err != nil {
		haltOnFault("stepper.spin.step_pin: " + err.Error())
	}
	dirPin, err := config.ParsePin(spinWiring.DirPin)
	if err != nil {
		haltOnFault("stepper.spin.dir_pin: " + err.Error())
	}
	if err := pins.Allocate(stepPin, "stepper.spin.step"); err != nil {
		haltOnFault(err.Error())
	}
	if err := pins.Allocate(dirPin, "stepper.spin.dir"); err != nil {
		haltOnFault(err.Error())
	}

	backend, err := stepper.NewPIOBackend(0, 0, machinePin(stepPin), machinePin(dirPin))
	if err != nil {
		haltOnFault("pio backend: " + err.Error())
	}
	geometry := stepper.Geometry{
		FullSteps:  spinWiring.FullSteps,
		Microsteps: spinWiring.Microsteps,
		GearNum:    spinWiring.GearNum,
		GearDen:    spinWiring.GearDen,
	}
	spinAxis := stepper.New(geometry, sysClockHz, backend, noStall{})
	spinMotor := motor.NewStepperDriven(spinAxis)

	// Push the configured run/hold current and microstep setting to the
	// stepper driver IC once at boot, over its own single-wire UART link
	// (spec.md §6: distinct from both the step/dir pins and the display
	// link).
	if dw, ok := driverWiring["spin"]; ok {
		machine.UART1.Configure(machine.UARTConfig{BaudRate: 115200})
		writes := []driverlink.WriteDatagram{
			{Address: dw.Address, Reg: regMicrosteps, Data: dw.MicrostepReg},
			{Address: dw.Address, Reg: regRunCurrent, Data: dw.RunCurrentMA},
			{Address: dw.Address, Reg: regHoldCurrent, Data: dw.HoldCurrentMA},
		}
		for _, w := range writes {
			machine.UART1.Write(w.Encode())
		}
	}

	// One heater loop per configured jar heater (spec.md §4.3); this board
	// wires exactly the jars named in the embedded default configuration.
	heaterOutputs := make(map[string]heater.Output, len(mach.Heaters))
	tempSensors := make(map[string]heater.TemperatureSensor, len(mach.Heaters))
	for name, hw := range heaterWiring {
		outPin, err := config.ParsePin(hw.OutputPin)
		if err != nil {
			haltOnFault("heater." + name + ".output_pin: " + err.Error())
		}
		if err := pins.Allocate(outPin, "heater."+name+".output"); err != nil {
			haltOnFault(err.Error())
		}
		relay, err := newGPIORelay(gpioDrv, outPin)
		if err != nil {
			haltOnFault("heater." + name + " relay: " + err.Error())
		}
		heaterOutputs[name] = relay

		sensorPin, err := config.ParsePin(hw.SensorPin)
		if err != nil {
			haltOnFault("heater." + name + ".sensor_pin: " + err.Error())
		}
		if err := pins.Allocate(sensorPin, "heater."+name+".sensor"); err != nil {
			haltOnFault(err.Error())
		}
		adcReader, err := newADCSensor(adcDrv, sensorPin)
		if err != nil {
			haltOnFault("heater." + name + " sensor: " + err.Error())
		}
		tempSensors[name] = sensor.NewNTC100K(adcReader, hw.PullupOhms, 4095)
	}

	hc, hasJar1 := mach.Heaters["jar1"]
	if !hasJar1 {
		haltOnFault("config: expected heater_control.jar1")
	}
	var logic controller.HeaterLogic
	switch hc.Mode {
	case config.PID:
		logic = controller.PIDLogic{PID: heater.NewPID(hc.KpX100, hc.KiX100, hc.KdX100, hc.MaxTempC, hc.MaxTempC)}
	default:
		logic = heater.NewBangBang(hc.MaxTempC, hc.Hysteresis, hc.MaxTempC)
	}

	sched := scheduler.New(mach.Capabilities.IsAutomated())
	sched.LoadProfiles(mach.Profiles)
	sched.LoadJars(mach.Jars)
	sm := statemachine.New()
	safetyMon := safety.New(hc.MaxTempC)

	ctrl := controller.New(sm, sched, safetyMon)

	ctx := context.Background()
	planner := motion.New(motion.MaxAccelRPMPerSec)

	tickSignal := controller.NewSignal(uint32(0))
	go controller.TickTask(ctx, tickSignal)
	go controller.HeaterTask(ctx, ctrl.TempSignal, logic, heaterOutputs["jar1"])
	go controller.MotorDriverTask(ctx, ctrl.MotorCmd, planner, spinMotor)

	calReqs := make(chan calibration.Record, 1)
	go controller.CalibrationWriter(ctx, calReqs, &flashSector{})

	// Retarget the heater loop whenever the scheduler publishes a new
	// HeaterCommand (spec.md §4.3: each profile's dry_temp becomes the
	// active heater target as soon as that step starts running).
	if ts, ok := logic.(targetSetter); ok {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ctrl.HeaterCmd.Changed():
					if cmd := ctrl.HeaterCmd.Get(); cmd.On {
						ts.SetTarget(cmd.TargetC)
					}
				}
			}
		}()
	}

	parser := display.NewParser(
		func(f display.Frame) {
			if ctrl.HandleDisplayFrame(f) {
				machine.UART0.Write(display.EncodePong())
			}
		},
		func(k display.ParseErrorKind) { fwlog.Print("display parse error: " + k.Error()) },
	)
	go controller.DisplayRXTask(ctx, machine.UART0, parser)
	go controller.DisplayTXTask(ctx, machine.UART0, controller.NewSignal(false), ctrl.Screen)

	sensorTick := time.NewTicker(500 * time.Millisecond)
	const tickDeltaMs = uint32(controller.TickInterval / time.Millisecond)
	var msSinceLastSecond uint32
	for {
		select {
		case <-sensorTick.C:
			tempX10, valid := tempSensors["jar1"].ReadTempX10()
			ctrl.TempSignal.Set(controller.TempReading{TempX10: tempX10, Valid: valid})
			ctrl.StallSignal.Set(spinAxis.IsStalled())
		case <-tickSignal.Changed():
			msSinceLastSecond += tickDeltaMs
			var elapsedS uint16
			for msSinceLastSecond >= 1000 {
				msSinceLastSecond -= 1000
				elapsedS++
			}
			ctrl.Tick(tickDeltaMs, elapsedS)
		}
	}
}

// targetSetter is implemented by both heater.BangBang and
// controller.PIDLogic.
type targetSetter interface {
	SetTarget(targetC int16)
}

// noStall is used until a board wires a real stall-detection input;
// spec.md §4.2 treats "no stall line configured" as never-stalled.
type noStall struct{}

func (noStall) Stalled() bool { return false }

// flashSector is a placeholder calibration.Record sink until the board's
// flash-sector writer lands; it satisfies io.Writer so CalibrationWriter
// has somewhere to put a save request in the meantime.
type flashSector struct{}

func (f *flashSector) Write(p []byte) (int, error) { return len(p), nil }

func haltOnFault(msg string) {
	fwlog.Print("boot fault: " + msg)
	for {
		time.Sleep(time.Second)
	}
}
