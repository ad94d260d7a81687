package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// StepperWiring is the decoded [stepper.<name>] section: the physical pins
// and gearing a board-level stepper.Geometry/backend is built from. Kept
// separate from Machine because the scheduler/state machine/safety core
// never need to know which GPIO a stepper lives on — only cmd/isochron-fw
// does, when it builds the hardware drivers at boot.
type StepperWiring struct {
	StepPin    string
	DirPin     string
	EnablePin  string
	FullSteps  uint32
	Microsteps uint32
	GearNum    uint32
	GearDen    uint32
}

// HeaterWiring is the decoded [heater.<name>] section: the output pin
// driving the heating element and the ADC-bearing pin reading its
// thermistor.
type HeaterWiring struct {
	OutputPin  string
	SensorPin  string
	PullupOhms uint32
}

// TMC2209Wiring is the decoded [tmc2209.<name>] section: the driver
// chip's bus address and the run current/microstep register values
// cmd/isochron-fw writes to it once at boot over the driver-link UART.
type TMC2209Wiring struct {
	Address        byte
	RunCurrentMA   uint32
	HoldCurrentMA  uint32
	MicrostepReg   uint32
}

type rawWiringFile struct {
	Stepper map[string]rawStepperWiring `toml:"stepper"`
	Heater  map[string]rawHeaterWiring  `toml:"heater"`
	TMC2209 map[string]rawTMC2209Wiring `toml:"tmc2209"`
}

type rawTMC2209Wiring struct {
	Address       byte   `toml:"address"`
	RunCurrentMA  uint32 `toml:"run_current_ma"`
	HoldCurrentMA uint32 `toml:"hold_current_ma"`
	MicrostepReg  uint32 `toml:"microstep_reg"`
}

type rawStepperWiring struct {
	StepPin    string `toml:"step_pin"`
	DirPin     string `toml:"dir_pin"`
	EnablePin  string `toml:"enable_pin"`
	FullSteps  uint32 `toml:"full_steps"`
	Microsteps uint32 `toml:"microsteps"`
	GearNum    uint32 `toml:"gear_num"`
	GearDen    uint32 `toml:"gear_den"`
}

type rawHeaterWiring struct {
	OutputPin  string `toml:"output_pin"`
	SensorPin  string `toml:"sensor_pin"`
	PullupOhms uint32 `toml:"pullup_ohms"`
}

// LoadWiring decodes the hardware-facing [stepper.<name>] and
// [heater.<name>] sections spec.md §6 describes, the half of the file
// Load/Validate deliberately ignore. Call it alongside Load against the
// same bytes; the two decodes are independent.
func LoadWiring(data []byte) (steppers map[string]StepperWiring, heaters map[string]HeaterWiring, drivers map[string]TMC2209Wiring, err error) {
	var raw rawWiringFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, nil, nil, fmt.Errorf("config: decode hardware wiring: %w", err)
	}

	steppers = make(map[string]StepperWiring, len(raw.Stepper))
	for name, s := range raw.Stepper {
		if s.GearDen == 0 {
			s.GearDen = 1
		}
		if s.Microsteps == 0 {
			s.Microsteps = 1
		}
		steppers[name] = StepperWiring{
			StepPin:    s.StepPin,
			DirPin:     s.DirPin,
			EnablePin:  s.EnablePin,
			FullSteps:  s.FullSteps,
			Microsteps: s.Microsteps,
			GearNum:    s.GearNum,
			GearDen:    s.GearDen,
		}
	}

	heaters = make(map[string]HeaterWiring, len(raw.Heater))
	for name, h := range raw.Heater {
		pullup := h.PullupOhms
		if pullup == 0 {
			pullup = 4700
		}
		heaters[name] = HeaterWiring{
			OutputPin:  h.OutputPin,
			SensorPin:  h.SensorPin,
			PullupOhms: pullup,
		}
	}

	drivers = make(map[string]TMC2209Wiring, len(raw.TMC2209))
	for name, d := range raw.TMC2209 {
		drivers[name] = TMC2209Wiring{
			Address:       d.Address,
			RunCurrentMA:  d.RunCurrentMA,
			HoldCurrentMA: d.HoldCurrentMA,
			MicrostepReg:  d.MicrostepReg,
		}
	}

	return steppers, heaters, drivers, nil
}
