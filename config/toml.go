package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// rawFile mirrors the on-disk TOML layout from spec.md §6:
//
//	[stepper.<name>]         [tmc2209.<name>]        [heater_control.<name>]
//	[heater.<name>]          [jar.<name>]            [profile.<name>]
//	[profile.<name>.spinoff] [program.<name>]        [display]  [ui]
//
// Sections this firmware's core does not consume (stepper/tmc2209 hardware
// wiring, heater hardware pins, display, ui) are decoded into raw maps so
// unknown keys are tolerated (spec.md §6: "unknown keys are ignored"); fromRaw
// does not carry them into Machine. The hardware wiring sections are decoded
// separately by LoadWiring (config/hardware.go).
type rawFile struct {
	Stepper       map[string]map[string]any `toml:"stepper"`
	TMC2209       map[string]map[string]any `toml:"tmc2209"`
	HeaterControl map[string]rawHeaterCtrl  `toml:"heater_control"`
	Heater        map[string]map[string]any `toml:"heater"`
	Jar           map[string]rawJar         `toml:"jar"`
	Profile       map[string]rawProfile     `toml:"profile"`
	Program       map[string]rawProgram     `toml:"program"`
	Display       map[string]any            `toml:"display"`
	UI            map[string]any            `toml:"ui"`
	Machine       rawMachine                `toml:"machine"`
}

type rawMachine struct {
	HasLift  bool `toml:"has_lift"`
	HasTower bool `toml:"has_tower"`
	HasLid   bool `toml:"has_lid"`
}

type rawHeaterCtrl struct {
	Mode       string `toml:"mode"`
	MaxTemp    int16  `toml:"max_temp"`
	Hysteresis int16  `toml:"hysteresis"`
	Kp         *int32 `toml:"kp_x100"`
	Ki         *int32 `toml:"ki_x100"`
	Kd         *int32 `toml:"kd_x100"`
}

type rawJar struct {
	TowerPos   int16  `toml:"tower_pos"`
	LiftPos    int16  `toml:"lift_pos"`
	Heater     string `toml:"heater"`
	Ultrasonic string `toml:"ultrasonic"`
}

type rawSpinoff struct {
	LiftDistanceMM int32  `toml:"lift_distance_mm"`
	RPM            uint16 `toml:"rpm"`
	DurationS      uint16 `toml:"duration_s"`
}

type rawProfile struct {
	RPM        uint16      `toml:"rpm"`
	TotalTime  uint16      `toml:"total_time"`
	Direction  string      `toml:"direction"`
	Iterations uint8       `toml:"iterations"`
	DryTemp    *int16      `toml:"dry_temp"`
	Spinoff    *rawSpinoff `toml:"spinoff"`
}

type rawProgramStep struct {
	Jar     string `toml:"jar"`
	Profile string `toml:"profile"`
}

type rawProgram struct {
	Label string           `toml:"label"`
	Steps []rawProgramStep `toml:"steps"`
}

// Load decodes TOML bytes into a Machine, applying no defaults beyond what
// spec.md §6 requires, and returns a decode error for structurally invalid
// TOML. Call Validate afterwards before handing the result to the rest of
// the firmware — Load does not itself enforce cross-reference or range
// rules.
func Load(data []byte) (*Machine, error) {
	var raw rawFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: decode toml: %w", err)
	}
	return fromRaw(&raw)
}

func fromRaw(raw *rawFile) (*Machine, error) {
	m := &Machine{
		Capabilities: Capabilities{
			HasLift:     raw.Machine.HasLift,
			HasTower:    raw.Machine.HasTower,
			HasLid:      raw.Machine.HasLid,
			HeaterCount: len(raw.HeaterControl),
		},
		Profiles: make(map[string]Profile, len(raw.Profile)),
		Jars:     make(map[string]Jar, len(raw.Jar)),
		Programs: make(map[string]Program, len(raw.Program)),
		Heaters:  make(map[string]HeaterControl, len(raw.HeaterControl)),
	}

	for name, h := range raw.HeaterControl {
		mode := BangBang
		switch h.Mode {
		case "", "bangbang", "bang_bang":
			mode = BangBang
		case "pid":
			mode = PID
		default:
			return nil, fmt.Errorf("config: heater_control.%s: unknown mode %q", name, h.Mode)
		}
		hc := HeaterControl{Name: name, Mode: mode, MaxTempC: h.MaxTemp, Hysteresis: h.Hysteresis}
		if h.Kp != nil {
			hc.KpX100 = *h.Kp
		}
		if h.Ki != nil {
			hc.KiX100 = *h.Ki
		}
		if h.Kd != nil {
			hc.KdX100 = *h.Kd
		}
		m.Heaters[name] = hc
	}

	for name, j := range raw.Jar {
		m.Jars[name] = Jar{
			Name:           name,
			TowerPosDeg:    j.TowerPos,
			LiftPosMM:      j.LiftPos,
			HeaterName:     j.Heater,
			UltrasonicName: j.Ultrasonic,
		}
	}

	for name, p := range raw.Profile {
		dir, err := parseDirectionMode(p.Direction)
		if err != nil {
			return nil, fmt.Errorf("config: profile.%s: %w", name, err)
		}
		prof := Profile{
			Label:        name,
			RPM:          p.RPM,
			TotalSeconds: p.TotalTime,
			Direction:    dir,
			Iterations:   p.Iterations,
			DryTempC:     p.DryTemp,
		}
		if p.Spinoff != nil {
			prof.SpinOffConfig = &SpinOff{
				LiftDistanceMM: p.Spinoff.LiftDistanceMM,
				RPM:            p.Spinoff.RPM,
				DurationS:      p.Spinoff.DurationS,
			}
		}
		m.Profiles[name] = prof
	}

	for name, p := range raw.Program {
		steps := make([]Step, 0, len(p.Steps))
		for _, s := range p.Steps {
			steps = append(steps, Step{JarName: s.Jar, ProfileName: s.Profile})
		}
		label := p.Label
		if label == "" {
			label = name
		}
		m.Programs[name] = Program{Label: label, Steps: steps}
	}

	return m, nil
}

func parseDirectionMode(s string) (DirectionMode, error) {
	switch s {
	case "cw", "":
		return Clockwise, nil
	case "ccw":
		return CounterClockwise, nil
	case "alternate":
		return Alternate, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}
