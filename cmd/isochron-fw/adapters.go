//go:build rp2040

package main

import (
	"machine"
	"strconv"

	"isochron/config"
	"isochron/core"
	"isochron/heater"
)

// pinIndex extracts the trailing decimal digits of a parsed config.Pin's
// ID (e.g. "gpio14" -> 14, "adc0" -> 0). The board wiring sections
// (spec.md §6) never use anything else on this target.
func pinIndex(id string) uint32 {
	start := len(id)
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}
	n, _ := strconv.Atoi(id[start:])
	return uint32(n)
}

// gpioRelay adapts a core.GPIODriver pin into heater.Output.
type gpioRelay struct {
	drv      core.GPIODriver
	pin      core.GPIOPin
	inverted bool
}

func newGPIORelay(drv core.GPIODriver, p config.Pin) (*gpioRelay, error) {
	pin := core.GPIOPin(pinIndex(p.ID))
	if err := drv.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	return &gpioRelay{drv: drv, pin: pin, inverted: p.Inverted}, nil
}

// SetOn implements heater.Output.
func (r *gpioRelay) SetOn(on bool) {
	if r.inverted {
		on = !on
	}
	_ = r.drv.SetPin(r.pin, on)
}

var _ heater.Output = (*gpioRelay)(nil)

// adcSensor adapts a core.ADCDriver channel into sensor.AdcReader.
type adcSensor struct {
	drv core.ADCDriver
	ch  core.ADCChannelID
}

func newADCSensor(drv core.ADCDriver, p config.Pin) (*adcSensor, error) {
	ch := core.ADCChannelID(pinIndex(p.ID) + 30)
	if err := drv.ConfigureChannel(ch); err != nil {
		return nil, err
	}
	return &adcSensor{drv: drv, ch: ch}, nil
}

// ReadRaw implements sensor.AdcReader.
func (a *adcSensor) ReadRaw() (uint16, error) {
	v, err := a.drv.ReadRaw(a.ch)
	return uint16(v), err
}

// gpioStallSource adapts a digital stall input into stepper.StallSource.
type gpioStallSource struct {
	drv      core.GPIODriver
	pin      core.GPIOPin
	inverted bool
}

func newGPIOStallSource(drv core.GPIODriver, p config.Pin) (*gpioStallSource, error) {
	pin := core.GPIOPin(pinIndex(p.ID))
	var err error
	if p.PullUp {
		err = drv.ConfigureInputPullUp(pin)
	} else {
		err = drv.ConfigureInputPullDown(pin)
	}
	if err != nil {
		return nil, err
	}
	return &gpioStallSource{drv: drv, pin: pin, inverted: p.Inverted}, nil
}

// Stalled implements stepper.StallSource.
func (s *gpioStallSource) Stalled() bool {
	v := s.drv.ReadPin(s.pin)
	if s.inverted {
		return !v
	}
	return v
}

// machinePin maps a parsed config.Pin to a TinyGo machine.Pin, for the
// handful of peripherals (PIO step/dir lines) that bypass the GPIODriver
// abstraction and need the raw pin object.
func machinePin(p config.Pin) machine.Pin {
	return machine.Pin(pinIndex(p.ID))
}
