//go:build rp2040 || rp2350

package main

import (
	"isochron/core"
	"machine"
)

// RPGPIODriver implements core.GPIODriver directly over TinyGo's
// machine.Pin for the RP2040.
type RPGPIODriver struct {
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver constructs an RP2040 GPIO driver.
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

func (d *RPGPIODriver) pinNumberToMachinePin(pin core.GPIOPin) machine.Pin {
	return machine.Pin(pin)
}

func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}
	mp := d.pinNumberToMachinePin(pin)
	mp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configuredPins[pin] = mp
	return nil
}

func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}
	mp := d.pinNumberToMachinePin(pin)
	mp.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	d.configuredPins[pin] = mp
	return nil
}

func (d *RPGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}
	mp := d.pinNumberToMachinePin(pin)
	mp.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	d.configuredPins[pin] = mp
	return nil
}

func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	mp, exists := d.configuredPins[pin]
	if !exists {
		if err := d.ConfigureOutput(pin); err != nil {
			return err
		}
		mp = d.configuredPins[pin]
	}
	mp.Set(value)
	return nil
}

func (d *RPGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	mp, exists := d.configuredPins[pin]
	if !exists {
		return false, nil
	}
	return mp.Get(), nil
}

func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	v, _ := d.GetPin(pin)
	return v
}
