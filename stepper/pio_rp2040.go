//go:build rp2040

package stepper

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildPulseProgram assembles the PIO program that free-runs a square wave
// on the step pin at a rate set purely by the state machine's clock
// divider: set high, set low, wrap. Grounded on
// targets/pio/stepper_pio.go's buildStepperProgram, simplified from a
// FIFO-commanded pulse-count/delay protocol to a free-running wrap loop
// since this axis needs a steady frequency, not discrete move segments.
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Set(rp2pio.SetDestPins, 1).Encode(), // 0: set pins, 1
		asm.Set(rp2pio.SetDestPins, 0).Encode(), // 1: set pins, 0
		// .wrap
	}
}

const pulsePIOOrigin = 0

// PIOBackend drives the step pin entirely in hardware via a PIO state
// machine, so pulse timing never depends on software scheduling jitter
// (spec.md §4.2 rationale).
type PIOBackend struct {
	pio     *rp2pio.PIO
	sm      rp2pio.StateMachine
	stepPin machine.Pin
	dirPin  machine.Pin
	offset  uint8
}

// NewPIOBackend claims state machine smNum on PIO block pioNum and wires
// it to stepPin/dirPin.
func NewPIOBackend(pioNum, smNum uint8, stepPin, dirPin machine.Pin) (*PIOBackend, error) {
	var hw *rp2pio.PIO
	if pioNum == 0 {
		hw = rp2pio.PIO0
	} else {
		hw = rp2pio.PIO1
	}
	b := &PIOBackend{pio: hw, sm: hw.StateMachine(smNum), stepPin: stepPin, dirPin: dirPin}

	b.sm.TryClaim()
	program := buildPulseProgram()
	offset, err := b.pio.AddProgram(program, pulsePIOOrigin)
	if err != nil {
		return nil, err
	}
	b.offset = offset

	b.stepPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	b.dirPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(b.stepPin, 1)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	b.sm.Init(offset, cfg)
	b.sm.SetPindirsConsecutive(b.stepPin, 1, true)
	b.sm.SetPinsConsecutive(b.stepPin, 1, false)
	return b, nil
}

// SetFrequency reprograms the state machine's clock divider so the
// two-instruction wrap loop pulses at freqHz (spec.md §4.2's
// divider_fixed_8_8 formula, sys clock fixed at 125MHz on rp2040).
func (b *PIOBackend) SetFrequency(freqHz uint32) {
	if freqHz == 0 {
		b.sm.SetEnabled(false)
		return
	}
	const sysClkHz = 125_000_000
	div := DividerFixed88(sysClkHz, freqHz)
	if div < 1<<8 {
		div = 1 << 8 // minimum divider of 1.0 in 8.8 fixed point
	}
	intPart := uint16(div >> 8)
	fracPart := uint8(div & 0xff)
	b.sm.SetClkDivIntFrac(intPart, fracPart)
	b.sm.SetEnabled(true)
}

func (b *PIOBackend) SetDirection(dir Direction) {
	level := dir == CCW
	b.dirPin.Set(level)
}

func (b *PIOBackend) Enable(on bool) { b.sm.SetEnabled(on) }

func (b *PIOBackend) Stop() {
	b.sm.SetEnabled(false)
	b.sm.ClearFIFOs()
	b.sm.Restart()
}
