package config

import "fmt"

// PinBank owns every pin handle for a machine configuration. It is built
// once at boot from the config-driven wiring and frozen afterward — callers
// hand out pin identifiers by name and get a conflict error if two
// components claim the same physical pin. Grounded on the teacher's
// registry-by-identifier idiom (core/gpio.go's digitalOutputs map,
// core/adc.go's analogInputs map) generalized to a single allocation table
// shared across every pin consumer instead of one map per peripheral kind.
type PinBank struct {
	owners map[string]string
}

// NewPinBank returns an empty bank.
func NewPinBank() *PinBank {
	return &PinBank{owners: make(map[string]string)}
}

// Allocate claims pin for owner. It fails if the pin (by underlying ID, not
// by raw descriptor string — "!gpio5" and "gpio5" name the same physical
// pin) is already claimed by a different owner.
func (b *PinBank) Allocate(pin Pin, owner string) error {
	if existing, ok := b.owners[pin.ID]; ok && existing != owner {
		return fmt.Errorf("config: pin %q already claimed by %q (requested by %q)", pin.ID, existing, owner)
	}
	b.owners[pin.ID] = owner
	return nil
}

// Owner returns the owner of a pin ID, if allocated.
func (b *PinBank) Owner(id string) (string, bool) {
	o, ok := b.owners[id]
	return o, ok
}

// Count returns the number of distinct pins allocated.
func (b *PinBank) Count() int {
	return len(b.owners)
}
