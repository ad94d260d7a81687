package config

import (
	"fmt"
	"strings"
)

// Pin is a parsed pin descriptor: an optional inversion flag, an optional
// pull-up request, and a port-specific identifier string (e.g. "gpio14",
// "ADC0") left opaque to config — only the HAL that owns a given board
// knows how to turn that string into a register.
//
// Grounded on spec.md §6 ("Pin strings carry optional leading `!` (inverted)
// and `^` (pull-up) flags") and the teacher's GPIOPin/pin-registration
// convention in targets/rp2040/mode_select.go.
type Pin struct {
	Inverted bool
	PullUp   bool
	ID       string
}

// ParsePin parses a pin descriptor string of the form "[!][^]<id>".
// The two flags may appear in either order (Klipper itself is lenient here)
// but each may appear at most once.
func ParsePin(s string) (Pin, error) {
	p := Pin{}
	for len(s) > 0 {
		switch s[0] {
		case '!':
			if p.Inverted {
				return Pin{}, fmt.Errorf("config: pin %q: duplicate '!' flag", s)
			}
			p.Inverted = true
			s = s[1:]
		case '^':
			if p.PullUp {
				return Pin{}, fmt.Errorf("config: pin %q: duplicate '^' flag", s)
			}
			p.PullUp = true
			s = s[1:]
		default:
			p.ID = s
			s = ""
		}
	}
	if p.ID == "" {
		return Pin{}, fmt.Errorf("config: empty pin identifier")
	}
	if strings.ContainsAny(p.ID, "!^") {
		return Pin{}, fmt.Errorf("config: pin %q: flag characters must be leading", p.ID)
	}
	return p, nil
}
