// Package segment turns a profile's (RPM, total duration, direction mode,
// iterations) into the ordered sequence of constant-direction segments the
// scheduler steps through (spec.md §4.5). Grounded on the teacher's
// table-driven command generation in core/stepper_commands.go, which expands
// one high-level request into a fixed ordered list of low-level steps the
// same way this expands one profile into a list of segments.
package segment

import (
	"fmt"

	"isochron/config"
)

// FloorSeconds is the minimum duration a single Alternate-mode segment may
// have; generation fails below it (spec.md §4.5).
const FloorSeconds = 10

// Segment is a single constant-direction portion of a step: a direction, a
// duration, and a target RPM. Discarded once its step finishes.
type Segment struct {
	Direction config.Direction
	DurationS uint16
	RPM       uint16
}

// Generate builds the ordered segment list for a profile.
//
// Clockwise and CounterClockwise modes each produce one segment spanning the
// full duration. Alternate mode produces iterations*2 segments of equal
// duration (total/(iterations*2)), starting Clockwise and alternating
// thereafter; it fails if iterations is zero or if the resulting per-segment
// duration would fall below FloorSeconds.
func Generate(p config.Profile) ([]Segment, error) {
	switch p.Direction {
	case config.Clockwise:
		return []Segment{{Direction: config.CW, DurationS: p.TotalSeconds, RPM: p.RPM}}, nil
	case config.CounterClockwise:
		return []Segment{{Direction: config.CCW, DurationS: p.TotalSeconds, RPM: p.RPM}}, nil
	case config.Alternate:
		return generateAlternate(p)
	default:
		return nil, fmt.Errorf("segment: unknown direction mode %d", p.Direction)
	}
}

func generateAlternate(p config.Profile) ([]Segment, error) {
	if p.Iterations == 0 {
		return nil, fmt.Errorf("segment: alternate profile %q has zero iterations", p.Label)
	}
	count := uint32(p.Iterations) * 2
	durationS := uint32(p.TotalSeconds) / count
	if durationS < FloorSeconds {
		return nil, fmt.Errorf("segment: profile %q per-segment duration %ds below floor of %ds", p.Label, durationS, FloorSeconds)
	}
	segs := make([]Segment, count)
	dir := config.CW
	for i := uint32(0); i < count; i++ {
		segs[i] = Segment{Direction: dir, DurationS: uint16(durationS), RPM: p.RPM}
		if dir == config.CW {
			dir = config.CCW
		} else {
			dir = config.CW
		}
	}
	return segs, nil
}
