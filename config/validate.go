package config

import "fmt"

// ValidationError collects every rule violation found by Validate, so a
// config-load failure at boot (spec.md §7: fatal, refuse to leave Boot) can
// report everything wrong in one pass instead of one-at-a-time.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "config: " + e.Problems[0]
	}
	s := fmt.Sprintf("config: %d problems:", len(e.Problems))
	for _, p := range e.Problems {
		s += "\n  - " + p
	}
	return s
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate enforces every rule in spec.md §6 plus the capacity caps in §3.
// It returns nil if the configuration is safe to hand to the rest of the
// firmware; otherwise a *ValidationError listing every problem found.
func Validate(m *Machine) error {
	ve := &ValidationError{}

	if len(m.Profiles) > MaxProfiles {
		ve.add("too many profiles: %d > %d", len(m.Profiles), MaxProfiles)
	}
	if len(m.Programs) > MaxPrograms {
		ve.add("too many programs: %d > %d", len(m.Programs), MaxPrograms)
	}
	if len(m.Jars) > MaxJars {
		ve.add("too many jars: %d > %d", len(m.Jars), MaxJars)
	}

	for name, p := range m.Profiles {
		validateProfile(ve, name, p)
	}
	for name, j := range m.Jars {
		validateJar(ve, name, j, m)
	}
	for name, p := range m.Programs {
		validateProgram(ve, name, p, m)
	}

	if len(ve.Problems) == 0 {
		return nil
	}
	return ve
}

func validateProfile(ve *ValidationError, name string, p Profile) {
	if len(name) > MaxLabelChars {
		ve.add("profile %q: label exceeds %d characters", name, MaxLabelChars)
	}
	if p.RPM > 1000 {
		ve.add("profile %q: rpm %d out of range [0,1000]", name, p.RPM)
	}
	if p.Direction == Alternate {
		if p.Iterations < 1 {
			ve.add("profile %q: alternate direction requires iterations >= 1", name)
		} else {
			segDur := int(p.TotalSeconds) / (2 * int(p.Iterations))
			if segDur < 10 {
				ve.add("profile %q: total_time/(2*iterations) = %ds < 10s floor", name, segDur)
			}
		}
	}
}

func validateJar(ve *ValidationError, name string, j Jar, m *Machine) {
	if len(name) > MaxLabelChars {
		ve.add("jar %q: label exceeds %d characters", name, MaxLabelChars)
	}
	if j.TowerPosDeg < 0 || j.TowerPosDeg > 360 {
		ve.add("jar %q: tower_pos %d out of range [0,360]", name, j.TowerPosDeg)
	}
	if j.LiftPosMM < 0 || j.LiftPosMM > 1000 {
		ve.add("jar %q: lift_pos %d out of range [0,1000]", name, j.LiftPosMM)
	}
	if j.HeaterName != "" {
		if _, ok := m.Heaters[j.HeaterName]; !ok {
			ve.add("jar %q: heater %q does not exist", name, j.HeaterName)
		}
	}
}

func validateProgram(ve *ValidationError, name string, p Program, m *Machine) {
	if len(name) > MaxLabelChars {
		ve.add("program %q: label exceeds %d characters", name, MaxLabelChars)
	}
	if len(p.Steps) > MaxStepsPerProgram {
		ve.add("program %q: too many steps: %d > %d", name, len(p.Steps), MaxStepsPerProgram)
	}
	for i, s := range p.Steps {
		if _, ok := m.Jars[s.JarName]; !ok {
			ve.add("program %q: step %d references unknown jar %q", name, i, s.JarName)
		}
		if _, ok := m.Profiles[s.ProfileName]; !ok {
			ve.add("program %q: step %d references unknown profile %q", name, i, s.ProfileName)
		}
	}
}
