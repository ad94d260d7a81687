package config

import "testing"

const sampleTOML = `
[machine]
has_lift = true
has_tower = true

[heater_control.main]
mode = "pid"
max_temp = 55
hysteresis = 2
kp_x100 = 800
ki_x100 = 40
kd_x100 = 150

[jar.clean]
tower_pos = 10
lift_pos = 20
heater = "main"

[jar.rinse]
tower_pos = 90
lift_pos = 20

[profile.Clean]
rpm = 120
total_time = 10
direction = "cw"

[profile.Rinse]
rpm = 100
total_time = 10
direction = "cw"

[profile.Alt]
rpm = 120
total_time = 60
direction = "alternate"
iterations = 3

[program.wash]
label = "Wash"
steps = [{jar = "clean", profile = "Clean"}, {jar = "rinse", profile = "Rinse"}]
`

func TestLoadAndValidate(t *testing.T) {
	m, err := Load([]byte(sampleTOML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !m.Capabilities.IsAutomated() {
		t.Fatalf("expected automated machine")
	}
	if m.Profiles["Alt"].Iterations != 3 {
		t.Fatalf("iterations not decoded")
	}
	prog := m.Programs["wash"]
	if len(prog.Steps) != 2 || prog.Steps[0].JarName != "clean" {
		t.Fatalf("unexpected program steps: %+v", prog.Steps)
	}
}

func TestValidateCatchesBadReferences(t *testing.T) {
	m, err := Load([]byte(`
[jar.clean]
tower_pos = 10
lift_pos = 20

[profile.Clean]
rpm = 120
total_time = 10
direction = "cw"

[program.wash]
steps = [{jar = "clean", profile = "DoesNotExist"}]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = Validate(m)
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateRejectsShortAlternateSegment(t *testing.T) {
	m, err := Load([]byte(`
[profile.TooFast]
rpm = 100
total_time = 20
direction = "alternate"
iterations = 3
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(m); err == nil {
		t.Fatalf("expected validation error for segment floor violation")
	}
}

func TestValidateRejectsOutOfRangeRPM(t *testing.T) {
	m, err := Load([]byte(`
[profile.TooFast]
rpm = 5000
total_time = 20
direction = "cw"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(m); err == nil {
		t.Fatalf("expected validation error for rpm out of range")
	}
}

func TestParsePin(t *testing.T) {
	cases := []struct {
		in       string
		inverted bool
		pullup   bool
		id       string
	}{
		{"gpio5", false, false, "gpio5"},
		{"!gpio5", true, false, "gpio5"},
		{"^gpio5", false, true, "gpio5"},
		{"!^gpio5", true, true, "gpio5"},
		{"^!gpio5", true, true, "gpio5"},
	}
	for _, c := range cases {
		p, err := ParsePin(c.in)
		if err != nil {
			t.Fatalf("ParsePin(%q): %v", c.in, err)
		}
		if p.Inverted != c.inverted || p.PullUp != c.pullup || p.ID != c.id {
			t.Fatalf("ParsePin(%q) = %+v, want inverted=%v pullup=%v id=%q", c.in, p, c.inverted, c.pullup, c.id)
		}
	}
	if _, err := ParsePin(""); err == nil {
		t.Fatalf("expected error on empty pin")
	}
	if _, err := ParsePin("!!gpio5"); err == nil {
		t.Fatalf("expected error on duplicate flag")
	}
}

func TestPinBankConflict(t *testing.T) {
	bank := NewPinBank()
	pin, _ := ParsePin("gpio5")
	if err := bank.Allocate(pin, "stepper-x"); err != nil {
		t.Fatalf("first allocate: %v", err)
	}
	if err := bank.Allocate(pin, "stepper-x"); err != nil {
		t.Fatalf("re-allocate by same owner should be fine: %v", err)
	}
	if err := bank.Allocate(pin, "heater-main"); err == nil {
		t.Fatalf("expected conflict error")
	}
}
