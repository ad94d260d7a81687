package stepper

// SoftwareBackend is a timer-driven pulse generator used on targets or test
// harnesses without a PIO block. Grounded on the teacher's core/stepper.go
// timer-rescheduled step event model, collapsed here from a queued-move
// list down to a single steady frequency (this firmware has no G-code
// motion queue — just a continuously spinning axis).
type SoftwareBackend struct {
	Pulse PulseFunc

	freqHz    uint32
	direction Direction
	enabled   bool
}

// PulseFunc toggles the physical step pin; supplied by the board HAL.
type PulseFunc func()

// NewSoftwareBackend builds a SoftwareBackend that calls pulse once per
// step when driven by an external scheduling loop (Tick).
func NewSoftwareBackend(pulse PulseFunc) *SoftwareBackend {
	return &SoftwareBackend{Pulse: pulse}
}

func (b *SoftwareBackend) SetFrequency(freqHz uint32) { b.freqHz = freqHz }
func (b *SoftwareBackend) SetDirection(dir Direction) { b.direction = dir }
func (b *SoftwareBackend) Enable(on bool)             { b.enabled = on }
func (b *SoftwareBackend) Stop()                      { b.enabled = false; b.freqHz = 0 }

// FreqHz returns the currently programmed frequency, for tests and status
// queries.
func (b *SoftwareBackend) FreqHz() uint32 { return b.freqHz }

// Direction returns the currently programmed direction.
func (b *SoftwareBackend) Direction() Direction { return b.direction }

// Enabled reports whether the backend is currently pulsing.
func (b *SoftwareBackend) Enabled() bool { return b.enabled }

// IntervalTicks converts the programmed frequency into a timer interval in
// ticks of the given clock rate, the software equivalent of the PIO
// backend's clock divider. Returns 0 (no pulsing) at zero frequency.
func (b *SoftwareBackend) IntervalTicks(clockHz uint32) uint32 {
	if b.freqHz == 0 {
		return 0
	}
	return clockHz / b.freqHz
}

// Tick fires one step pulse if the backend is enabled and programmed with
// a nonzero frequency. Called by a Timer (package core's scheduling
// idiom, generalized here) at IntervalTicks(clockHz) cadence.
func (b *SoftwareBackend) Tick() {
	if b.enabled && b.freqHz > 0 && b.Pulse != nil {
		b.Pulse()
	}
}
