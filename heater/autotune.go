package heater

// TuneOutcome is the terminal result of an autotune run.
type TuneOutcome uint8

const (
	TuneRunning TuneOutcome = iota
	TuneSuccess
	NoOscillation
	TuneOverTemp
	TuneTimeout
	TuneSensorFault
	TuneCancelled
)

// TuneResult carries the derived Ziegler–Nichols gains on TuneSuccess.
type TuneResult struct {
	KpX100 int32
	KiX100 int32
	KdX100 int32
}

// MinPeaks is the minimum peak count collected before derivation is
// attempted; MaxPeaks caps collection regardless (spec.md §4.3).
const (
	MinPeaks = 12
	MaxPeaks = 24
)

// MaxTuneTicks is 20 minutes of 500ms control ticks.
const MaxTuneTicks = 20 * 60 * 2

// RelayHysteresisX10 is the small hysteresis band used during the relay
// phase (0.2 degC), tighter than a normal bang-bang band so it oscillates
// quickly around the target.
const RelayHysteresisX10 = 2

type autotunePhase uint8

const (
	phaseWarmup autotunePhase = iota
	phaseRelay
)

// Autotuner runs the Åström–Hägglund relay-feedback procedure: full-on
// until the temperature enters a hysteresis band around the target, then a
// tight relay oscillation whose peaks are timed and averaged to derive
// Ziegler–Nichols PID gains.
type Autotuner struct {
	targetX10   int16
	maxTempX10  int16
	relayOutput int32 // the commanded duty (0..255) during the relay's "on" phase

	phase     autotunePhase
	on        bool
	ticks     uint32
	cancelled bool

	// three-sample sliding window for peak detection: a sample is a peak
	// iff its neighbours on both sides curve away from it.
	win      [3]int16
	winTicks [3]uint32
	winLen   int

	highs      []int16
	highTicks  []uint32
	lows       []int16
	lowTicks   []uint32
}

// NewAutotuner builds an Autotuner targeting targetC with a hard cutoff at
// maxTempC, driving the heater at relayOutput (0..255) while "on" during
// the relay phase.
func NewAutotuner(targetC, maxTempC int16, relayOutput int32) *Autotuner {
	return &Autotuner{
		targetX10:   targetC * 10,
		maxTempX10:  maxTempC * 10,
		relayOutput: relayOutput,
	}
}

// Cancel marks the run as externally cancelled; the next Tick reports it.
func (a *Autotuner) Cancel() { a.cancelled = true }

func (a *Autotuner) pushSample(tempX10 int16, tick uint32) {
	if a.winLen < 3 {
		a.win[a.winLen] = tempX10
		a.winTicks[a.winLen] = tick
		a.winLen++
		return
	}
	a.win[0], a.win[1], a.win[2] = a.win[1], a.win[2], tempX10
	a.winTicks[0], a.winTicks[1], a.winTicks[2] = a.winTicks[1], a.winTicks[2], tick
	a.detectPeak()
}

func (a *Autotuner) detectPeak() {
	prev, mid, next := a.win[0], a.win[1], a.win[2]
	midTick := a.winTicks[1]
	switch {
	case mid > prev && mid > next:
		a.highs = append(a.highs, mid)
		a.highTicks = append(a.highTicks, midTick)
	case mid < prev && mid < next:
		a.lows = append(a.lows, mid)
		a.lowTicks = append(a.lowTicks, midTick)
	}
}

func (a *Autotuner) peakCount() int { return len(a.highs) + len(a.lows) }

// Tick consumes one temperature reading and advances the tuning run by one
// control period. done is true once outcome is anything but TuneRunning;
// result is only meaningful when outcome == TuneSuccess.
func (a *Autotuner) Tick(tempX10 int16, valid bool) (heaterOn bool, done bool, outcome TuneOutcome, result TuneResult) {
	a.ticks++
	if a.cancelled {
		return false, true, TuneCancelled, TuneResult{}
	}
	if !valid {
		return false, true, TuneSensorFault, TuneResult{}
	}
	if tempX10 >= a.maxTempX10 {
		return false, true, TuneOverTemp, TuneResult{}
	}
	if a.ticks >= MaxTuneTicks {
		return false, true, TuneTimeout, TuneResult{}
	}

	low := a.targetX10 - RelayHysteresisX10
	high := a.targetX10 + RelayHysteresisX10

	if a.phase == phaseWarmup {
		if tempX10 >= low {
			a.phase = phaseRelay
			a.on = false
		} else {
			a.on = true
			return true, false, TuneRunning, TuneResult{}
		}
	}

	switch {
	case tempX10 < low:
		a.on = true
	case tempX10 > high:
		a.on = false
	}
	a.pushSample(tempX10, a.ticks)

	if a.peakCount() >= MinPeaks || a.peakCount() >= MaxPeaks {
		outcome, result := DeriveGains(a.relayOutput, a.highs, a.lows, a.highTicks, a.lowTicks)
		return false, true, outcome, result
	}
	return a.on, false, TuneRunning, TuneResult{}
}

// DeriveGains computes the Ziegler–Nichols PID gains from collected relay
// peaks, split out from the stateful Tick loop so it can be exercised
// directly against hand-built peak sequences. highs/lows are peak
// temperatures (x10); highTicks/lowTicks are the control-tick index each
// peak was observed at.
func DeriveGains(relayOutput int32, highs, lows []int16, highTicks, lowTicks []uint32) (TuneOutcome, TuneResult) {
	if len(highs) == 0 || len(lows) == 0 {
		return NoOscillation, TuneResult{}
	}

	meanHigh := meanInt16(highs)
	meanLow := meanInt16(lows)
	amplitudeX10 := (meanHigh - meanLow) / 2

	tu := meanInterval(highTicks)
	tuLow := meanInterval(lowTicks)
	if tu == 0 {
		tu = tuLow
	} else if tuLow != 0 {
		tu = (tu + tuLow) / 2
	}

	if amplitudeX10 < 5 || tu < 4 {
		return NoOscillation, TuneResult{}
	}

	// Ku_x100 = (4 * relay_output * 10000) / (314 * amplitude_x10); pi ~= 3.14.
	kuX100 := int64(4) * int64(relayOutput) * 10000 / (314 * int64(amplitudeX10))

	kpX100 := 60 * kuX100 / 100
	kiX100 := 120 * kuX100 / (100 * int64(tu))
	kdX100 := 75 * kuX100 * int64(tu) / 10000

	return TuneSuccess, TuneResult{
		KpX100: int32(clampInt64ToInt16Range(kpX100)),
		KiX100: int32(clampInt64ToInt16Range(kiX100)),
		KdX100: int32(clampInt64ToInt16Range(kdX100)),
	}
}

func meanInt16(vals []int16) int32 {
	var sum int64
	for _, v := range vals {
		sum += int64(v)
	}
	return int32(sum / int64(len(vals)))
}

func meanInterval(ticks []uint32) int32 {
	if len(ticks) < 2 {
		return 0
	}
	var sum int64
	for i := 1; i < len(ticks); i++ {
		sum += int64(ticks[i] - ticks[i-1])
	}
	return int32(sum / int64(len(ticks)-1))
}

func clampInt64ToInt16Range(v int64) int64 {
	const lo, hi = -32768, 32767
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
