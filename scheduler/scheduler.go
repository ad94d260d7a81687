// Package scheduler implements the program scheduler (spec.md §4.6): the
// authoritative owner of program-execution state, expanding each step's
// profile into segments (package segment) and driving motor/heater
// commands as the step works through its phases. Grounded on the
// teacher's standalone/manager.go coordinator (owns a single mutable
// piece of run state, exposes a small external command surface, and
// recomputes derived outputs on every transition) generalized from
// gcode-job bookkeeping to profile/segment/spin-off bookkeeping, and on
// original_source/isochron-core/src/scheduler/executor.rs for the exact
// phase-transition shape.
package scheduler

import (
	"isochron/config"
	"isochron/segment"
	"isochron/statemachine"
)

// MotorCommand is the read-only snapshot the motor-driver task consumes.
type MotorCommand struct {
	RPM       uint16
	Direction config.Direction
}

// HeaterCommand is the read-only snapshot the heater task consumes. On is
// false when there is no target temperature (heater off).
type HeaterCommand struct {
	TargetC int16
	On      bool
}

// StepState is the scheduler's owned runtime state for the step in
// progress. Replaced wholesale when starting a new step; cleared on abort.
type StepState struct {
	StepIndex       int
	JarName         string
	ProfileName     string
	Segments        []segment.Segment
	SegIndex        int
	SegElapsedS     uint16
	StepElapsedS    uint16
	SpinOff         *config.SpinOff
	SpinOffElapsedS uint16
}

// Scheduler is the program-execution owner (spec.md §4.6).
type Scheduler struct {
	profiles map[string]config.Profile
	jars     map[string]config.Jar

	automated bool
	program   config.Program
	phase     statemachine.State
	step      StepState

	pausedFrom statemachine.State
}

// New builds an empty Scheduler. automated mirrors
// config.Capabilities.IsAutomated(): it decides whether step/spin-off
// transitions proceed without user confirmation.
func New(automated bool) *Scheduler {
	return &Scheduler{automated: automated, phase: statemachine.Idle}
}

// LoadProfiles bulk-intakes the machine's profile table.
func (s *Scheduler) LoadProfiles(profiles map[string]config.Profile) { s.profiles = profiles }

// LoadJars bulk-intakes the machine's jar table.
func (s *Scheduler) LoadJars(jars map[string]config.Jar) { s.jars = jars }

// Phase returns the scheduler's current phase.
func (s *Scheduler) Phase() statemachine.State { return s.phase }

// StartProgram begins program, initialising StepState for step 0 and
// entering Running directly — the step-0 jar is assumed already placed by
// the operator before start_program is called, so no jar prompt is
// needed for it (only step transitions prompt for a jar swap). Fails
// silently (returns ok=false) if the program has no steps.
func (s *Scheduler) StartProgram(program config.Program) (ev statemachine.Event, ok bool) {
	if len(program.Steps) == 0 {
		return 0, false
	}
	s.program = program
	if err := s.beginStep(0); err != nil {
		return 0, false
	}
	s.phase = statemachine.Running
	return 0, false
}

func (s *Scheduler) beginStep(index int) error {
	step := s.program.Steps[index]
	profile, ok := s.profiles[step.ProfileName]
	if !ok {
		return errUnknownProfile(step.ProfileName)
	}
	segs, err := segment.Generate(profile)
	if err != nil {
		return err
	}
	s.step = StepState{
		StepIndex:   index,
		JarName:     step.JarName,
		ProfileName: step.ProfileName,
		Segments:    segs,
		SpinOff:     profile.SpinOffConfig,
	}
	return nil
}

type errUnknownProfile string

func (e errUnknownProfile) Error() string { return "scheduler: unknown profile " + string(e) }

// currentProfile returns the profile driving the in-progress step.
func (s *Scheduler) currentProfile() (config.Profile, bool) {
	p, ok := s.profiles[s.step.ProfileName]
	return p, ok
}

// CurrentProfile exposes the profile backing the step in progress.
func (s *Scheduler) CurrentProfile() (config.Profile, bool) { return s.currentProfile() }

// CurrentJar exposes the jar the step in progress is using.
func (s *Scheduler) CurrentJar() (config.Jar, bool) {
	j, ok := s.jars[s.step.JarName]
	return j, ok
}

// StepElapsed returns (elapsed, total) seconds for the step in progress.
// Per spec.md §9's open question on "total elapsed," this reports only
// step-level elapsed/total, not a running program-wide sum — a caller
// that needs a program-wide figure must accumulate it itself across
// NextStep events.
func (s *Scheduler) StepElapsed() (elapsedS, totalS uint16) {
	profile, ok := s.currentProfile()
	if !ok {
		return 0, 0
	}
	return s.step.StepElapsedS, profile.TotalSeconds
}

// Tick advances the step in progress by elapsedS seconds, returning
// whichever scheduler event (if any) that produced.
func (s *Scheduler) Tick(elapsedS uint16) (ev statemachine.Event, ok bool) {
	switch s.phase {
	case statemachine.Running:
		return s.tickRunning(elapsedS)
	case statemachine.SpinOff:
		return s.tickSpinOff(elapsedS)
	default:
		return 0, false
	}
}

func (s *Scheduler) tickRunning(elapsedS uint16) (statemachine.Event, bool) {
	s.step.StepElapsedS += elapsedS
	s.step.SegElapsedS += elapsedS

	for s.step.SegIndex < len(s.step.Segments) && s.step.SegElapsedS >= s.step.Segments[s.step.SegIndex].DurationS {
		s.step.SegElapsedS -= s.step.Segments[s.step.SegIndex].DurationS
		s.step.SegIndex++
	}

	if s.step.SegIndex < len(s.step.Segments) {
		return 0, false
	}
	return s.enterProfileCompletion()
}

func (s *Scheduler) enterProfileCompletion() (statemachine.Event, bool) {
	if s.step.SpinOff != nil {
		s.step.SpinOffElapsedS = 0
		if s.automated {
			s.phase = statemachine.SpinOff
			return statemachine.StartSpinOff, true
		}
		s.phase = statemachine.AwaitingSpinOff
		return statemachine.PromptSpinOff, true
	}
	return s.enterStepCompletion()
}

func (s *Scheduler) tickSpinOff(elapsedS uint16) (statemachine.Event, bool) {
	s.step.SpinOffElapsedS += elapsedS
	if s.step.SpinOffElapsedS < s.step.SpinOff.DurationS {
		return 0, false
	}
	return s.enterStepCompletion()
}

// enterStepCompletion implements spec.md §4.6's step-completion path. An
// automated machine emits NextStep and parks in StepComplete, ready for
// an explicit AdvanceStep call once the (out-of-scope) lift/tower axes
// have repositioned the basket. A manual machine instead begins the next
// step's data immediately and parks in AwaitingJar, since nothing further
// is needed from the scheduler until the operator confirms the jar swap.
func (s *Scheduler) enterStepCompletion() (statemachine.Event, bool) {
	nextIndex := s.step.StepIndex + 1
	if nextIndex >= len(s.program.Steps) {
		s.phase = statemachine.ProgramComplete
		return statemachine.ProgramFinished, true
	}
	if s.automated {
		s.phase = statemachine.StepComplete
		return statemachine.NextStep, true
	}
	if err := s.beginStep(nextIndex); err != nil {
		s.phase = statemachine.StepComplete
		return 0, false
	}
	s.phase = statemachine.AwaitingJar
	return statemachine.PromptNextJar, true
}

// UserConfirm transitions AwaitingJar->Running or AwaitingSpinOff->SpinOff.
// The next step's data was already prepared by enterStepCompletion when
// the scheduler entered AwaitingJar, so no further setup is needed here.
func (s *Scheduler) UserConfirm() statemachine.Event {
	switch s.phase {
	case statemachine.AwaitingJar:
		s.phase = statemachine.Running
		return statemachine.UserConfirm
	case statemachine.AwaitingSpinOff:
		s.phase = statemachine.SpinOff
		s.step.SpinOffElapsedS = 0
		return statemachine.UserConfirm
	default:
		return 0
	}
}

// AdvanceStep starts the next step from StepComplete (the automated
// machine's explicit continuation after NextStep), returning the event
// produced by starting it.
func (s *Scheduler) AdvanceStep() (ev statemachine.Event, ok bool) {
	if s.phase != statemachine.StepComplete {
		return 0, false
	}
	nextIndex := s.step.StepIndex + 1
	if nextIndex >= len(s.program.Steps) {
		return 0, false
	}
	if err := s.beginStep(nextIndex); err != nil {
		return 0, false
	}
	s.phase = statemachine.Running
	return statemachine.NextStep, true
}

// Pause preserves motor/spin-off elapsed counters and returns true iff the
// scheduler was in Running or SpinOff. Per spec.md §9's open question on
// the segment/spin-off pause boundary, Pause reads whichever phase is
// already current at the instant it is called — there is no
// reconstruction from spinoff_elapsed_s, the phase is tracked explicitly.
func (s *Scheduler) Pause() bool {
	if s.phase != statemachine.Running && s.phase != statemachine.SpinOff {
		return false
	}
	s.pausedFrom = s.phase
	s.phase = statemachine.Paused
	return true
}

// Resume restores the phase Pause recorded.
func (s *Scheduler) Resume() {
	if s.phase != statemachine.Paused {
		return
	}
	s.phase = s.pausedFrom
}

// Abort resets to Idle; motor/heater commands are forced off by
// MotorCommand/HeaterCommand's phase gating once Idle is current.
func (s *Scheduler) Abort() {
	s.phase = statemachine.Idle
	s.step = StepState{}
}

// MotorCommand returns (0, CW) unless the phase is Running or SpinOff, in
// which case it's the current segment's or the spin-off's (rpm,
// direction) (spec.md §4.6, §8 property 2).
func (s *Scheduler) MotorCommand() MotorCommand {
	switch s.phase {
	case statemachine.Running:
		if s.step.SegIndex < len(s.step.Segments) {
			seg := s.step.Segments[s.step.SegIndex]
			return MotorCommand{RPM: seg.RPM, Direction: seg.Direction}
		}
	case statemachine.SpinOff:
		if s.step.SpinOff != nil {
			return MotorCommand{RPM: s.step.SpinOff.RPM, Direction: config.CW}
		}
	}
	return MotorCommand{RPM: 0, Direction: config.CW}
}

// HeaterCommand returns the profile's target temperature while Running;
// absent (On=false) in every other phase, including SpinOff (spec.md
// §4.6, §8 property 1: basket is out of solution during spin-off).
func (s *Scheduler) HeaterCommand() HeaterCommand {
	if s.phase != statemachine.Running {
		return HeaterCommand{}
	}
	profile, ok := s.currentProfile()
	if !ok || profile.DryTempC == nil {
		return HeaterCommand{}
	}
	return HeaterCommand{TargetC: *profile.DryTempC, On: true}
}
