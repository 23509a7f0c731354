package eye

import (
	"github.com/sarchlab/roboeyes/playback"
	"github.com/sarchlab/roboeyes/timing"
)

// SchedulerState is the state of a BlinkScheduler.
type SchedulerState int

// Scheduler states.
const (
	// Idle has no timer armed and fires nothing.
	Idle SchedulerState = iota
	// Armed fires a blink at every timer expiry.
	Armed
	// Exhausted has used up a finite plan.
	Exhausted
	// Looping plays the eyelid over and over without a timer.
	Looping
)

func (s SchedulerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Exhausted:
		return "exhausted"
	case Looping:
		return "looping"
	default:
		return "unknown"
	}
}

// TimerFactory creates repeating timers.
type TimerFactory interface {
	NewTimer(period timing.VTimeInMs, callback func(*timing.Timer)) *timing.Timer
}

type schedulerListener interface {
	blinked(s *BlinkScheduler, eyes []*Eye, loops int, manual bool)
	blinkSuppressed(s *BlinkScheduler, eyes []*Eye)
	planChanged(s *BlinkScheduler)
}

// BlinkScheduler decides when the eyes it drives blink. A unified controller
// has one scheduler for both eyes; an independent controller has one per
// eye.
//
// Setting a plan with a positive count and interval fires the first blink
// right away and arms a timer for the rest. A blink that would start while
// any driven eyelid is still playing is suppressed and does not use up the
// plan.
type BlinkScheduler struct {
	name     string
	timers   TimerFactory
	timer    *timing.Timer
	targets  func() []*Eye
	executor BlinkExecutor
	listener schedulerListener

	plan  BlinkPlan
	state SchedulerState

	fired      uint64
	suppressed uint64

	pendingLoops int
	hasPending   bool
	released     bool
}

func newBlinkScheduler(
	name string,
	timers TimerFactory,
	targets func() []*Eye,
	listener schedulerListener,
) *BlinkScheduler {
	return &BlinkScheduler{
		name:     name,
		timers:   timers,
		targets:  targets,
		listener: listener,
		plan:     BlinkPlan{Remaining: Finite(0)},
		state:    Idle,
	}
}

// Name returns the scheduler name.
func (s *BlinkScheduler) Name() string {
	return s.name
}

// State returns the current state.
func (s *BlinkScheduler) State() SchedulerState {
	return s.state
}

// Plan returns the current plan.
func (s *BlinkScheduler) Plan() BlinkPlan {
	return s.plan
}

// Fired returns how many plan blinks started.
func (s *BlinkScheduler) Fired() uint64 {
	return s.fired
}

// Suppressed returns how many plan or manual blinks were dropped because an
// eyelid was still playing.
func (s *BlinkScheduler) Suppressed() uint64 {
	return s.suppressed
}

// TimerRunning tells whether the scheduler's timer is armed.
func (s *BlinkScheduler) TimerRunning() bool {
	return s.timer != nil && !s.timer.IsPaused()
}

// SetPlan replaces the plan.
//
//   - A zero count disarms the scheduler.
//   - A finite count with a zero interval plays that many cycles back to back.
//   - An infinite count with a zero interval loops the eyelid until the plan
//     is replaced.
//   - Otherwise one blink fires now and the rest at every interval.
func (s *BlinkScheduler) SetPlan(interval timing.VTimeInMs, count BlinkCount) {
	if s.released {
		return
	}

	s.stop()
	s.plan = BlinkPlan{Interval: interval, Remaining: count}

	switch {
	case count.IsZero():
		s.state = Idle
	case interval == 0 && count.IsInfinite():
		s.state = Looping
		s.playBurst(playback.LoopForever)
	case interval == 0:
		s.plan.Remaining = Finite(0)
		s.state = Exhausted
		s.playBurst(count.Int())
	default:
		s.state = Armed
		s.fire()
		if s.state == Armed {
			s.arm(interval)
		}
	}

	s.listener.planChanged(s)
}

// BlinkNow blinks the driven eyes once without touching the plan. It returns
// false when the blink is suppressed or no eye can blink.
func (s *BlinkScheduler) BlinkNow() bool {
	if s.released {
		return false
	}

	eyes := s.targets()
	if anyBlinking(eyes) {
		s.suppressed++
		s.listener.blinkSuppressed(s, eyes)

		return false
	}

	blinked := s.executor.BlinkOnce(eyes...)
	if len(blinked) == 0 {
		return false
	}

	s.listener.blinked(s, blinked, 1, true)

	return true
}

// Halt stops the timer and drops a queued burst. The plan and state are
// kept.
func (s *BlinkScheduler) Halt() {
	if s.timer != nil {
		s.timer.Pause()
	}

	s.hasPending = false
}

// Release halts the scheduler and deletes its timer. A released scheduler
// ignores new plans.
func (s *BlinkScheduler) Release() {
	s.Halt()

	if s.timer != nil {
		s.timer.Delete()
		s.timer = nil
	}

	s.released = true
}

func (s *BlinkScheduler) stop() {
	if s.timer != nil {
		s.timer.Pause()
	}

	s.hasPending = false

	if s.state == Looping {
		s.executor.Settle(s.targets()...)
	}
}

func (s *BlinkScheduler) arm(interval timing.VTimeInMs) {
	if s.timer == nil {
		s.timer = s.timers.NewTimer(interval, s.onExpire)
	} else {
		s.timer.SetPeriod(interval)
	}

	s.timer.Resume()
}

func (s *BlinkScheduler) onExpire(*timing.Timer) {
	if s.state != Armed {
		return
	}

	s.fire()
}

func (s *BlinkScheduler) fire() {
	eyes := s.targets()
	if anyBlinking(eyes) {
		s.suppressed++
		s.listener.blinkSuppressed(s, eyes)

		return
	}

	blinked := s.executor.BlinkOnce(eyes...)
	s.fired++
	s.plan.Remaining = s.plan.Remaining.Dec()
	s.listener.blinked(s, blinked, 1, false)

	if s.plan.Remaining.IsZero() {
		s.state = Exhausted
		if s.timer != nil {
			s.timer.Pause()
		}
	}
}

func (s *BlinkScheduler) playBurst(loops int) {
	eyes := s.targets()
	if anyBlinking(eyes) {
		s.pendingLoops = loops
		s.hasPending = true

		return
	}

	s.startBurst(eyes, loops)
}

func (s *BlinkScheduler) startBurst(eyes []*Eye, loops int) {
	blinked := s.executor.Play(loops, eyes...)
	s.fired++
	s.listener.blinked(s, blinked, loops, false)
}

// onTargetIdle starts a burst that was waiting for an eyelid to finish.
func (s *BlinkScheduler) onTargetIdle() {
	if !s.hasPending || s.released {
		return
	}

	eyes := s.targets()
	if anyBlinking(eyes) {
		return
	}

	s.hasPending = false
	s.startBurst(eyes, s.pendingLoops)
}
