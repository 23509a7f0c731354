package timing

import "fmt"

// Timer fires its callback every period while running. A timer starts
// paused; Resume arms it one period from the current time.
//
// When frames arrive late and several periods were missed, the timer fires
// once and re-arms on the next period boundary after the frame time. A period
// that runs past the end of the timeline parks the timer at EndOfTime.
type Timer struct {
	driver   *Driver
	callback func(*Timer)
	period   VTimeInMs

	paused     bool
	deleted    bool
	generation uint64

	// UserData is free for the owner of the timer.
	UserData any
}

type timerExpiry struct {
	generation uint64
}

// NewTimer creates a paused repeating timer.
func (d *Driver) NewTimer(period VTimeInMs, callback func(*Timer)) *Timer {
	periodMustBeValid(period)

	return &Timer{
		driver:   d,
		callback: callback,
		period:   period,
		paused:   true,
	}
}

func periodMustBeValid(period VTimeInMs) {
	if period == 0 {
		panic("timing: timer period cannot be 0")
	}
}

// Period returns the timer period.
func (t *Timer) Period() VTimeInMs {
	return t.period
}

// SetPeriod changes the period. A running timer is re-armed one new period
// from now.
func (t *Timer) SetPeriod(period VTimeInMs) {
	periodMustBeValid(period)

	t.period = period
	if !t.paused && !t.deleted {
		t.arm(t.driver.CurrentTime().Add(period))
	}
}

// Resume starts a paused timer. The first expiry is one period from now.
func (t *Timer) Resume() {
	if t.deleted || !t.paused {
		return
	}

	t.paused = false
	t.arm(t.driver.CurrentTime().Add(t.period))
}

// Pause stops the timer. Expiries already queued are discarded.
func (t *Timer) Pause() {
	if t.paused {
		return
	}

	t.paused = true
	t.generation++
}

// Delete stops the timer for good.
func (t *Timer) Delete() {
	t.Pause()
	t.deleted = true
	t.callback = nil
}

// IsPaused tells whether the timer is paused or deleted.
func (t *Timer) IsPaused() bool {
	return t.paused
}

// IsDeleted tells whether the timer was deleted.
func (t *Timer) IsDeleted() bool {
	return t.deleted
}

func (t *Timer) arm(at VTimeInMs) {
	t.generation++
	t.driver.Schedule(ScheduledEvent{
		Event:   timerExpiry{generation: t.generation},
		Time:    at,
		Handler: t,
	})
}

// Handle processes the timer's own expiry events.
func (t *Timer) Handle(event any) error {
	exp, ok := event.(timerExpiry)
	if !ok {
		return fmt.Errorf("timing: timer cannot handle %T", event)
	}

	if t.paused || t.deleted || exp.generation != t.generation {
		return nil
	}

	next := t.driver.CurrentTime().Add(t.period)
	horizon := t.driver.readHorizon()
	for next <= horizon && next != EndOfTime {
		next = next.Add(t.period)
	}

	t.arm(next)
	t.callback(t)

	return nil
}
