// Package anim provides time-bounded eased animations of integer values,
// stepped once per frame by the timing driver.
package anim

import (
	"math"

	"github.com/sarchlab/roboeyes/timing"
)

// Driver is the part of the timing driver the Animator needs.
type Driver interface {
	timing.TimeTeller
	RegisterTicker(t timing.Ticker)
}

// Anim describes one animation of an integer value.
type Anim struct {
	// Var and Key identify what is animated. Starting an animation with the
	// same Var and Key as a running one replaces the running one.
	Var any
	Key string

	From, To int
	Duration timing.VTimeInMs

	// Path defaults to Linear.
	Path EasingFunc

	// OnStep receives every new value, including the start and end values.
	OnStep func(value int)

	// OnComplete runs after the end value is applied. It is not called for
	// animations that are replaced or deleted.
	OnComplete func()
}

type running struct {
	Anim
	start   timing.VTimeInMs
	value   int
	removed bool
}

// Animator steps running animations every frame.
type Animator struct {
	driver  Driver
	running []*running
}

// NewAnimator creates an Animator and registers it with the driver.
func NewAnimator(driver Driver) *Animator {
	a := &Animator{driver: driver}
	driver.RegisterTicker(a)

	return a
}

// Start begins an animation. The start value is applied immediately.
func (a *Animator) Start(anim Anim) {
	if anim.Path == nil {
		anim.Path = Linear
	}

	a.Delete(anim.Var, anim.Key)

	if anim.Duration == 0 {
		a.apply(anim, anim.To)
		if anim.OnComplete != nil {
			anim.OnComplete()
		}

		return
	}

	r := &running{
		Anim:  anim,
		start: a.driver.CurrentTime(),
		value: anim.From,
	}
	a.running = append(a.running, r)
	a.apply(anim, anim.From)
}

// Delete stops the animation of var and key. It returns false if no such
// animation is running.
func (a *Animator) Delete(v any, key string) bool {
	for i, r := range a.running {
		if r.Var == v && r.Key == key {
			r.removed = true
			a.running = append(a.running[:i], a.running[i+1:]...)

			return true
		}
	}

	return false
}

// DeleteVar stops every animation of var and returns how many were stopped.
func (a *Animator) DeleteVar(v any) int {
	kept := a.running[:0]
	removed := 0

	for _, r := range a.running {
		if r.Var == v {
			r.removed = true
			removed++

			continue
		}

		kept = append(kept, r)
	}

	for i := len(kept); i < len(a.running); i++ {
		a.running[i] = nil
	}
	a.running = kept

	return removed
}

// Running tells whether an animation of var and key is in flight.
func (a *Animator) Running(v any, key string) bool {
	for _, r := range a.running {
		if r.Var == v && r.Key == key {
			return true
		}
	}

	return false
}

// Value returns the last value applied by the running animation of var and
// key.
func (a *Animator) Value(v any, key string) (int, bool) {
	for _, r := range a.running {
		if r.Var == v && r.Key == key {
			return r.value, true
		}
	}

	return 0, false
}

// Count returns the number of running animations.
func (a *Animator) Count() int {
	return len(a.running)
}

// Tick advances every running animation to now.
func (a *Animator) Tick(now timing.VTimeInMs) bool {
	if len(a.running) == 0 {
		return false
	}

	snapshot := make([]*running, len(a.running))
	copy(snapshot, a.running)

	progress := false
	for _, r := range snapshot {
		if r.removed {
			continue
		}

		if a.step(r, now) {
			progress = true
		}
	}

	return progress
}

func (a *Animator) step(r *running, now timing.VTimeInMs) bool {
	elapsed := now - r.start
	if now < r.start {
		elapsed = 0
	}

	if elapsed >= r.Duration {
		a.Delete(r.Var, r.Key)
		r.value = r.To
		a.apply(r.Anim, r.To)

		if r.OnComplete != nil {
			r.OnComplete()
		}

		return true
	}

	t := float64(elapsed) / float64(r.Duration)
	value := r.From + int(math.Round(float64(r.To-r.From)*r.Path(t)))

	if value == r.value {
		return false
	}

	r.value = value
	a.apply(r.Anim, value)

	return true
}

func (a *Animator) apply(anim Anim, value int) {
	if anim.OnStep != nil {
		anim.OnStep(value)
	}
}
