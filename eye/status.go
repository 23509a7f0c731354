package eye

import "github.com/sarchlab/roboeyes/timing"

// SchedulerStatus is a copy of a scheduler's state.
type SchedulerStatus struct {
	Name       string           `json:"name"`
	State      string           `json:"state"`
	Interval   timing.VTimeInMs `json:"interval_ms"`
	Remaining  int              `json:"remaining"`
	Fired      uint64           `json:"fired"`
	Suppressed uint64           `json:"suppressed"`
}

// EyeStatus is a copy of an eye's state.
type EyeStatus struct {
	ID        string           `json:"id"`
	X         int              `json:"x"`
	Y         int              `json:"y"`
	MaxOffset int              `json:"max_offset"`
	Blinking  bool             `json:"blinking"`
	Moving    bool             `json:"moving"`
	Eyeball   string           `json:"eyeball"`
	Eyelid    string           `json:"eyelid"`
	Scheduler *SchedulerStatus `json:"scheduler,omitempty"`
}

// Status is a copy of the controller state.
type Status struct {
	Name  string           `json:"name"`
	Mode  string           `json:"mode"`
	Time  timing.VTimeInMs `json:"time_ms"`
	Frame uint64           `json:"frame"`
	Pair  *SchedulerStatus `json:"pair,omitempty"`
	Eyes  []EyeStatus      `json:"eyes"`
}

// Status copies the controller state. Call it from the render goroutine, for
// example through Submit.
func (c *Controller) Status() Status {
	st := Status{
		Name:  c.name,
		Mode:  c.mode.String(),
		Time:  c.driver.CurrentTime(),
		Frame: c.driver.Frame(),
		Pair:  schedulerStatus(c.pair),
		Eyes:  make([]EyeStatus, 0, len(c.eyes)),
	}

	for _, e := range c.eyes {
		if e == nil {
			continue
		}

		es := EyeStatus{
			ID:        e.id.String(),
			MaxOffset: e.maxOffset,
			Blinking:  e.isBlinking,
			Moving:    c.gaze.Moving(e),
			Scheduler: schedulerStatus(c.perEye[e.id]),
		}
		es.X, es.Y = e.Offset()

		if e.eyeball != nil {
			es.Eyeball = e.eyeball.Source()
		}

		if e.eyelid != nil {
			es.Eyelid = e.eyelid.Source()
		}

		st.Eyes = append(st.Eyes, es)
	}

	return st
}

func schedulerStatus(s *BlinkScheduler) *SchedulerStatus {
	if s == nil {
		return nil
	}

	return &SchedulerStatus{
		Name:       s.name,
		State:      s.state.String(),
		Interval:   s.plan.Interval,
		Remaining:  s.plan.Remaining.Int(),
		Fired:      s.fired,
		Suppressed: s.suppressed,
	}
}
