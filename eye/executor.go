package eye

// BlinkExecutor plays blinks on eyelid layers.
//
// Blinking several eyes is a two-step protocol. Every eyelid is prepared
// (rewound, paused, loop count set) before any of them is committed
// (resumed), so that all of them start their cycle on the same frame.
type BlinkExecutor struct{}

// BlinkOnce plays one eyelid cycle on each eye. Missing eyes, eyes without
// an eyelid and eyelids whose asset never loaded are skipped. It returns the eyes that blink.
func (x BlinkExecutor) BlinkOnce(eyes ...*Eye) []*Eye {
	return x.Play(1, eyes...)
}

// Play plays loops eyelid cycles back to back on each eye, or loops forever
// when loops is playback.LoopForever.
func (x BlinkExecutor) Play(loops int, eyes ...*Eye) []*Eye {
	ready := make([]*Eye, 0, len(eyes))
	for _, e := range eyes {
		if x.prepare(e, loops) {
			ready = append(ready, e)
		}
	}

	for _, e := range ready {
		x.commit(e)
	}

	return ready
}

// Settle stops the eyelids on their first frame and clears the blink flags.
func (x BlinkExecutor) Settle(eyes ...*Eye) {
	for _, e := range eyes {
		if e == nil || e.eyelid == nil {
			continue
		}

		e.eyelid.Restart()
		e.eyelid.Pause()
		e.eyelid.SetLoopCount(1)
		e.isBlinking = false
	}
}

func (BlinkExecutor) prepare(e *Eye, loops int) bool {
	if e == nil || e.eyelid == nil || e.eyelid.Source() == "" {
		return false
	}

	e.eyelid.Restart()
	e.eyelid.Pause()
	e.eyelid.SetLoopCount(loops)
	e.isBlinking = true

	return true
}

func (BlinkExecutor) commit(e *Eye) {
	e.eyelid.Resume()
}

func anyBlinking(eyes []*Eye) bool {
	for _, e := range eyes {
		if e != nil && e.isBlinking {
			return true
		}
	}

	return false
}
