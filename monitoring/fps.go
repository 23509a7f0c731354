package monitoring

import (
	"log"
	"sync"

	"github.com/sarchlab/roboeyes/hooking"
	"github.com/sarchlab/roboeyes/timing"
)

// FPSMeter counts driver frames and reports the frame rate once per window.
type FPSMeter struct {
	*log.Logger

	mu          sync.Mutex
	window      timing.VTimeInMs
	windowStart timing.VTimeInMs
	started     bool
	frames      uint64
	fps         float64
}

// NewFPSMeter creates a meter that logs into logger every second of driver
// time. A nil logger only records the rate.
func NewFPSMeter(logger *log.Logger) *FPSMeter {
	return &FPSMeter{
		Logger: logger,
		window: 1000,
	}
}

// Func counts a frame.
func (m *FPSMeter) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosFrame {
		return
	}

	now := ctx.Detail.(timing.VTimeInMs)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		m.started = true
		m.windowStart = now

		return
	}

	m.frames++

	elapsed := now - m.windowStart
	if elapsed < m.window {
		return
	}

	m.fps = float64(m.frames) * 1000 / float64(elapsed)
	m.frames = 0
	m.windowStart = now

	if m.Logger != nil {
		m.Printf("fps: %.1f", m.fps)
	}
}

// FPS returns the rate measured over the last complete window.
func (m *FPSMeter) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.fps
}
