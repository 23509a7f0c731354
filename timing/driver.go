package timing

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/roboeyes/hooking"
)

// Driver advances the timeline one frame at a time. Everything that mutates
// layers, timers and animations runs on the goroutine calling
// ProcessPendingWork; other goroutines hand work over with RunOnRenderThread.
type Driver struct {
	*hooking.HookableBase

	clock Clock

	timeLock sync.RWMutex
	now      VTimeInMs
	horizon  VTimeInMs

	queue   *eventQueue
	tickers []Ticker

	deferredLock sync.Mutex
	deferred     []func()

	frame      atomic.Uint64
	processing bool
	isShutdown atomic.Bool
}

// NewDriver creates a driver that follows the given clock.
func NewDriver(clock Clock) *Driver {
	d := &Driver{
		HookableBase: hooking.NewHookableBase(),
		clock:        clock,
		queue:        newEventQueue(),
	}

	d.now = clock.Now()
	d.horizon = d.now

	return d
}

// Schedule registers an event to be handled when the timeline reaches its
// time. Scheduling into the past is a programming error.
func (d *Driver) Schedule(evt ScheduledEvent) {
	now := d.readNow()
	if evt.Time < now {
		panic(fmt.Sprintf(
			"timing: cannot schedule event in the past, evt %s @ %d, now %d",
			reflect.TypeOf(evt.Event), evt.Time, now,
		))
	}

	if d.isShutdown.Load() {
		return
	}

	d.queue.Push(evt)
}

// CurrentTime returns the time of the event being handled, or the time the
// last frame advanced to.
func (d *Driver) CurrentTime() VTimeInMs {
	return d.readNow()
}

// Frame returns how many frames have been processed.
func (d *Driver) Frame() uint64 {
	return d.frame.Load()
}

// PendingEvents returns the number of queued events.
func (d *Driver) PendingEvents() int {
	return d.queue.Len()
}

// RegisterTicker adds a ticker stepped every frame, in registration order.
func (d *Driver) RegisterTicker(t Ticker) {
	d.tickers = append(d.tickers, t)
}

// RunOnRenderThread queues fn to run at the start of the next frame. It is
// the only Driver method that is safe to call from any goroutine.
func (d *Driver) RunOnRenderThread(fn func()) {
	if d.isShutdown.Load() {
		return
	}

	d.deferredLock.Lock()
	d.deferred = append(d.deferred, fn)
	d.deferredLock.Unlock()
}

// ProcessPendingWork runs one frame: deferred calls, then every event due up
// to the clock's current time, then the tickers, then the events the tickers
// produced. It returns without doing anything after Shutdown or when called
// from inside a frame.
func (d *Driver) ProcessPendingWork() {
	if d.processing || d.isShutdown.Load() {
		return
	}

	d.processing = true
	defer func() { d.processing = false }()

	target := d.clock.Now()
	if now := d.readNow(); target < now {
		target = now
	}

	d.timeLock.Lock()
	d.horizon = target
	d.timeLock.Unlock()

	d.runDeferred()
	d.drain(target)
	if d.isShutdown.Load() {
		return
	}

	d.writeNow(target)
	for _, t := range d.tickers {
		t.Tick(target)
	}

	d.drain(target)
	if d.isShutdown.Load() {
		return
	}

	frame := d.frame.Add(1)
	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosFrame,
		Item:   frame,
		Detail: target,
	})
}

// Shutdown drops every queued event, ticker and deferred call. The driver
// ignores further work afterwards.
func (d *Driver) Shutdown() {
	if !d.isShutdown.CompareAndSwap(false, true) {
		return
	}

	d.queue.Clear()
	d.tickers = nil

	d.deferredLock.Lock()
	d.deferred = nil
	d.deferredLock.Unlock()
}

// IsShutdown tells whether Shutdown has been called.
func (d *Driver) IsShutdown() bool {
	return d.isShutdown.Load()
}

func (d *Driver) runDeferred() {
	d.deferredLock.Lock()
	calls := d.deferred
	d.deferred = nil
	d.deferredLock.Unlock()

	for _, fn := range calls {
		if d.isShutdown.Load() {
			return
		}

		fn()
	}
}

func (d *Driver) drain(target VTimeInMs) {
	for !d.isShutdown.Load() {
		next := d.queue.Peek()
		if next == nil || next.Time > target {
			return
		}

		d.queue.Pop()
		d.writeNow(next.Time)

		evt := &next.ScheduledEvent
		hookCtx := hooking.HookCtx{
			Domain: d,
			Pos:    HookPosBeforeEvent,
			Item:   evt,
		}
		d.InvokeHook(hookCtx)

		var err error
		if evt.Handler != nil {
			err = evt.Handler.Handle(evt.Event)
		}

		hookCtx.Pos = HookPosAfterEvent
		hookCtx.Detail = err
		d.InvokeHook(hookCtx)
	}
}

func (d *Driver) readNow() VTimeInMs {
	d.timeLock.RLock()
	t := d.now
	d.timeLock.RUnlock()

	return t
}

func (d *Driver) writeNow(t VTimeInMs) {
	d.timeLock.Lock()
	d.now = t
	d.timeLock.Unlock()
}

func (d *Driver) readHorizon() VTimeInMs {
	d.timeLock.RLock()
	t := d.horizon
	d.timeLock.RUnlock()

	return t
}
