package eye

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/roboeyes/anim"
	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/hooking"
	"github.com/sarchlab/roboeyes/playback"
	"github.com/sarchlab/roboeyes/timing"
)

// ErrUnknownMode is returned when parsing a mode name fails.
var ErrUnknownMode = errors.New("eye: unknown mode")

// Mode selects how blink plans are shared between the eyes.
type Mode int

const (
	// Unified drives both eyes from one plan and one timer, so the eyes
	// always blink together.
	Unified Mode = iota
	// Independent gives each eye its own plan and timer.
	Independent
)

func (m Mode) String() string {
	if m == Independent {
		return "independent"
	}

	return "unified"
}

// ParseMode converts "unified" or "independent" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unified", "sync", "":
		return Unified, nil
	case "independent":
		return Independent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Controller owns the eyes, their blink schedulers and the gaze animator.
//
// Apart from Submit, every method must be called from the goroutine that
// calls Tick.
type Controller struct {
	*hooking.HookableBase

	name     string
	driver   *timing.Driver
	animator *anim.Animator
	gaze     GazeAnimator
	executor BlinkExecutor
	mode     Mode

	eyes   [2]*Eye
	pair   *BlinkScheduler
	perEye [2]*BlinkScheduler

	lastResync  timing.VTimeInMs
	hasResynced bool
	isShutdown  bool
}

// Name returns the controller name.
func (c *Controller) Name() string {
	return c.name
}

// Mode returns the blink mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Driver returns the driver the controller runs on.
func (c *Controller) Driver() *timing.Driver {
	return c.driver
}

// Eye returns the eye with the given ID, or nil if it does not exist.
func (c *Controller) Eye(id ID) *Eye {
	if !id.valid() {
		return nil
	}

	return c.eyes[id]
}

// PairScheduler returns the shared scheduler of a unified controller.
func (c *Controller) PairScheduler() *BlinkScheduler {
	return c.pair
}

// EyeScheduler returns the scheduler of one eye of an independent
// controller.
func (c *Controller) EyeScheduler(id ID) *BlinkScheduler {
	if !id.valid() {
		return nil
	}

	return c.perEye[id]
}

// IsShutdown tells whether Shutdown has been called.
func (c *Controller) IsShutdown() bool {
	return c.isShutdown
}

// Tick runs one frame: deferred calls, due timers, animation and playback
// steps, and the completion events they produce.
func (c *Controller) Tick() {
	if c.isShutdown {
		return
	}

	c.driver.ProcessPendingWork()
}

// Submit runs fn on the render goroutine at the start of the next frame. It
// is safe to call from any goroutine.
func (c *Controller) Submit(fn func(c *Controller)) {
	c.driver.RunOnRenderThread(func() { fn(c) })
}

// Shutdown halts the timers, settles one last frame, releases the eyes and
// shuts the driver down. Calling it again does nothing.
func (c *Controller) Shutdown() {
	if c.isShutdown {
		return
	}

	schedulers := c.schedulers()
	for _, s := range schedulers {
		s.Halt()
	}

	c.isShutdown = true
	c.driver.ProcessPendingWork()

	for _, s := range schedulers {
		s.Release()
	}

	for i, e := range c.eyes {
		if e == nil {
			continue
		}

		c.releaseEye(e)
		c.eyes[i] = nil
	}

	c.pair = nil
	c.perEye = [2]*BlinkScheduler{}

	c.driver.Shutdown()
}

func (c *Controller) releaseEye(e *Eye) {
	c.gaze.Stop(e)

	if e.eyelid != nil {
		e.surface.DeleteLayer(e.eyelid)
		e.eyelid = nil
	}

	if e.eyeball != nil {
		e.surface.DeleteLayer(e.eyeball)
		e.eyeball = nil
	}

	e.isBlinking = false
}

// SetBlinkPlan replaces the blink plan. A negative count blinks forever. An
// independent controller gives both eyes the same plan.
func (c *Controller) SetBlinkPlan(interval timing.VTimeInMs, count int) {
	if c.isShutdown {
		return
	}

	n := CountFromInt(count)
	for _, s := range c.schedulers() {
		s.SetPlan(interval, n)
	}
}

// SetEyeBlinkPlan replaces the plan of one eye. It only applies to
// independent controllers and reports whether the plan was taken.
func (c *Controller) SetEyeBlinkPlan(id ID, interval timing.VTimeInMs, count int) bool {
	s := c.EyeScheduler(id)
	if c.isShutdown || s == nil {
		return false
	}

	s.SetPlan(interval, CountFromInt(count))

	return true
}

// BlinkNow blinks every eye once, outside of the plan. Eyes still blinking
// are left alone.
func (c *Controller) BlinkNow() bool {
	if c.isShutdown {
		return false
	}

	blinked := false
	for _, s := range c.schedulers() {
		if s.BlinkNow() {
			blinked = true
		}
	}

	return blinked
}

// BlinkEyeNow blinks one eye once, outside of the plan.
func (c *Controller) BlinkEyeNow(id ID) bool {
	if c.isShutdown {
		return false
	}

	if s := c.EyeScheduler(id); s != nil {
		return s.BlinkNow()
	}

	e := c.Eye(id)
	if e == nil {
		c.missing("blink", id)
		return false
	}

	eyes := []*Eye{e}
	if anyBlinking(eyes) {
		c.blinkSuppressed(c.pair, eyes)
		return false
	}

	blinked := c.executor.BlinkOnce(e)
	if len(blinked) == 0 {
		return false
	}

	c.blinked(c.pair, blinked, 1, true)

	return true
}

// LookAt moves the gaze of one eye towards (tx, ty), clamped to the eye's
// offset bound.
func (c *Controller) LookAt(id ID, tx, ty int) {
	if c.isShutdown {
		return
	}

	e := c.Eye(id)
	if e == nil {
		c.missing("look_at", id)
		return
	}

	fromX, fromY := e.Offset()
	x, y := c.gaze.LookAt(e, tx, ty)

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosGaze,
		Item: GazeRecord{
			Eye:      id,
			RequestX: tx,
			RequestY: ty,
			FromX:    fromX,
			FromY:    fromY,
			ToX:      x,
			ToY:      y,
			Time:     c.driver.CurrentTime(),
		},
	})
}

// SwitchMaterial replaces the assets of one eye. An empty path keeps the
// current asset. The gaze is reset to the center and the offset bound
// replaced. Assets that fail to load are reported in the returned error and
// leave their layer unchanged; the rest of the switch still happens.
func (c *Controller) SwitchMaterial(
	id ID,
	eyeball, eyelid string,
	maxOffset int,
) error {
	if c.isShutdown {
		return nil
	}

	e := c.Eye(id)
	if e == nil {
		c.missing("switch_material", id)
		return nil
	}

	c.gaze.Stop(e)
	if e.eyeball != nil {
		e.eyeball.SetTranslateX(0)
		e.eyeball.SetTranslateY(0)
	}

	var errs []error
	eyeballChanged := false

	if eyeball != "" && e.eyeball != nil {
		if err := c.loadSource(e.eyeball, eyeball); err != nil {
			errs = append(errs, err)
		} else {
			eyeballChanged = true
		}
	}

	if eyelid != "" && e.eyelid != nil {
		if err := c.loadSource(e.eyelid, eyelid); err != nil {
			errs = append(errs, err)
		}
	}

	if maxOffset < 0 {
		maxOffset = 0
	}
	e.maxOffset = maxOffset

	c.LookAt(id, 0, 0)

	if eyeballChanged {
		c.restartEyeballs()
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosMaterialSwitched,
		Item: MaterialRecord{
			Eye:       id,
			Eyeball:   eyeball,
			Eyelid:    eyelid,
			MaxOffset: maxOffset,
			Time:      c.driver.CurrentTime(),
		},
	})

	return errors.Join(errs...)
}

// Handle receives the cycle-complete events of the eye layers.
func (c *Controller) Handle(event any) error {
	switch e := event.(type) {
	case *playback.CycleCompleteEvent:
		c.handleCycleComplete(e)
	default:
		return fmt.Errorf("eye: cannot handle event of type %T", event)
	}

	return nil
}

func (c *Controller) handleCycleComplete(evt *playback.CycleCompleteEvent) {
	tag, ok := evt.Tag.(layerTag)
	if !ok {
		return
	}

	e := c.Eye(tag.id)
	if e == nil {
		return
	}

	switch tag.role {
	case roleEyelid:
		if evt.Done {
			c.finishBlink(e)
		}
	case roleEyeball:
		c.resync()
	}
}

func (c *Controller) finishBlink(e *Eye) {
	e.isBlinking = false

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosBlinkDone,
		Item:   DoneRecord{Eye: e.id, Time: c.driver.CurrentTime()},
	})

	for _, s := range c.schedulers() {
		s.onTargetIdle()
	}
}

// resync restarts both eyeballs when either finishes a loop, at most once
// per driver time.
func (c *Controller) resync() {
	now := c.driver.CurrentTime()
	if c.hasResynced && c.lastResync == now {
		return
	}

	c.restartEyeballs()
}

func (c *Controller) restartEyeballs() {
	c.hasResynced = true
	c.lastResync = c.driver.CurrentTime()

	for _, e := range c.eyes {
		if e != nil && e.eyeball != nil {
			e.eyeball.Restart()
		}
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosResync,
		Item:   c.lastResync,
	})
}

func (c *Controller) schedulers() []*BlinkScheduler {
	list := make([]*BlinkScheduler, 0, 2)

	if c.pair != nil {
		list = append(list, c.pair)
	}

	for _, s := range c.perEye {
		if s != nil {
			list = append(list, s)
		}
	}

	return list
}

func (c *Controller) pairTargets() []*Eye {
	return []*Eye{c.eyes[Left], c.eyes[Right]}
}

func (c *Controller) eyeTargets(id ID) func() []*Eye {
	return func() []*Eye {
		return []*Eye{c.eyes[id]}
	}
}

func (c *Controller) loadSource(layer display.Layer, path string) error {
	err := layer.SetSource(path)
	if err == nil {
		layer.Center()
		return nil
	}

	err = fmt.Errorf("%s: %w", layer.Name(), err)
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosAssetError,
		Item:   layer.Name(),
		Detail: err,
	})

	return err
}

func (c *Controller) missing(op string, id ID) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosMissingEye,
		Item:   MissingRecord{Op: op, Eye: id},
	})
}

func (c *Controller) blinked(
	s *BlinkScheduler,
	eyes []*Eye,
	loops int,
	manual bool,
) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosBlink,
		Item:   c.blinkRecord(s, eyes, loops, manual),
	})
}

func (c *Controller) blinkSuppressed(s *BlinkScheduler, eyes []*Eye) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosBlinkSuppressed,
		Item:   c.blinkRecord(s, eyes, 1, false),
	})
}

func (c *Controller) planChanged(s *BlinkScheduler) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosPlanChanged,
		Item: PlanRecord{
			Scheduler: s.name,
			Plan:      s.plan,
			State:     s.state,
			Time:      c.driver.CurrentTime(),
		},
	})
}

func (c *Controller) blinkRecord(
	s *BlinkScheduler,
	eyes []*Eye,
	loops int,
	manual bool,
) BlinkRecord {
	r := BlinkRecord{
		Loops:  loops,
		Manual: manual,
		Time:   c.driver.CurrentTime(),
	}

	if s != nil {
		r.Scheduler = s.name
	} else {
		r.Scheduler = "manual"
	}

	for _, e := range eyes {
		if e != nil {
			r.Eyes = append(r.Eyes, e.id)
		}
	}

	return r
}
