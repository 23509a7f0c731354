package eye

import (
	"github.com/sarchlab/roboeyes/anim"
	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/hooking"
	"github.com/sarchlab/roboeyes/playback"
	"github.com/sarchlab/roboeyes/timing"
)

// Default values used by MakeBuilder.
const (
	DefaultMaxOffset    = 28
	DefaultGazeDuration = timing.VTimeInMs(180)
)

// Builder builds Controllers.
type Builder struct {
	driver       *timing.Driver
	animator     *anim.Animator
	surfaces     [2]display.Surface
	assets       [2]AssetPaths
	maxOffset    int
	mode         Mode
	gazeDuration timing.VTimeInMs
	gazeEasing   anim.EasingFunc
	hooks        []hooking.Hook
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		maxOffset:    DefaultMaxOffset,
		mode:         Unified,
		gazeDuration: DefaultGazeDuration,
		gazeEasing:   anim.EaseOut,
	}
}

// WithDriver sets the driver the controller runs on.
func (b Builder) WithDriver(d *timing.Driver) Builder {
	b.driver = d
	return b
}

// WithAnimator sets the animator used for gaze animations. By default a new
// animator is registered with the driver.
func (b Builder) WithAnimator(a *anim.Animator) Builder {
	b.animator = a
	return b
}

// WithSurface sets the display of one eye. Eyes without a surface are not
// created.
func (b Builder) WithSurface(id ID, s display.Surface) Builder {
	b.surfaces[id] = s
	return b
}

// WithAssets sets the assets one eye starts with.
func (b Builder) WithAssets(id ID, paths AssetPaths) Builder {
	b.assets[id] = paths
	return b
}

// WithMaxOffset sets the gaze clamp bound shared by both eyes.
func (b Builder) WithMaxOffset(px int) Builder {
	b.maxOffset = px
	return b
}

// WithMode sets the blink mode.
func (b Builder) WithMode(m Mode) Builder {
	b.mode = m
	return b
}

// WithGazeDuration sets how long a gaze animation takes.
func (b Builder) WithGazeDuration(d timing.VTimeInMs) Builder {
	b.gazeDuration = d
	return b
}

// WithGazeEasing sets the easing of gaze animations.
func (b Builder) WithGazeEasing(f anim.EasingFunc) Builder {
	b.gazeEasing = f
	return b
}

// WithHook registers a hook before the eyes are created, so that it also
// sees problems loading the initial assets.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.driver == nil {
		panic("eye: driver is not set")
	}

	if b.maxOffset < 0 {
		panic("eye: max offset cannot be negative")
	}

	if b.gazeEasing == nil {
		panic("eye: gaze easing is not set")
	}

	if b.mode != Unified && b.mode != Independent {
		panic("eye: unknown mode")
	}

	for _, id := range IDs {
		if b.surfaces[id] == nil && b.assets[id] != (AssetPaths{}) {
			panic("eye: assets set for the " + id.String() +
				" eye, but it has no surface")
		}
	}
}

// Build creates the controller with blinking disabled.
func (b Builder) Build(name string) *Controller {
	b.parametersMustBeValid()

	animator := b.animator
	if animator == nil {
		animator = anim.NewAnimator(b.driver)
	}

	c := &Controller{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		driver:       b.driver,
		animator:     animator,
		gaze:         NewGazeAnimator(animator, b.gazeDuration, b.gazeEasing),
		mode:         b.mode,
	}

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	for _, id := range IDs {
		if b.surfaces[id] == nil {
			continue
		}

		c.eyes[id] = c.createEye(id, b.surfaces[id], b.assets[id], b.maxOffset)
	}

	switch b.mode {
	case Unified:
		c.pair = newBlinkScheduler("pair", b.driver, c.pairTargets, c)
	case Independent:
		for _, id := range IDs {
			c.perEye[id] = newBlinkScheduler(
				id.String(), b.driver, c.eyeTargets(id), c)
		}
	}

	return c
}

func (c *Controller) createEye(
	id ID,
	surface display.Surface,
	assets AssetPaths,
	maxOffset int,
) *Eye {
	e := &Eye{
		id:        id,
		surface:   surface,
		maxOffset: maxOffset,
	}

	e.eyeball = surface.CreateLayer("eyeball")
	if assets.Eyeball != "" {
		_ = c.loadSource(e.eyeball, assets.Eyeball)
	}
	e.eyeball.Center()
	e.eyeball.SetLoopCount(playback.LoopForever)
	e.eyeball.OnCycleComplete(c, layerTag{id: id, role: roleEyeball})
	e.eyeball.Restart()

	e.eyelid = surface.CreateLayer("eyelid")
	if assets.Eyelid != "" {
		_ = c.loadSource(e.eyelid, assets.Eyelid)
	}
	e.eyelid.Center()
	e.eyelid.SetLoopCount(1)
	e.eyelid.OnCycleComplete(c, layerTag{id: id, role: roleEyelid})
	e.eyelid.Pause()

	return e
}
