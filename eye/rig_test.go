package eye

import (
	. "github.com/onsi/gomega"

	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/hooking"
	"github.com/sarchlab/roboeyes/playback"
	"github.com/sarchlab/roboeyes/timing"
)

type hookRecorder struct {
	blinks      []BlinkRecord
	suppressed  []BlinkRecord
	done        []DoneRecord
	gazes       []GazeRecord
	plans       []PlanRecord
	materials   []MaterialRecord
	missing     []MissingRecord
	assetErrors []error
	resyncs     []timing.VTimeInMs
}

func (r *hookRecorder) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosBlink:
		r.blinks = append(r.blinks, ctx.Item.(BlinkRecord))
	case HookPosBlinkSuppressed:
		r.suppressed = append(r.suppressed, ctx.Item.(BlinkRecord))
	case HookPosBlinkDone:
		r.done = append(r.done, ctx.Item.(DoneRecord))
	case HookPosGaze:
		r.gazes = append(r.gazes, ctx.Item.(GazeRecord))
	case HookPosPlanChanged:
		r.plans = append(r.plans, ctx.Item.(PlanRecord))
	case HookPosMaterialSwitched:
		r.materials = append(r.materials, ctx.Item.(MaterialRecord))
	case HookPosMissingEye:
		r.missing = append(r.missing, ctx.Item.(MissingRecord))
	case HookPosAssetError:
		r.assetErrors = append(r.assetErrors, ctx.Detail.(error))
	case HookPosResync:
		r.resyncs = append(r.resyncs, ctx.Item.(timing.VTimeInMs))
	}
}

func (r *hookRecorder) blinkTimes() []timing.VTimeInMs {
	times := make([]timing.VTimeInMs, 0, len(r.blinks))
	for _, b := range r.blinks {
		times = append(times, b.Time)
	}

	return times
}

// rig wires a controller to two in-memory screens driven by a manual clock.
type rig struct {
	clock   *timing.ManualClock
	driver  *timing.Driver
	catalog *playback.Catalog
	screens [2]*display.Screen
	ctrl    *Controller
	hooks   *hookRecorder
}

const frameSlice = timing.VTimeInMs(8)

func newCatalog() *playback.Catalog {
	catalog := playback.NewCatalog()

	for _, a := range []playback.Asset{
		{Path: "ball.gif", Frames: 10, FrameMs: 20},
		{Path: "lid.gif", Frames: 6, FrameMs: 30},
		{Path: "ball2.gif", Frames: 8, FrameMs: 25},
		{Path: "lid2.gif", Frames: 4, FrameMs: 40},
	} {
		Expect(catalog.Add(a)).To(Succeed())
	}

	return catalog
}

var defaultAssets = AssetPaths{Eyeball: "ball.gif", Eyelid: "lid.gif"}

func newRig(mode Mode, eyes ...ID) *rig {
	return newRigWithAssets(mode, map[ID]AssetPaths{}, eyes...)
}

// newRigWithAssets is newRig with per-eye assets. Eyes not in assets use
// defaultAssets.
func newRigWithAssets(mode Mode, assets map[ID]AssetPaths, eyes ...ID) *rig {
	if len(eyes) == 0 {
		eyes = IDs
	}

	r := &rig{
		clock:   timing.NewManualClock(0),
		catalog: newCatalog(),
		hooks:   &hookRecorder{},
	}
	r.driver = timing.NewDriver(r.clock)

	b := MakeBuilder().
		WithDriver(r.driver).
		WithMode(mode).
		WithHook(r.hooks)

	for _, id := range eyes {
		r.screens[id] = display.NewScreen(
			id.String(), 240, display.Rotation90, r.driver, r.catalog)
		paths, ok := assets[id]
		if !ok {
			paths = defaultAssets
		}

		b = b.WithSurface(id, r.screens[id]).WithAssets(id, paths)
	}

	r.ctrl = b.Build("eyes")

	return r
}

// runTo ticks the controller every frame slice until the clock reaches t.
func (r *rig) runTo(t timing.VTimeInMs) {
	for r.clock.Now() < t {
		step := frameSlice
		if left := t - r.clock.Now(); left < step {
			step = left
		}

		r.clock.Advance(step)
		r.ctrl.Tick()
	}
}

func (r *rig) eye(id ID) *Eye {
	return r.ctrl.Eye(id)
}
