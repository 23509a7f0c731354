package eye

import (
	"log"

	"github.com/sarchlab/roboeyes/hooking"
	"github.com/sarchlab/roboeyes/timing"
)

// Hook positions raised by the Controller.
var (
	// HookPosBlink is raised when a blink or a burst starts. Item is a
	// BlinkRecord.
	HookPosBlink = &hooking.HookPos{Name: "Blink"}

	// HookPosBlinkSuppressed is raised when a blink is dropped because an
	// eyelid is still playing. Item is a BlinkRecord.
	HookPosBlinkSuppressed = &hooking.HookPos{Name: "BlinkSuppressed"}

	// HookPosBlinkDone is raised when an eyelid finishes its last cycle.
	// Item is a DoneRecord.
	HookPosBlinkDone = &hooking.HookPos{Name: "BlinkDone"}

	// HookPosGaze is raised when a gaze animation starts. Item is a
	// GazeRecord.
	HookPosGaze = &hooking.HookPos{Name: "Gaze"}

	// HookPosPlanChanged is raised after a scheduler takes a new plan. Item
	// is a PlanRecord.
	HookPosPlanChanged = &hooking.HookPos{Name: "PlanChanged"}

	// HookPosMaterialSwitched is raised after an eye switches assets. Item
	// is a MaterialRecord.
	HookPosMaterialSwitched = &hooking.HookPos{Name: "MaterialSwitched"}

	// HookPosResync is raised when the eyeballs are restarted together.
	// Item is the driver time.
	HookPosResync = &hooking.HookPos{Name: "Resync"}

	// HookPosAssetError is raised when a layer cannot load an asset. Item is
	// the layer name and Detail the error.
	HookPosAssetError = &hooking.HookPos{Name: "AssetError"}

	// HookPosMissingEye is raised when an operation addresses an eye that
	// does not exist. Item is a MissingRecord.
	HookPosMissingEye = &hooking.HookPos{Name: "MissingEye"}
)

// BlinkRecord describes a blink that started or was suppressed.
type BlinkRecord struct {
	Scheduler string
	Eyes      []ID
	Loops     int
	Manual    bool
	Time      timing.VTimeInMs
}

// DoneRecord describes an eyelid that finished playing.
type DoneRecord struct {
	Eye  ID
	Time timing.VTimeInMs
}

// GazeRecord describes a gaze animation.
type GazeRecord struct {
	Eye                ID
	RequestX, RequestY int
	FromX, FromY       int
	ToX, ToY           int
	Time               timing.VTimeInMs
}

// PlanRecord describes a new blink plan.
type PlanRecord struct {
	Scheduler string
	Plan      BlinkPlan
	State     SchedulerState
	Time      timing.VTimeInMs
}

// MaterialRecord describes an asset switch.
type MaterialRecord struct {
	Eye       ID
	Eyeball   string
	Eyelid    string
	MaxOffset int
	Time      timing.VTimeInMs
}

// MissingRecord names an operation that found no eye.
type MissingRecord struct {
	Op  string
	Eye ID
}

// LogHook prints what the controller does.
type LogHook struct {
	*log.Logger

	// Verbose also prints suppressed blinks, resyncs and missing eyes.
	Verbose bool
}

// NewLogHook creates a LogHook writing into logger.
func NewLogHook(logger *log.Logger) *LogHook {
	return &LogHook{Logger: logger}
}

// Func prints the hook context.
func (h *LogHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosBlink:
		r := ctx.Item.(BlinkRecord)
		h.Printf("%d ms, %s blink %v, loops %d, manual %t",
			r.Time, r.Scheduler, r.Eyes, r.Loops, r.Manual)
	case HookPosBlinkDone:
		r := ctx.Item.(DoneRecord)
		h.Printf("%d ms, %s eyelid done", r.Time, r.Eye)
	case HookPosGaze:
		r := ctx.Item.(GazeRecord)
		h.Printf("%d ms, %s look at (%d, %d) -> (%d, %d)",
			r.Time, r.Eye, r.RequestX, r.RequestY, r.ToX, r.ToY)
	case HookPosPlanChanged:
		r := ctx.Item.(PlanRecord)
		h.Printf("%d ms, %s plan %s, %s", r.Time, r.Scheduler, r.Plan, r.State)
	case HookPosMaterialSwitched:
		r := ctx.Item.(MaterialRecord)
		h.Printf("%d ms, %s material %q %q, max offset %d",
			r.Time, r.Eye, r.Eyeball, r.Eyelid, r.MaxOffset)
	case HookPosAssetError:
		h.Printf("%s: %v", ctx.Item, ctx.Detail)
	default:
		h.verbose(ctx)
	}
}

func (h *LogHook) verbose(ctx hooking.HookCtx) {
	if !h.Verbose {
		return
	}

	switch ctx.Pos {
	case HookPosBlinkSuppressed:
		r := ctx.Item.(BlinkRecord)
		h.Printf("%d ms, %s blink suppressed %v", r.Time, r.Scheduler, r.Eyes)
	case HookPosResync:
		h.Printf("%d ms, eyeballs resynchronized", ctx.Item)
	case HookPosMissingEye:
		r := ctx.Item.(MissingRecord)
		h.Printf("%s: no %s eye", r.Op, r.Eye)
	}
}
