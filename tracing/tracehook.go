package tracing

import (
	"fmt"
	"strings"

	"github.com/sarchlab/roboeyes/eye"
	"github.com/sarchlab/roboeyes/hooking"
	"github.com/sarchlab/roboeyes/timing"
)

// CollectTrace lets the tracer record what the controller does.
func CollectTrace(domain hooking.Hookable, t *Tracer) {
	domain.AcceptHook(t)
}

func recordFromHook(ctx hooking.HookCtx) (Record, bool) {
	switch ctx.Pos {
	case eye.HookPosBlink:
		return blinkRecord(KindBlink, ctx.Item.(eye.BlinkRecord)), true
	case eye.HookPosBlinkSuppressed:
		return blinkRecord(KindBlinkSuppressed, ctx.Item.(eye.BlinkRecord)), true
	case eye.HookPosBlinkDone:
		d := ctx.Item.(eye.DoneRecord)
		return Record{
			Kind:   KindBlinkDone,
			Source: d.Eye.String(),
			Eyes:   d.Eye.String(),
			Time:   d.Time,
		}, true
	case eye.HookPosGaze:
		g := ctx.Item.(eye.GazeRecord)
		return Record{
			Kind:   KindGaze,
			Source: g.Eye.String(),
			Eyes:   g.Eye.String(),
			Detail: fmt.Sprintf("request=(%d,%d) from=(%d,%d) to=(%d,%d)",
				g.RequestX, g.RequestY, g.FromX, g.FromY, g.ToX, g.ToY),
			Time: g.Time,
		}, true
	case eye.HookPosPlanChanged:
		p := ctx.Item.(eye.PlanRecord)
		return Record{
			Kind:   KindPlan,
			Source: p.Scheduler,
			Detail: fmt.Sprintf("interval=%d count=%d state=%s",
				p.Plan.Interval, p.Plan.Remaining.Int(), p.State),
			Time: p.Time,
		}, true
	case eye.HookPosMaterialSwitched:
		m := ctx.Item.(eye.MaterialRecord)
		return Record{
			Kind:   KindMaterial,
			Source: m.Eye.String(),
			Eyes:   m.Eye.String(),
			Detail: fmt.Sprintf("eyeball=%q eyelid=%q max_offset=%d",
				m.Eyeball, m.Eyelid, m.MaxOffset),
			Time: m.Time,
		}, true
	case eye.HookPosResync:
		return Record{
			Kind: KindResync,
			Time: ctx.Item.(timing.VTimeInMs),
		}, true
	case eye.HookPosAssetError:
		return Record{
			Kind:   KindAssetError,
			Source: fmt.Sprint(ctx.Item),
			Detail: fmt.Sprint(ctx.Detail),
		}, true
	}

	return Record{}, false
}

func blinkRecord(kind string, b eye.BlinkRecord) Record {
	names := make([]string, 0, len(b.Eyes))
	for _, id := range b.Eyes {
		names = append(names, id.String())
	}

	return Record{
		Kind:   kind,
		Source: b.Scheduler,
		Eyes:   strings.Join(names, ","),
		Detail: fmt.Sprintf("loops=%d manual=%t", b.Loops, b.Manual),
		Time:   b.Time,
	}
}
