package tracing

import "github.com/sarchlab/roboeyes/timing"

// Record kinds.
const (
	KindBlink           = "blink"
	KindBlinkSuppressed = "blink_suppressed"
	KindBlinkDone       = "blink_done"
	KindGaze            = "gaze"
	KindPlan            = "plan"
	KindMaterial        = "material"
	KindResync          = "resync"
	KindAssetError      = "asset_error"
)

// Record is one traced controller action.
type Record struct {
	ID      string
	Session string
	Kind    string
	Source  string
	Eyes    string
	Detail  string
	Time    timing.VTimeInMs
}
