package timing

import "github.com/sarchlab/roboeyes/hooking"

// HookPosBeforeEvent fires before an event is handled. Item is the
// *ScheduledEvent.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent fires after an event is handled. Item is the
// *ScheduledEvent, Detail is the error returned by the handler, if any.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// HookPosFrame fires once at the end of every ProcessPendingWork, after all
// due events and tickers ran. Item is the frame number.
var HookPosFrame = &hooking.HookPos{Name: "Frame"}
