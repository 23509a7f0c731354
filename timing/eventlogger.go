package timing

import (
	"log"
	"reflect"

	"github.com/sarchlab/roboeyes/hooking"
)

type namedHandler interface {
	Name() string
}

// EventLogger is a hook that prints every event the driver handles.
type EventLogger struct {
	*log.Logger
}

// NewEventLogger creates an EventLogger writing into logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{Logger: logger}
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosBeforeEvent:
		evt, ok := ctx.Item.(*ScheduledEvent)
		if !ok {
			return
		}

		if named, ok := evt.Handler.(namedHandler); ok {
			h.Printf("%d ms, %s -> %s",
				evt.Time, reflect.TypeOf(evt.Event), named.Name())
			return
		}

		h.Printf("%d ms, %s", evt.Time, reflect.TypeOf(evt.Event))
	case HookPosAfterEvent:
		if err, ok := ctx.Detail.(error); ok && err != nil {
			h.Printf("event handler failed: %v", err)
		}
	}
}
