package timing

// Handler processes events. Events are plain data; handlers type-switch on
// them:
//
//	func (c *Comp) Handle(event any) error {
//	    switch e := event.(type) {
//	    case *playback.CycleCompleteEvent:
//	        // ...
//	    default:
//	        return fmt.Errorf("unknown event type: %T", event)
//	    }
//	    return nil
//	}
type Handler interface {
	Handle(event any) error
}

// TimeTeller exposes the current driver time.
type TimeTeller interface {
	CurrentTime() VTimeInMs
}

// EventScheduler schedules events on the driver timeline.
type EventScheduler interface {
	TimeTeller
	Schedule(event ScheduledEvent)
}

// ScheduledEvent wraps an event payload with the metadata the driver needs.
type ScheduledEvent struct {
	// Event is delivered to Handler unchanged.
	Event any

	// Time is when the event is due.
	Time VTimeInMs

	// Handler processes the event.
	Handler Handler
}

// A Ticker is stepped once per frame after all due events are handled.
// Tick reports whether it changed anything.
type Ticker interface {
	Tick(now VTimeInMs) bool
}
