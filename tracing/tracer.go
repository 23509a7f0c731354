// Package tracing stores what the eye controller does (blinks, gaze moves,
// plan changes, material switches) into a SQLite database or a CSV file.
package tracing

import (
	"github.com/rs/xid"
	"github.com/sarchlab/roboeyes/hooking"
)

// A RecordWriter stores records.
type RecordWriter interface {
	Write(r Record)
	Flush() error
}

// Tracer is a hook that turns controller hook calls into records.
type Tracer struct {
	writer  RecordWriter
	session string
}

// NewTracer creates a tracer that writes into w. Every tracer has its own
// session ID.
func NewTracer(w RecordWriter) *Tracer {
	return &Tracer{
		writer:  w,
		session: xid.New().String(),
	}
}

// Session returns the session ID stamped on every record.
func (t *Tracer) Session() string {
	return t.session
}

// Func records the hook context if it is a controller action.
func (t *Tracer) Func(ctx hooking.HookCtx) {
	r, ok := recordFromHook(ctx)
	if !ok {
		return
	}

	r.ID = xid.New().String()
	r.Session = t.session
	t.writer.Write(r)
}

// Flush writes buffered records.
func (t *Tracer) Flush() error {
	return t.writer.Flush()
}
