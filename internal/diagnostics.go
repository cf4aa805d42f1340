package internal

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Diagnostic event kinds.
const (
	EventDispatch = "dispatch"
	EventEmbed    = "embed"
	EventRender   = "render"
)

// DiagnosticEvent is one timed step of a request.
type DiagnosticEvent struct {
	Err      error
	Kind     string
	Name     string
	Duration time.Duration
	Depth    int
}

// Diagnostics records dispatch, embed and render timings of one request.
// Templates receive it under the "diagnostics" key.
type Diagnostics struct {
	start  time.Time
	events []DiagnosticEvent
	mu     sync.Mutex
}

func newDiagnostics() *Diagnostics {
	return &Diagnostics{start: time.Now()}
}

// Record appends an event that started at start.
func (d *Diagnostics) Record(kind, name string, start time.Time, depth int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, DiagnosticEvent{
		Kind:     kind,
		Name:     name,
		Duration: time.Since(start),
		Depth:    depth,
		Err:      err,
	})
}

// Events returns a copy of the recorded events in completion order.
func (d *Diagnostics) Events() []DiagnosticEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.events)
}

// Count returns the number of events of a kind.
func (d *Diagnostics) Count(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Failures returns the number of events that ended with an error.
func (d *Diagnostics) Failures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e.Err != nil {
			n++
		}
	}
	return n
}

// Elapsed returns the time since the request started.
func (d *Diagnostics) Elapsed() time.Duration {
	return time.Since(d.start)
}

// LogValue implements slog.LogValuer.
func (d *Diagnostics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("elapsed", d.Elapsed()),
		slog.Int("embeds", d.Count(EventEmbed)),
		slog.Int("renders", d.Count(EventRender)),
		slog.Int("failures", d.Failures()),
	)
}
