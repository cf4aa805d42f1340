package internal

import (
	"net/http"
	"sync"
)

// ResponseWriter is the top-level response sink of a dispatch. It holds the
// status until the header goes out and runs before-write hooks at that
// moment, which is where dirty sessions are flushed.
//
// Hijacking and deadlines are reached through http.ResponseController,
// which follows Unwrap.
type ResponseWriter struct {
	http.ResponseWriter
	hooks   []func()
	status  int
	size    int64
	mu      sync.Mutex
	written bool
}

// NewResponseWriter wraps w with a pending status of 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers fn to run once, right before the header is sent.
// Hooks run in registration order. Hooks registered after that are dropped.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.written {
		w.hooks = append(w.hooks, fn)
	}
}

// SetStatus changes the pending status. It has no effect once written.
func (w *ResponseWriter) SetStatus(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.written {
		w.status = code
	}
}

// WriteHeader sends the header with code. Later calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	w.sendHeader(code)
}

// Write sends the header with the pending status on first use, then b.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.sendHeader(0)

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// sendHeader runs the hooks and writes the header unless that already
// happened. A zero code keeps the pending status.
func (w *ResponseWriter) sendHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	if code > 0 {
		w.status = code
	}
	hooks, status := w.hooks, w.status
	w.hooks = nil
	w.mu.Unlock()

	// Hooks may still set headers.
	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(status)
}

// Status is the status sent, or pending.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size is the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether the header was sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush sends buffered data when the underlying writer supports it.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.sendHeader(0)
		f.Flush()
	}
}

// Unwrap returns the wrapped writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
