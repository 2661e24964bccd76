package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/nutricalc/backend/internal/domain"
)

// RequestTracker lets a newer request cancel the older in-flight one of the same session
type RequestTracker struct {
	mu       sync.Mutex
	inflight map[string]*trackedRequest
}

type trackedRequest struct {
	cancel context.CancelCauseFunc
}

// NewRequestTracker creates an empty tracker
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{inflight: make(map[string]*trackedRequest)}
}

// Begin starts a request for session and cancels any earlier one still running.
// The returned done func must be called when the request finishes. An empty
// session disables supersession.
func (t *RequestTracker) Begin(ctx context.Context, session string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	if session == "" {
		return ctx, func() { cancel(nil) }
	}

	req := &trackedRequest{cancel: cancel}

	t.mu.Lock()
	if prev, ok := t.inflight[session]; ok {
		prev.cancel(domain.ErrSuperseded)
	}
	t.inflight[session] = req
	t.mu.Unlock()

	done := func() {
		t.mu.Lock()
		if t.inflight[session] == req {
			delete(t.inflight, session)
		}
		t.mu.Unlock()
		cancel(nil)
	}
	return ctx, done
}

// inFlight reports how many sessions have a running request
func (t *RequestTracker) inFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// Superseded reports whether ctx was cancelled by a newer request of the same session
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), domain.ErrSuperseded)
}
