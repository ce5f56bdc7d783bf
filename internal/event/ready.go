package event

import (
	"errors"

	"github.com/dshills/domkit/internal/dom"
)

// LatchState is the state of a ReadyLatch.
type LatchState int

const (
	// LatchPending means the document has not signalled content loaded yet.
	LatchPending LatchState = iota

	// LatchReady is terminal: the signal has been seen.
	LatchReady
)

// String returns a human-readable state name.
func (s LatchState) String() string {
	switch s {
	case LatchPending:
		return "pending"
	case LatchReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ReadyLatch is a one-shot gate opened by the document's DOMContentLoaded
// signal. It is not a republishing event: after the transition nothing is
// queued and later signals are ignored.
type ReadyLatch struct {
	doc     *dom.Document
	state   LatchState
	pending []dom.Listener
	handle  dom.ListenerID
}

// NewReadyLatch creates a latch for doc. If doc has already signalled
// content loaded, the latch starts ready.
func NewReadyLatch(doc *dom.Document) *ReadyLatch {
	l := &ReadyLatch{doc: doc}
	if doc.IsLoaded() {
		l.state = LatchReady
		return l
	}
	l.handle = doc.Node().AddEventListener(dom.EventContentLoaded, dom.ListenerFunc(l.open))
	return l
}

// State returns the current latch state.
func (l *ReadyLatch) State() LatchState {
	return l.state
}

// IsReady reports whether the latch has opened.
func (l *ReadyLatch) IsReady() bool {
	return l.state == LatchReady
}

// Pending returns the number of queued callbacks.
func (l *ReadyLatch) Pending() int {
	return len(l.pending)
}

// OnReady runs callback with a nil event once the document is ready.
//
// While pending, the callback is queued behind earlier ones. Once ready, it
// runs before OnReady returns and its error is returned.
func (l *ReadyLatch) OnReady(callback dom.Listener) error {
	if callback == nil {
		return nil
	}
	if l.state == LatchReady {
		return callback.HandleEvent(nil)
	}
	l.pending = append(l.pending, callback)
	return nil
}

// open performs the PENDING to READY transition.
//
// The state flips before any callback runs, so a callback that calls OnReady
// is served immediately. Every queued callback runs even if an earlier one
// fails; the errors are joined and returned to the signal's dispatcher.
func (l *ReadyLatch) open(_ *dom.Event) error {
	if l.state == LatchReady {
		return nil
	}
	l.state = LatchReady
	l.doc.Node().RemoveEventListener(dom.EventContentLoaded, l.handle)

	pending := l.pending
	l.pending = nil

	var errs []error
	for _, cb := range pending {
		if err := cb.HandleEvent(nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
