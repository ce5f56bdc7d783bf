package dom

import "time"

// Phase is the dispatch phase an event is currently in.
type Phase int

const (
	// PhaseNone means the event is not being dispatched.
	PhaseNone Phase = iota

	// PhaseAtTarget means listeners on the target itself are running.
	PhaseAtTarget

	// PhaseBubbling means listeners on an ancestor of the target are running.
	PhaseBubbling
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseAtTarget:
		return "at-target"
	case PhaseBubbling:
		return "bubbling"
	default:
		return "unknown"
	}
}

// EventInit carries the construction flags of a synthetic event.
type EventInit struct {
	// Bubbles makes the event continue to ancestors after the target phase.
	Bubbles bool

	// Cancelable allows listeners to call PreventDefault.
	Cancelable bool

	// Detail is an arbitrary payload carried with the event.
	Detail any
}

// Event is a synthetic DOM event.
type Event struct {
	// Type is the event name, e.g. "click".
	Type string

	// Bubbles reports whether the event propagates to ancestors.
	Bubbles bool

	// Cancelable reports whether PreventDefault has any effect.
	Cancelable bool

	// Detail is the payload supplied at construction.
	Detail any

	// TimeStamp is when the event was created.
	TimeStamp time.Time

	target           *Node
	currentTarget    *Node
	phase            Phase
	defaultPrevented bool
	stopped          bool
	stoppedImmediate bool
	dispatching      bool
}

// NewEvent creates a new event of the given type.
func NewEvent(eventType string, init EventInit) *Event {
	return &Event{
		Type:       eventType,
		Bubbles:    init.Bubbles,
		Cancelable: init.Cancelable,
		Detail:     init.Detail,
		TimeStamp:  time.Now(),
	}
}

// Target returns the node the event was dispatched on.
func (e *Event) Target() *Node {
	return e.target
}

// CurrentTarget returns the node whose listeners are currently running.
// It is nil outside of dispatch.
func (e *Event) CurrentTarget() *Node {
	return e.currentTarget
}

// Phase returns the current dispatch phase.
func (e *Event) Phase() Phase {
	return e.phase
}

// DefaultPrevented reports whether a listener cancelled the event.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// PreventDefault cancels the event if it is cancelable.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// StopPropagation prevents the event from reaching further nodes.
// Remaining listeners on the current node still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// StopImmediatePropagation prevents any further listener from running,
// including the remaining listeners on the current node.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedImmediate = true
}

// IsDispatching reports whether the event is currently being dispatched.
func (e *Event) IsDispatching() bool {
	return e.dispatching
}

// Listener receives dispatched events.
//
// A non-nil error unwinds the dispatch: no further listener runs and the error
// is returned from DispatchEvent unchanged.
type Listener interface {
	HandleEvent(e *Event) error
}

// ListenerFunc adapts a plain function to the Listener interface.
//
// ListenerFunc values are not comparable. Use them where the listener is
// removed by handle, not where identity-based removal is needed.
type ListenerFunc func(e *Event) error

// HandleEvent implements Listener.
func (f ListenerFunc) HandleEvent(e *Event) error {
	return f(e)
}

// ListenerID identifies one native subscription on one node.
type ListenerID uint64
