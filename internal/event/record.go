package event

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/dshills/domkit/internal/dom"
)

// ListenerRecord describes one subscription made through the Registry.
// Records are immutable once created.
type ListenerRecord struct {
	// ID uniquely identifies the record for diagnostics.
	ID string

	// Name is a descriptive name derived from the callback.
	Name string

	// Callback is the listener supplied by the caller. Unregister compares
	// against this value, never against the installed adapter.
	Callback dom.Listener

	// FilterSelector is the delegation selector, or "" when the callback was
	// attached directly.
	FilterSelector string

	// handle is the native subscription installed for this record.
	handle dom.ListenerID
}

// Delegated reports whether the record was registered with a filter selector.
func (r *ListenerRecord) Delegated() bool {
	return r.FilterSelector != ""
}

// NodeEventTable maps event names to records in registration order.
type NodeEventTable map[string][]*ListenerRecord

// Count returns the number of records for eventName.
func (t NodeEventTable) Count(eventName string) int {
	return len(t[eventName])
}

// Names returns the event names with at least one record, sorted.
func (t NodeEventTable) Names() []string {
	names := make([]string, 0, len(t))
	for name, records := range t {
		if len(records) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Total returns the number of records across all event names.
func (t NodeEventTable) Total() int {
	total := 0
	for _, records := range t {
		total += len(records)
	}
	return total
}

// Named is implemented by listeners that carry their own diagnostic name.
type Named interface {
	ListenerName() string
}

// Callback is a pointer-identity listener built from a function.
// Two Callbacks are the same listener only if they are the same pointer.
type Callback struct {
	name string
	fn   func(e *dom.Event) error
}

// NewCallback wraps fn as a listener whose name is the function's name.
func NewCallback(fn func(e *dom.Event) error) *Callback {
	return &Callback{name: funcName(fn), fn: fn}
}

// NewNamedCallback wraps fn as a listener with an explicit name.
func NewNamedCallback(name string, fn func(e *dom.Event) error) *Callback {
	return &Callback{name: name, fn: fn}
}

// HandleEvent implements dom.Listener.
func (c *Callback) HandleEvent(e *dom.Event) error {
	return c.fn(e)
}

// ListenerName implements Named.
func (c *Callback) ListenerName() string {
	return c.name
}

// sameListener reports whether a and b are the same listener.
// Values that cannot be compared, including structs holding a func in an
// interface field, are never the same.
func sameListener(a, b dom.Listener) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// comparableListener reports whether l can ever be matched by Unregister.
func comparableListener(l dom.Listener) bool {
	return reflect.ValueOf(l).Comparable()
}

// listenerName derives a diagnostic name for l.
func listenerName(l dom.Listener) string {
	if n, ok := l.(Named); ok {
		return n.ListenerName()
	}
	if f, ok := l.(dom.ListenerFunc); ok {
		return funcName(f)
	}
	return fmt.Sprintf("%T", l)
}

// funcName returns the short name of a function value, e.g. "main.onSave".
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
