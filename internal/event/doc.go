// Package event provides domkit's out-of-band event registry.
//
// The Registry is a side table that shadows every listener attached through
// it. Because the table is kept beside the document rather than read back from
// it, the registry can offer three things the host listener API cannot:
//
//   - selector-scoped delegation (WithFilter)
//   - removal by the original callback, even when a filter adapter was the
//     thing actually attached (Unregister)
//   - introspection of what is attached where (Query, All)
//
// # Architecture
//
//	┌──────────────────────────────────────────────┐
//	│                  Registry                    │
//	│  node (weak) → event name → []*ListenerRecord│
//	└──────────────────────────────────────────────┘
//	        │ Register / Unregister      │ Dispatch
//	        ▼                            ▼
//	┌──────────────────┐        ┌──────────────────┐
//	│ filter adapter   │        │ dom.Node         │
//	│ (target.Matches) │──────▶ │ native listeners │
//	└──────────────────┘        └──────────────────┘
//
// Every ListenerRecord corresponds to exactly one native subscription, and
// every native subscription the Registry installs has exactly one record.
//
// # Basic Usage
//
//	reg := event.NewRegistry()
//	defer reg.Close()
//
//	save := event.NewCallback(func(e *dom.Event) error {
//	    fmt.Println("saved from", e.Target())
//	    return nil
//	})
//
//	// Delegated: fires for clicks whose target matches button.save.
//	reg.Register(form, "click", save, event.WithFilter("button.save"))
//
//	// Fire synchronously on one node.
//	if _, err := reg.Dispatch(button, "click"); err != nil {
//	    return err
//	}
//
//	reg.Unregister(form, "click", save)
//
// # Callback Identity
//
// Unregister finds a record by comparing callbacks with ==. Listeners must
// therefore have a comparable dynamic type. Pointer types such as *Callback are
// the usual choice. A non-comparable listener (dom.ListenerFunc, for example)
// can be registered but never matches in Unregister.
//
// # Collections
//
// Delegate and DelegateAll wrap a node or a node list so registrations can be
// chained. The list form fans every call out over its members in order. There
// is no list form of Dispatch; callers fire one node at a time.
//
// # Ready Latch
//
// ReadyLatch turns the document's one-shot DOMContentLoaded signal into a gate.
// Callbacks added before the signal are queued; callbacks added after it run
// immediately.
//
// # Thread Safety
//
// Like the document it serves, a Registry belongs to one goroutine. It is
// reentrant, though: a listener may register or unregister while it is being
// dispatched and sees a consistent table.
package event
