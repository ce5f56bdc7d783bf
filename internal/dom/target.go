package dom

import "slices"

// listenerEntry is one native subscription.
type listenerEntry struct {
	id       ListenerID
	listener Listener
	removed  bool
}

// AddEventListener installs a native subscription for eventType on the node.
//
// No coalescing happens: adding the same listener twice yields two
// subscriptions with distinct handles, and both run on dispatch.
func (n *Node) AddEventListener(eventType string, l Listener) ListenerID {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listenerEntry)
	}

	n.doc.nextListenerID++
	entry := &listenerEntry{
		id:       n.doc.nextListenerID,
		listener: l,
	}

	// Append into a fresh slice so a dispatch snapshot taken earlier keeps its
	// own backing array.
	entries := n.listeners[eventType]
	next := make([]*listenerEntry, 0, len(entries)+1)
	next = append(next, entries...)
	n.listeners[eventType] = append(next, entry)

	return entry.id
}

// RemoveEventListener removes the native subscription with the given handle.
// It returns false if no such subscription exists on this node.
func (n *Node) RemoveEventListener(eventType string, id ListenerID) bool {
	entries := n.listeners[eventType]
	idx := slices.IndexFunc(entries, func(e *listenerEntry) bool {
		return e.id == id
	})
	if idx < 0 {
		return false
	}

	// Mark first: a dispatch in progress skips entries removed after its snapshot.
	entries[idx].removed = true

	if len(entries) == 1 {
		delete(n.listeners, eventType)
		return true
	}

	next := make([]*listenerEntry, 0, len(entries)-1)
	next = append(next, entries[:idx]...)
	next = append(next, entries[idx+1:]...)
	n.listeners[eventType] = next
	return true
}

// ListenerCount returns the number of native subscriptions for eventType.
func (n *Node) ListenerCount(eventType string) int {
	return len(n.listeners[eventType])
}

// HasEventListeners reports whether any native subscription exists for eventType.
func (n *Node) HasEventListeners(eventType string) bool {
	return len(n.listeners[eventType]) > 0
}
