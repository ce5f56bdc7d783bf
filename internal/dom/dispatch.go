package dom

import "slices"

// DispatchEvent fires e on the node synchronously.
//
// Listeners on the node run first (target phase), then, if the event bubbles,
// listeners on each ancestor up to the document node. The propagation path is
// fixed before the first listener runs. It returns false if a listener
// cancelled the event. A listener error stops the dispatch and is returned as is.
func (n *Node) DispatchEvent(e *Event) (bool, error) {
	if e.dispatching {
		return false, ErrDispatchInProgress
	}

	e.dispatching = true
	e.target = n
	defer func() {
		e.dispatching = false
		e.currentTarget = nil
		e.phase = PhaseNone
		e.stopped = false
		e.stoppedImmediate = false
	}()

	path := n.propagationPath()

	e.phase = PhaseAtTarget
	if err := path[0].invoke(e); err != nil {
		return !e.defaultPrevented, err
	}

	if e.Bubbles {
		e.phase = PhaseBubbling
		for _, node := range path[1:] {
			if e.stopped {
				break
			}
			if err := node.invoke(e); err != nil {
				return !e.defaultPrevented, err
			}
		}
	}

	return !e.defaultPrevented, nil
}

// propagationPath returns the node followed by its ancestors.
func (n *Node) propagationPath() []*Node {
	path := []*Node{n}
	for p := n.Parent(); p != nil; p = p.Parent() {
		path = append(path, p)
	}
	return path
}

// invoke runs the node's listeners for e.
func (n *Node) invoke(e *Event) error {
	if e.stopped {
		return nil
	}

	entries := n.listeners[e.Type]
	if len(entries) == 0 {
		return nil
	}

	// Listeners added during this invocation do not run for this node.
	snapshot := slices.Clone(entries)

	e.currentTarget = n
	for _, entry := range snapshot {
		if entry.removed {
			continue
		}
		if err := entry.listener.HandleEvent(e); err != nil {
			return err
		}
		if e.stoppedImmediate {
			break
		}
	}
	return nil
}
