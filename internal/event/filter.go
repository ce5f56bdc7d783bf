package event

import "github.com/dshills/domkit/internal/dom"

// adapt returns the listener actually attached to the node for callback.
//
// Without a selector the callback itself is attached. With one, the adapter
// runs the callback only when the event target matches the selector. A
// selector error is returned from the adapter unchanged, so it surfaces from
// the dispatch that triggered it.
func adapt(selector string, callback dom.Listener) dom.Listener {
	if selector == "" {
		return callback
	}
	return &filterAdapter{selector: selector, callback: callback}
}

// filterAdapter is the delegation wrapper installed for filtered registrations.
type filterAdapter struct {
	selector string
	callback dom.Listener
}

// HandleEvent implements dom.Listener.
func (f *filterAdapter) HandleEvent(e *dom.Event) error {
	target := e.Target()
	if target == nil {
		return nil
	}
	ok, err := target.Matches(f.selector)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return f.callback.HandleEvent(e)
}
