package event

import (
	"iter"
	"slices"
	"weak"

	"github.com/dshills/domkit/internal/dom"
)

// Registry shadows every listener attached through it, keyed by node.
//
// Nodes are held through weak pointers, so the registry never keeps a node
// alive. A Document holds every node it wrapped, so in practice a node lives
// as long as its document; tables are pruned by All and Len once the whole
// document has been reclaimed.
type Registry struct {
	tables map[weak.Pointer[dom.Node]]NodeEventTable
	order  []weak.Pointer[dom.Node]
	config registryConfig
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	config := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Registry{
		tables: make(map[weak.Pointer[dom.Node]]NodeEventTable),
		config: config,
	}
}

// table returns the node's table, creating it when create is set.
func (r *Registry) table(n *dom.Node, create bool) NodeEventTable {
	key := weak.Make(n)
	t, ok := r.tables[key]
	if !ok && create {
		t = make(NodeEventTable)
		r.tables[key] = t
		r.order = append(r.order, key)
	}
	return t
}

// Register attaches callback to n for eventName and records it.
//
// Exactly one native subscription is installed per call. Registering the same
// callback twice yields two subscriptions and two records. Callbacks that
// cannot be compared, such as a bare dom.ListenerFunc, are registered with a
// warning because Unregister can never match them. With WithFilter the
// attached listener is an adapter that checks the event target first; the
// record still holds the original callback.
func (r *Registry) Register(n *dom.Node, eventName string, callback dom.Listener, opts ...RegisterOption) {
	if n == nil || callback == nil {
		return
	}

	var cfg registerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	handle := n.AddEventListener(eventName, adapt(cfg.filter, callback))

	// The record is complete before it becomes visible in the table.
	rec := &ListenerRecord{
		ID:             r.config.newID(),
		Name:           listenerName(callback),
		Callback:       callback,
		FilterSelector: cfg.filter,
		handle:         handle,
	}

	t := r.table(n, true)
	records := t[eventName]
	next := make([]*ListenerRecord, 0, len(records)+1)
	next = append(next, records...)
	t[eventName] = append(next, rec)

	r.config.logger.Debug("register %s %s on %s filter=%q", rec.Name, eventName, n, cfg.filter)
	if !comparableListener(callback) {
		r.config.logger.Warn("listener %s (%T) on %s %s cannot be unregistered; only Close detaches it",
			rec.Name, callback, n, eventName)
	}
}

// Unregister removes the oldest record of callback for (n, eventName) along
// with its native subscription. It does nothing if there is no such record.
func (r *Registry) Unregister(n *dom.Node, eventName string, callback dom.Listener) {
	if n == nil {
		return
	}
	t := r.table(n, false)
	if t == nil {
		return
	}

	records := t[eventName]
	idx := slices.IndexFunc(records, func(rec *ListenerRecord) bool {
		return sameListener(rec.Callback, callback)
	})
	if idx < 0 {
		return
	}
	rec := records[idx]

	// Build a new slice so a caller holding the old one sees no shifting.
	if len(records) == 1 {
		delete(t, eventName)
	} else {
		next := make([]*ListenerRecord, 0, len(records)-1)
		next = append(next, records[:idx]...)
		t[eventName] = append(next, records[idx+1:]...)
	}

	n.RemoveEventListener(eventName, rec.handle)

	r.config.logger.Debug("unregister %s %s on %s", rec.Name, eventName, n)
}

// Dispatch fires a synthetic eventName event on n and returns it once every
// listener has run. Events bubble and are cancelable unless options say
// otherwise. A listener error stops the dispatch and is returned unchanged.
func (r *Registry) Dispatch(n *dom.Node, eventName string, opts ...DispatchOption) (*dom.Event, error) {
	init := dom.EventInit{Bubbles: true, Cancelable: true}
	for _, opt := range opts {
		opt(&init)
	}

	e := dom.NewEvent(eventName, init)
	if n == nil {
		return e, dom.ErrNilNode
	}
	_, err := n.DispatchEvent(e)
	return e, err
}

// Query returns the live table for n, or nil if nothing was ever registered
// on it. The table is not a copy. Mutating it is unsupported and can
// desynchronize the registry from the node's native listeners.
func (r *Registry) Query(n *dom.Node) NodeEventTable {
	if n == nil {
		return nil
	}
	return r.table(n, false)
}

// Count returns the number of records for (n, eventName).
func (r *Registry) Count(n *dom.Node, eventName string) int {
	return r.Query(n).Count(eventName)
}

// All iterates over every live node and its table in first-registration
// order. The tables are live, as with Query.
func (r *Registry) All() iter.Seq2[*dom.Node, NodeEventTable] {
	r.prune()
	return func(yield func(*dom.Node, NodeEventTable) bool) {
		for _, key := range slices.Clone(r.order) {
			n := key.Value()
			if n == nil {
				continue
			}
			t, ok := r.tables[key]
			if !ok {
				continue
			}
			if !yield(n, t) {
				return
			}
		}
	}
}

// Len returns the number of nodes with a table.
func (r *Registry) Len() int {
	r.prune()
	return len(r.order)
}

// prune drops the tables of reclaimed nodes.
func (r *Registry) prune() {
	live := r.order[:0]
	for _, key := range r.order {
		if key.Value() == nil {
			delete(r.tables, key)
			continue
		}
		live = append(live, key)
	}
	clear(r.order[len(live):])
	r.order = live
}

// Close detaches every listener the registry installed and empties it.
// The registry can be used again afterwards.
func (r *Registry) Close() {
	for _, key := range r.order {
		n := key.Value()
		if n == nil {
			continue
		}
		for name, records := range r.tables[key] {
			for _, rec := range records {
				n.RemoveEventListener(name, rec.handle)
			}
		}
	}
	r.tables = make(map[weak.Pointer[dom.Node]]NodeEventTable)
	r.order = nil
}
