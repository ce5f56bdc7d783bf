package event

import "github.com/dshills/domkit/internal/dom"

// Delegatable is the registration capability shared by single-node and
// collection wrappers. T is the wrapper type itself, so calls chain.
type Delegatable[T any] interface {
	On(eventName string, callback dom.Listener, opts ...RegisterOption) T
	OnMatch(eventName, selector string, callback dom.Listener) T
	Off(eventName string, callback dom.Listener) T
}

var (
	_ Delegatable[*NodeDelegate] = (*NodeDelegate)(nil)
	_ Delegatable[*ListDelegate] = (*ListDelegate)(nil)
)

// NodeDelegate binds a registry to one node.
type NodeDelegate struct {
	reg  *Registry
	node *dom.Node
}

// Delegate returns the registry operations bound to n.
func (r *Registry) Delegate(n *dom.Node) *NodeDelegate {
	return &NodeDelegate{reg: r, node: n}
}

// Node returns the wrapped node.
func (d *NodeDelegate) Node() *dom.Node {
	return d.node
}

// On registers callback on the node.
func (d *NodeDelegate) On(eventName string, callback dom.Listener, opts ...RegisterOption) *NodeDelegate {
	d.reg.Register(d.node, eventName, callback, opts...)
	return d
}

// OnMatch registers callback on the node for events whose target matches selector.
func (d *NodeDelegate) OnMatch(eventName, selector string, callback dom.Listener) *NodeDelegate {
	return d.On(eventName, callback, WithFilter(selector))
}

// Off unregisters callback from the node.
func (d *NodeDelegate) Off(eventName string, callback dom.Listener) *NodeDelegate {
	d.reg.Unregister(d.node, eventName, callback)
	return d
}

// Dispatch fires eventName on the node.
func (d *NodeDelegate) Dispatch(eventName string, opts ...DispatchOption) (*dom.Event, error) {
	return d.reg.Dispatch(d.node, eventName, opts...)
}

// Events returns the node's live table.
func (d *NodeDelegate) Events() NodeEventTable {
	return d.reg.Query(d.node)
}

// ListDelegate binds a registry to an ordered node collection.
// Each call is applied to every member in order; no results are aggregated.
type ListDelegate struct {
	reg   *Registry
	nodes dom.NodeList
}

// DelegateAll returns the registry operations bound to every node in list.
func (r *Registry) DelegateAll(list dom.NodeList) *ListDelegate {
	return &ListDelegate{reg: r, nodes: list}
}

// Nodes returns the wrapped collection.
func (d *ListDelegate) Nodes() dom.NodeList {
	return d.nodes
}

// On registers callback on every node.
func (d *ListDelegate) On(eventName string, callback dom.Listener, opts ...RegisterOption) *ListDelegate {
	for _, n := range d.nodes {
		d.reg.Register(n, eventName, callback, opts...)
	}
	return d
}

// OnMatch registers callback on every node, filtered by selector.
func (d *ListDelegate) OnMatch(eventName, selector string, callback dom.Listener) *ListDelegate {
	return d.On(eventName, callback, WithFilter(selector))
}

// Off unregisters callback from every node.
func (d *ListDelegate) Off(eventName string, callback dom.Listener) *ListDelegate {
	for _, n := range d.nodes {
		d.reg.Unregister(n, eventName, callback)
	}
	return d
}

// Each returns a NodeDelegate for every node in order.
func (d *ListDelegate) Each(fn func(i int, nd *NodeDelegate)) *ListDelegate {
	for i, n := range d.nodes {
		fn(i, d.reg.Delegate(n))
	}
	return d
}
