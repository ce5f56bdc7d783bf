package dom

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeList is an ordered collection of nodes.
type NodeList []*Node

// Len returns the number of nodes.
func (l NodeList) Len() int {
	return len(l)
}

// Item returns the node at index i, or nil when out of range.
func (l NodeList) Item(i int) *Node {
	if i < 0 || i >= len(l) {
		return nil
	}
	return l[i]
}

// Each calls fn for every node in order.
func (l NodeList) Each(fn func(i int, n *Node)) NodeList {
	for i, n := range l {
		fn(i, n)
	}
	return l
}

// Elements returns only the element nodes.
func (l NodeList) Elements() NodeList {
	var out NodeList
	for _, n := range l {
		if n.IsElement() {
			out = append(out, n)
		}
	}
	return out
}

// Create parses an HTML fragment into new detached nodes owned by d.
// Every attribute in attrs is set on each top-level element of the fragment.
// Nested elements and top-level text nodes are left untouched.
func (d *Document) Create(src string, attrs map[string]string) (NodeList, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	parsed, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}

	keys := slices.Sorted(maps.Keys(attrs))

	out := make(NodeList, 0, len(parsed))
	for _, h := range parsed {
		detach(h)
		n := d.wrap(h)
		if n.IsElement() {
			for _, k := range keys {
				n.SetAttr(k, attrs[k])
			}
		}
		out = append(out, n)
	}
	return out, nil
}
