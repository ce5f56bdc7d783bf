package dom

import "golang.org/x/net/html"

// AppendChild moves child to the end of n's children.
func (n *Node) AppendChild(child *Node) error {
	if err := n.checkInsert(child); err != nil {
		return err
	}
	detach(child.h)
	n.h.AppendChild(child.h)
	return nil
}

// Prepend inserts nodes before n's first child, in order.
func (n *Node) Prepend(nodes ...*Node) error {
	if err := n.checkInsertAll(nodes); err != nil {
		return err
	}
	ref := firstNotIn(n.h.FirstChild, nodeSet(nodes))
	n.insertAll(nodes, ref)
	return nil
}

// Before inserts nodes just before n, in order. It is a no-op if n has no parent.
func (n *Node) Before(nodes ...*Node) error {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	if err := parent.checkInsertAll(nodes); err != nil {
		return err
	}

	// The reference is n itself unless n is one of the nodes being moved.
	ref := n.h
	moving := nodeSet(nodes)
	if moving[n.h] {
		ref = firstNotIn(n.h.NextSibling, moving)
	}

	parent.insertAll(nodes, ref)
	return nil
}

// After inserts nodes just after n, in order. It is a no-op if n has no parent.
func (n *Node) After(nodes ...*Node) error {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	if err := parent.checkInsertAll(nodes); err != nil {
		return err
	}
	ref := firstNotIn(n.h.NextSibling, nodeSet(nodes))
	parent.insertAll(nodes, ref)
	return nil
}

// ReplaceWith replaces n with nodes. It is a no-op if n has no parent.
func (n *Node) ReplaceWith(nodes ...*Node) error {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	if err := parent.checkInsertAll(nodes); err != nil {
		return err
	}
	ref := firstNotIn(n.h.NextSibling, nodeSet(nodes))
	detach(n.h)
	parent.insertAll(nodes, ref)
	return nil
}

// Remove detaches n from its parent. Listeners stay attached to n.
func (n *Node) Remove() {
	detach(n.h)
}

// insertAll moves nodes under n before ref (nil appends).
func (n *Node) insertAll(nodes []*Node, ref *html.Node) {
	for _, c := range nodes {
		detach(c.h)
		n.h.InsertBefore(c.h, ref)
	}
}

func (n *Node) checkInsertAll(nodes []*Node) error {
	for _, c := range nodes {
		if err := n.checkInsert(c); err != nil {
			return err
		}
	}
	return nil
}

// checkInsert validates that child may become a child of n.
func (n *Node) checkInsert(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	if child.doc != n.doc {
		return ErrWrongDocument
	}
	if child.h.Type == html.DocumentNode || child.Contains(n) {
		return ErrHierarchy
	}
	return nil
}

func detach(h *html.Node) {
	if h.Parent != nil {
		h.Parent.RemoveChild(h)
	}
}

func nodeSet(nodes []*Node) map[*html.Node]bool {
	set := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		set[n.h] = true
	}
	return set
}

// firstNotIn returns h or its first following sibling not in set.
func firstNotIn(h *html.Node, set map[*html.Node]bool) *html.Node {
	for h != nil && set[h] {
		h = h.NextSibling
	}
	return h
}
