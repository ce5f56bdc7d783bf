package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// NodeType identifies the kind of a node.
type NodeType = html.NodeType

// Node types re-exported from golang.org/x/net/html.
const (
	ElementNode  = html.ElementNode
	TextNode     = html.TextNode
	DocumentNode = html.DocumentNode
	CommentNode  = html.CommentNode
	DoctypeNode  = html.DoctypeNode
)

// Node is a document tree node. Every node belongs to exactly one Document,
// and the Document hands out the same *Node for the same position in the tree.
type Node struct {
	h         *html.Node
	doc       *Document
	listeners map[string][]*listenerEntry
}

// Document returns the owning document.
func (n *Node) Document() *Document {
	return n.doc
}

// Type returns the node type.
func (n *Node) Type() NodeType {
	return n.h.Type
}

// IsElement reports whether the node is an element.
func (n *Node) IsElement() bool {
	return n.h.Type == html.ElementNode
}

// TagName returns the lower-case tag name of an element, or "" for other nodes.
func (n *Node) TagName() string {
	if n.h.Type != html.ElementNode {
		return ""
	}
	return n.h.Data
}

// Parent returns the parent node, or nil for a detached node or the document.
func (n *Node) Parent() *Node {
	return n.doc.wrap(n.h.Parent)
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	return n.doc.wrap(n.h.FirstChild)
}

// NextSibling returns the next sibling, or nil.
func (n *Node) NextSibling() *Node {
	return n.doc.wrap(n.h.NextSibling)
}

// PrevSibling returns the previous sibling, or nil.
func (n *Node) PrevSibling() *Node {
	return n.doc.wrap(n.h.PrevSibling)
}

// ChildNodes returns all children, including text and comments.
func (n *Node) ChildNodes() NodeList {
	var out NodeList
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, n.doc.wrap(c))
	}
	return out
}

// Children returns the element children.
func (n *Node) Children() NodeList {
	var out NodeList
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, n.doc.wrap(c))
		}
	}
	return out
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.h.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute on an element. It is a no-op for other nodes.
func (n *Node) SetAttr(name, value string) {
	if n.h.Type != html.ElementNode {
		return
	}
	name = strings.ToLower(name)
	for i, a := range n.h.Attr {
		if a.Namespace == "" && a.Key == name {
			n.h.Attr[i].Val = value
			return
		}
	}
	n.h.Attr = append(n.h.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr removes the named attribute.
func (n *Node) RemoveAttr(name string) {
	name = strings.ToLower(name)
	for i, a := range n.h.Attr {
		if a.Namespace == "" && a.Key == name {
			n.h.Attr = append(n.h.Attr[:i], n.h.Attr[i+1:]...)
			return
		}
	}
}

// ID returns the id attribute.
func (n *Node) ID() string {
	id, _ := n.Attr("id")
	return id
}

// TextContent returns the concatenated text of the node and its descendants.
func (n *Node) TextContent() string {
	if n.h.Type == html.TextNode || n.h.Type == html.CommentNode {
		return n.h.Data
	}
	var b strings.Builder
	n.walkDescendants(func(h *html.Node) bool {
		if h.Type == html.TextNode {
			b.WriteString(h.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces the node's children with a single text node.
func (n *Node) SetTextContent(text string) {
	if n.h.Type == html.TextNode || n.h.Type == html.CommentNode {
		n.h.Data = text
		return
	}
	for c := n.h.FirstChild; c != nil; {
		next := c.NextSibling
		n.h.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.h.AppendChild(n.doc.CreateTextNode(text).h)
	}
}

// OuterHTML renders the node and its descendants.
func (n *Node) OuterHTML() (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n.h); err != nil {
		return "", err
	}
	return b.String(), nil
}

// InnerHTML renders the node's children.
func (n *Node) InnerHTML() (string, error) {
	var b strings.Builder
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	if other == nil {
		return false
	}
	for h := other.h; h != nil; h = h.Parent {
		if h == n.h {
			return true
		}
	}
	return false
}

// String returns a short selector-like description such as "a#link.nav".
func (n *Node) String() string {
	switch n.h.Type {
	case html.DocumentNode:
		return "#document"
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DoctypeNode:
		return "#doctype"
	}

	var b strings.Builder
	b.WriteString(n.h.Data)
	if id := n.ID(); id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	if class, ok := n.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			b.WriteString(".")
			b.WriteString(c)
		}
	}
	return b.String()
}

// AsNodeList returns a list holding only this node. Unlike the browser idiom
// it stands in for, the node is not moved out of its tree.
func (n *Node) AsNodeList() NodeList {
	return NodeList{n}
}
