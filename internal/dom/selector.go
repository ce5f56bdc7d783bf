package dom

import (
	"github.com/andybalholm/cascadia"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"
)

// selectorCache keeps compiled selectors keyed by their source text.
// Selectors that fail to compile are not cached.
type selectorCache struct {
	cache *lru.Cache[string, cascadia.Selector]
}

func newSelectorCache(size int) (*selectorCache, error) {
	cache, err := lru.New[string, cascadia.Selector](size)
	if err != nil {
		return nil, err
	}
	return &selectorCache{cache: cache}, nil
}

// compile returns the compiled form of selector.
// Parse errors are returned exactly as cascadia reports them.
func (c *selectorCache) compile(selector string) (cascadia.Selector, error) {
	if sel, ok := c.cache.Get(selector); ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, err
	}
	c.cache.Add(selector, sel)
	return sel, nil
}

// Matches reports whether the node is an element matching selector.
func (n *Node) Matches(selector string) (bool, error) {
	sel, err := n.doc.selectors.compile(selector)
	if err != nil {
		return false, err
	}
	if n.h.Type != html.ElementNode {
		return false, nil
	}
	return sel.Match(n.h), nil
}

// Closest returns the nearest inclusive ancestor matching selector, or nil.
func (n *Node) Closest(selector string) (*Node, error) {
	sel, err := n.doc.selectors.compile(selector)
	if err != nil {
		return nil, err
	}
	for h := n.h; h != nil; h = h.Parent {
		if h.Type == html.ElementNode && sel.Match(h) {
			return n.doc.wrap(h), nil
		}
	}
	return nil, nil
}

// QuerySelectorAll returns the descendant elements matching selector in
// document order. The node itself is never included.
func (n *Node) QuerySelectorAll(selector string) (NodeList, error) {
	sel, err := n.doc.selectors.compile(selector)
	if err != nil {
		return nil, err
	}
	var out NodeList
	n.walkDescendants(func(h *html.Node) bool {
		if h.Type == html.ElementNode && sel.Match(h) {
			out = append(out, n.doc.wrap(h))
		}
		return true
	})
	return out, nil
}

// QuerySelector returns the first descendant element matching selector, or nil.
func (n *Node) QuerySelector(selector string) (*Node, error) {
	sel, err := n.doc.selectors.compile(selector)
	if err != nil {
		return nil, err
	}
	var found *Node
	n.walkDescendants(func(h *html.Node) bool {
		if h.Type == html.ElementNode && sel.Match(h) {
			found = n.doc.wrap(h)
			return false
		}
		return true
	})
	return found, nil
}

// Find is QuerySelectorAll that tolerates an empty selector, returning an
// empty list for it.
func (n *Node) Find(selector string) (NodeList, error) {
	if selector == "" {
		return NodeList{}, nil
	}
	return n.QuerySelectorAll(selector)
}

// walkDescendants visits descendants in document order until fn returns false.
func (n *Node) walkDescendants(fn func(h *html.Node) bool) {
	var walk func(h *html.Node) bool
	walk = func(h *html.Node) bool {
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if !fn(c) || !walk(c) {
				return false
			}
		}
		return true
	}
	walk(n.h)
}
