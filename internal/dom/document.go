package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EventContentLoaded is the one-shot signal fired when the document is parsed.
const EventContentLoaded = "DOMContentLoaded"

// DefaultSelectorCacheSize is the number of compiled selectors kept per document.
const DefaultSelectorCacheSize = 256

// Document owns a node tree and the canonical *Node wrapper of every node in it.
type Document struct {
	root      *Node
	nodes     map[*html.Node]*Node
	selectors *selectorCache

	nextListenerID ListenerID
	loaded         bool
}

// DocumentOption configures a Document.
type DocumentOption func(*documentConfig)

type documentConfig struct {
	selectorCacheSize int
}

// WithSelectorCacheSize sets how many compiled selectors the document caches.
func WithSelectorCacheSize(size int) DocumentOption {
	return func(c *documentConfig) {
		if size > 0 {
			c.selectorCacheSize = size
		}
	}
}

// Parse reads an HTML document from r.
func Parse(r io.Reader, opts ...DocumentOption) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return newDocument(root, opts...)
}

// ParseString parses an HTML document from a string.
func ParseString(src string, opts ...DocumentOption) (*Document, error) {
	return Parse(strings.NewReader(src), opts...)
}

// NewDocument returns an empty document with html, head and body elements.
func NewDocument(opts ...DocumentOption) (*Document, error) {
	return ParseString("<!DOCTYPE html><html><head></head><body></body></html>", opts...)
}

func newDocument(root *html.Node, opts ...DocumentOption) (*Document, error) {
	cfg := documentConfig{selectorCacheSize: DefaultSelectorCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	cache, err := newSelectorCache(cfg.selectorCacheSize)
	if err != nil {
		return nil, err
	}

	d := &Document{
		nodes:     make(map[*html.Node]*Node),
		selectors: cache,
	}
	d.root = d.wrap(root)
	return d, nil
}

// wrap returns the canonical *Node for h, creating it on first use.
func (d *Document) wrap(h *html.Node) *Node {
	if h == nil {
		return nil
	}
	if n, ok := d.nodes[h]; ok {
		return n
	}
	n := &Node{h: h, doc: d}
	d.nodes[h] = n
	return n
}

// Node returns the document node, the root of the tree.
func (d *Document) Node() *Node {
	return d.root
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Node {
	return d.firstElement(d.root, atom.Html)
}

// Head returns the <head> element, or nil.
func (d *Document) Head() *Node {
	if de := d.DocumentElement(); de != nil {
		return d.firstElement(de, atom.Head)
	}
	return nil
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *Node {
	if de := d.DocumentElement(); de != nil {
		return d.firstElement(de, atom.Body)
	}
	return nil
}

func (d *Document) firstElement(parent *Node, a atom.Atom) *Node {
	for c := parent.h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return d.wrap(c)
		}
	}
	return nil
}

// CreateElement returns a new detached element.
func (d *Document) CreateElement(tag string) *Node {
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// CreateTextNode returns a new detached text node.
func (d *Document) CreateTextNode(text string) *Node {
	return d.wrap(&html.Node{
		Type: html.TextNode,
		Data: text,
	})
}

// Find returns the elements in the document matching selector.
func (d *Document) Find(selector string) (NodeList, error) {
	return d.root.Find(selector)
}

// IsLoaded reports whether SignalContentLoaded has fired.
func (d *Document) IsLoaded() bool {
	return d.loaded
}

// SignalContentLoaded fires DOMContentLoaded on the document node.
// Only the first call dispatches. Later calls return (true, nil).
func (d *Document) SignalContentLoaded() (bool, error) {
	if d.loaded {
		return true, nil
	}
	d.loaded = true
	return d.root.DispatchEvent(NewEvent(EventContentLoaded, EventInit{}))
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root.h)
}
