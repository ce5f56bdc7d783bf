package dom

import (
	"strings"
	"testing"
)

const testPage = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body>
<ul id="menu" class="nav">
  <li class="item"><a href="#a" id="link-a">A</a></li>
  <li class="item active"><a href="#b" id="link-b">B</a></li>
  <li class="item"><span id="plain">C</span></li>
</ul>
<p id="note">hello <b>world</b></p>
</body></html>`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return doc
}

func mustFind(t *testing.T, doc *Document, selector string) *Node {
	t.Helper()
	n, err := doc.Node().QuerySelector(selector)
	if err != nil {
		t.Fatalf("QuerySelector(%q): %v", selector, err)
	}
	if n == nil {
		t.Fatalf("QuerySelector(%q): no match", selector)
	}
	return n
}

func TestParse_Structure(t *testing.T) {
	doc := mustParse(t, testPage)

	if doc.DocumentElement() == nil || doc.DocumentElement().TagName() != "html" {
		t.Fatal("expected html document element")
	}
	if doc.Head() == nil {
		t.Error("expected head")
	}
	body := doc.Body()
	if body == nil {
		t.Fatal("expected body")
	}
	if got := len(body.Children()); got != 2 {
		t.Errorf("expected 2 body element children, got %d", got)
	}
}

func TestNode_IdentityIsStable(t *testing.T) {
	doc := mustParse(t, testPage)

	a := mustFind(t, doc, "#link-a")
	b := mustFind(t, doc, "li.item > a#link-a")
	if a != b {
		t.Error("expected the same *Node for the same element")
	}
	if a.Parent() != a.Parent() {
		t.Error("expected stable parent identity")
	}
}

func TestNode_Find(t *testing.T) {
	doc := mustParse(t, testPage)

	items, err := doc.Find("li.item")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if items.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", items.Len())
	}

	empty, err := doc.Find("")
	if err != nil {
		t.Fatalf("Find empty: %v", err)
	}
	if empty == nil || empty.Len() != 0 {
		t.Errorf("expected empty non-nil list, got %v", empty)
	}
}

func TestNode_QuerySelectorAll_ExcludesSelf(t *testing.T) {
	doc := mustParse(t, testPage)
	menu := mustFind(t, doc, "#menu")

	got, err := menu.QuerySelectorAll("ul, li")
	if err != nil {
		t.Fatalf("QuerySelectorAll: %v", err)
	}
	for _, n := range got {
		if n == menu {
			t.Fatal("QuerySelectorAll must not include the context node")
		}
	}
	if len(got) != 3 {
		t.Errorf("expected 3 li elements, got %d", len(got))
	}
}

func TestNode_Matches(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-b")

	ok, err := link.Matches(".active a")
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if !ok {
		t.Error("expected match")
	}

	ok, err = link.Matches("span")
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if ok {
		t.Error("expected no match")
	}
}

func TestNode_Matches_MalformedSelector(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	if _, err := link.Matches("a[href"); err == nil {
		t.Error("expected error for malformed selector")
	}
	// Second call must fail again: failures are not cached.
	if _, err := link.Matches("a[href"); err == nil {
		t.Error("expected error on repeated malformed selector")
	}
}

func TestNode_Matches_TextNode(t *testing.T) {
	doc := mustParse(t, testPage)
	note := mustFind(t, doc, "#note")
	text := note.FirstChild()

	ok, err := text.Matches("*")
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if ok {
		t.Error("text node must never match")
	}
}

func TestNode_Closest(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	li, err := link.Closest("li")
	if err != nil {
		t.Fatalf("Closest: %v", err)
	}
	if li == nil || li.TagName() != "li" {
		t.Fatalf("expected li, got %v", li)
	}

	self, _ := link.Closest("a")
	if self != link {
		t.Error("Closest must include the node itself")
	}

	none, _ := link.Closest("table")
	if none != nil {
		t.Error("expected nil for no match")
	}
}

func TestNode_TextContent(t *testing.T) {
	doc := mustParse(t, testPage)
	note := mustFind(t, doc, "#note")

	if got := note.TextContent(); got != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", got)
	}

	note.SetTextContent("bye")
	if got := note.TextContent(); got != "bye" {
		t.Errorf("expected %q, got %q", "bye", got)
	}
	if note.FirstChild().Type() != TextNode {
		t.Error("expected a single text child")
	}
}

func TestNode_Attributes(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	if v, ok := link.Attr("href"); !ok || v != "#a" {
		t.Errorf("expected href #a, got %q %v", v, ok)
	}

	link.SetAttr("data-x", "1")
	link.SetAttr("href", "#z")
	if v, _ := link.Attr("data-x"); v != "1" {
		t.Errorf("expected data-x 1, got %q", v)
	}
	if v, _ := link.Attr("href"); v != "#z" {
		t.Errorf("expected href #z, got %q", v)
	}

	link.RemoveAttr("data-x")
	if _, ok := link.Attr("data-x"); ok {
		t.Error("expected data-x removed")
	}
}

func TestDocument_Create(t *testing.T) {
	doc := mustParse(t, testPage)

	nodes, err := doc.Create(`<li>one</li>text<li><em>two</em></li>`, map[string]string{
		"class": "new",
		"role":  "option",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if nodes.Len() != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d", nodes.Len())
	}

	for _, n := range nodes {
		if n.Parent() != nil {
			t.Error("created nodes must be detached")
		}
	}

	for _, el := range nodes.Elements() {
		if v, _ := el.Attr("class"); v != "new" {
			t.Errorf("expected class new, got %q", v)
		}
		if v, _ := el.Attr("role"); v != "option" {
			t.Errorf("expected role option, got %q", v)
		}
	}

	if nodes.Item(1).Type() != TextNode {
		t.Error("expected text node in the middle")
	}

	em, err := nodes.Item(2).QuerySelector("em")
	if err != nil || em == nil {
		t.Fatalf("expected nested em: %v", err)
	}
	if _, ok := em.Attr("class"); ok {
		t.Error("nested elements must not receive attributes")
	}
}

func TestDocument_CreateThenAppend(t *testing.T) {
	doc := mustParse(t, testPage)
	menu := mustFind(t, doc, "#menu")

	nodes, err := doc.Create(`<li class="item" id="added">D</li>`, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := menu.AppendChild(nodes.Item(0)); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}

	got := mustFind(t, doc, "#menu > #added")
	if got != nodes.Item(0) {
		t.Error("expected appended node identity to be preserved")
	}
}

func TestNode_AsNodeList(t *testing.T) {
	doc := mustParse(t, testPage)
	note := mustFind(t, doc, "#note")
	parent := note.Parent()

	list := note.AsNodeList()
	if list.Len() != 1 || list.Item(0) != note {
		t.Fatalf("unexpected list %v", list)
	}
	if note.Parent() != parent {
		t.Error("AsNodeList must not detach the node")
	}
	if list.Item(5) != nil {
		t.Error("out of range Item must be nil")
	}
}

func TestDocument_Render(t *testing.T) {
	doc := mustParse(t, testPage)
	var b strings.Builder
	if err := doc.Render(&b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(b.String(), `id="link-a"`) {
		t.Error("rendered output missing content")
	}

	out, err := mustFind(t, doc, "#note").OuterHTML()
	if err != nil {
		t.Fatalf("OuterHTML: %v", err)
	}
	if out != `<p id="note">hello <b>world</b></p>` {
		t.Errorf("unexpected OuterHTML %q", out)
	}
}

func TestDocument_SignalContentLoaded_OneShot(t *testing.T) {
	doc := mustParse(t, testPage)

	fired := 0
	doc.Node().AddEventListener(EventContentLoaded, ListenerFunc(func(e *Event) error {
		fired++
		return nil
	}))

	if doc.IsLoaded() {
		t.Fatal("new document must not be loaded")
	}
	if _, err := doc.SignalContentLoaded(); err != nil {
		t.Fatalf("SignalContentLoaded: %v", err)
	}
	if _, err := doc.SignalContentLoaded(); err != nil {
		t.Fatalf("SignalContentLoaded: %v", err)
	}
	if fired != 1 {
		t.Errorf("expected 1 firing, got %d", fired)
	}
	if !doc.IsLoaded() {
		t.Error("expected loaded")
	}
}

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument(WithSelectorCacheSize(4))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if doc.Body() == nil {
		t.Fatal("expected body")
	}
	div := doc.CreateElement("DIV")
	if div.TagName() != "div" {
		t.Errorf("expected div, got %q", div.TagName())
	}
	if err := doc.Body().AppendChild(div); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}
	if doc.Body().FirstChild() != div {
		t.Error("expected div as first body child")
	}
}
