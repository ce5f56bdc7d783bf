package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/domkit/internal/dom"
	"github.com/dshills/domkit/internal/event"
)

// pushNodeValue returns the canonical userdata for n, or nil.
func (h *Host) pushNodeValue(n *dom.Node) lua.LValue {
	if n == nil {
		return lua.LNil
	}
	if ud, ok := h.nodes[n]; ok {
		return ud
	}
	ud := h.L.NewUserData()
	ud.Value = n
	h.L.SetMetatable(ud, h.L.GetTypeMetatable(nodeTypeName))
	h.nodes[n] = ud
	return ud
}

func checkNode(L *lua.LState, idx int) *dom.Node {
	ud := L.CheckUserData(idx)
	if n, ok := ud.Value.(*dom.Node); ok {
		return n
	}
	L.ArgError(idx, "node expected")
	return nil
}

// checkNodes collects nodes and lists from idx onwards into one slice.
func checkNodes(L *lua.LState, idx int) []*dom.Node {
	var out []*dom.Node
	for i := idx; i <= L.GetTop(); i++ {
		ud := L.CheckUserData(i)
		switch v := ud.Value.(type) {
		case *dom.Node:
			out = append(out, v)
		case dom.NodeList:
			out = append(out, v...)
		default:
			L.ArgError(i, "node or list expected")
		}
	}
	return out
}

func (h *Host) nodeMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"on":           h.nodeOn,
		"off":          h.nodeOff,
		"dispatch":     h.nodeDispatch,
		"events":       h.nodeEvents,
		"find":         h.nodeFind,
		"matches":      h.nodeMatches,
		"closest":      h.nodeClosest,
		"attr":         h.nodeAttr,
		"text":         h.nodeText,
		"html":         h.nodeHTML,
		"tag":          h.nodeTag,
		"append":       h.nodeAppend,
		"prepend":      h.nodePrepend,
		"before":       h.nodeBefore,
		"after":        h.nodeAfter,
		"replace_with": h.nodeReplaceWith,
		"remove":       h.nodeRemove,
		"as_list":      h.nodeAsList,
		"create":       h.nodeCreate,
	}
}

// node:on(name, fn [, selector]) -> node
func (h *Host) nodeOn(L *lua.LState) int {
	n := checkNode(L, 1)
	name := L.CheckString(2)
	fn := L.CheckFunction(3)
	var opts []event.RegisterOption
	if sel := L.OptString(4, ""); sel != "" {
		opts = append(opts, event.WithFilter(sel))
	}
	h.reg.Register(n, name, h.listener(fn), opts...)
	L.Push(L.Get(1))
	return 1
}

// node:off(name, fn) -> node
func (h *Host) nodeOff(L *lua.LState) int {
	n := checkNode(L, 1)
	h.reg.Unregister(n, L.CheckString(2), h.listener(L.CheckFunction(3)))
	L.Push(L.Get(1))
	return 1
}

// node:dispatch(name [, {bubbles=, cancelable=, detail=}]) -> event
func (h *Host) nodeDispatch(L *lua.LState) int {
	n := checkNode(L, 1)
	name := L.CheckString(2)
	ev, err := h.reg.Dispatch(n, name, dispatchOptions(L.OptTable(3, nil))...)
	if err != nil {
		raise(L, err)
	}
	L.Push(h.pushEventValue(ev))
	return 1
}

func dispatchOptions(t *lua.LTable) []event.DispatchOption {
	if t == nil {
		return nil
	}
	var opts []event.DispatchOption
	if v := t.RawGetString("bubbles"); v != lua.LNil {
		opts = append(opts, event.WithBubbles(lua.LVAsBool(v)))
	}
	if v := t.RawGetString("cancelable"); v != lua.LNil {
		opts = append(opts, event.WithCancelable(lua.LVAsBool(v)))
	}
	if v := t.RawGetString("detail"); v != lua.LNil {
		opts = append(opts, event.WithDetail(toGoValue(v)))
	}
	return opts
}

// node:events() -> {name = {records...}}
func (h *Host) nodeEvents(L *lua.LState) int {
	n := checkNode(L, 1)
	L.Push(h.tableToLua(h.reg.Query(n)))
	return 1
}

// node:find(selector) -> list
// node:find(list) -> the same list
// node:find(other) -> list of other
func (h *Host) nodeFind(L *lua.LState) int {
	n := checkNode(L, 1)
	switch arg := L.Get(2).(type) {
	case *lua.LUserData:
		switch v := arg.Value.(type) {
		case dom.NodeList:
			L.Push(arg)
		case *dom.Node:
			L.Push(h.pushListValue(v.AsNodeList()))
		default:
			L.ArgError(2, "selector, node or list expected")
		}
		return 1
	case *lua.LNilType:
		L.Push(h.pushListValue(dom.NodeList{}))
		return 1
	}
	list, err := n.Find(L.CheckString(2))
	if err != nil {
		raise(L, err)
	}
	L.Push(h.pushListValue(list))
	return 1
}

// node:matches(selector) -> bool
func (h *Host) nodeMatches(L *lua.LState) int {
	n := checkNode(L, 1)
	ok, err := n.Matches(L.CheckString(2))
	if err != nil {
		raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

// node:closest(selector) -> node or nil
func (h *Host) nodeClosest(L *lua.LState) int {
	n := checkNode(L, 1)
	found, err := n.Closest(L.CheckString(2))
	if err != nil {
		raise(L, err)
	}
	L.Push(h.pushNodeValue(found))
	return 1
}

// node:attr(name) -> string or nil
// node:attr(name, value) -> node; a nil value removes the attribute.
func (h *Host) nodeAttr(L *lua.LState) int {
	n := checkNode(L, 1)
	name := L.CheckString(2)
	if L.GetTop() < 3 {
		if v, ok := n.Attr(name); ok {
			L.Push(lua.LString(v))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}
	if v := L.Get(3); v == lua.LNil {
		n.RemoveAttr(name)
	} else {
		n.SetAttr(name, L.ToStringMeta(v).String())
	}
	L.Push(L.Get(1))
	return 1
}

// node:text() -> string
// node:text(value) -> node
func (h *Host) nodeText(L *lua.LState) int {
	n := checkNode(L, 1)
	if L.GetTop() < 2 {
		L.Push(lua.LString(n.TextContent()))
		return 1
	}
	n.SetTextContent(L.CheckString(2))
	L.Push(L.Get(1))
	return 1
}

// node:html() -> outer HTML
func (h *Host) nodeHTML(L *lua.LState) int {
	n := checkNode(L, 1)
	s, err := n.OuterHTML()
	if err != nil {
		raise(L, err)
	}
	L.Push(lua.LString(s))
	return 1
}

// node:tag() -> lower-case tag name, "" for non-elements
func (h *Host) nodeTag(L *lua.LState) int {
	L.Push(lua.LString(checkNode(L, 1).TagName()))
	return 1
}

// node:append(child...) -> node
func (h *Host) nodeAppend(L *lua.LState) int {
	n := checkNode(L, 1)
	for _, child := range checkNodes(L, 2) {
		if err := n.AppendChild(child); err != nil {
			raise(L, err)
		}
	}
	L.Push(L.Get(1))
	return 1
}

// node:prepend(child...) -> node
func (h *Host) nodePrepend(L *lua.LState) int {
	return h.insert(L, (*dom.Node).Prepend)
}

func (h *Host) nodeBefore(L *lua.LState) int {
	return h.insert(L, (*dom.Node).Before)
}

func (h *Host) nodeAfter(L *lua.LState) int {
	return h.insert(L, (*dom.Node).After)
}

func (h *Host) nodeReplaceWith(L *lua.LState) int {
	return h.insert(L, (*dom.Node).ReplaceWith)
}

func (h *Host) insert(L *lua.LState, op func(*dom.Node, ...*dom.Node) error) int {
	n := checkNode(L, 1)
	if err := op(n, checkNodes(L, 2)...); err != nil {
		raise(L, err)
	}
	L.Push(L.Get(1))
	return 1
}

// node:remove() -> node
func (h *Host) nodeRemove(L *lua.LState) int {
	checkNode(L, 1).Remove()
	L.Push(L.Get(1))
	return 1
}

// node:as_list() -> list of one
func (h *Host) nodeAsList(L *lua.LState) int {
	L.Push(h.pushListValue(checkNode(L, 1).AsNodeList()))
	return 1
}

// node:create(html [, attrs]) -> list of detached nodes owned by the
// node's document.
func (h *Host) nodeCreate(L *lua.LState) int {
	n := checkNode(L, 1)
	src := L.CheckString(2)
	var attrs map[string]string
	if t := L.OptTable(3, nil); t != nil {
		attrs = make(map[string]string)
		t.ForEach(func(k, v lua.LValue) {
			attrs[k.String()] = L.ToStringMeta(v).String()
		})
	}
	list, err := n.Document().Create(src, attrs)
	if err != nil {
		raise(L, err)
	}
	L.Push(h.pushListValue(list))
	return 1
}

func (h *Host) nodeToString(L *lua.LState) int {
	L.Push(lua.LString(checkNode(L, 1).String()))
	return 1
}
