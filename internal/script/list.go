package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/domkit/internal/dom"
	"github.com/dshills/domkit/internal/event"
)

func (h *Host) pushListValue(list dom.NodeList) lua.LValue {
	ud := h.L.NewUserData()
	ud.Value = list
	h.L.SetMetatable(ud, h.L.GetTypeMetatable(listTypeName))
	return ud
}

func checkList(L *lua.LState, idx int) dom.NodeList {
	ud := L.CheckUserData(idx)
	if list, ok := ud.Value.(dom.NodeList); ok {
		return list
	}
	L.ArgError(idx, "list expected")
	return nil
}

func (h *Host) listMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"on":   h.listOn,
		"off":  h.listOff,
		"each": h.listEach,
		"item": h.listItem,
		"len":  h.listLen,
	}
}

// list:on(name, fn [, selector]) -> list
func (h *Host) listOn(L *lua.LState) int {
	list := checkList(L, 1)
	name := L.CheckString(2)
	fn := L.CheckFunction(3)
	var opts []event.RegisterOption
	if sel := L.OptString(4, ""); sel != "" {
		opts = append(opts, event.WithFilter(sel))
	}
	h.reg.DelegateAll(list).On(name, h.listener(fn), opts...)
	L.Push(L.Get(1))
	return 1
}

// list:off(name, fn) -> list
func (h *Host) listOff(L *lua.LState) int {
	list := checkList(L, 1)
	h.reg.DelegateAll(list).Off(L.CheckString(2), h.listener(L.CheckFunction(3)))
	L.Push(L.Get(1))
	return 1
}

// list:each(fn(i, node)) -> list; iteration stops if fn returns false.
func (h *Host) listEach(L *lua.LState) int {
	list := checkList(L, 1)
	fn := L.CheckFunction(2)
	for i, n := range list {
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(i+1), h.pushNodeValue(n)); err != nil {
			raise(L, err)
		}
		ret := L.Get(-1)
		L.Pop(1)
		if ret == lua.LFalse {
			break
		}
	}
	L.Push(L.Get(1))
	return 1
}

// list:item(i) -> node or nil, 1-indexed
func (h *Host) listItem(L *lua.LState) int {
	list := checkList(L, 1)
	L.Push(h.pushNodeValue(list.Item(L.CheckInt(2) - 1)))
	return 1
}

// list:len() and #list
func (h *Host) listLen(L *lua.LState) int {
	L.Push(lua.LNumber(checkList(L, 1).Len()))
	return 1
}

func (h *Host) listToString(L *lua.LState) int {
	L.Push(lua.LString(fmt.Sprintf("list(%d)", checkList(L, 1).Len())))
	return 1
}
