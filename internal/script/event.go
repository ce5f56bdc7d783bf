package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/domkit/internal/dom"
)

func (h *Host) pushEventValue(e *dom.Event) lua.LValue {
	if e == nil {
		return lua.LNil
	}
	ud := h.L.NewUserData()
	ud.Value = e
	h.L.SetMetatable(ud, h.L.GetTypeMetatable(eventTypeName))
	return ud
}

func checkEvent(L *lua.LState, idx int) *dom.Event {
	ud := L.CheckUserData(idx)
	if e, ok := ud.Value.(*dom.Event); ok {
		return e
	}
	L.ArgError(idx, "event expected")
	return nil
}

func (h *Host) eventMethodFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"prevent_default": func(L *lua.LState) int {
			checkEvent(L, 1).PreventDefault()
			return 0
		},
		"stop_propagation": func(L *lua.LState) int {
			checkEvent(L, 1).StopPropagation()
			return 0
		},
		"stop_immediate_propagation": func(L *lua.LState) int {
			checkEvent(L, 1).StopImmediatePropagation()
			return 0
		},
	}
}

// eventIndex resolves methods first, then read-only fields.
func (h *Host) eventIndex(L *lua.LState) int {
	e := checkEvent(L, 1)
	key := L.CheckString(2)

	if m := h.eventMethods.RawGetString(key); m != lua.LNil {
		L.Push(m)
		return 1
	}

	switch key {
	case "type":
		L.Push(lua.LString(e.Type))
	case "target":
		L.Push(h.pushNodeValue(e.Target()))
	case "current_target":
		L.Push(h.pushNodeValue(e.CurrentTarget()))
	case "bubbles":
		L.Push(lua.LBool(e.Bubbles))
	case "cancelable":
		L.Push(lua.LBool(e.Cancelable))
	case "default_prevented":
		L.Push(lua.LBool(e.DefaultPrevented()))
	case "phase":
		L.Push(lua.LString(e.Phase().String()))
	case "detail":
		L.Push(h.toLuaValue(e.Detail))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func (h *Host) eventToString(L *lua.LState) int {
	e := checkEvent(L, 1)
	L.Push(lua.LString(fmt.Sprintf("event(%s)", e.Type)))
	return 1
}
