package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/domkit/internal/dom"
)

// luaListener adapts a Lua function to dom.Listener.
//
// It is a comparable value: two luaListeners built from the same Lua function
// are equal, which is what lets off() find the record made by on().
type luaListener struct {
	h  *Host
	fn *lua.LFunction
}

func (h *Host) listener(fn *lua.LFunction) luaListener {
	return luaListener{h: h, fn: fn}
}

// HandleEvent calls the Lua function with the event, or nil for ready
// callbacks.
func (l luaListener) HandleEvent(e *dom.Event) error {
	var arg lua.LValue = lua.LNil
	if e != nil {
		arg = l.h.pushEventValue(e)
	}
	return l.h.L.CallByParam(lua.P{Fn: l.fn, NRet: 0, Protect: true}, arg)
}

// ListenerName names the listener after its definition site.
func (l luaListener) ListenerName() string {
	if l.fn.IsG || l.fn.Proto == nil {
		return "lua:<go>"
	}
	return fmt.Sprintf("lua:%s:%d", l.fn.Proto.SourceName, l.fn.Proto.LineDefined)
}
