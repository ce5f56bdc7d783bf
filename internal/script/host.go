package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/domkit/internal/dom"
	"github.com/dshills/domkit/internal/event"
	"github.com/dshills/domkit/internal/logging"
)

// Type metatable names.
const (
	nodeTypeName  = "domkit.node"
	listTypeName  = "domkit.list"
	eventTypeName = "domkit.event"
)

// ErrMissingDependency is returned by NewHost when a collaborator is nil.
var ErrMissingDependency = errors.New("script host requires a document, registry and latch")

// Host runs Lua scripts against one document.
//
// A Host is not goroutine-safe; gopher-lua's LState must be driven from a
// single goroutine.
type Host struct {
	L *lua.LState

	doc    *dom.Document
	reg    *event.Registry
	latch  *event.ReadyLatch
	logger *logging.Logger

	// nodes holds the single userdata value of every node seen by Lua.
	nodes map[*dom.Node]*lua.LUserData

	eventMethods *lua.LTable
	closed       bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger behind log() and print().
func WithLogger(l *logging.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l.WithComponent("lua")
		}
	}
}

// NewHost creates a sandboxed Lua state bound to doc, reg and latch.
func NewHost(doc *dom.Document, reg *event.Registry, latch *event.ReadyLatch, opts ...HostOption) (*Host, error) {
	if doc == nil || reg == nil || latch == nil {
		return nil, ErrMissingDependency
	}

	h := &Host{
		doc:    doc,
		reg:    reg,
		latch:  latch,
		logger: logging.Nop(),
		nodes:  make(map[*dom.Node]*lua.LUserData),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	h.install()
	return h, nil
}

// openSafeLibraries opens only the base, table, string and math libraries
// and strips the base functions that load code from disk or strings.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// install registers the metatables and globals.
func (h *Host) install() {
	L := h.L

	nodeMT := L.NewTypeMetatable(nodeTypeName)
	L.SetField(nodeMT, "__index", L.SetFuncs(L.NewTable(), h.nodeMethods()))
	L.SetField(nodeMT, "__tostring", L.NewFunction(h.nodeToString))

	listMT := L.NewTypeMetatable(listTypeName)
	L.SetField(listMT, "__index", L.SetFuncs(L.NewTable(), h.listMethods()))
	L.SetField(listMT, "__len", L.NewFunction(h.listLen))
	L.SetField(listMT, "__tostring", L.NewFunction(h.listToString))

	h.eventMethods = L.SetFuncs(L.NewTable(), h.eventMethodFuncs())
	eventMT := L.NewTypeMetatable(eventTypeName)
	L.SetField(eventMT, "__index", L.NewFunction(h.eventIndex))
	L.SetField(eventMT, "__tostring", L.NewFunction(h.eventToString))

	L.SetGlobal("document", h.pushNodeValue(h.doc.Node()))
	L.SetGlobal("ready", L.NewFunction(h.ready))
	L.SetGlobal("log", L.NewFunction(h.log))
	L.SetGlobal("print", L.NewFunction(h.log))
	L.SetGlobal("events", L.NewFunction(h.events))
}

// RunFile executes the script at path.
func (h *Host) RunFile(ctx context.Context, path string) error {
	return h.run(ctx, path, func() (*lua.LFunction, error) {
		return h.L.LoadFile(path)
	})
}

// RunString executes src as a chunk called name.
func (h *Host) RunString(ctx context.Context, name, src string) error {
	return h.run(ctx, name, func() (*lua.LFunction, error) {
		return h.L.Load(strings.NewReader(src), name)
	})
}

func (h *Host) run(ctx context.Context, source string, load func() (*lua.LFunction, error)) error {
	return h.Do(ctx, func() error {
		fn, err := load()
		if err != nil {
			return &ScriptError{Source: source, Err: err}
		}
		if err := h.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
			return &ScriptError{Source: source, Err: err}
		}
		return nil
	})
}

// Do runs fn with ctx bound to the Lua state, so Lua listeners reached from
// Go (a dispatch or the ready signal) honour the same deadline as scripts.
func (h *Host) Do(ctx context.Context, fn func() error) (err error) {
	if h.closed {
		return ErrHostClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	prev := h.L.RemoveContext()
	h.L.SetContext(ctx)
	defer func() {
		h.L.RemoveContext()
		if prev != nil {
			h.L.SetContext(prev)
		}
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Close releases the Lua state. Closing twice is a no-op.
func (h *Host) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.L.Close()
	clear(h.nodes)
}

// IsClosed reports whether Close has been called.
func (h *Host) IsClosed() bool {
	return h.closed
}

// GetGlobal returns a global Lua value.
func (h *Host) GetGlobal(name string) lua.LValue {
	return h.L.GetGlobal(name)
}

// ready implements ready(fn).
func (h *Host) ready(L *lua.LState) int {
	fn := L.CheckFunction(1)
	if err := h.latch.OnReady(h.listener(fn)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// log implements log(...) and print(...).
func (h *Host) log(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	h.logger.Info("%s", strings.Join(parts, "\t"))
	return 0
}

// events implements events(): an array of {node = node, events = table}
// in first-registration order.
func (h *Host) events(L *lua.LState) int {
	out := L.NewTable()
	for n, table := range h.reg.All() {
		entry := L.NewTable()
		entry.RawSetString("node", h.pushNodeValue(n))
		entry.RawSetString("events", h.tableToLua(table))
		out.Append(entry)
	}
	L.Push(out)
	return 1
}

// tableToLua converts a NodeEventTable to
// {name = {{id = ..., name = ..., selector = ...}, ...}}.
func (h *Host) tableToLua(table event.NodeEventTable) *lua.LTable {
	L := h.L
	out := L.NewTable()
	for _, name := range table.Names() {
		records := L.NewTable()
		for _, rec := range table[name] {
			r := L.NewTable()
			r.RawSetString("id", lua.LString(rec.ID))
			r.RawSetString("name", lua.LString(rec.Name))
			if rec.Delegated() {
				r.RawSetString("selector", lua.LString(rec.FilterSelector))
			}
			records.Append(r)
		}
		out.RawSetString(name, records)
	}
	return out
}

// raise converts a Go error into a Lua error.
func raise(L *lua.LState, err error) {
	L.RaiseError("%s", err.Error())
}
