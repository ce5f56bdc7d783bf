package script

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/domkit/internal/dom"
	"github.com/dshills/domkit/internal/event"
	"github.com/dshills/domkit/internal/logging"
)

const testPage = `<!DOCTYPE html>
<html><head><title>t</title></head><body>
<form id="form">
  <div class="row">
    <button id="save" class="save">Save</button>
    <button id="cancel" class="cancel">Cancel</button>
  </div>
</form>
<ul id="list"><li id="i1">one</li><li id="i2">two</li><li id="i3">three</li></ul>
</body></html>`

type fixture struct {
	doc   *dom.Document
	reg   *event.Registry
	latch *event.ReadyLatch
	host  *Host
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc, err := dom.ParseString(testPage)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: logs})

	reg := event.NewRegistry(event.WithLogger(logger))
	latch := event.NewReadyLatch(doc)
	host, err := NewHost(doc, reg, latch, WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(host.Close)

	return &fixture{doc: doc, reg: reg, latch: latch, host: host, logs: logs}
}

func (f *fixture) run(t *testing.T, src string) {
	t.Helper()
	require.NoError(t, f.host.RunString(context.Background(), "test.lua", src))
}

func (f *fixture) byID(t *testing.T, id string) *dom.Node {
	t.Helper()
	list, err := f.doc.Find("#" + id)
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())
	return list[0]
}

func number(t *testing.T, h *Host, name string) int {
	t.Helper()
	v, ok := h.GetGlobal(name).(lua.LNumber)
	require.True(t, ok, "global %s is not a number", name)
	return int(v)
}

func TestNewHost_RequiresCollaborators(t *testing.T) {
	_, err := NewHost(nil, event.NewRegistry(), nil)
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestHost_OnOffSameFunction(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		local save = document:find("#save"):item(1)
		local function handler(ev) end
		save:on("click", handler)
		save:on("click", handler)
		before = #save:events().click
		save:off("click", handler)
		after = #save:events().click
	`)

	assert.Equal(t, 2, number(t, f.host, "before"))
	assert.Equal(t, 1, number(t, f.host, "after"))
	save := f.byID(t, "save")
	assert.Equal(t, 1, f.reg.Count(save, "click"))
	assert.Equal(t, 1, save.ListenerCount("click"))
}

func TestHost_OffWithDifferentClosureIsNoop(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		local save = document:find("#save"):item(1)
		save:on("click", function() end)
		save:off("click", function() end)
	`)
	assert.Equal(t, 1, f.reg.Count(f.byID(t, "save"), "click"))
}

func TestHost_DispatchAndEventFields(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		local save = document:find("#save"):item(1)
		local form = document:find("#form"):item(1)
		seen = {}
		save:on("click", function(ev)
			seen.type = ev.type
			seen.phase = ev.phase
			seen.target_is_save = ev.target == save
			seen.detail = ev.detail.n
			ev:prevent_default()
		end)
		form:on("click", function(ev)
			seen.bubbled = ev.current_target == form
			seen.form_phase = ev.phase
		end)
		local ev = save:dispatch("click", {detail = {n = 7}})
		prevented = ev.default_prevented
	`)

	seen := f.host.GetGlobal("seen").(*lua.LTable)
	assert.Equal(t, "click", seen.RawGetString("type").String())
	assert.Equal(t, "at-target", seen.RawGetString("phase").String())
	assert.Equal(t, lua.LTrue, seen.RawGetString("target_is_save"))
	assert.Equal(t, lua.LNumber(7), seen.RawGetString("detail"))
	assert.Equal(t, lua.LTrue, seen.RawGetString("bubbled"))
	assert.Equal(t, "bubbling", seen.RawGetString("form_phase").String())
	assert.Equal(t, lua.LTrue, f.host.GetGlobal("prevented"))
}

func TestHost_DispatchWithoutBubbling(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		hits = 0
		document:find("#form"):item(1):on("ping", function() hits = hits + 1 end)
		document:find("#save"):item(1):dispatch("ping", {bubbles = false})
	`)
	assert.Equal(t, 0, number(t, f.host, "hits"))
}

func TestHost_DelegatedListener(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		hits = 0
		local form = document:find("#form"):item(1)
		form:on("click", function() hits = hits + 1 end, "button.save")
		document:find("#save"):item(1):dispatch("click")
		document:find("#cancel"):item(1):dispatch("click")
		selector = form:events().click[1].selector
	`)
	assert.Equal(t, 1, number(t, f.host, "hits"))
	assert.Equal(t, "button.save", f.host.GetGlobal("selector").String())
}

func TestHost_NodeIdentity(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		same = document:find("#save"):item(1) == document:find("button"):item(1)
		closest = document:find("#save"):item(1):closest("form") == document:find("#form"):item(1)
		missing = document:find("#save"):item(1):closest("table") == nil
	`)
	assert.Equal(t, lua.LTrue, f.host.GetGlobal("same"))
	assert.Equal(t, lua.LTrue, f.host.GetGlobal("closest"))
	assert.Equal(t, lua.LTrue, f.host.GetGlobal("missing"))
}

func TestHost_ListOperations(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		local items = document:find("#list > li")
		count = #items
		hits = 0
		local function h() hits = hits + 1 end
		items:on("click", h)
		ids = {}
		items:each(function(i, node)
			ids[i] = node:attr("id")
			node:dispatch("click", {bubbles = false})
			if i == 2 then return false end
		end)
		items:off("click", h)
	`)

	assert.Equal(t, 3, number(t, f.host, "count"))
	assert.Equal(t, 2, number(t, f.host, "hits"))
	ids := f.host.GetGlobal("ids").(*lua.LTable)
	assert.Equal(t, 2, ids.Len())
	assert.Equal(t, "i1", ids.RawGetInt(1).String())
	for _, id := range []string{"i1", "i2", "i3"} {
		assert.Equal(t, 0, f.reg.Count(f.byID(t, id), "click"), id)
	}
}

func TestHost_ReadyQueuesUntilSignal(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		fired = 0
		ready(function(ev)
			fired = fired + 1
			got_nil = ev == nil
		end)
	`)
	assert.Equal(t, 0, number(t, f.host, "fired"))

	err := f.host.Do(context.Background(), func() error {
		_, err := f.doc.SignalContentLoaded()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, number(t, f.host, "fired"))
	assert.Equal(t, lua.LTrue, f.host.GetGlobal("got_nil"))

	f.run(t, `ready(function() fired = fired + 10 end)`)
	assert.Equal(t, 11, number(t, f.host, "fired"))
}

func TestHost_MutationAndCreate(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		local list = document:find("#list"):item(1)
		local created = document:create("<li>four</li><li>five</li>", {class = "new"})
		list:append(created)
		document:find("#i1"):item(1):remove()
		document:find("#i2"):item(1):attr("data-x", "1"):text("TWO")
		tag = list:tag()
	`)

	list := f.byID(t, "list")
	html, err := list.OuterHTML()
	require.NoError(t, err)
	assert.Equal(t,
		`<ul id="list"><li id="i2" data-x="1">TWO</li><li id="i3">three</li><li class="new">four</li><li class="new">five</li></ul>`,
		html)
	assert.Equal(t, "ul", f.host.GetGlobal("tag").String())
}

func TestHost_Prepend(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		local list = document:find("#list"):item(1)
		list:prepend(document:find("#i3"):item(1), document:create("<li id='i0'>zero</li>"))
	`)

	html, err := f.byID(t, "list").OuterHTML()
	require.NoError(t, err)
	assert.Equal(t,
		`<ul id="list"><li id="i3">three</li><li id="i0">zero</li><li id="i1">one</li><li id="i2">two</li></ul>`,
		html)
}

func TestHost_FindPassesNodesAndListsThrough(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		local items = document:find("#list > li")
		local save = document:find("#save"):item(1)
		same_list = document:find(items) == items
		from_node = document:find(save)
		node_len = #from_node
		same_node = from_node:item(1) == save
		none = #document:find(nil)
	`)

	assert.Equal(t, lua.LTrue, f.host.GetGlobal("same_list"))
	assert.Equal(t, 1, number(t, f.host, "node_len"))
	assert.Equal(t, lua.LTrue, f.host.GetGlobal("same_node"))
	assert.Equal(t, 0, number(t, f.host, "none"))

	err := f.host.RunString(context.Background(), "bad.lua", `document:find(ready)`)
	require.Error(t, err)
}

func TestHost_EventsGlobal(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		document:find("#save"):item(1):on("click", function() end)
		document:find("#form"):item(1):on("submit", function() end)
		local all = events()
		n = #all
		first = all[1].node:attr("id")
		name = all[1].events.click[1].name
	`)
	assert.Equal(t, 2, number(t, f.host, "n"))
	assert.Equal(t, "save", f.host.GetGlobal("first").String())
	assert.Contains(t, f.host.GetGlobal("name").String(), "lua:test.lua:")
}

func TestHost_Sandbox(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"io", "os", "debug", "package", "require", "dofile", "loadfile", "load"} {
		assert.Equal(t, lua.LNil, f.host.GetGlobal(name), name)
	}
	assert.NotEqual(t, lua.LNil, f.host.GetGlobal("string"))
	assert.NotEqual(t, lua.LNil, f.host.GetGlobal("math"))
}

func TestHost_Log(t *testing.T) {
	f := newFixture(t)
	f.run(t, `log("hello", 42) print("world")`)
	out := f.logs.String()
	assert.Contains(t, out, "hello\t42")
	assert.Contains(t, out, "world")
	assert.Contains(t, out, "component=lua")
}

func TestHost_ScriptErrors(t *testing.T) {
	f := newFixture(t)

	err := f.host.RunString(context.Background(), "syntax.lua", "local = 1")
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "syntax.lua", se.Source)

	err = f.host.RunString(context.Background(), "raise.lua", `error("boom")`)
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "boom")

	err = f.host.RunString(context.Background(), "selector.lua", `document:find("[[")`)
	require.ErrorAs(t, err, &se)
}

func TestHost_ListenerErrorReachesGoDispatch(t *testing.T) {
	f := newFixture(t)
	f.run(t, `document:find("#save"):item(1):on("click", function() error("listener failed") end)`)

	err := f.host.Do(context.Background(), func() error {
		_, err := f.reg.Dispatch(f.byID(t, "save"), "click")
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener failed")
}

func TestHost_Timeout(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := f.host.RunString(ctx, "spin.lua", `while true do end`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

func TestHost_Closed(t *testing.T) {
	f := newFixture(t)
	f.host.Close()
	f.host.Close()
	assert.True(t, f.host.IsClosed())
	assert.ErrorIs(t, f.host.RunString(context.Background(), "x", ""), ErrHostClosed)
}
