// Package script hosts user Lua scripts against a document and its event
// registry.
//
// A Host owns one gopher-lua state. Scripts see:
//
//	document              the document node
//	ready(fn)             run fn once the document has loaded
//	log(...)              write an info line (print is an alias)
//	events()              snapshot of every registered listener
//
// Nodes expose on, off, dispatch, events, find, matches, closest, attr, text,
// html, tag, append, before, after, replace_with, remove, as_list and create.
// Lists returned by find, as_list and create expose on, off, each, item and
// len. Lists are 1-indexed.
//
// Every node maps to a single userdata value, so == compares node identity in
// Lua. A Lua function passed to on is the listener itself: passing the same
// function to off removes it.
//
//	local save = document:find("#save"):item(1)
//	local function onClick(ev) ev:prevent_default() end
//	save:on("click", onClick)
//	save:off("click", onClick)
//
// Only the base, table, string and math libraries are opened. The state is
// not safe for concurrent use.
package script
