// Package dom provides the host document tree that domkit augments.
//
// A Document wraps a tree parsed by golang.org/x/net/html and keeps exactly one
// *Node per underlying html.Node, so node identity is stable for as long as the
// document lives. On top of that tree the package supplies the primitives a
// browser would normally provide:
//
//   - native listener lists (AddEventListener / RemoveEventListener)
//   - synchronous target and bubble phase dispatch (DispatchEvent)
//   - a CSS selector predicate backed by cascadia (Matches, Closest, Find)
//   - HTML fragment construction (Document.Create)
//   - ChildNode helpers (Before, After, ReplaceWith, Remove)
//   - a one-shot DOMContentLoaded signal (Document.SignalContentLoaded)
//
// # Listener handles
//
// Go function values are not comparable, so the native listener API is handle
// based: AddEventListener returns a ListenerID and RemoveEventListener takes it
// back. Identity-based removal is layered on top by the event package.
//
// # Thread Safety
//
// A Document and its nodes belong to a single goroutine, in the same way a
// browser document belongs to its event loop. None of the types here are safe
// for concurrent use.
package dom
