// Package vdom provides the virtual node tree that components render and
// that pkg/reconcile diffs into bridge ops for the native side.
//
// # Core Types
//
// VNode is the single node type, discriminated by VKind: Element (a native
// widget addressed by a type string), Text, Fragment, Component, Portal and
// ErrorBoundary. Props holds element attributes; keys of the form "on"
// followed by an uppercase letter (see IsEventHandlerKey) declare event
// handlers.
//
// # Constructors
//
// Nodes are built with plain constructor functions:
//
//	Element("View", Props{"testID": "main"},
//	    Element("Button", Props{"onPress": handler}),
//	    TextNode("Title"),
//	)
//
// Fragment, NewPortal and NewErrorBoundary build the other node kinds, Func
// wraps a render function as a Component, and WithKey returns a shallow
// copy carrying a reconciliation key.
//
// # View IDs
//
// ViewIDAllocator hands out native view ids starting at 1 (0 is the
// host-created root). CollectViewIDs, FindByViewID and CountInteractive walk
// a tree. Diffing lives in pkg/reconcile, not in this package.
package vdom
