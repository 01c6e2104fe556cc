// Package vdom provides the virtual tree and the reconciler that keeps
// a live presentation tree in sync with it.
//
// A VNode is a lightweight description of desired structure: an element
// (tag, props, children) or a text node. Application code builds a
// fresh VNode tree on every update; the Reconciler compares it against
// the previous generation and performs the minimal set of live-tree
// mutations through the livetree primitives.
//
// # Building Trees
//
// Elements are created with variadic factory functions:
//
//	vdom.Div(vdom.Class("card"),
//	    vdom.H1(vdom.Text("Title")),
//	    vdom.Button(vdom.OnClick(func(ev vdom.Event) any { return Increment{} }),
//	        vdom.Text("+1"),
//	    ),
//	)
//
// # Reconciliation
//
// Apply walks both generations depth-first. A live binding moves from
// the previous node to the new one when shapes match; a shape mismatch
// replaces the live node; an unbound previous (or none at all) creates
// and appends a fresh one. Children pair strictly by position - there
// is no keyed reordering. After Apply returns, the previous generation
// is consumed: its bindings have moved into the new tree or their live
// nodes have been destroyed.
//
// Messages produced by event listeners are routed through a Sink passed
// down the recursion by value.
package vdom
