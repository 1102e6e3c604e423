// Package view resolves which matched record a view position renders and
// wires component instances back onto their records.
//
// A host UI builds a tree of Nodes mirroring its component tree. Every
// router view placed in that tree is a View; rendering a View against the
// current route picks route.Matched[depth], where depth is the number of
// view-rendered ancestors between the View and the navigation root.
//
//	root := view.NewRoot()
//	outer := view.New(root, route.DefaultSlot)
//	r := outer.Render(current)       // renders Matched[0]
//	inner := view.New(r.Node, route.DefaultSlot)
//	inner.Render(current)            // renders Matched[1]
//
// The host reports component lifecycle back through Rendered: Register on
// creation, Unregister on destruction, Prepatch when a live instance is
// reused by a new vnode, and Init when a kept-alive instance is reactivated.
package view
