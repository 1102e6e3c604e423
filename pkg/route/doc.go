// Package route defines the value types the navigation engine works on.
//
// A Location is a navigation request that has not been resolved yet. The
// matcher turns it into a Route: an immutable snapshot holding the resolved
// path, query, hash, params and the chain of matched Records (root first,
// leaf last).
//
// Records are nodes of the static route table. The only mutable part of a
// Record is its instance registry, which maps a named view slot to the live
// component instance currently rendering it. The view layer writes to it via
// RegisterInstance; guards waiting for a freshly mounted instance read it via
// WaitInstance.
//
// Guards are plain functions receiving the target route, the route being left
// and a single-use continuation:
//
//	func requireAuth(to, from *route.Route, next route.Next) {
//	    if !loggedIn() {
//	        next(route.RedirectPath("/login"))
//	        return
//	    }
//	    next(route.Proceed())
//	}
package route
