// Package router is the application-facing navigation API.
//
// A Router owns a route table (pkg/matcher), a History orchestrating guarded
// transitions over a backend (pkg/history), and the global guard registries.
// Navigation can be driven with callbacks, mirroring the History API, or
// synchronously through Navigate, Push and Replace, which block until the
// transition commits or stops.
//
//	r, err := router.New(router.Config{
//	    Routes: []matcher.RouteConfig{
//	        {Path: "/", Component: Home},
//	        {Path: "/users/:id:int", Name: "user", Component: User},
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	r.BeforeEach(requireLogin)
//	if _, err := r.Start(ctx); err != nil {
//	    return err
//	}
//	_, err = r.Navigate(ctx, "/users/42", router.WithQuery("tab", "posts"))
//
// # Links
//
// Link resolves a target against the current route and reports its href and
// active state, the way a rendered anchor needs them:
//
//	l := r.Link(route.Named("user", map[string]string{"id": "42"}))
//	l.Href        // "/users/42"
//	l.Class()     // "router-link-active router-link-exact-active" when on it
package router
