// Package errors provides the coded failure taxonomy for navcore.
//
// Every failure the navigation engine reports is a *NavError carrying a stable
// code, a category, and the source and target of the navigation that produced it.
//
// # Error Categories
//
//   - navigation: transition outcomes (duplicated, aborted, redirected, cancelled)
//   - guard: failures raised by guards (explicit errors, panics)
//   - component: deferred component loading failures
//   - matcher: route table problems (bad patterns, unknown names, missing params)
//   - config: configuration and manifest problems
//
// # Error Codes
//
// Codes are registered in a single table so that every failure has a short
// message and a longer explanation:
//
//	err := errors.New(errors.CodeAborted).Between("/a", "/b")
//	fmt.Println(err)
//	// N002: Navigation aborted by a guard (from "/a" to "/b")
//
// Two NavErrors match under errors.Is when their codes are equal, so callers
// compare against sentinels without caring about the route details:
//
//	if errors.Is(err, history.ErrAborted) { ... }
package errors
