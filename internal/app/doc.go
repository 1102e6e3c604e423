// Package app assembles a navcore router from configuration: it loads the
// route manifest, wires metrics and tracing observers, mounts simulated
// component instances for every committed route and exposes the devtools
// HTTP surface.
//
// It backs the navsim command.
package app
