// Package devtools exposes a router over HTTP for inspection and remote
// driving: the current route, the route table, navigation endpoints,
// Prometheus metrics and, when the router runs over a remote backend, the
// websocket the browser-side history connects to.
//
//	GET  /route            current route
//	GET  /routes           route table
//	POST /navigate         {"path": "/users/1", "replace": false}
//	POST /go?n=-1          move through history
//	POST /back, /forward
//	GET  /metrics          Prometheus exposition
//	GET  /ws               remote history backend
//	GET  /healthz
package devtools
