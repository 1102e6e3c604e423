// Package routepath holds the string-level helpers used to turn raw navigation
// targets into normalized paths: canonicalization, relative resolution against
// a base path, splitting of path/query/hash, and query string encoding.
//
// Nothing in this package knows about route records; it operates on strings
// and Query maps only, so the matcher, the history backends and the devtools
// surface can share it.
package routepath
