package history

import "github.com/vango-dev/navcore/pkg/route"

// Diff classifies matched records between two routes.
type Diff struct {
	// Updated are reused records (shared prefix).
	Updated []*route.Record
	// Activated are records entered by the navigation.
	Activated []*route.Record
	// Deactivated are records left by the navigation.
	Deactivated []*route.Record
}

// ResolveQueue compares current and next record chains by identity. Records
// up to the first difference are updated; the rest of next is activated and
// the rest of current deactivated.
func ResolveQueue(current, next []*route.Record) Diff {
	i := 0
	for i < len(current) && i < len(next) && current[i] == next[i] {
		i++
	}
	return Diff{
		Updated:     next[:i:i],
		Activated:   next[i:],
		Deactivated: current[i:],
	}
}
