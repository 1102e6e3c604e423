package guards

import (
	"github.com/vango-dev/navcore/pkg/route"
)

// BindFunc turns a raw hook found on rec's slot component into a guard.
// Returning nil drops the hook.
type BindFunc func(hook route.Hook, rec *route.Record, slot string) route.Guard

// Extract collects the hooks registered under name on every slot component of
// records and binds them. Hooks keep their order within one component; with
// reverse set, the component groups run deepest record first.
func Extract(records []*route.Record, name string, bind BindFunc, reverse bool) []route.Guard {
	var groups [][]route.Guard
	for _, rec := range records {
		for _, slot := range rec.Slots() {
			comp := rec.Components[slot]
			if comp == nil {
				continue
			}
			var group []route.Guard
			for _, hook := range comp.Hooks(name) {
				if hook == nil {
					continue
				}
				if g := bind(hook, rec, slot); g != nil {
					group = append(group, g)
				}
			}
			if len(group) > 0 {
				groups = append(groups, group)
			}
		}
	}

	if reverse {
		for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
			groups[i], groups[j] = groups[j], groups[i]
		}
	}

	var out []route.Guard
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Leave returns the leave hooks of deactivated records, deepest first.
func Leave(deactivated []*route.Record) []route.Guard {
	return Extract(deactivated, route.HookBeforeRouteLeave, bindInstance, true)
}

// Update returns the update hooks of reused records, root first.
func Update(updated []*route.Record) []route.Guard {
	return Extract(updated, route.HookBeforeRouteUpdate, bindInstance, false)
}

// bindInstance binds hook to the live instance of the slot. Hooks of slots
// without a live instance are skipped.
func bindInstance(hook route.Hook, rec *route.Record, slot string) route.Guard {
	inst, ok := rec.LiveInstance(slot)
	if !ok {
		return nil
	}
	return func(to, from *route.Route, next route.Next) {
		hook(inst, to, from, next)
	}
}
