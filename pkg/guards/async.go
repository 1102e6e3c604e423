package guards

import (
	"context"

	"golang.org/x/sync/errgroup"

	naverrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/route"
)

// Unresolved returns the lazy components of records that have not been
// loaded yet.
func Unresolved(records []*route.Record) []*route.Lazy {
	var out []*route.Lazy
	seen := make(map[*route.Lazy]bool)
	for _, rec := range records {
		for _, slot := range rec.Slots() {
			lazy, ok := rec.Components[slot].(*route.Lazy)
			if !ok || seen[lazy] {
				continue
			}
			if _, done := lazy.Resolved(); done {
				continue
			}
			seen[lazy] = true
			out = append(out, lazy)
		}
	}
	return out
}

// ResolveAsync returns a guard that loads the lazy components of activated
// records concurrently. It proceeds once all are loaded and fails with a
// component resolution error otherwise. ctx cancels loading.
func ResolveAsync(ctx context.Context, activated []*route.Record) route.Guard {
	return func(to, from *route.Route, next route.Next) {
		lazies := Unresolved(activated)
		if len(lazies) == 0 {
			next(route.Proceed())
			return
		}

		go func() {
			g, gctx := errgroup.WithContext(ctx)
			for _, lazy := range lazies {
				g.Go(func() error {
					_, err := lazy.Resolve(gctx)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				next(route.Fail(naverrors.New(naverrors.CodeComponentResolution).
					Between(from.FullPath, to.FullPath).
					Wrap(err)))
				return
			}
			next(route.Proceed())
		}()
	}
}
