package closer

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group collects shutdown hooks and runs them together.
type Group struct {
	locker sync.Mutex
	hooks  []hook
}

type hook struct {
	name string
	f    func(context.Context) error
}

func (g *Group) Add(name string, f func(context.Context) error) {
	g.locker.Lock()
	defer g.locker.Unlock()
	g.hooks = append(g.hooks, hook{name: name, f: f})
}

// Close runs every hook concurrently and returns the first failure.
// Hooks are dropped afterwards, so a second Close is a no-op.
func (g *Group) Close(ctx context.Context) error {
	g.locker.Lock()
	hooks := g.hooks
	g.hooks = nil
	g.locker.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	for _, h := range hooks {
		eg.Go(func() error {
			if err := h.f(ctx); err != nil {
				return fmt.Errorf("close %s: %w", h.name, err)
			}
			return nil
		})
	}

	return eg.Wait()
}
