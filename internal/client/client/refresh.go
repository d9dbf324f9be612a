package client

import (
	"context"
	"sync"
)

type RefreshState int

const (
	Idle RefreshState = iota
	Refreshing
)

func (s RefreshState) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

type flight struct {
	done chan struct{}
	ok   bool
}

// RefreshGuard allows at most one refresh to run at a time. Callers that
// arrive while a refresh is in flight wait for its result instead of
// starting their own. The guard returns to Idle as soon as the flight
// resolves, whatever the outcome.
//
// The zero value is Idle and ready to use.
type RefreshGuard struct {
	mu      sync.Mutex
	pending *flight
	waiting int
}

func (g *RefreshGuard) State() RefreshState {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending != nil {
		return Refreshing
	}
	return Idle
}

// Do starts fn when the guard is Idle, or attaches to the pending flight
// otherwise, and waits for the flight's result.
//
// fn runs on its own goroutine with a context that is not cancelled together
// with ctx. If ctx ends first, Do returns ctx.Err() and the flight carries on
// for the remaining waiters. A panicking fn counts as a failed refresh.
func (g *RefreshGuard) Do(ctx context.Context, fn func(ctx context.Context) bool) (bool, error) {
	g.mu.Lock()
	f := g.pending
	if f == nil {
		f = &flight{done: make(chan struct{})}
		g.pending = f
		go g.run(context.WithoutCancel(ctx), f, fn)
	}
	g.waiting++
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.waiting--
		g.mu.Unlock()
	}()

	select {
	case <-f.done:
		return f.ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (g *RefreshGuard) run(ctx context.Context, f *flight, fn func(context.Context) bool) {
	ok := false
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
		g.mu.Lock()
		f.ok = ok
		g.pending = nil
		g.mu.Unlock()
		close(f.done)
	}()

	ok = fn(ctx)
}

func (g *RefreshGuard) waiters() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiting
}
