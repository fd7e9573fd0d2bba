// Package router resolves application paths against the quiz route table
// and runs every transition through the navigation guard. Transitions are
// serialized: one is decided and committed before the next starts.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultMaxRedirects bounds the redirects followed by one transition
const DefaultMaxRedirects = 8

var ErrRedirectLoop = errors.New("too many redirects")

// Router holds the current location and applies guarded transitions
type Router struct {
	table        *Table
	guard        *Guard
	logger       *zap.Logger
	maxRedirects int

	mu      sync.Mutex
	current Location
	history []Location
	started bool
}

// New creates a router over a table and guard
func New(table *Table, guard *Guard, logger *zap.Logger) *Router {
	return &Router{
		table:        table,
		guard:        guard,
		logger:       logger,
		maxRedirects: DefaultMaxRedirects,
	}
}

// Table returns the route table
func (r *Router) Table() *Table {
	return r.table
}

// Current returns the committed location
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns previously committed locations, oldest first
func (r *Router) History() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Location, len(r.history))
	copy(out, r.history)
	return out
}

// ReturnTo returns the path the login route was asked to send the user
// back to, if any.
func (r *Router) ReturnTo() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current.Name != Login {
		return ""
	}
	return r.current.Query.Get(RedirectQueryKey)
}

// Push navigates to a raw application path
func (r *Router) Push(ctx context.Context, path string) error {
	loc, err := r.table.Resolve(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transition(ctx, loc)
}

// Navigate navigates to a named route
func (r *Router) Navigate(ctx context.Context, name string) error {
	return r.NavigateTo(ctx, Target{Name: name})
}

// NavigateTo navigates to a named route with params and query
func (r *Router) NavigateTo(ctx context.Context, target Target) error {
	loc, err := r.table.Location(target.Name, target.Params, target.Query)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transition(ctx, loc)
}

// ForceNavigate performs a navigation that did not originate from the
// user, such as the logout forced by a rejected credential. It is a no-op
// when the router already sits at path.
func (r *Router) ForceNavigate(ctx context.Context, path string) error {
	loc, err := r.table.Resolve(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started && r.current.Path == loc.Path {
		r.logger.Debug("forced navigation skipped, already there", zap.String("path", loc.Path))
		return nil
	}
	r.logger.Info("forced navigation", zap.String("path", loc.Path))
	return r.transition(ctx, loc)
}

// transition follows route redirects and guard decisions until a location
// is allowed, then commits it. Callers hold r.mu.
func (r *Router) transition(ctx context.Context, loc Location) error {
	requested := loc.FullPath()

	for hops := 0; ; hops++ {
		if hops > r.maxRedirects {
			r.logger.Warn("redirect loop detected", zap.String("path", requested))
			return fmt.Errorf("%w: navigating to %s", ErrRedirectLoop, requested)
		}

		if loc.Route != nil && loc.Route.Redirect != nil {
			next, err := r.table.Location(loc.Route.Redirect(ctx), nil, loc.Query)
			if err != nil {
				return fmt.Errorf("route %s redirect: %w", loc.Name, err)
			}
			loc = next
			continue
		}

		decision := r.guard.Decide(ctx, loc)
		if decision.Proceeds() {
			break
		}

		r.logger.Debug("guard redirect",
			zap.String("from", loc.FullPath()),
			zap.String("to", decision.Target.Name),
			zap.String("reason", decision.Reason))

		next, err := r.table.Location(decision.Target.Name, decision.Target.Params, decision.Target.Query)
		if err != nil {
			return fmt.Errorf("guard redirect: %w", err)
		}
		loc = next
	}

	if r.started {
		r.history = append(r.history, r.current)
	}
	r.current = loc
	r.started = true

	r.logger.Debug("navigated",
		zap.String("requested", requested),
		zap.String("path", loc.FullPath()),
		zap.String("route", loc.Name))
	return nil
}
