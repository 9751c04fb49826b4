// Package view holds the per-screen controllers. Each controller owns its
// own fetched snapshot, reloads on mount and on parameter changes, and
// patches records in place after mutations.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/hongminglow/wayfarer/internal/api"
)

// ErrStale is returned by Load when a newer load started, or the resource
// was closed, before the response arrived. The response is discarded.
var ErrStale = errors.New("view: response discarded")

// State is a snapshot of a fetched value.
type State[T any] struct {
	Loading bool
	Err     error
	Data    T
	// Loaded is true once a fetch has completed without error.
	Loaded bool
}

// Resource tracks one fetched value. Every Load takes a new generation;
// only the newest generation may commit, and nothing commits after Close.
type Resource[T any] struct {
	mu         sync.Mutex
	state      State[T]
	generation uint64
	closed     bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewResource returns a Resource whose fetches are cancelled when parent is
// done or Close is called.
func NewResource[T any](parent context.Context) *Resource[T] {
	ctx, cancel := context.WithCancel(parent)
	return &Resource[T]{ctx: ctx, cancel: cancel}
}

// Load runs fetch and commits its result if it is still the newest load.
// A malformed response body commits as "no data" rather than an error.
func (r *Resource[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrStale
	}
	r.generation++
	generation := r.generation
	r.state.Loading = true
	r.mu.Unlock()

	fetchCtx, stop := mergeCancel(ctx, r.ctx)
	data, err := fetch(fetchCtx)
	stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || generation != r.generation {
		return ErrStale
	}
	r.state.Loading = false
	switch {
	case err == nil:
		r.state.Data, r.state.Err, r.state.Loaded = data, nil, true
	case errors.Is(err, api.ErrMalformedResponse):
		var zero T
		r.state.Data, r.state.Err, r.state.Loaded = zero, nil, true
		return nil
	default:
		r.state.Err = err
	}
	return err
}

// Mutate patches the committed data in place. It is a no-op after Close.
func (r *Resource[T]) Mutate(patch func(*T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	patch(&r.state.Data)
}

// Reset drops the committed data and invalidates any in-flight load.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.state = State[T]{}
}

// Snapshot returns the current state.
func (r *Resource[T]) Snapshot() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close cancels in-flight fetches; their results are discarded.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
}

// mergeCancel returns a context cancelled when either a or b is done.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
