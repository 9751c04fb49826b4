package view

import (
	"context"

	"github.com/hongminglow/wayfarer/internal/session"
)

// Follow calls fn with every identity change until ctx is done. fn runs on
// a single goroutine, so calls never overlap.
func Follow(ctx context.Context, sessions *session.Context, fn func(context.Context, session.Event)) {
	events, cancel := sessions.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				fn(ctx, event)
			}
		}
	}()
}
