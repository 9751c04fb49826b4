package view

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hongminglow/wayfarer/internal/api"
)

func TestResourceDiscardsSupersededResponse(t *testing.T) {
	resource := NewResource[string](context.Background())
	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- resource.Load(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()
	<-started

	if err := resource.Load(context.Background(), func(context.Context) (string, error) {
		return "new", nil
	}); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("first Load error = %v, want ErrStale", err)
	}
	if got := resource.Snapshot(); got.Data != "new" || got.Loading {
		t.Fatalf("Snapshot = %+v, want committed newer response", got)
	}
}

func TestResourceCloseDiscardsLateResponse(t *testing.T) {
	resource := NewResource[[]int](context.Background())
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- resource.Load(context.Background(), func(ctx context.Context) ([]int, error) {
			close(started)
			select {
			case <-ctx.Done():
				return []int{1, 2, 3}, nil
			case <-time.After(5 * time.Second):
				return nil, fmt.Errorf("fetch context was not cancelled")
			}
		})
	}()
	<-started
	resource.Close()

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("Load after Close = %v, want ErrStale", err)
	}
	if got := resource.Snapshot(); got.Data != nil || got.Loaded {
		t.Fatalf("closed resource committed data: %+v", got)
	}
	resource.Mutate(func(data *[]int) { *data = []int{9} })
	if got := resource.Snapshot(); got.Data != nil {
		t.Fatal("Mutate applied after Close")
	}
}

func TestResourceMalformedIsNoData(t *testing.T) {
	resource := NewResource[[]string](context.Background())
	resource.Load(context.Background(), func(context.Context) ([]string, error) {
		return []string{"a"}, nil
	})
	err := resource.Load(context.Background(), func(context.Context) ([]string, error) {
		return nil, fmt.Errorf("%w: bad json", api.ErrMalformedResponse)
	})
	if err != nil {
		t.Fatalf("Load = %v, want nil for malformed body", err)
	}
	if got := resource.Snapshot(); got.Err != nil || got.Data != nil || !got.Loaded {
		t.Fatalf("Snapshot = %+v", got)
	}
}

func TestResourceKeepsDataOnError(t *testing.T) {
	resource := NewResource[string](context.Background())
	resource.Load(context.Background(), func(context.Context) (string, error) { return "v1", nil })
	failure := &api.HTTPError{Status: 500}
	if err := resource.Load(context.Background(), func(context.Context) (string, error) {
		return "", failure
	}); err != failure {
		t.Fatalf("Load = %v", err)
	}
	got := resource.Snapshot()
	if got.Data != "v1" || got.Err != failure {
		t.Fatalf("Snapshot = %+v", got)
	}
}
