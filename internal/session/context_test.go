package session

import (
	"errors"
	"testing"
	"time"

	"github.com/hongminglow/wayfarer/internal/localstore"
	"github.com/hongminglow/wayfarer/internal/models"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("no session event delivered")
		return Event{}
	}
}

func TestContextPropagatesLoginAndLogout(t *testing.T) {
	store := NewStore(localstore.NewMemoryStore(), nil)
	ctx := NewContext(store)

	explore, cancelExplore := ctx.Subscribe()
	defer cancelExplore()
	feed, cancelFeed := ctx.Subscribe()
	defer cancelFeed()

	identity := models.Identity{Username: "ana", Role: models.Traveler, Token: "t1"}
	if err := ctx.Login(identity); err != nil {
		t.Fatalf("Login: %v", err)
	}

	for _, ch := range []<-chan Event{explore, feed} {
		event := receive(t, ch)
		if !event.LoggedIn || event.Identity.Username != "ana" || event.Identity.Mode != models.Traveler {
			t.Fatalf("event = %+v", event)
		}
	}
	if stored, ok := store.Load(); !ok || stored.Token != "t1" {
		t.Fatalf("store not written before notify: %+v %v", stored, ok)
	}

	if err := ctx.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	for _, ch := range []<-chan Event{explore, feed} {
		if event := receive(t, ch); event.LoggedIn {
			t.Fatalf("event after logout = %+v", event)
		}
	}
	if ctx.Token() != "" {
		t.Fatal("token still set after logout")
	}
}

func TestContextSlowSubscriberSeesLatest(t *testing.T) {
	ctx := NewContext(NewStore(localstore.NewMemoryStore(), nil))
	events, cancel := ctx.Subscribe()
	defer cancel()

	ctx.Login(models.Identity{Username: "a", Role: models.Traveler, Token: "t1"})
	ctx.Login(models.Identity{Username: "b", Role: models.Traveler, Token: "t2"})

	if event := receive(t, events); event.Identity.Username != "b" {
		t.Fatalf("event = %+v, want latest login", event)
	}
}

func TestContextSwitchMode(t *testing.T) {
	tests := []struct {
		name    string
		role    models.Role
		mode    models.Role
		wantErr error
	}{
		{"merchant to traveler", models.Merchant, models.Traveler, nil},
		{"merchant back to merchant", models.Merchant, models.Merchant, nil},
		{"traveler to merchant", models.Traveler, models.Merchant, ErrModeNotAllowed},
		{"admin to traveler", models.Admin, models.Traveler, ErrModeNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext(NewStore(localstore.NewMemoryStore(), nil))
			ctx.Login(models.Identity{Username: "u", Role: tt.role, Token: "t"})
			err := ctx.SwitchMode(tt.mode, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SwitchMode error = %v, want %v", err, tt.wantErr)
			}
			current, _ := ctx.Current()
			if tt.wantErr == nil && current.Mode != tt.mode {
				t.Fatalf("mode = %q, want %q", current.Mode, tt.mode)
			}
		})
	}
}

func TestContextSwitchModeReplacesToken(t *testing.T) {
	ctx := NewContext(NewStore(localstore.NewMemoryStore(), nil))
	ctx.Login(models.Identity{Username: "mei", Role: models.Merchant, Token: "merchant-token"})
	events, cancel := ctx.Subscribe()
	defer cancel()

	if err := ctx.SwitchMode(models.Traveler, "traveler-token"); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	event := receive(t, events)
	if event.Identity.Token != "traveler-token" || event.Identity.Mode != models.Traveler {
		t.Fatalf("event identity = %+v", event.Identity)
	}
}

func TestContextSeedsFromStore(t *testing.T) {
	store := NewStore(localstore.NewMemoryStore(), nil)
	store.Save(models.Identity{Username: "z", Role: models.Admin, Mode: models.Admin, Token: "t"})
	ctx := NewContext(store)
	if current, ok := ctx.Current(); !ok || current.Username != "z" {
		t.Fatalf("Current = %+v, %v", current, ok)
	}
}

func TestContextUpdateRequiresSession(t *testing.T) {
	ctx := NewContext(NewStore(localstore.NewMemoryStore(), nil))
	err := ctx.Update(func(*models.Identity) {})
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("Update error = %v", err)
	}
}
