package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/collection"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/session"
)

// PlacesAPI is the backend surface the explore view needs.
type PlacesAPI interface {
	Areas(ctx context.Context) ([]models.Area, error)
	Places(ctx context.Context, query api.PlaceQuery) ([]models.Place, error)
	SavedPlaces(ctx context.Context) ([]models.SavedPlace, error)
	SavePlace(ctx context.Context, placeID int64) (models.SavedPlace, error)
	UnsavePlace(ctx context.Context, placeID int64) error
}

// PlaceItem is a place with its derived saved flag.
type PlaceItem struct {
	models.Place
	Saved bool
}

// ExploreSnapshot is everything the explore screen renders.
type ExploreSnapshot struct {
	Query       api.PlaceQuery
	Filter      string
	Areas       State[[]models.Area]
	Places      State[[]models.Place]
	Visible     []PlaceItem
	Saved       State[[]models.SavedPlace]
	ActionError string
}

// Explore lists places, the user's saved set, and a local text filter.
type Explore struct {
	backend  PlacesAPI
	sessions *session.Context

	areas  *Resource[[]models.Area]
	places *Resource[[]models.Place]
	saved  *Resource[[]models.SavedPlace]

	mu          sync.Mutex
	query       api.PlaceQuery
	filter      string
	actionError string
}

// NewExplore builds the explore controller. Fetches are bound to ctx.
func NewExplore(ctx context.Context, backend PlacesAPI, sessions *session.Context) *Explore {
	return &Explore{
		backend:  backend,
		sessions: sessions,
		areas:    NewResource[[]models.Area](ctx),
		places:   NewResource[[]models.Place](ctx),
		saved:    NewResource[[]models.SavedPlace](ctx),
	}
}

// Mount loads areas, places and, when logged in, the saved set. A failed
// areas fetch does not stop the rest; it is reported once they finish.
func (e *Explore) Mount(ctx context.Context) error {
	areasErr := e.areas.Load(ctx, e.backend.Areas)
	if err := e.loadPlaces(ctx); err != nil {
		return err
	}
	if err := e.ReloadSaved(ctx); err != nil {
		return err
	}
	if areasErr != nil && !errors.Is(areasErr, ErrStale) {
		return e.fail(areasErr, "Could not load areas.")
	}
	return nil
}

// SetQuery changes the server-side area/category parameters and refetches.
func (e *Explore) SetQuery(ctx context.Context, query api.PlaceQuery) error {
	e.mu.Lock()
	e.query = query
	e.mu.Unlock()
	return e.loadPlaces(ctx)
}

func (e *Explore) loadPlaces(ctx context.Context) error {
	e.mu.Lock()
	query := e.query
	e.mu.Unlock()
	return e.places.Load(ctx, func(ctx context.Context) ([]models.Place, error) {
		return e.backend.Places(ctx, query)
	})
}

// ReloadSaved refreshes the saved set, or clears it when logged out.
func (e *Explore) ReloadSaved(ctx context.Context) error {
	if _, ok := e.sessions.Current(); !ok {
		e.saved.Reset()
		return nil
	}
	return e.saved.Load(ctx, e.backend.SavedPlaces)
}

// SetFilter changes the local text filter. It never triggers a fetch.
func (e *Explore) SetFilter(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = text
}

// Save bookmarks a place and adds it to the local saved set.
func (e *Explore) Save(ctx context.Context, placeID int64) error {
	if _, ok := e.sessions.Current(); !ok {
		return e.fail(&DeniedError{Action: "save", Reason: "login required"}, "")
	}
	saved, err := e.backend.SavePlace(ctx, placeID)
	if err != nil {
		return e.fail(err, "Could not save this place.")
	}
	if saved.Place.ID == 0 {
		saved.Place, _ = collection.Find(e.places.Snapshot().Data, placeID)
	}
	e.saved.Mutate(func(items *[]models.SavedPlace) {
		*items = collection.Upsert(*items, saved)
	})
	return e.fail(nil, "")
}

// Unsave removes a bookmark after confirmation.
func (e *Explore) Unsave(ctx context.Context, placeID int64, confirm Confirm) error {
	name := fmt.Sprintf("place %d", placeID)
	if place, ok := collection.Find(e.places.Snapshot().Data, placeID); ok {
		name = place.Name
	}
	if !confirmed(confirm, fmt.Sprintf("Remove %s from saved places?", name)) {
		return e.fail(ErrCancelled, "")
	}
	if err := e.backend.UnsavePlace(ctx, placeID); err != nil {
		return e.fail(err, "Could not remove this place.")
	}
	e.saved.Mutate(func(items *[]models.SavedPlace) {
		*items = collection.Remove(*items, placeID)
	})
	return e.fail(nil, "")
}

func (e *Explore) fail(err error, fallback string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actionError = Describe(err, fallback)
	return err
}

// Snapshot returns the current screen state with the filter applied.
func (e *Explore) Snapshot() ExploreSnapshot {
	e.mu.Lock()
	query, filter, actionError := e.query, e.filter, e.actionError
	e.mu.Unlock()

	places := e.places.Snapshot()
	saved := e.saved.Snapshot()
	savedIDs := collection.Keys(saved.Data)

	var visible []PlaceItem
	for _, place := range collection.Filter(places.Data, filter, placeFields) {
		visible = append(visible, PlaceItem{Place: place, Saved: savedIDs[place.ID]})
	}
	return ExploreSnapshot{
		Query:       query,
		Filter:      filter,
		Areas:       e.areas.Snapshot(),
		Places:      places,
		Visible:     visible,
		Saved:       saved,
		ActionError: actionError,
	}
}

// FollowSession reloads the saved set whenever the identity changes, until
// ctx is done.
func (e *Explore) FollowSession(ctx context.Context) {
	Follow(ctx, e.sessions, func(ctx context.Context, _ session.Event) {
		e.ReloadSaved(ctx)
	})
}

// Close discards any in-flight responses.
func (e *Explore) Close() {
	e.areas.Close()
	e.places.Close()
	e.saved.Close()
}

func placeFields(place models.Place) []string {
	return []string{place.Name, place.AreaName, place.Category}
}
