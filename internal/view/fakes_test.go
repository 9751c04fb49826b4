package view

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/localstore"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/session"
)

// fakeBackend records calls and returns canned data. Any method whose
// error field is set fails with that error.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	places    []models.Place
	saved     []models.SavedPlace
	posts     []models.Post
	services  []models.Service
	profile   models.Profile
	dashboard models.Dashboard
	counts    models.ReactionCounts

	err error
}

func (f *fakeBackend) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if call == name {
			n++
		}
	}
	return n
}

func (f *fakeBackend) Areas(context.Context) ([]models.Area, error) {
	return []models.Area{{ID: 1, Name: "Old Town"}}, f.record("Areas")
}

func (f *fakeBackend) Places(context.Context, api.PlaceQuery) ([]models.Place, error) {
	if err := f.record("Places"); err != nil {
		return nil, err
	}
	return f.places, nil
}

func (f *fakeBackend) SavedPlaces(context.Context) ([]models.SavedPlace, error) {
	if err := f.record("SavedPlaces"); err != nil {
		return nil, err
	}
	return f.saved, nil
}

func (f *fakeBackend) SavePlace(_ context.Context, id int64) (models.SavedPlace, error) {
	if err := f.record("SavePlace"); err != nil {
		return models.SavedPlace{}, err
	}
	return models.SavedPlace{ID: 100 + id, Place: models.Place{ID: id}}, nil
}

func (f *fakeBackend) UnsavePlace(context.Context, int64) error {
	return f.record("UnsavePlace")
}

func (f *fakeBackend) Posts(context.Context, api.PostQuery) ([]models.Post, error) {
	if err := f.record("Posts"); err != nil {
		return nil, err
	}
	return f.posts, nil
}

func (f *fakeBackend) Post(_ context.Context, id int64) (models.Post, error) {
	if err := f.record("Post"); err != nil {
		return models.Post{}, err
	}
	for _, post := range f.posts {
		if post.ID == id {
			return post, nil
		}
	}
	return models.Post{}, &api.HTTPError{Status: 404, Detail: "Not found."}
}

func (f *fakeBackend) CreatePost(_ context.Context, request dto.CreatePostRequest) (models.Post, error) {
	if err := f.record("CreatePost"); err != nil {
		return models.Post{}, err
	}
	return models.Post{ID: 99, Title: request.Title, Category: request.Category}, nil
}

func (f *fakeBackend) React(context.Context, int64, models.Reaction) (models.ReactionCounts, error) {
	if err := f.record("React"); err != nil {
		return models.ReactionCounts{}, err
	}
	return f.counts, nil
}

func (f *fakeBackend) AddComment(_ context.Context, _ int64, text string) (dto.CommentResponse, error) {
	if err := f.record("AddComment"); err != nil {
		return dto.CommentResponse{}, err
	}
	return dto.CommentResponse{Comment: models.Comment{ID: 1, Text: text}, CommentsCount: 3}, nil
}

func (f *fakeBackend) Services(context.Context, api.ServiceQuery) ([]models.Service, error) {
	if err := f.record("Services"); err != nil {
		return nil, err
	}
	return f.services, nil
}

func (f *fakeBackend) CreateService(_ context.Context, service models.Service) (models.Service, error) {
	if err := f.record("CreateService"); err != nil {
		return models.Service{}, err
	}
	service.ID = 50
	return service, nil
}

func (f *fakeBackend) UpdateService(_ context.Context, id int64, patch dto.ServicePatch) (models.Service, error) {
	if err := f.record("UpdateService"); err != nil {
		return models.Service{}, err
	}
	for _, service := range f.services {
		if service.ID == id {
			patch.Apply(&service)
			return service, nil
		}
	}
	return models.Service{}, &api.HTTPError{Status: 404}
}

func (f *fakeBackend) DeleteService(context.Context, int64) error {
	return f.record("DeleteService")
}

func (f *fakeBackend) Profile(context.Context) (models.Profile, error) {
	if err := f.record("Profile"); err != nil {
		return models.Profile{}, err
	}
	return f.profile, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, update dto.ProfileUpdate) (models.Profile, error) {
	if err := f.record("UpdateProfile"); err != nil {
		return models.Profile{}, err
	}
	profile := f.profile
	if update.Email != nil {
		profile.Email = *update.Email
	}
	if update.Bio != nil {
		profile.Bio = *update.Bio
	}
	return profile, nil
}

func (f *fakeBackend) UploadAvatar(_ context.Context, filename string, content io.Reader) (models.Profile, error) {
	if err := f.record("UploadAvatar"); err != nil {
		return models.Profile{}, err
	}
	io.Copy(io.Discard, content)
	profile := f.profile
	profile.AvatarURL = "/media/" + filename
	return profile, nil
}

func (f *fakeBackend) DeleteAccount(context.Context) error {
	return f.record("DeleteAccount")
}

func (f *fakeBackend) Dashboard(_ context.Context, role models.Role) (models.Dashboard, error) {
	if err := f.record("Dashboard"); err != nil {
		return models.Dashboard{}, err
	}
	dashboard := f.dashboard
	dashboard.Role = role
	return dashboard, nil
}

func newSessions(t *testing.T, identity *models.Identity) *session.Context {
	t.Helper()
	sessions := session.NewContext(session.NewStore(localstore.NewMemoryStore(), nil))
	if identity != nil {
		if err := sessions.Login(*identity); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}
	return sessions
}

func traveler() *models.Identity {
	return &models.Identity{Username: "ana", Role: models.Traveler, Token: "t-ana"}
}

func merchant(mode models.Role) *models.Identity {
	return &models.Identity{Username: "mo", Role: models.Merchant, Mode: mode, Token: "t-mo"}
}

func admin() *models.Identity {
	return &models.Identity{Username: "root", Role: models.Admin, Token: "t-root"}
}

func yes(string) bool { return true }
func no(string) bool  { return false }
