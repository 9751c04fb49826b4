package view

import (
	"context"
	"io"
	"sync"

	"github.com/hongminglow/wayfarer/internal/localstore"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/session"
)

// SettingsAPI is the backend surface the settings screen needs.
type SettingsAPI interface {
	Profile(ctx context.Context) (models.Profile, error)
	UpdateProfile(ctx context.Context, update dto.ProfileUpdate) (models.Profile, error)
	UploadAvatar(ctx context.Context, filename string, content io.Reader) (models.Profile, error)
	DeleteAccount(ctx context.Context) error
}

// SettingsSnapshot is everything the settings screen renders.
type SettingsSnapshot struct {
	Profile     State[models.Profile]
	Theme       session.Theme
	ActionError string
}

// Settings reads and edits the profile, the avatar, and the theme, and
// deletes the account.
type Settings struct {
	backend  SettingsAPI
	sessions *session.Context
	local    localstore.Store
	profile  *Resource[models.Profile]

	mu          sync.Mutex
	actionError string
}

// NewSettings builds the settings controller. local holds the theme flag.
func NewSettings(ctx context.Context, backend SettingsAPI, sessions *session.Context, local localstore.Store) *Settings {
	return &Settings{
		backend:  backend,
		sessions: sessions,
		local:    local,
		profile:  NewResource[models.Profile](ctx),
	}
}

// Mount loads the profile.
func (s *Settings) Mount(ctx context.Context) error {
	if _, ok := s.sessions.Current(); !ok {
		return s.fail(session.ErrNotLoggedIn, "Log in to view settings.")
	}
	return s.profile.Load(ctx, s.backend.Profile)
}

// Update saves profile edits and mirrors the email into the session record.
func (s *Settings) Update(ctx context.Context, update dto.ProfileUpdate) (models.Profile, error) {
	profile, err := s.backend.UpdateProfile(ctx, update)
	if err != nil {
		return models.Profile{}, s.fail(err, "Could not save your profile.")
	}
	s.profile.Mutate(func(current *models.Profile) { *current = profile })
	if profile.Email != "" {
		if err := s.sessions.Update(func(identity *models.Identity) {
			identity.Email = profile.Email
		}); err != nil {
			return profile, s.fail(err, "Profile saved, but the local session could not be updated.")
		}
	}
	return profile, s.fail(nil, "")
}

// UploadAvatar replaces the profile picture.
func (s *Settings) UploadAvatar(ctx context.Context, filename string, content io.Reader) (models.Profile, error) {
	profile, err := s.backend.UploadAvatar(ctx, filename, content)
	if err != nil {
		return models.Profile{}, s.fail(err, "Could not upload the picture.")
	}
	s.profile.Mutate(func(current *models.Profile) {
		if profile.Username == "" {
			current.AvatarURL = profile.AvatarURL
			return
		}
		*current = profile
	})
	return profile, s.fail(nil, "")
}

// DeleteAccount removes the account after confirmation and logs out.
func (s *Settings) DeleteAccount(ctx context.Context, confirm Confirm) error {
	if !confirmed(confirm, "Delete your account permanently? This cannot be undone.") {
		return s.fail(ErrCancelled, "")
	}
	if err := s.backend.DeleteAccount(ctx); err != nil {
		return s.fail(err, "Could not delete your account.")
	}
	s.profile.Reset()
	if err := s.sessions.Logout(); err != nil {
		return s.fail(err, "Account deleted, but the local session could not be cleared.")
	}
	return s.fail(nil, "")
}

// SetTheme stores the theme preference.
func (s *Settings) SetTheme(theme session.Theme) error {
	if err := session.SaveTheme(s.local, theme); err != nil {
		return s.fail(err, "Could not save the theme.")
	}
	return s.fail(nil, "")
}

func (s *Settings) fail(err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionError = Describe(err, fallback)
	return err
}

// Snapshot returns the current screen state.
func (s *Settings) Snapshot() SettingsSnapshot {
	s.mu.Lock()
	actionError := s.actionError
	s.mu.Unlock()
	return SettingsSnapshot{
		Profile:     s.profile.Snapshot(),
		Theme:       session.LoadTheme(s.local),
		ActionError: actionError,
	}
}

// Close discards any in-flight responses.
func (s *Settings) Close() {
	s.profile.Close()
}
