// Package session owns the persisted identity record and the in-process
// session context that views read it through.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hongminglow/wayfarer/internal/localstore"
	"github.com/hongminglow/wayfarer/internal/models"
)

// Key is the local storage key holding the identity record.
const Key = "wayfarer.session"

// ErrInvalidIdentity is returned when saving a record that could not be
// loaded back (unknown role or empty token).
var ErrInvalidIdentity = errors.New("session: identity needs a known role and a token")

// Store reads and writes the identity record.
type Store struct {
	local  localstore.Store
	logger *slog.Logger
}

// NewStore returns a Store over local. A nil logger uses slog.Default.
func NewStore(local localstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{local: local, logger: logger}
}

// Load returns the stored identity. Missing, unreadable, or malformed
// records all report as absent.
func (s *Store) Load() (models.Identity, bool) {
	raw, ok, err := s.local.Get(Key)
	if err != nil {
		s.logger.Warn("reading session failed", "error", err)
		return models.Identity{}, false
	}
	if !ok {
		return models.Identity{}, false
	}
	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.Debug("ignoring malformed session record", "error", err)
		return models.Identity{}, false
	}
	if !identity.Valid() {
		s.logger.Debug("ignoring invalid session record", "role", identity.Role)
		return models.Identity{}, false
	}
	return identity, true
}

// Save replaces the stored record with identity.
func (s *Store) Save(identity models.Identity) error {
	if !identity.Valid() {
		return ErrInvalidIdentity
	}
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("session: encode identity: %w", err)
	}
	if err := s.local.Set(Key, string(data)); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Clear removes the stored record.
func (s *Store) Clear() error {
	if err := s.local.Delete(Key); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}
