// Package memory provides in-process stores for the development backend.
// Data lives only as long as the process.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/storage"
)

var _ storage.UserStore = (*UserStore)(nil)

// UserStore keeps accounts in a map.
type UserStore struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	nextID int64
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]models.User), nextID: 1}
}

// CreateUser inserts user. Usernames and emails are unique ignoring case.
func (s *UserStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = s.nextID
	s.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
	return user, nil
}

// FindByID fetches a user by id.
func (s *UserStore) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// FindByUsername fetches a user by username, ignoring case.
func (s *UserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	return s.find(func(user models.User) bool {
		return strings.EqualFold(user.Username, username)
	})
}

// FindByUsernameOrEmail fetches the user whose username or email matches.
func (s *UserStore) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	return s.find(func(user models.User) bool {
		return strings.EqualFold(user.Username, identifier) || strings.EqualFold(user.Email, identifier)
	})
}

func (s *UserStore) find(match func(models.User) bool) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if match(user) {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// UpdateUser replaces the stored record with the same id.
func (s *UserStore) UpdateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return models.User{}, storage.ErrNotFound
	}
	for id, existing := range s.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.users[user.ID] = user
	return user, nil
}

// DeleteUser removes the account.
func (s *UserStore) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// SearchUsers returns up to limit users whose username contains query,
// ordered by username.
func (s *UserStore) SearchUsers(_ context.Context, query string, limit int) ([]models.UserSummary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	var out []models.UserSummary
	for _, user := range s.users {
		if strings.Contains(strings.ToLower(user.Username), query) {
			out = append(out, models.UserSummary{ID: user.ID, Username: user.Username, Role: user.Role})
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
