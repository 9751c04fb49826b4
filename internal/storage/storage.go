// Package storage defines the persistence contracts of the development
// backend.
package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/wayfarer/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures account persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	// SearchUsers matches usernames case-insensitively by substring.
	SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
}

// PlaceFilter narrows a place listing. Empty fields match everything.
type PlaceFilter struct {
	Area     string
	Category string
}

// PostFilter narrows a post listing.
type PostFilter struct {
	Area     string
	Category models.PostCategory
}

// ServiceFilter narrows a service listing.
type ServiceFilter struct {
	Area     string
	Category models.ServiceCategory
}

// ContentStore holds everything that is not an account.
type ContentStore interface {
	Areas(ctx context.Context) ([]models.Area, error)
	Places(ctx context.Context, filter PlaceFilter) ([]models.Place, error)
	SavedPlaces(ctx context.Context, userID int64) ([]models.SavedPlace, error)
	SavePlace(ctx context.Context, userID, placeID int64) (models.SavedPlace, error)
	UnsavePlace(ctx context.Context, userID, placeID int64) error

	Services(ctx context.Context, filter ServiceFilter) ([]models.Service, error)
	CreateService(ctx context.Context, service models.Service) (models.Service, error)
	UpdateService(ctx context.Context, service models.Service) (models.Service, error)
	Service(ctx context.Context, id int64) (models.Service, error)
	DeleteService(ctx context.Context, id int64) error

	Posts(ctx context.Context, filter PostFilter) ([]models.Post, error)
	Post(ctx context.Context, id int64) (models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	// React records username's reaction, replacing any earlier one, and
	// returns the post's new counts.
	React(ctx context.Context, postID int64, username string, reaction models.Reaction) (models.ReactionCounts, error)
	AddComment(ctx context.Context, postID int64, comment models.Comment) (models.Comment, int, error)

	Threads(ctx context.Context, username string) ([]models.Thread, error)
	// StartThread returns the existing thread between the two users or
	// creates one.
	StartThread(ctx context.Context, from, to string) (models.Thread, error)
	Messages(ctx context.Context, threadID int64, username string) ([]models.Message, error)
	SendMessage(ctx context.Context, threadID int64, message models.Message) (models.Message, error)

	// ForgetUser drops saved places, reactions and threads of a deleted
	// account.
	ForgetUser(ctx context.Context, userID int64, username string) error
}
