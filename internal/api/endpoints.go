package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
)

// Backend paths.
const (
	PathLogin        = "/api/auth/login/"
	PathLogout       = "/api/auth/logout/"
	PathMode         = "/api/auth/mode/"
	PathSignup       = "/api/auth/signup/"
	PathProfile      = "/api/auth/profile/"
	PathAvatar       = "/api/auth/profile/avatar/"
	PathAreas        = "/api/areas/"
	PathPlaces       = "/api/places/"
	PathSavedPlaces  = "/api/places/saved/"
	PathServices     = "/api/services/"
	PathPosts        = "/api/community/posts/"
	PathThreads      = "/api/chat/threads/"
	PathUserSearch   = "/api/users/search/"
	PathChatbot      = "/api/chatbot/"
	dashboardPathFmt = "/api/dashboard/%s/"
)

// AvatarField is the multipart field name for avatar uploads.
const AvatarField = "avatar"

// DashboardPath returns the dashboard endpoint for role.
func DashboardPath(role models.Role) string {
	switch role {
	case models.Admin:
		return fmt.Sprintf(dashboardPathFmt, "admin")
	case models.Merchant:
		return fmt.Sprintf(dashboardPathFmt, "merchant")
	default:
		return fmt.Sprintf(dashboardPathFmt, "traveler")
	}
}

func withQuery(path string, values url.Values) string {
	for key, value := range values {
		if len(value) == 0 || value[0] == "" {
			values.Del(key)
		}
	}
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, identifier, password string) (dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.Do(ctx, http.MethodPost, PathLogin, dto.LoginRequest{Identifier: identifier, Password: password}, &out)
	return out, err
}

// SwitchMode exchanges the current token for one bound to mode.
func (c *Client) SwitchMode(ctx context.Context, mode models.Role) (dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.Do(ctx, http.MethodPost, PathMode, dto.ModeRequest{Mode: mode}, &out)
	return out, err
}

// Logout invalidates the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, PathLogout, nil, nil)
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, request dto.SignupRequest) (models.Profile, error) {
	var out models.Profile
	err := c.Do(ctx, http.MethodPost, PathSignup, request, &out)
	return out, err
}

// Profile reads the current user's profile.
func (c *Client) Profile(ctx context.Context) (models.Profile, error) {
	var out models.Profile
	err := c.Do(ctx, http.MethodGet, PathProfile, nil, &out)
	return out, err
}

// UpdateProfile patches the current user's profile.
func (c *Client) UpdateProfile(ctx context.Context, update dto.ProfileUpdate) (models.Profile, error) {
	var out models.Profile
	err := c.Do(ctx, http.MethodPatch, PathProfile, update, &out)
	return out, err
}

// UploadAvatar replaces the profile picture.
func (c *Client) UploadAvatar(ctx context.Context, filename string, content io.Reader) (models.Profile, error) {
	var out models.Profile
	err := c.Upload(ctx, PathAvatar, AvatarField, filename, content, &out)
	return out, err
}

// DeleteAccount removes the current user's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, PathProfile, nil, nil)
}

// Dashboard reads the landing summary for role.
func (c *Client) Dashboard(ctx context.Context, role models.Role) (models.Dashboard, error) {
	var out models.Dashboard
	err := c.Do(ctx, http.MethodGet, DashboardPath(role), nil, &out)
	return out, err
}

// Areas lists all areas. Public.
func (c *Client) Areas(ctx context.Context) ([]models.Area, error) {
	var out list[models.Area]
	err := c.DoPublic(ctx, http.MethodGet, PathAreas, &out)
	return out, err
}

// PlaceQuery narrows the place list on the server.
type PlaceQuery struct {
	Area     string
	Category string
}

// Places lists places. Public.
func (c *Client) Places(ctx context.Context, query PlaceQuery) ([]models.Place, error) {
	var out list[models.Place]
	path := withQuery(PathPlaces, url.Values{"area": {query.Area}, "category": {query.Category}})
	err := c.DoPublic(ctx, http.MethodGet, path, &out)
	return out, err
}

// SavedPlaces lists the current user's saved places.
func (c *Client) SavedPlaces(ctx context.Context) ([]models.SavedPlace, error) {
	var out list[models.SavedPlace]
	err := c.Do(ctx, http.MethodGet, PathSavedPlaces, nil, &out)
	return out, err
}

// SavePlace bookmarks a place.
func (c *Client) SavePlace(ctx context.Context, placeID int64) (models.SavedPlace, error) {
	var out models.SavedPlace
	err := c.Do(ctx, http.MethodPost, PathSavedPlaces, dto.SavePlaceRequest{PlaceID: placeID}, &out)
	return out, err
}

// UnsavePlace removes a bookmark.
func (c *Client) UnsavePlace(ctx context.Context, placeID int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", PathSavedPlaces, placeID), nil, nil)
}

// ServiceQuery narrows the service list on the server.
type ServiceQuery struct {
	Area     string
	Category string
}

// Services lists public services.
func (c *Client) Services(ctx context.Context, query ServiceQuery) ([]models.Service, error) {
	var out list[models.Service]
	path := withQuery(PathServices, url.Values{"area": {query.Area}, "category": {query.Category}})
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// CreateService adds a service listing. Admin only on the server.
func (c *Client) CreateService(ctx context.Context, service models.Service) (models.Service, error) {
	var out models.Service
	err := c.Do(ctx, http.MethodPost, PathServices, service, &out)
	return out, err
}

// UpdateService patches a service listing.
func (c *Client) UpdateService(ctx context.Context, id int64, patch dto.ServicePatch) (models.Service, error) {
	var out models.Service
	err := c.Do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", PathServices, id), patch, &out)
	return out, err
}

// DeleteService removes a service listing.
func (c *Client) DeleteService(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", PathServices, id), nil, nil)
}

// PostQuery narrows the post list on the server.
type PostQuery struct {
	Category string
	Area     string
}

// Posts lists community posts. Public.
func (c *Client) Posts(ctx context.Context, query PostQuery) ([]models.Post, error) {
	var out list[models.Post]
	path := withQuery(PathPosts, url.Values{"category": {query.Category}, "area": {query.Area}})
	err := c.DoPublic(ctx, http.MethodGet, path, &out)
	return out, err
}

// Post reads one post with its comments.
func (c *Client) Post(ctx context.Context, id int64) (models.Post, error) {
	var out models.Post
	err := c.Do(ctx, http.MethodGet, fmt.Sprintf("%s%d/", PathPosts, id), nil, &out)
	return out, err
}

// CreatePost publishes a community post.
func (c *Client) CreatePost(ctx context.Context, request dto.CreatePostRequest) (models.Post, error) {
	var out models.Post
	err := c.Do(ctx, http.MethodPost, PathPosts, request, &out)
	return out, err
}

// React likes or dislikes a post and returns the new counts.
func (c *Client) React(ctx context.Context, postID int64, reaction models.Reaction) (models.ReactionCounts, error) {
	var out models.ReactionCounts
	err := c.Do(ctx, http.MethodPost, fmt.Sprintf("%s%d/react/", PathPosts, postID), dto.ReactRequest{Reaction: reaction}, &out)
	return out, err
}

// AddComment posts a comment.
func (c *Client) AddComment(ctx context.Context, postID int64, text string) (dto.CommentResponse, error) {
	var out dto.CommentResponse
	err := c.Do(ctx, http.MethodPost, fmt.Sprintf("%s%d/comments/", PathPosts, postID), dto.CommentRequest{Text: text}, &out)
	return out, err
}

// Threads lists the current user's chat threads.
func (c *Client) Threads(ctx context.Context) ([]models.Thread, error) {
	var out list[models.Thread]
	err := c.Do(ctx, http.MethodGet, PathThreads, nil, &out)
	return out, err
}

// StartThread opens (or returns the existing) thread with username.
func (c *Client) StartThread(ctx context.Context, username string) (models.Thread, error) {
	var out models.Thread
	err := c.Do(ctx, http.MethodPost, PathThreads, dto.StartThreadRequest{Username: username}, &out)
	return out, err
}

// Messages lists a thread's messages, oldest first.
func (c *Client) Messages(ctx context.Context, threadID int64) ([]models.Message, error) {
	var out list[models.Message]
	err := c.Do(ctx, http.MethodGet, fmt.Sprintf("%s%d/messages/", PathThreads, threadID), nil, &out)
	return out, err
}

// SendMessage appends a message to a thread.
func (c *Client) SendMessage(ctx context.Context, threadID int64, text string) (models.Message, error) {
	var out models.Message
	err := c.Do(ctx, http.MethodPost, fmt.Sprintf("%s%d/messages/", PathThreads, threadID), dto.SendMessageRequest{Text: text}, &out)
	return out, err
}

// SearchUsers finds users to start a chat with.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	var out list[models.UserSummary]
	err := c.Do(ctx, http.MethodGet, withQuery(PathUserSearch, url.Values{"q": {query}}), nil, &out)
	return out, err
}

// AskChatbot sends one utterance to the FAQ assistant.
func (c *Client) AskChatbot(ctx context.Context, message string) (string, error) {
	var out dto.ChatbotResponse
	if err := c.Do(ctx, http.MethodPost, PathChatbot, dto.ChatbotRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}
