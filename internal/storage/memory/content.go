package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/storage"
)

var _ storage.ContentStore = (*ContentStore)(nil)

type savedKey struct {
	userID  int64
	placeID int64
}

// ContentStore keeps places, services, posts and chats in memory.
type ContentStore struct {
	mu        sync.RWMutex
	now       func() time.Time
	areas     []models.Area
	places    []models.Place
	saved     map[savedKey]models.SavedPlace
	services  []models.Service
	posts     []models.Post
	reactions map[int64]map[string]models.Reaction
	threads   []models.Thread
	messages  map[int64][]models.Message
	nextID    int64
}

// NewContentStore returns an empty store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		now:       func() time.Time { return time.Now().UTC() },
		saved:     make(map[savedKey]models.SavedPlace),
		reactions: make(map[int64]map[string]models.Reaction),
		messages:  make(map[int64][]models.Message),
		nextID:    1000,
	}
}

func (s *ContentStore) id() int64 {
	s.nextID++
	return s.nextID
}

// Areas lists every area by name.
func (s *ContentStore) Areas(context.Context) ([]models.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.areas), nil
}

// Places lists places matching filter.
func (s *ContentStore) Places(_ context.Context, filter storage.PlaceFilter) ([]models.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Place
	for _, place := range s.places {
		if matches(place.AreaName, filter.Area) && matches(place.Category, filter.Category) {
			out = append(out, place)
		}
	}
	return out, nil
}

func matches(value, want string) bool {
	return want == "" || strings.EqualFold(value, want)
}

func (s *ContentStore) place(id int64) (models.Place, bool) {
	for _, place := range s.places {
		if place.ID == id {
			return place, true
		}
	}
	return models.Place{}, false
}

// SavedPlaces lists userID's bookmarks, newest first.
func (s *ContentStore) SavedPlaces(_ context.Context, userID int64) ([]models.SavedPlace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SavedPlace
	for key, saved := range s.saved {
		if key.userID == userID {
			out = append(out, saved)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

// SavePlace bookmarks a place. Saving twice returns the first bookmark.
func (s *ContentStore) SavePlace(_ context.Context, userID, placeID int64) (models.SavedPlace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	place, ok := s.place(placeID)
	if !ok {
		return models.SavedPlace{}, storage.ErrNotFound
	}
	key := savedKey{userID: userID, placeID: placeID}
	if existing, ok := s.saved[key]; ok {
		return existing, nil
	}
	saved := models.SavedPlace{ID: s.id(), Place: place, SavedAt: s.now()}
	s.saved[key] = saved
	return saved, nil
}

// UnsavePlace removes a bookmark.
func (s *ContentStore) UnsavePlace(_ context.Context, userID, placeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := savedKey{userID: userID, placeID: placeID}
	if _, ok := s.saved[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.saved, key)
	return nil
}

// Services lists services matching filter.
func (s *ContentStore) Services(_ context.Context, filter storage.ServiceFilter) ([]models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Service
	for _, service := range s.services {
		if matches(service.Area, filter.Area) && matches(string(service.Category), string(filter.Category)) {
			out = append(out, service)
		}
	}
	return out, nil
}

// Service fetches one service.
func (s *ContentStore) Service(_ context.Context, id int64) (models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, service := range s.services {
		if service.ID == id {
			return service, nil
		}
	}
	return models.Service{}, storage.ErrNotFound
}

// CreateService stores a new service and assigns its id.
func (s *ContentStore) CreateService(_ context.Context, service models.Service) (models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	service.ID = s.id()
	s.services = append(s.services, service)
	return service, nil
}

// UpdateService replaces the service with the same id.
func (s *ContentStore) UpdateService(_ context.Context, service models.Service) (models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.services {
		if s.services[i].ID == service.ID {
			s.services[i] = service
			return service, nil
		}
	}
	return models.Service{}, storage.ErrNotFound
}

// DeleteService removes a service.
func (s *ContentStore) DeleteService(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.services {
		if s.services[i].ID == id {
			s.services = slices.Delete(s.services, i, i+1)
			return nil
		}
	}
	return storage.ErrNotFound
}

// Posts lists posts matching filter, newest first, without comments.
func (s *ContentStore) Posts(_ context.Context, filter storage.PostFilter) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Post
	for i := len(s.posts) - 1; i >= 0; i-- {
		post := s.posts[i]
		if matches(post.Area, filter.Area) && matches(string(post.Category), string(filter.Category)) {
			post.Comments = nil
			out = append(out, post)
		}
	}
	return out, nil
}

func (s *ContentStore) postIndex(id int64) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

// Post fetches one post with its comments.
func (s *ContentStore) Post(_ context.Context, id int64) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.postIndex(id)
	if i < 0 {
		return models.Post{}, storage.ErrNotFound
	}
	post := s.posts[i]
	post.Comments = slices.Clone(post.Comments)
	return post, nil
}

// CreatePost stores a new post.
func (s *ContentStore) CreatePost(_ context.Context, post models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = s.id()
	post.CreatedAt = s.now()
	post.LikesCount, post.DislikesCount, post.CommentsCount = 0, 0, 0
	post.Comments = nil
	s.posts = append(s.posts, post)
	return post, nil
}

// React records a reaction and recounts the post.
func (s *ContentStore) React(_ context.Context, postID int64, username string, reaction models.Reaction) (models.ReactionCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(postID)
	if i < 0 {
		return models.ReactionCounts{}, storage.ErrNotFound
	}
	byUser := s.reactions[postID]
	if byUser == nil {
		byUser = make(map[string]models.Reaction)
		s.reactions[postID] = byUser
	}
	byUser[strings.ToLower(username)] = reaction

	var counts models.ReactionCounts
	for _, r := range byUser {
		if r == models.Like {
			counts.LikesCount++
		} else {
			counts.DislikesCount++
		}
	}
	s.posts[i].LikesCount = counts.LikesCount
	s.posts[i].DislikesCount = counts.DislikesCount
	return counts, nil
}

// AddComment appends a comment and returns it with the new total.
func (s *ContentStore) AddComment(_ context.Context, postID int64, comment models.Comment) (models.Comment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(postID)
	if i < 0 {
		return models.Comment{}, 0, storage.ErrNotFound
	}
	comment.ID = s.id()
	comment.CreatedAt = s.now()
	s.posts[i].Comments = append(s.posts[i].Comments, comment)
	s.posts[i].CommentsCount = len(s.posts[i].Comments)
	return comment, s.posts[i].CommentsCount, nil
}

func participant(thread models.Thread, username string) bool {
	for _, name := range thread.Participants {
		if strings.EqualFold(name, username) {
			return true
		}
	}
	return false
}

// Threads lists username's threads, most recently created first.
func (s *ContentStore) Threads(_ context.Context, username string) ([]models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Thread
	for i := len(s.threads) - 1; i >= 0; i-- {
		if participant(s.threads[i], username) {
			thread := s.threads[i]
			thread.Participants = slices.Clone(thread.Participants)
			out = append(out, thread)
		}
	}
	return out, nil
}

// StartThread finds or creates the thread between from and to.
func (s *ContentStore) StartThread(_ context.Context, from, to string) (models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, thread := range s.threads {
		if participant(thread, from) && participant(thread, to) {
			return thread, nil
		}
	}
	participants := []string{from, to}
	sort.Strings(participants)
	thread := models.Thread{ID: s.id(), Status: "open", Participants: participants}
	s.threads = append(s.threads, thread)
	return thread, nil
}

func (s *ContentStore) threadIndex(id int64, username string) int {
	for i := range s.threads {
		if s.threads[i].ID == id && participant(s.threads[i], username) {
			return i
		}
	}
	return -1
}

// Messages lists a thread's messages, oldest first. Non-participants get
// ErrNotFound.
func (s *ContentStore) Messages(_ context.Context, threadID int64, username string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.threadIndex(threadID, username) < 0 {
		return nil, storage.ErrNotFound
	}
	return slices.Clone(s.messages[threadID]), nil
}

// SendMessage appends message to the thread.
func (s *ContentStore) SendMessage(_ context.Context, threadID int64, message models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.threadIndex(threadID, message.Sender)
	if i < 0 {
		return models.Message{}, storage.ErrNotFound
	}
	message.ID = s.id()
	message.CreatedAt = s.now()
	s.messages[threadID] = append(s.messages[threadID], message)
	s.threads[i].LastMessage = message.Text
	return message, nil
}

// ForgetUser removes a deleted account's bookmarks, reactions and threads.
func (s *ContentStore) ForgetUser(_ context.Context, userID int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.saved {
		if key.userID == userID {
			delete(s.saved, key)
		}
	}
	for postID, byUser := range s.reactions {
		if _, ok := byUser[strings.ToLower(username)]; !ok {
			continue
		}
		delete(byUser, strings.ToLower(username))
		if i := s.postIndex(postID); i >= 0 {
			s.posts[i].LikesCount, s.posts[i].DislikesCount = 0, 0
			for _, r := range byUser {
				if r == models.Like {
					s.posts[i].LikesCount++
				} else {
					s.posts[i].DislikesCount++
				}
			}
		}
	}
	s.threads = slices.DeleteFunc(s.threads, func(thread models.Thread) bool {
		if participant(thread, username) {
			delete(s.messages, thread.ID)
			return true
		}
		return false
	})
	return nil
}
