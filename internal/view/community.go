package view

import (
	"context"
	"strings"
	"sync"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/collection"
	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/session"
)

// CommunityAPI is the backend surface the community feed needs.
type CommunityAPI interface {
	Posts(ctx context.Context, query api.PostQuery) ([]models.Post, error)
	Post(ctx context.Context, id int64) (models.Post, error)
	CreatePost(ctx context.Context, request dto.CreatePostRequest) (models.Post, error)
	React(ctx context.Context, postID int64, reaction models.Reaction) (models.ReactionCounts, error)
	AddComment(ctx context.Context, postID int64, text string) (dto.CommentResponse, error)
}

// CommunitySnapshot is everything the community screen renders.
type CommunitySnapshot struct {
	Query       api.PostQuery
	Filter      string
	Posts       State[[]models.Post]
	Visible     []models.Post
	Detail      State[models.Post]
	PostDraft   dto.CreatePostRequest
	Drafts      map[int64]string
	ActionError string
}

// Community is the feed controller: list, detail, create, react, comment.
type Community struct {
	backend  CommunityAPI
	sessions *session.Context

	posts  *Resource[[]models.Post]
	detail *Resource[models.Post]

	mu          sync.Mutex
	query       api.PostQuery
	filter      string
	postDraft   dto.CreatePostRequest
	drafts      map[int64]string
	actionError string
}

// NewCommunity builds the community controller.
func NewCommunity(ctx context.Context, backend CommunityAPI, sessions *session.Context) *Community {
	return &Community{
		backend:  backend,
		sessions: sessions,
		posts:    NewResource[[]models.Post](ctx),
		detail:   NewResource[models.Post](ctx),
		drafts:   make(map[int64]string),
	}
}

// Mount loads the post list for the current parameters.
func (c *Community) Mount(ctx context.Context) error {
	c.mu.Lock()
	query := c.query
	c.mu.Unlock()
	return c.posts.Load(ctx, func(ctx context.Context) ([]models.Post, error) {
		return c.backend.Posts(ctx, query)
	})
}

// SetQuery changes the server-side category/area parameters and refetches.
func (c *Community) SetQuery(ctx context.Context, query api.PostQuery) error {
	c.mu.Lock()
	c.query = query
	c.mu.Unlock()
	return c.Mount(ctx)
}

// SetFilter changes the local text filter.
func (c *Community) SetFilter(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = text
}

// Open loads one post with its comments.
func (c *Community) Open(ctx context.Context, id int64) error {
	return c.detail.Load(ctx, func(ctx context.Context) (models.Post, error) {
		return c.backend.Post(ctx, id)
	})
}

// React sends a like/dislike and merges the returned counts into the
// matching post only.
func (c *Community) React(ctx context.Context, postID int64, reaction models.Reaction) error {
	if err := authorize(c.sessions, guard.React); err != nil {
		return c.fail(err, "")
	}
	counts, err := c.backend.React(ctx, postID, reaction)
	if err != nil {
		return c.fail(err, "Could not record your reaction.")
	}
	apply := func(post *models.Post) {
		post.LikesCount = counts.LikesCount
		post.DislikesCount = counts.DislikesCount
	}
	c.patch(postID, apply)
	return c.fail(nil, "")
}

// SetCommentDraft records the text being typed for postID.
func (c *Community) SetCommentDraft(postID int64, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[postID] = text
}

// CommentDraft returns the unsent comment text for postID.
func (c *Community) CommentDraft(postID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts[postID]
}

// SubmitComment sends the draft for postID. The draft is cleared only after
// the server accepts it.
func (c *Community) SubmitComment(ctx context.Context, postID int64) error {
	if err := authorize(c.sessions, guard.Comment); err != nil {
		return c.fail(err, "")
	}
	text := strings.TrimSpace(c.CommentDraft(postID))
	if text == "" {
		return c.fail(ErrEmptyInput, "")
	}
	reply, err := c.backend.AddComment(ctx, postID, text)
	if err != nil {
		return c.fail(err, "Could not post your comment.")
	}
	c.patch(postID, func(post *models.Post) {
		post.Comments = append(post.Comments, reply.Comment)
		post.CommentsCount = reply.CommentsCount
		if post.CommentsCount < len(post.Comments) {
			post.CommentsCount = len(post.Comments)
		}
	})
	c.mu.Lock()
	delete(c.drafts, postID)
	c.mu.Unlock()
	return c.fail(nil, "")
}

// SetPostDraft records the new-post form.
func (c *Community) SetPostDraft(draft dto.CreatePostRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postDraft = draft
}

// SubmitPost publishes the draft and puts the new post first in the list.
// The draft survives a failed submit.
func (c *Community) SubmitPost(ctx context.Context) (models.Post, error) {
	if err := authorize(c.sessions, guard.Post); err != nil {
		return models.Post{}, c.fail(err, "")
	}
	c.mu.Lock()
	draft := c.postDraft
	c.mu.Unlock()
	if strings.TrimSpace(draft.Title) == "" {
		return models.Post{}, c.fail(ErrEmptyInput, "")
	}
	created, err := c.backend.CreatePost(ctx, draft)
	if err != nil {
		return models.Post{}, c.fail(err, "Could not publish your post.")
	}
	c.posts.Mutate(func(posts *[]models.Post) {
		*posts = collection.Prepend(*posts, created)
	})
	c.mu.Lock()
	c.postDraft = dto.CreatePostRequest{}
	c.mu.Unlock()
	return created, c.fail(nil, "")
}

// patch applies fn to the post in the list and in the open detail.
func (c *Community) patch(postID int64, fn func(*models.Post)) {
	c.posts.Mutate(func(posts *[]models.Post) {
		*posts, _ = collection.Merge(*posts, postID, fn)
	})
	c.detail.Mutate(func(post *models.Post) {
		if post.ID == postID {
			fn(post)
		}
	})
}

func (c *Community) fail(err error, fallback string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actionError = Describe(err, fallback)
	return err
}

// Snapshot returns the current screen state with the filter applied.
func (c *Community) Snapshot() CommunitySnapshot {
	c.mu.Lock()
	drafts := make(map[int64]string, len(c.drafts))
	for id, text := range c.drafts {
		drafts[id] = text
	}
	snapshot := CommunitySnapshot{
		Query:       c.query,
		Filter:      c.filter,
		PostDraft:   c.postDraft,
		Drafts:      drafts,
		ActionError: c.actionError,
	}
	c.mu.Unlock()

	snapshot.Posts = c.posts.Snapshot()
	snapshot.Detail = c.detail.Snapshot()
	snapshot.Visible = collection.Filter(snapshot.Posts.Data, snapshot.Filter, postFields)
	return snapshot
}

// Close discards any in-flight responses.
func (c *Community) Close() {
	c.posts.Close()
	c.detail.Close()
}

func postFields(post models.Post) []string {
	return []string{post.Title, post.Description, post.Area, string(post.Category), post.Author}
}
