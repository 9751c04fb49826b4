package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/http/respond"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/storage"
)

const maxCommentLength = 2000

// CommunityHandler serves the community feed.
type CommunityHandler struct {
	content storage.ContentStore
	logger  *slog.Logger
}

func NewCommunityHandler(content storage.ContentStore, logger *slog.Logger) *CommunityHandler {
	return &CommunityHandler{content: content, logger: logger}
}

func (h *CommunityHandler) Register(r chi.Router) {
	r.Route("/api/community/posts", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}/", h.handleDetail)
		r.Post("/{id}/react/", h.handleReact)
		r.Post("/{id}/comments/", h.handleComment)
	})
}

func (h *CommunityHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := storage.PostFilter{Area: query.Get("area")}
	if raw := query.Get("category"); raw != "" {
		category, ok := models.ParsePostCategory(raw)
		if !ok {
			respond.JSON(w, http.StatusOK, []models.Post{})
			return
		}
		filter.Category = category
	}
	posts, err := h.content.Posts(r.Context(), filter)
	if err != nil {
		storageError(w, r, h.logger, err, "Post")
		return
	}
	respond.JSON(w, http.StatusOK, posts)
}

func (h *CommunityHandler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	post, err := h.content.Post(r.Context(), id)
	if err != nil {
		storageError(w, r, h.logger, err, "Post")
		return
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	respond.JSON(w, http.StatusOK, post)
}

func (h *CommunityHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.Post) {
		return
	}
	var req dto.CreatePostRequest
	if !decode(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	required(fields, "title", req.Title)
	required(fields, "description", req.Description)
	category, ok := models.ParsePostCategory(string(req.Category))
	if !ok {
		fields["category"] = append(fields["category"], "Select a valid category.")
	}
	if len(fields) > 0 {
		respond.FieldErrors(w, fields)
		return
	}

	post, err := h.content.CreatePost(r.Context(), models.Post{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		Area:        strings.TrimSpace(req.Area),
		Author:      claims(r).Username,
	})
	if err != nil {
		storageError(w, r, h.logger, err, "Post")
		return
	}
	post.Comments = []models.Comment{}
	respond.JSON(w, http.StatusCreated, post)
}

func (h *CommunityHandler) handleReact(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.React) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.ReactRequest
	if !decode(w, r, &req) {
		return
	}
	reaction := models.Reaction(strings.ToUpper(string(req.Reaction)))
	if !reaction.Valid() {
		respond.FieldErrors(w, map[string][]string{"reaction": {"Reaction must be LIKE or DISLIKE."}})
		return
	}
	counts, err := h.content.React(r.Context(), id, claims(r).Username, reaction)
	if err != nil {
		storageError(w, r, h.logger, err, "Post")
		return
	}
	respond.JSON(w, http.StatusOK, counts)
}

func (h *CommunityHandler) handleComment(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.Comment) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !decode(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	switch {
	case text == "":
		respond.FieldErrors(w, map[string][]string{"text": {"This field is required."}})
		return
	case len(text) > maxCommentLength:
		respond.FieldErrors(w, map[string][]string{"text": {"Comment is too long."}})
		return
	}
	comment, count, err := h.content.AddComment(r.Context(), id, models.Comment{
		Author: claims(r).Username,
		Text:   text,
	})
	if err != nil {
		storageError(w, r, h.logger, err, "Post")
		return
	}
	respond.JSON(w, http.StatusCreated, dto.CommentResponse{Comment: comment, CommentsCount: count})
}
