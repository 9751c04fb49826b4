package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/http/respond"
	"github.com/hongminglow/wayfarer/internal/middleware"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/storage"
)

const (
	searchLimit      = 20
	maxMessageLength = 4000
)

// ChatHandler serves direct threads and user search.
type ChatHandler struct {
	users   storage.UserStore
	content storage.ContentStore
	logger  *slog.Logger
}

func NewChatHandler(users storage.UserStore, content storage.ContentStore, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{users: users, content: content, logger: logger}
}

func (h *ChatHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/api/users/search/", h.handleSearch)
		r.Get("/api/chat/threads/", h.handleThreads)
		r.Post("/api/chat/threads/", h.handleStart)
		r.Get("/api/chat/threads/{id}/messages/", h.handleMessages)
		r.Post("/api/chat/threads/{id}/messages/", h.handleSend)
	})
}

func (h *ChatHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respond.JSON(w, http.StatusOK, []models.UserSummary{})
		return
	}
	found, err := h.users.SearchUsers(r.Context(), query, searchLimit+1)
	if err != nil {
		storageError(w, r, h.logger, err, "User")
		return
	}
	self := claims(r).Username
	results := make([]models.UserSummary, 0, len(found))
	for _, user := range found {
		if strings.EqualFold(user.Username, self) {
			continue
		}
		results = append(results, user)
		if len(results) == searchLimit {
			break
		}
	}
	respond.JSON(w, http.StatusOK, results)
}

func (h *ChatHandler) handleThreads(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.Chat) {
		return
	}
	threads, err := h.content.Threads(r.Context(), claims(r).Username)
	if err != nil {
		storageError(w, r, h.logger, err, "Thread")
		return
	}
	if threads == nil {
		threads = []models.Thread{}
	}
	respond.JSON(w, http.StatusOK, threads)
}

func (h *ChatHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.Chat) {
		return
	}
	var req dto.StartThreadRequest
	if !decode(w, r, &req) {
		return
	}
	target := strings.TrimSpace(req.Username)
	if target == "" {
		respond.FieldErrors(w, map[string][]string{"username": {"This field is required."}})
		return
	}
	self := claims(r).Username
	if strings.EqualFold(target, self) {
		respond.Error(w, http.StatusBadRequest, "You cannot start a chat with yourself.")
		return
	}
	other, err := h.users.FindByUsername(r.Context(), target)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found.")
			return
		}
		storageError(w, r, h.logger, err, "User")
		return
	}
	thread, err := h.content.StartThread(r.Context(), self, other.Username)
	if err != nil {
		storageError(w, r, h.logger, err, "Thread")
		return
	}
	respond.JSON(w, http.StatusOK, thread)
}

func (h *ChatHandler) handleMessages(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.Chat) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	messages, err := h.content.Messages(r.Context(), id, claims(r).Username)
	if err != nil {
		storageError(w, r, h.logger, err, "Thread")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	respond.JSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.Chat) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	switch {
	case text == "":
		respond.FieldErrors(w, map[string][]string{"text": {"This field is required."}})
		return
	case len(text) > maxMessageLength:
		respond.FieldErrors(w, map[string][]string{"text": {"Message is too long."}})
		return
	}
	message, err := h.content.SendMessage(r.Context(), id, models.Message{
		Sender: claims(r).Username,
		Text:   text,
	})
	if err != nil {
		storageError(w, r, h.logger, err, "Thread")
		return
	}
	respond.JSON(w, http.StatusCreated, message)
}
