package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/wayfarer/internal/http/respond"
	"github.com/hongminglow/wayfarer/internal/middleware"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/storage"
)

const recentPostLimit = 5

// DashboardHandler builds the per-role landing summaries.
type DashboardHandler struct {
	content storage.ContentStore
	logger  *slog.Logger
}

func NewDashboardHandler(content storage.ContentStore, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{content: content, logger: logger}
}

func (h *DashboardHandler) Register(r chi.Router) {
	r.With(middleware.RequireAuth).Get("/api/dashboard/{role}/", h.handleDashboard)
}

func (h *DashboardHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	requested, ok := models.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Not found.")
		return
	}
	caller := claims(r)
	if requested != caller.Role {
		respond.Error(w, http.StatusForbidden, "This dashboard belongs to another role.")
		return
	}

	dashboard, err := h.build(r, caller.Role, caller.UserID(), caller.Username)
	if err != nil {
		storageError(w, r, h.logger, err, "Dashboard")
		return
	}
	respond.JSON(w, http.StatusOK, dashboard)
}

func (h *DashboardHandler) build(r *http.Request, role models.Role, userID int64, username string) (models.Dashboard, error) {
	ctx := r.Context()
	dashboard := models.Dashboard{
		Role:        role,
		Stats:       map[string]int64{},
		RecentPosts: []models.Post{},
		SavedPlaces: []models.Place{},
	}

	posts, err := h.content.Posts(ctx, storage.PostFilter{})
	if err != nil {
		return dashboard, err
	}
	if len(posts) > recentPostLimit {
		dashboard.RecentPosts = posts[:recentPostLimit]
	} else if posts != nil {
		dashboard.RecentPosts = posts
	}

	if role == models.Admin {
		places, err := h.content.Places(ctx, storage.PlaceFilter{})
		if err != nil {
			return dashboard, err
		}
		services, err := h.content.Services(ctx, storage.ServiceFilter{})
		if err != nil {
			return dashboard, err
		}
		dashboard.Stats["places"] = int64(len(places))
		dashboard.Stats["services"] = int64(len(services))
		dashboard.Stats["posts"] = int64(len(posts))
		return dashboard, nil
	}

	var own int64
	for _, post := range posts {
		if strings.EqualFold(post.Author, username) {
			own++
		}
	}
	threads, err := h.content.Threads(ctx, username)
	if err != nil {
		return dashboard, err
	}
	dashboard.Stats["posts"] = own
	dashboard.Stats["threads"] = int64(len(threads))

	if role == models.Traveler {
		saved, err := h.content.SavedPlaces(ctx, userID)
		if err != nil {
			return dashboard, err
		}
		for _, entry := range saved {
			dashboard.SavedPlaces = append(dashboard.SavedPlaces, entry.Place)
		}
		dashboard.Stats["saved_places"] = int64(len(saved))
	}
	return dashboard, nil
}
