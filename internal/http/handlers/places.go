package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/wayfarer/internal/http/respond"
	"github.com/hongminglow/wayfarer/internal/middleware"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/storage"
)

// PlacesHandler serves areas, places and bookmarks.
type PlacesHandler struct {
	content storage.ContentStore
	logger  *slog.Logger
}

func NewPlacesHandler(content storage.ContentStore, logger *slog.Logger) *PlacesHandler {
	return &PlacesHandler{content: content, logger: logger}
}

func (h *PlacesHandler) Register(r chi.Router) {
	r.Get("/api/areas/", h.handleAreas)
	r.Get("/api/places/", h.handlePlaces)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/api/places/saved/", h.handleSaved)
		r.Post("/api/places/saved/", h.handleSave)
		r.Delete("/api/places/saved/{id}/", h.handleUnsave)
	})
}

func (h *PlacesHandler) handleAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.content.Areas(r.Context())
	if err != nil {
		storageError(w, r, h.logger, err, "Area")
		return
	}
	respond.JSON(w, http.StatusOK, areas)
}

func (h *PlacesHandler) handlePlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	places, err := h.content.Places(r.Context(), storage.PlaceFilter{
		Area:     query.Get("area"),
		Category: query.Get("category"),
	})
	if err != nil {
		storageError(w, r, h.logger, err, "Place")
		return
	}
	respond.JSON(w, http.StatusOK, places)
}

func (h *PlacesHandler) handleSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.content.SavedPlaces(r.Context(), claims(r).UserID())
	if err != nil {
		storageError(w, r, h.logger, err, "Saved place")
		return
	}
	respond.JSON(w, http.StatusOK, saved)
}

func (h *PlacesHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req dto.SavePlaceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlaceID <= 0 {
		respond.FieldErrors(w, map[string][]string{"place_id": {"This field is required."}})
		return
	}
	saved, err := h.content.SavePlace(r.Context(), claims(r).UserID(), req.PlaceID)
	if err != nil {
		storageError(w, r, h.logger, err, "Place")
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

func (h *PlacesHandler) handleUnsave(w http.ResponseWriter, r *http.Request) {
	placeID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.content.UnsavePlace(r.Context(), claims(r).UserID(), placeID); err != nil {
		storageError(w, r, h.logger, err, "Saved place")
		return
	}
	respond.NoContent(w)
}
