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

// ServicesHandler serves the public service directory. Only admins may
// change it.
type ServicesHandler struct {
	content storage.ContentStore
	logger  *slog.Logger
}

func NewServicesHandler(content storage.ContentStore, logger *slog.Logger) *ServicesHandler {
	return &ServicesHandler{content: content, logger: logger}
}

func (h *ServicesHandler) Register(r chi.Router) {
	r.Get("/api/services/", h.handleList)
	r.Post("/api/services/", h.handleCreate)
	r.Patch("/api/services/{id}/", h.handleUpdate)
	r.Delete("/api/services/{id}/", h.handleDelete)
}

func (h *ServicesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := storage.ServiceFilter{Area: query.Get("area")}
	if raw := query.Get("category"); raw != "" {
		category, ok := models.ParseServiceCategory(raw)
		if !ok {
			respond.JSON(w, http.StatusOK, []models.Service{})
			return
		}
		filter.Category = category
	}
	services, err := h.content.Services(r.Context(), filter)
	if err != nil {
		storageError(w, r, h.logger, err, "Service")
		return
	}
	respond.JSON(w, http.StatusOK, services)
}

func validateService(service models.Service) map[string][]string {
	fields := map[string][]string{}
	required(fields, "name", service.Name)
	required(fields, "area", service.Area)
	if _, ok := models.ParseServiceCategory(string(service.Category)); !ok {
		fields["category"] = append(fields["category"], "Select a valid category.")
	}
	return fields
}

func normaliseService(service *models.Service) {
	service.Name = strings.TrimSpace(service.Name)
	service.Area = strings.TrimSpace(service.Area)
	if category, ok := models.ParseServiceCategory(string(service.Category)); ok {
		service.Category = category
	}
}

func (h *ServicesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.ManageServices) {
		return
	}
	var service models.Service
	if !decode(w, r, &service) {
		return
	}
	normaliseService(&service)
	if fields := validateService(service); len(fields) > 0 {
		respond.FieldErrors(w, fields)
		return
	}
	created, err := h.content.CreateService(r.Context(), service)
	if err != nil {
		storageError(w, r, h.logger, err, "Service")
		return
	}
	h.logger.Info("service created", "service_id", created.ID, "by", claims(r).Username)
	respond.JSON(w, http.StatusCreated, created)
}

func (h *ServicesHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.ManageServices) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch dto.ServicePatch
	if !decode(w, r, &patch) {
		return
	}
	service, err := h.content.Service(r.Context(), id)
	if err != nil {
		storageError(w, r, h.logger, err, "Service")
		return
	}
	patch.Apply(&service)
	normaliseService(&service)
	if fields := validateService(service); len(fields) > 0 {
		respond.FieldErrors(w, fields)
		return
	}
	saved, err := h.content.UpdateService(r.Context(), service)
	if err != nil {
		storageError(w, r, h.logger, err, "Service")
		return
	}
	respond.JSON(w, http.StatusOK, saved)
}

func (h *ServicesHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !permit(w, r, guard.ManageServices) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.content.DeleteService(r.Context(), id); err != nil {
		storageError(w, r, h.logger, err, "Service")
		return
	}
	h.logger.Info("service deleted", "service_id", id, "by", claims(r).Username)
	respond.NoContent(w)
}
