// Package handlers implements the development backend's REST endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/wayfarer/internal/auth"
	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/http/respond"
	"github.com/hongminglow/wayfarer/internal/middleware"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/storage"
)

const maxJSONBody = 1 << 20

// decode reads a JSON body into dst, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := decoder.Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload.")
		return false
	}
	return true
}

// pathID parses the {id} route parameter, answering 404 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

// claims returns the authenticated caller. Routes behind RequireAuth
// always have one.
func claims(r *http.Request) *auth.Claims {
	return middleware.Claims(r.Context())
}

// permit applies the role policy. The token does not carry the acting
// mode, so merchants are treated as acting in traveler mode; the client
// is responsible for blocking merchant-mode content actions.
func permit(w http.ResponseWriter, r *http.Request, action guard.Action) bool {
	caller := claims(r)
	var role, mode models.Role
	if caller != nil {
		role, mode = caller.Role, caller.Mode
	}
	decision := guard.Decide(role, mode, action)
	if !decision.Allowed {
		status := http.StatusForbidden
		if role == "" {
			status = http.StatusUnauthorized
		}
		respond.Error(w, status, "Not allowed: "+decision.Reason+".")
		return false
	}
	return true
}

// storageError maps storage sentinels to responses and logs anything
// unexpected.
func storageError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, what string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, what+" not found.")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, what+" already exists.")
	default:
		logger.Error("storage failure",
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFrom(r.Context()),
			"error", err,
		)
		respond.Error(w, http.StatusInternalServerError, "Something went wrong.")
	}
}

func required(fields map[string][]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = append(fields[name], "This field is required.")
	}
}
