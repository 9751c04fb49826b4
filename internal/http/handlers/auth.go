package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/wayfarer/internal/auth"
	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/http/respond"
	"github.com/hongminglow/wayfarer/internal/middleware"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/storage"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72
	maxAvatarBytes    = 5 << 20
	avatarField       = "avatar"
	avatarRoute       = "/media/avatars/"
)

// AuthHandler owns signup, login, logout and the profile endpoints.
type AuthHandler struct {
	users       storage.UserStore
	content     storage.ContentStore
	tokens      *auth.TokenManager
	revocations *auth.Revocations
	logger      *slog.Logger

	mu      sync.RWMutex
	avatars map[string]avatar
}

type avatar struct {
	contentType string
	data        []byte
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, content storage.ContentStore, tokens *auth.TokenManager, revocations *auth.Revocations, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:       users,
		content:     content,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
		avatars:     make(map[string]avatar),
	}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/auth/signup/", h.handleSignup)
	r.Post("/api/auth/login/", h.handleLogin)
	r.Get(avatarRoute+"{name}", h.handleAvatarFile)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/api/auth/logout/", h.handleLogout)
		r.Post("/api/auth/mode/", h.handleMode)
		r.Get("/api/auth/profile/", h.handleProfile)
		r.Patch("/api/auth/profile/", h.handleUpdateProfile)
		r.Delete("/api/auth/profile/", h.handleDeleteAccount)
		r.Patch("/api/auth/profile/avatar/", h.handleAvatarUpload)
	})
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = models.Role(strings.ToUpper(strings.TrimSpace(string(req.Role))))
	if req.Role == "" {
		req.Role = models.Traveler
	}
	if fields := validateSignup(req); len(fields) > 0 {
		respond.FieldErrors(w, fields)
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Failed to hash password.")
		return
	}

	created, err := h.users.CreateUser(r.Context(), models.User{
		Username:     req.Username,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "A user with that username or email already exists.")
			return
		}
		storageError(w, r, h.logger, err, "User")
		return
	}
	respond.JSON(w, http.StatusCreated, created.Profile())
}

func validateSignup(req dto.SignupRequest) map[string][]string {
	fields := map[string][]string{}
	required(fields, "username", req.Username)
	required(fields, "email", req.Email)
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			fields["email"] = append(fields["email"], "Enter a valid email address.")
		}
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		fields["password"] = append(fields["password"], "Password must be at least 8 characters.")
	}
	// bcrypt refuses longer input.
	if len(req.Password) > maxPasswordBytes {
		fields["password"] = append(fields["password"], "Password must be at most 72 bytes.")
	}
	if req.Role != models.Traveler && req.Role != models.Merchant {
		fields["role"] = append(fields["role"], "Role must be TRAVELER or MERCHANT.")
	}
	return fields
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Identifier and password are required.")
		return
	}
	user, err := h.users.FindByUsernameOrEmail(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		storageError(w, r, h.logger, err, "User")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Failed to generate token.")
		return
	}
	h.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: user.Profile()})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	caller := claims(r)
	if caller.ExpiresAt != nil {
		h.revocations.Revoke(caller.ID, caller.ExpiresAt.Time)
	}
	respond.NoContent(w)
}

// handleMode swaps the caller's token for one bound to the requested acting
// mode. The old token is revoked.
func (h *AuthHandler) handleMode(w http.ResponseWriter, r *http.Request) {
	var req dto.ModeRequest
	if !decode(w, r, &req) {
		return
	}
	mode, ok := models.ParseRole(string(req.Mode))
	if !ok {
		respond.FieldErrors(w, map[string][]string{"mode": {"Mode must be TRAVELER, MERCHANT or ADMIN."}})
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if !guard.ModeAllowed(user.Role, mode) {
		respond.Error(w, http.StatusForbidden, "Only merchants can switch to traveler mode.")
		return
	}
	token, err := h.tokens.GenerateForMode(user, mode)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Failed to generate token.")
		return
	}
	caller := claims(r)
	if caller.ExpiresAt != nil {
		h.revocations.Revoke(caller.ID, caller.ExpiresAt.Time)
	}
	h.logger.Info("acting mode changed", "user_id", user.ID, "mode", mode)
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: user.Profile()})
}

func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, err := h.users.FindByID(r.Context(), claims(r).UserID())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "Account no longer exists.")
			return models.User{}, false
		}
		storageError(w, r, h.logger, err, "User")
		return models.User{}, false
	}
	return user, true
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, user.Profile())
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update dto.ProfileUpdate
	if !decode(w, r, &update) {
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			respond.FieldErrors(w, map[string][]string{"email": {"Enter a valid email address."}})
			return
		}
		user.Email = email
	}
	if update.FullName != nil {
		user.FullName = strings.TrimSpace(*update.FullName)
	}
	if update.Bio != nil {
		user.Bio = strings.TrimSpace(*update.Bio)
	}
	saved, err := h.users.UpdateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.FieldErrors(w, map[string][]string{"email": {"This email is already in use."}})
			return
		}
		storageError(w, r, h.logger, err, "User")
		return
	}
	respond.JSON(w, http.StatusOK, saved.Profile())
}

func (h *AuthHandler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	caller := claims(r)
	if err := h.users.DeleteUser(r.Context(), caller.UserID()); err != nil {
		storageError(w, r, h.logger, err, "User")
		return
	}
	if err := h.content.ForgetUser(r.Context(), caller.UserID(), caller.Username); err != nil {
		h.logger.Error("forget user content", "user_id", caller.UserID(), "error", err)
	}
	if caller.ExpiresAt != nil {
		h.revocations.Revoke(caller.ID, caller.ExpiresAt.Time)
	}
	h.logger.Info("account deleted", "user_id", caller.UserID())
	respond.NoContent(w)
}

func (h *AuthHandler) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+1<<10)
	file, header, err := r.FormFile(avatarField)
	if err != nil {
		respond.FieldErrors(w, map[string][]string{avatarField: {"No file was submitted."}})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Could not read the upload.")
		return
	}
	if len(data) > maxAvatarBytes {
		respond.FieldErrors(w, map[string][]string{avatarField: {"Image must be 5 MB or smaller."}})
		return
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		respond.FieldErrors(w, map[string][]string{avatarField: {"Upload a valid image."}})
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	name := uuid.NewString() + strings.ToLower(path.Ext(header.Filename))
	h.mu.Lock()
	h.avatars[name] = avatar{contentType: contentType, data: data}
	h.mu.Unlock()

	user.AvatarURL = avatarRoute + name
	saved, err := h.users.UpdateUser(r.Context(), user)
	if err != nil {
		storageError(w, r, h.logger, err, "User")
		return
	}
	respond.JSON(w, http.StatusOK, saved.Profile())
}

func (h *AuthHandler) handleAvatarFile(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	file, ok := h.avatars[chi.URLParam(r, "name")]
	h.mu.RUnlock()
	if !ok {
		respond.Error(w, http.StatusNotFound, "Not found.")
		return
	}
	w.Header().Set("Content-Type", file.contentType)
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(file.data))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
