package dto

import "github.com/hongminglow/wayfarer/internal/models"

type SignupRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

// ModeRequest asks the backend to reissue the caller's token for another
// acting mode.
type ModeRequest struct {
	Mode models.Role `json:"mode"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}
