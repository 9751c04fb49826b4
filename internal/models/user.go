package models

import "time"

// User captures the server-side account record.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	FullName     string    `json:"full_name"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile returns the user's public profile view.
func (u User) Profile() Profile {
	return Profile{
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FullName:  u.FullName,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
	}
}

// Profile is the editable account information shown on the settings view.
type Profile struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// UserSummary is a user search result.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
