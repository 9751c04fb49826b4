// Package guard decides which actions and navigation entries the current
// identity may use. It only gates the client; the backend enforces the same
// rules independently.
package guard

import "github.com/hongminglow/wayfarer/internal/models"

// Action is a user-initiated operation subject to the policy.
type Action string

const (
	Post           Action = "post"
	Comment        Action = "comment"
	React          Action = "react"
	Create         Action = "create"
	Chat           Action = "chat"
	ManageServices Action = "manage_services"
)

// Denial reasons shown to the user.
const (
	ReasonLoginRequired  = "login required"
	ReasonSwitchMode     = "switch to traveler mode"
	ReasonAdminNoContent = "admins cannot post/react/comment"
	ReasonAdminsOnly     = "admins only"
	ReasonUnknownAction  = "unknown action"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Decide applies the policy table to (role, mode, action). An empty role
// means nobody is logged in.
func Decide(role, mode models.Role, action Action) Decision {
	if role == "" {
		return deny(ReasonLoginRequired)
	}
	if mode == "" {
		mode = role
	}
	switch action {
	case Post, Comment, React, Create, Chat:
		return decideContent(role, mode)
	case ManageServices:
		if role == models.Admin {
			return allow
		}
		return deny(ReasonAdminsOnly)
	}
	return deny(ReasonUnknownAction)
}

func decideContent(role, mode models.Role) Decision {
	switch role {
	case models.Admin:
		return deny(ReasonAdminNoContent)
	case models.Merchant:
		if mode == models.Traveler {
			return allow
		}
		return deny(ReasonSwitchMode)
	case models.Traveler:
		return allow
	}
	return deny(ReasonLoginRequired)
}

// ModeAllowed reports whether role may act in mode. Everyone may act in
// their own role; merchants may also act as travelers.
func ModeAllowed(role, mode models.Role) bool {
	if mode == role {
		return true
	}
	return role == models.Merchant && mode == models.Traveler
}

// Check is Decide for an identity that may be absent.
func Check(identity models.Identity, loggedIn bool, action Action) Decision {
	if !loggedIn {
		return deny(ReasonLoginRequired)
	}
	return Decide(identity.Role, identity.EffectiveMode(), action)
}
