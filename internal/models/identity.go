package models

// Identity is the persisted record for the current session.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Mode     Role   `json:"mode"`
	Token    string `json:"token"`
}

// EffectiveMode returns the capacity the user is acting in. An unset mode
// falls back to the account role.
func (i Identity) EffectiveMode() Role {
	if i.Mode == "" {
		return i.Role
	}
	return i.Mode
}

// Valid reports whether the record satisfies the stored-identity invariants.
func (i Identity) Valid() bool {
	if !i.Role.Valid() || i.Token == "" {
		return false
	}
	return i.Mode == "" || i.Mode.Valid()
}
