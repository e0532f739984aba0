package domain

// User is an account that can authenticate against the store.
// Only the Active and Admin flags change after creation.
type User struct {
	Entity
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Active       bool   `json:"is_active"`
	Admin        bool   `json:"is_admin"`
}

// IsActive reports whether the user may use authenticated endpoints.
func (u *User) IsActive() bool {
	return u.Active
}

// IsAdmin reports whether the user may mutate the catalog.
func (u *User) IsAdmin() bool {
	return u.Admin
}
