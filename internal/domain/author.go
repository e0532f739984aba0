package domain

// Author is a catalog author. Books reference authors by ID only.
type Author struct {
	Entity
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}
