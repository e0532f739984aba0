package domain

// CartItem is a (user, book) line in a user's cart. The pair is unique and
// Quantity is always at least one.
type CartItem struct {
	Entity
	UserID   string `json:"user_id"`
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`

	// Book is resolved by the store on reads.
	Book *Book `json:"book,omitempty"`
}
