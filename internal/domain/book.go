package domain

import "github.com/shopspring/decimal"

// Book is a purchasable catalog item.
//
// Stock is nil when the book does not track inventory (unlimited supply).
// When tracked it never goes below zero.
type Book struct {
	Entity
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"in_stock"`
	AuthorID    string          `json:"author_id,omitempty"`

	// Author is resolved by the store on reads when AuthorID points at an existing author.
	Author *Author `json:"author,omitempty"`
}

// TracksStock reports whether the book has a finite stock count.
func (b *Book) TracksStock() bool {
	return b.Stock != nil
}

// CanSupply reports whether quantity units can be taken from current stock.
// Untracked books can always supply.
func (b *Book) CanSupply(quantity int) bool {
	return b.Stock == nil || *b.Stock >= quantity
}

// DecrementStock removes quantity units from tracked stock, flooring at zero.
// It is a no-op for untracked books.
func (b *Book) DecrementStock(quantity int) {
	if b.Stock == nil {
		return
	}
	remaining := max(*b.Stock-quantity, 0)
	b.Stock = &remaining
}

// BookFilter narrows a catalog listing. Zero values disable a criterion.
type BookFilter struct {
	// Query is a case-insensitive substring of the title.
	Query       string
	AuthorID    string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
}

// IntPtr returns a pointer to v. Handy for stock values.
func IntPtr(v int) *int {
	return &v
}
