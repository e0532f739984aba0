package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pagebound/bookstore-server/internal/domain"
)

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	IsActive  bool      `json:"is_active" doc:"Whether the user may use authenticated endpoints"`
	IsAdmin   bool      `json:"is_admin" doc:"Whether the user may manage the catalog"`
	CreatedAt time.Time `json:"created_at" doc:"Registration time"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.Active,
		IsAdmin:   u.Admin,
		CreatedAt: u.CreatedAt,
	}
}

// AuthorResponse is the public view of an author.
type AuthorResponse struct {
	ID   string `json:"id" doc:"Author ID"`
	Name string `json:"name" doc:"Author name"`
	Bio  string `json:"bio,omitempty" doc:"Short biography"`
}

func newAuthorResponse(a *domain.Author) AuthorResponse {
	return AuthorResponse{ID: a.ID, Name: a.Name, Bio: a.Bio}
}

// BookResponse is the public view of a book.
type BookResponse struct {
	ID          string          `json:"id" doc:"Book ID"`
	Title       string          `json:"title" doc:"Title"`
	Description string          `json:"description,omitempty" doc:"Description"`
	Price       float64         `json:"price" doc:"Current unit price"`
	InStock     *int            `json:"in_stock" doc:"Units in stock; null when stock is not tracked"`
	AuthorID    string          `json:"author_id,omitempty" doc:"Author ID"`
	Author      *AuthorResponse `json:"author,omitempty" doc:"Resolved author"`
	CreatedAt   time.Time       `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time       `json:"updated_at" doc:"Last update time"`
}

func newBookResponse(b *domain.Book) *BookResponse {
	if b == nil {
		return nil
	}
	resp := &BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Price:       money(b.Price),
		InStock:     b.Stock,
		AuthorID:    b.AuthorID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Author != nil {
		author := newAuthorResponse(b.Author)
		resp.Author = &author
	}
	return resp
}

// CartItemResponse is one line of the cart.
type CartItemResponse struct {
	ID        string        `json:"id" doc:"Cart item ID"`
	BookID    string        `json:"book_id" doc:"Book ID"`
	Quantity  int           `json:"quantity" doc:"Units of the book"`
	LineTotal float64       `json:"line_total" doc:"Quantity times the current book price"`
	Book      *BookResponse `json:"book,omitempty" doc:"The book"`
	AddedAt   time.Time     `json:"added_at" doc:"When the line was first added"`
}

func newCartItemResponse(item *domain.CartItem) CartItemResponse {
	resp := CartItemResponse{
		ID:       item.ID,
		BookID:   item.BookID,
		Quantity: item.Quantity,
		Book:     newBookResponse(item.Book),
		AddedAt:  item.CreatedAt,
	}
	if item.Book != nil {
		resp.LineTotal = money(item.Book.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return resp
}

// CartResponse is the user's whole cart.
type CartResponse struct {
	Items []CartItemResponse `json:"items" doc:"Cart lines in the order they were added"`
	Total float64            `json:"total" doc:"Sum of line totals at current prices"`
}

func newCartResponse(items []*domain.CartItem) CartResponse {
	resp := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	total := decimal.Zero
	for _, item := range items {
		resp.Items = append(resp.Items, newCartItemResponse(item))
		if item.Book != nil {
			total = total.Add(item.Book.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	resp.Total = money(total)
	return resp
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	ID        string        `json:"id" doc:"Order item ID"`
	BookID    string        `json:"book_id" doc:"Book ID"`
	Quantity  int           `json:"quantity" doc:"Units ordered"`
	UnitPrice float64       `json:"unit_price" doc:"Price per unit when the order was placed"`
	Book      *BookResponse `json:"book,omitempty" doc:"The book, absent when it has been removed from the catalog"`
}

// OrderResponse is a placed order.
type OrderResponse struct {
	ID         string              `json:"id" doc:"Order ID"`
	Status     string              `json:"status" doc:"Order status"`
	TotalPrice float64             `json:"total_price" doc:"Total captured when the order was placed"`
	Items      []OrderItemResponse `json:"items" doc:"Order lines"`
	CreatedAt  time.Time           `json:"created_at" doc:"When the order was placed"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:         o.ID,
		Status:     string(o.Status),
		TotalPrice: money(o.TotalPrice),
		Items:      make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:  o.CreatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        item.ID,
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
			Book:      newBookResponse(item.Book),
		})
	}
	return resp
}

// money renders a decimal amount for JSON.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
