// Package store defines the persistence contracts of the bookstore server.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pagebound/bookstore-server/internal/domain"
)

// Store defines every persistence operation used by the services.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserFlags(ctx context.Context, id string, active, admin *bool) (*domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Authors
	CreateAuthor(ctx context.Context, author *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
	UpdateAuthor(ctx context.Context, author *domain.Author) error
	DeleteAuthor(ctx context.Context, id string) error

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error

	// Cart
	ListCartItems(ctx context.Context, userID string) ([]*domain.CartItem, error)
	GetCartItem(ctx context.Context, userID, itemID string) (*domain.CartItem, error)
	UpsertCartItem(ctx context.Context, userID, bookID string, delta int) (*domain.CartItem, error)
	DeleteCartItem(ctx context.Context, userID, itemID string) (bool, error)
	ClearCart(ctx context.Context, userID string) (int, error)

	// Orders
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)

	// WithTx runs fn inside a single write transaction. The transaction commits
	// when fn returns nil and rolls back on any error or panic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view of the store used to convert a cart into an
// order. Every method runs inside the transaction opened by Store.WithTx.
type Tx interface {
	ListCartItems(ctx context.Context, userID string) ([]*domain.CartItem, error)
	DeleteCartItem(ctx context.Context, userID, itemID string) (bool, error)

	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error

	CreateOrder(ctx context.Context, order *domain.Order) error
	CreateOrderItem(ctx context.Context, item *domain.OrderItem) error
	UpdateOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error
}
