package service

import (
	"context"
	"log/slog"

	"github.com/pagebound/bookstore-server/internal/domain"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/store"
)

// CartService manages a user's cart.
type CartService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store store.Store, logger *slog.Logger) *CartService {
	return &CartService{store: store, logger: orDiscard(logger)}
}

// AddCartItemRequest adds units of a book to the cart.
type AddCartItemRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1,max=10000"`
}

// List returns the user's cart in insertion order.
func (s *CartService) List(ctx context.Context, userID string) ([]*domain.CartItem, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err, "list cart")
	}
	return items, nil
}

// Add puts quantity units of a book in the user's cart, incrementing an
// existing line for the same book.
//
// When the book tracks stock, the resulting line quantity may not exceed the
// current stock. Nothing is reserved: the check is not repeated when the
// order is placed, and other users' carts are not considered.
func (s *CartService) Add(ctx context.Context, userID string, req AddCartItemRequest) (*domain.CartItem, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, mapStoreError(err, "get book")
	}

	if book.TracksStock() {
		inCart, err := s.quantityInCart(ctx, userID, book.ID)
		if err != nil {
			return nil, err
		}
		if !book.CanSupply(inCart + req.Quantity) {
			return nil, domainerrors.InsufficientStock("not enough stock").WithDetails(map[string]int{
				"requested": req.Quantity,
				"in_cart":   inCart,
				"available": *book.Stock,
			})
		}
	}

	item, err := s.store.UpsertCartItem(ctx, userID, book.ID, req.Quantity)
	if err != nil {
		return nil, mapStoreError(err, "add to cart")
	}

	s.logger.Debug("cart item added", "user_id", userID, "book_id", book.ID, "quantity", item.Quantity)
	return item, nil
}

func (s *CartService) quantityInCart(ctx context.Context, userID, bookID string) (int, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return 0, mapStoreError(err, "list cart")
	}
	for _, item := range items {
		if item.BookID == bookID {
			return item.Quantity, nil
		}
	}
	return 0, nil
}

// Remove deletes one line from the user's cart. Lines that do not exist or
// belong to someone else are NOT_FOUND.
func (s *CartService) Remove(ctx context.Context, userID, itemID string) error {
	removed, err := s.store.DeleteCartItem(ctx, userID, itemID)
	if err != nil {
		return mapStoreError(err, "remove cart item")
	}
	if !removed {
		return domainerrors.NotFound("cart item not found")
	}
	return nil
}

// Clear empties the user's cart and returns how many lines were removed.
func (s *CartService) Clear(ctx context.Context, userID string) (int, error) {
	n, err := s.store.ClearCart(ctx, userID)
	if err != nil {
		return 0, mapStoreError(err, "clear cart")
	}
	return n, nil
}
