package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pagebound/bookstore-server/internal/domain"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/id"
	"github.com/pagebound/bookstore-server/internal/notify"
	"github.com/pagebound/bookstore-server/internal/store"
)

// Notifier accepts order confirmations for background delivery.
type Notifier interface {
	Enqueue(n notify.Notification) bool
}

// OrderService converts carts into orders.
type OrderService struct {
	store    store.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(store store.Store, logger *slog.Logger) *OrderService {
	return &OrderService{store: store, logger: orDiscard(logger)}
}

// SetNotifier sets where confirmations go after an order commits.
func (s *OrderService) SetNotifier(n Notifier) {
	s.notifier = n
}

// PlaceOrder turns the user's whole cart into one order.
//
// Inside a single transaction it prices every line at the book's current
// price, takes the quantities from tracked stock (flooring at zero), writes
// the order and its items, and empties the cart. Any failure leaves the cart,
// the stock, and the order tables as they were.
//
// Stock is not re-checked here; the cart add is the only stock gate.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string) (*domain.Order, error) {
	var order *domain.Order

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		items, err := tx.ListCartItems(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domainerrors.ErrEmptyCart
		}

		orderID, err := id.Generate(id.PrefixOrder)
		if err != nil {
			return fmt.Errorf("generate order ID: %w", err)
		}

		order = &domain.Order{
			UserID:     userID,
			Status:     domain.OrderStatusCreated,
			TotalPrice: decimal.Zero,
			Items:      make([]domain.OrderItem, 0, len(items)),
		}
		order.ID = orderID
		order.InitTimestamps()

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, cartItem := range items {
			book, err := tx.GetBook(ctx, cartItem.BookID)
			if err != nil {
				return err
			}

			itemID, err := id.Generate(id.PrefixOrderItem)
			if err != nil {
				return fmt.Errorf("generate order item ID: %w", err)
			}

			line := domain.OrderItem{
				ID:        itemID,
				OrderID:   order.ID,
				BookID:    book.ID,
				Quantity:  cartItem.Quantity,
				UnitPrice: book.Price,
			}
			if err := tx.CreateOrderItem(ctx, &line); err != nil {
				return err
			}

			if book.TracksStock() {
				book.DecrementStock(cartItem.Quantity)
				book.Touch()
				if err := tx.UpdateBook(ctx, book); err != nil {
					return err
				}
			}

			line.Book = book
			order.Items = append(order.Items, line)
		}

		order.TotalPrice = order.ItemsTotal()
		if err := tx.UpdateOrderTotal(ctx, order.ID, order.TotalPrice); err != nil {
			return err
		}

		for _, cartItem := range items {
			removed, err := tx.DeleteCartItem(ctx, userID, cartItem.ID)
			if err != nil {
				return err
			}
			if !removed {
				// Another request consumed this line since we read the cart.
				return domainerrors.Conflict("cart changed while placing order")
			}
		}

		return nil
	})
	if err != nil {
		return nil, mapStoreError(err, "place order")
	}

	s.logger.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int("items", len(order.Items)),
		slog.String("total", order.TotalPrice.String()),
	)

	s.confirm(ctx, order)

	return order, nil
}

// confirm hands the order to the notifier. Failures never affect the order.
func (s *OrderService) confirm(ctx context.Context, order *domain.Order) {
	if s.notifier == nil {
		return
	}

	user, err := s.store.GetUser(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("skipping order confirmation",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()))
		return
	}

	quantity := 0
	for _, item := range order.Items {
		quantity += item.Quantity
	}

	s.notifier.Enqueue(notify.Notification{
		Email:     user.Email,
		OrderID:   order.ID,
		Total:     order.TotalPrice,
		ItemCount: quantity,
		PlacedAt:  order.CreatedAt,
	})
}

// ListOrders returns the user's orders, newest first, with their items.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.store.ListOrders(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err, "list orders")
	}
	return orders, nil
}

// GetOrder returns one of the user's orders. Orders of other users are NOT_FOUND.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, mapStoreError(err, "get order")
	}
	return order, nil
}
