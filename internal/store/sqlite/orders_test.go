package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pagebound/bookstore-server/internal/domain"
	"github.com/pagebound/bookstore-server/internal/store"
)

// createOrder writes an order with the given lines directly through the store.
func createOrder(t *testing.T, s *Store, userID, orderID string, createdAt time.Time, lines ...domain.OrderItem) *domain.Order {
	t.Helper()
	ctx := context.Background()

	order := &domain.Order{UserID: userID, Status: domain.OrderStatusCreated, TotalPrice: decimal.Zero}
	order.ID = orderID
	order.CreatedAt = createdAt
	order.UpdatedAt = createdAt

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := tx.CreateOrderItem(ctx, &lines[i]); err != nil {
				return err
			}
		}
		order.Items = lines
		return tx.UpdateOrderTotal(ctx, order.ID, order.ItemsTotal())
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestGetOrder_ItemsInOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "orders@example.com")
	first := seedBook(t, s, "Zeta", "2.50", nil)
	second := seedBook(t, s, "Alpha", "4.00", nil)

	createOrder(t, s, user.ID, "ord-1", time.Now().UTC(),
		domain.OrderItem{ID: "oi-1", BookID: first.ID, Quantity: 2, UnitPrice: first.Price},
		domain.OrderItem{ID: "oi-2", BookID: second.ID, Quantity: 1, UnitPrice: second.Price},
	)

	got, err := s.GetOrder(ctx, user.ID, "ord-1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if !got.TotalPrice.Equal(decimal.RequireFromString("9")) {
		t.Errorf("TotalPrice: got %s, want 9", got.TotalPrice)
	}
	if got.Status != domain.OrderStatusCreated {
		t.Errorf("Status: got %q", got.Status)
	}
	if len(got.Items) != 2 {
		t.Fatalf("Items: got %d, want 2", len(got.Items))
	}
	if got.Items[0].ID != "oi-1" || got.Items[1].ID != "oi-2" {
		t.Errorf("items out of order: %s, %s", got.Items[0].ID, got.Items[1].ID)
	}
	if got.Items[0].Book == nil || got.Items[0].Book.Title != "Zeta" {
		t.Errorf("book not resolved on item: %+v", got.Items[0].Book)
	}
}

func TestGetOrder_ScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	owner := seedUser(t, s, "owner@example.com")
	other := seedUser(t, s, "other@example.com")
	createOrder(t, s, owner.ID, "ord-private", time.Now().UTC())

	_, err := s.GetOrder(context.Background(), other.ID, "ord-private")
	if !errors.Is(err, store.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestListOrders_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "history@example.com")
	book := seedBook(t, s, "Book", "1.00", nil)

	base := time.Now().UTC()
	createOrder(t, s, user.ID, "ord-old", base.Add(-time.Hour),
		domain.OrderItem{ID: "oi-old", BookID: book.ID, Quantity: 1, UnitPrice: book.Price})
	createOrder(t, s, user.ID, "ord-new", base,
		domain.OrderItem{ID: "oi-new", BookID: book.ID, Quantity: 3, UnitPrice: book.Price})

	orders, err := s.ListOrders(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("ListOrders: got %d, want 2", len(orders))
	}
	if orders[0].ID != "ord-new" || orders[1].ID != "ord-old" {
		t.Errorf("order: got %s, %s", orders[0].ID, orders[1].ID)
	}
	if len(orders[0].Items) != 1 || orders[0].Items[0].Quantity != 3 {
		t.Errorf("items not populated: %+v", orders[0].Items)
	}
}

func TestOrderItems_SurviveBookDeletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "weak@example.com")
	book := seedBook(t, s, "Ephemeral", "7.00", nil)
	createOrder(t, s, user.ID, "ord-weak", time.Now().UTC(),
		domain.OrderItem{ID: "oi-weak", BookID: book.ID, Quantity: 1, UnitPrice: book.Price})

	if err := s.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}

	got, err := s.GetOrder(ctx, user.ID, "ord-weak")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("Items: got %d, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.BookID != book.ID || item.Book != nil {
		t.Errorf("expected dangling book reference, got %q %+v", item.BookID, item.Book)
	}
	if !got.TotalPrice.Equal(decimal.NewFromInt(7)) {
		t.Errorf("TotalPrice: got %s, want 7", got.TotalPrice)
	}
}
