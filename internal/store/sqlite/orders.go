package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pagebound/bookstore-server/internal/domain"
	"github.com/pagebound/bookstore-server/internal/store"
)

const orderColumns = `id, created_at, updated_at, user_id, status, total_price`

const orderItemColumns = `oi.id, oi.order_id, oi.book_id, oi.quantity, oi.unit_price, ` + bookColumns

// Order items LEFT JOIN books: a deleted book leaves the line with a nil Book.
const orderItemFrom = `order_items oi
	LEFT JOIN books b ON b.id = oi.book_id
	LEFT JOIN authors a ON a.id = b.author_id`

func scanOrder(scanner interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var (
		o         domain.Order
		createdAt string
		updatedAt string
		status    string
		total     string
	)

	if err := scanner.Scan(&o.ID, &createdAt, &updatedAt, &o.UserID, &status, &total); err != nil {
		return nil, err
	}

	var err error
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if o.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total %q: %w", total, err)
	}
	o.Status = domain.OrderStatus(status)
	o.Items = []domain.OrderItem{}

	return &o, nil
}

func scanOrderItem(scanner interface{ Scan(dest ...any) error }) (*domain.OrderItem, error) {
	var (
		item      domain.OrderItem
		unitPrice string
		book      bookRow
	)

	dest := append([]any{&item.ID, &item.OrderID, &item.BookID, &item.Quantity, &unitPrice}, book.dest()...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return nil, fmt.Errorf("parse unit price %q: %w", unitPrice, err)
	}
	if item.Book, err = book.book(); err != nil {
		return nil, err
	}

	return &item, nil
}

// CreateOrder inserts the order header. Items are added with CreateOrderItem.
func (q *queries) CreateOrder(ctx context.Context, order *domain.Order) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID,
		formatTime(order.CreatedAt),
		formatTime(order.UpdatedAt),
		order.UserID,
		string(order.Status),
		order.TotalPrice.String(),
	)
	if isForeignKeyViolation(err) {
		return store.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateOrderItem appends a line to an order. Lines keep their insertion order.
func (q *queries) CreateOrderItem(ctx context.Context, item *domain.OrderItem) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, book_id, position, quantity, unit_price)
		VALUES (?, ?, ?, (SELECT COUNT(*) FROM order_items WHERE order_id = ?), ?, ?)`,
		item.ID,
		item.OrderID,
		item.BookID,
		item.OrderID,
		item.Quantity,
		item.UnitPrice.String(),
	)
	if isForeignKeyViolation(err) {
		return store.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// UpdateOrderTotal stores the order's total price.
func (q *queries) UpdateOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	result, err := q.q.ExecContext(ctx, `
		UPDATE orders SET total_price = ?, updated_at = ? WHERE id = ?`,
		total.String(), formatTime(timeNow()), orderID,
	)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	return requireOneRow(result, store.ErrOrderNotFound)
}

// ListOrders returns the user's orders newest first, with items populated.
func (q *queries) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := []*domain.Order{}
	byID := make(map[string]*domain.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	if err := q.loadOrderItems(ctx, byID); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder retrieves one of the user's orders with items populated.
// Orders owned by other users are reported as not found.
func (q *queries) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	row := q.q.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = ? AND user_id = ?`, orderID, userID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := q.loadOrderItems(ctx, map[string]*domain.Order{o.ID: o}); err != nil {
		return nil, err
	}
	return o, nil
}

// loadOrderItems fills Items for every order in byID with a single query.
func (q *queries) loadOrderItems(ctx context.Context, byID map[string]*domain.Order) error {
	placeholders := make([]string, 0, len(byID))
	args := make([]any, 0, len(byID))
	for orderID := range byID {
		placeholders = append(placeholders, "?")
		args = append(args, orderID)
	}

	rows, err := q.q.QueryContext(ctx, `
		SELECT `+orderItemColumns+` FROM `+orderItemFrom+`
		WHERE oi.order_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY oi.order_id, oi.position`, args...)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o := byID[item.OrderID]
		o.Items = append(o.Items, *item)
	}
	return rows.Err()
}
