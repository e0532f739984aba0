package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pagebound/bookstore-server/internal/domain"
	"github.com/pagebound/bookstore-server/internal/id"
	"github.com/pagebound/bookstore-server/internal/store"
)

const cartItemColumns = `ci.id, ci.created_at, ci.updated_at, ci.user_id, ci.book_id, ci.quantity, ` + bookColumns

const cartItemFrom = `cart_items ci
	JOIN books b ON b.id = ci.book_id
	LEFT JOIN authors a ON a.id = b.author_id`

func scanCartItem(scanner interface{ Scan(dest ...any) error }) (*domain.CartItem, error) {
	var (
		ci        domain.CartItem
		createdAt string
		updatedAt string
		book      bookRow
	)

	dest := append([]any{&ci.ID, &createdAt, &updatedAt, &ci.UserID, &ci.BookID, &ci.Quantity}, book.dest()...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if ci.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if ci.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if ci.Book, err = book.book(); err != nil {
		return nil, err
	}

	return &ci, nil
}

// ListCartItems returns a user's cart lines in insertion order, each with its
// book resolved.
func (q *queries) ListCartItems(ctx context.Context, userID string) ([]*domain.CartItem, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+cartItemColumns+` FROM `+cartItemFrom+`
		WHERE ci.user_id = ?
		ORDER BY ci.created_at, ci.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetCartItem retrieves one of the user's cart lines.
// Lines owned by other users are reported as not found.
func (q *queries) GetCartItem(ctx context.Context, userID, itemID string) (*domain.CartItem, error) {
	row := q.q.QueryRowContext(ctx, `
		SELECT `+cartItemColumns+` FROM `+cartItemFrom+`
		WHERE ci.id = ? AND ci.user_id = ?`, itemID, userID)
	item, err := scanCartItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

// UpsertCartItem adds delta units of a book to the user's cart. An existing
// (user, book) line is incremented rather than duplicated.
func (q *queries) UpsertCartItem(ctx context.Context, userID, bookID string, delta int) (*domain.CartItem, error) {
	if delta < 1 {
		return nil, store.ErrInvalidInput.WithMessage("quantity must be at least 1")
	}

	newID, err := id.Generate(id.PrefixCartItem)
	if err != nil {
		return nil, err
	}
	now := formatTime(timeNow())

	var itemID string
	err = q.q.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, created_at, updated_at, user_id, book_id, quantity)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			quantity = quantity + excluded.quantity,
			updated_at = excluded.updated_at
		RETURNING id`,
		newID, now, now, userID, bookID, delta,
	).Scan(&itemID)
	if isForeignKeyViolation(err) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}

	return q.GetCartItem(ctx, userID, itemID)
}

// DeleteCartItem removes one of the user's cart lines. It reports whether a
// line was removed.
func (q *queries) DeleteCartItem(ctx context.Context, userID, itemID string) (bool, error) {
	result, err := q.q.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND user_id = ?`, itemID, userID)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ClearCart removes every line from the user's cart and returns how many were removed.
func (q *queries) ClearCart(ctx context.Context, userID string) (int, error) {
	result, err := q.q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
