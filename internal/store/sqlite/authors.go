package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pagebound/bookstore-server/internal/domain"
	"github.com/pagebound/bookstore-server/internal/store"
)

const authorColumns = `id, created_at, updated_at, name, bio`

func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var (
		a         domain.Author
		createdAt string
		updatedAt string
		bio       sql.NullString
	)

	if err := scanner.Scan(&a.ID, &createdAt, &updatedAt, &a.Name, &bio); err != nil {
		return nil, err
	}

	var err error
	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	a.Bio = bio.String

	return &a, nil
}

// CreateAuthor inserts a new author.
func (q *queries) CreateAuthor(ctx context.Context, author *domain.Author) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO authors (`+authorColumns+`)
		VALUES (?, ?, ?, ?, ?)`,
		author.ID,
		formatTime(author.CreatedAt),
		formatTime(author.UpdatedAt),
		author.Name,
		nullString(author.Bio),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

// GetAuthor retrieves an author by ID.
func (q *queries) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = ?`, id)
	a, err := scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return a, nil
}

// ListAuthors returns every author ordered by name.
func (q *queries) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	authors := []*domain.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// UpdateAuthor overwrites the mutable fields of an author.
func (q *queries) UpdateAuthor(ctx context.Context, author *domain.Author) error {
	result, err := q.q.ExecContext(ctx, `
		UPDATE authors SET name = ?, bio = ?, updated_at = ?
		WHERE id = ?`,
		author.Name,
		nullString(author.Bio),
		formatTime(author.UpdatedAt),
		author.ID,
	)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return requireOneRow(result, store.ErrAuthorNotFound)
}

// DeleteAuthor removes an author. Books by the author stay in the catalog with
// their author reference cleared.
func (q *queries) DeleteAuthor(ctx context.Context, id string) error {
	result, err := q.q.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	return requireOneRow(result, store.ErrAuthorNotFound)
}
