package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/pagebound/bookstore-server/internal/domain"
	"github.com/pagebound/bookstore-server/internal/store"
)

// bookColumns selects a book with its author resolved. It must be used with
// bookFrom, or with the same b/a aliases, and matches the order of bookRow.dest.
const bookColumns = `b.id, b.created_at, b.updated_at, b.title, b.description, b.price, b.stock,
	b.author_id, a.id, a.created_at, a.updated_at, a.name, a.bio`

const bookFrom = `books b LEFT JOIN authors a ON a.id = b.author_id`

// bookRow holds the raw columns of a book and its author. Every column is
// nullable so the same row works for LEFT JOINs whose book no longer exists.
type bookRow struct {
	id, createdAt, updatedAt sql.NullString
	title, description       sql.NullString
	price                    sql.NullString
	stock                    sql.NullInt64
	authorID                 sql.NullString

	aID, aCreatedAt, aUpdatedAt, aName, aBio sql.NullString
}

func (r *bookRow) dest() []any {
	return []any{
		&r.id, &r.createdAt, &r.updatedAt, &r.title, &r.description, &r.price, &r.stock,
		&r.authorID, &r.aID, &r.aCreatedAt, &r.aUpdatedAt, &r.aName, &r.aBio,
	}
}

// book converts the row. It returns nil when the joined book is missing.
func (r *bookRow) book() (*domain.Book, error) {
	if !r.id.Valid {
		return nil, nil
	}

	b := &domain.Book{
		Title:       r.title.String,
		Description: r.description.String,
		AuthorID:    r.authorID.String,
	}
	b.ID = r.id.String

	var err error
	if b.CreatedAt, err = parseTime(r.createdAt.String); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(r.updatedAt.String); err != nil {
		return nil, err
	}
	if b.Price, err = decimal.NewFromString(r.price.String); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", r.price.String, err)
	}
	if r.stock.Valid {
		b.Stock = domain.IntPtr(int(r.stock.Int64))
	}

	if r.aID.Valid {
		a := &domain.Author{Name: r.aName.String, Bio: r.aBio.String}
		a.ID = r.aID.String
		if a.CreatedAt, err = parseTime(r.aCreatedAt.String); err != nil {
			return nil, err
		}
		if a.UpdatedAt, err = parseTime(r.aUpdatedAt.String); err != nil {
			return nil, err
		}
		b.Author = a
	}

	return b, nil
}

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var r bookRow
	if err := scanner.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.book()
}

// foldTitle returns the case-folded form used for title matching.
func foldTitle(s string) string {
	return cases.Fold().String(s)
}

// CreateBook inserts a new book.
// Returns store.ErrAuthorNotFound if AuthorID does not reference an author.
func (q *queries) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO books (id, created_at, updated_at, title, title_folded, description, price, stock, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		foldTitle(book.Title),
		nullString(book.Description),
		book.Price.String(),
		nullInt(book.Stock),
		nullString(book.AuthorID),
	)
	switch {
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return store.ErrAuthorNotFound
	case err != nil:
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID with its author resolved.
func (q *queries) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM `+bookFrom+` WHERE b.id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// ListBooks returns the books matching filter ordered by title.
func (q *queries) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	var (
		where []string
		args  []any
	)

	if query := strings.TrimSpace(filter.Query); query != "" {
		where = append(where, `b.title_folded LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(foldTitle(query))+"%")
	}
	if filter.AuthorID != "" {
		where = append(where, `b.author_id = ?`)
		args = append(args, filter.AuthorID)
	}
	// Prices are stored as exact decimal text. Both sides go through the
	// same CAST so boundary values compare equal.
	if filter.MinPrice != nil {
		where = append(where, `CAST(b.price AS REAL) >= CAST(? AS REAL)`)
		args = append(args, filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		where = append(where, `CAST(b.price AS REAL) <= CAST(? AS REAL)`)
		args = append(args, filter.MaxPrice.String())
	}
	if filter.InStockOnly {
		where = append(where, `b.stock > 0`)
	}

	query := `SELECT ` + bookColumns + ` FROM ` + bookFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY b.title, b.id`

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook overwrites the mutable fields of a book, including stock.
// It is the write primitive the order transaction uses to decrement stock.
func (q *queries) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := q.q.ExecContext(ctx, `
		UPDATE books SET
			title = ?, title_folded = ?, description = ?, price = ?, stock = ?,
			author_id = ?, updated_at = ?
		WHERE id = ?`,
		book.Title,
		foldTitle(book.Title),
		nullString(book.Description),
		book.Price.String(),
		nullInt(book.Stock),
		nullString(book.AuthorID),
		formatTime(book.UpdatedAt),
		book.ID,
	)
	if isForeignKeyViolation(err) {
		return store.ErrAuthorNotFound
	}
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return requireOneRow(result, store.ErrBookNotFound)
}

// DeleteBook removes a book and any cart lines holding it. Order history keeps
// the book ID.
func (q *queries) DeleteBook(ctx context.Context, id string) error {
	result, err := q.q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return requireOneRow(result, store.ErrBookNotFound)
}
