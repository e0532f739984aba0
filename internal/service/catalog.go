package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pagebound/bookstore-server/internal/domain"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/id"
	"github.com/pagebound/bookstore-server/internal/store"
)

// CatalogService manages authors and books.
type CatalogService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: orDiscard(logger)}
}

// CreateAuthorRequest contains the fields of a new author.
type CreateAuthorRequest struct {
	Name string `json:"name" validate:"notblank,max=200"`
	Bio  string `json:"bio,omitempty" validate:"max=5000"`
}

// UpdateAuthorRequest changes an author. Nil fields are left unchanged.
type UpdateAuthorRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Bio  *string `json:"bio,omitempty" validate:"omitempty,max=5000"`
}

// CreateBookRequest contains the fields of a new book.
// A nil Stock creates a book with untracked (unlimited) stock.
type CreateBookRequest struct {
	Title       string          `json:"title" validate:"notblank,max=500"`
	Description string          `json:"description,omitempty" validate:"max=10000"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"in_stock,omitempty" validate:"omitempty,gte=0"`
	AuthorID    string          `json:"author_id,omitempty"`
}

// UpdateBookRequest changes a book. Nil fields are left unchanged.
// ClearStock switches the book to untracked stock; an empty AuthorID clears
// the author reference.
type UpdateBookRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,notblank,max=500"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=10000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"in_stock,omitempty" validate:"omitempty,gte=0"`
	ClearStock  bool             `json:"clear_stock,omitempty"`
	AuthorID    *string          `json:"author_id,omitempty"`
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return domainerrors.ValidationWithDetails("validation failed: price",
			map[string]string{"price": "must be greater than or equal to 0"})
	}
	return nil
}

// CreateAuthor adds an author.
func (s *CatalogService) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*domain.Author, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	authorID, err := id.Generate(id.PrefixAuthor)
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	author := &domain.Author{Name: strings.TrimSpace(req.Name), Bio: req.Bio}
	author.ID = authorID
	author.InitTimestamps()

	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, mapStoreError(err, "create author")
	}

	s.logger.Info("author created", "author_id", author.ID, "name", author.Name)
	return author, nil
}

// GetAuthor returns an author by ID.
func (s *CatalogService) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, mapStoreError(err, "get author")
	}
	return author, nil
}

// ListAuthors returns every author ordered by name.
func (s *CatalogService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, mapStoreError(err, "list authors")
	}
	return authors, nil
}

// UpdateAuthor applies a partial update to an author.
func (s *CatalogService) UpdateAuthor(ctx context.Context, authorID string, req UpdateAuthorRequest) (*domain.Author, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, mapStoreError(err, "get author")
	}

	if req.Name != nil {
		author.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		author.Bio = *req.Bio
	}
	author.Touch()

	if err := s.store.UpdateAuthor(ctx, author); err != nil {
		return nil, mapStoreError(err, "update author")
	}
	return author, nil
}

// DeleteAuthor removes an author. The author's books stay in the catalog
// without an author.
func (s *CatalogService) DeleteAuthor(ctx context.Context, authorID string) error {
	if err := s.store.DeleteAuthor(ctx, authorID); err != nil {
		return mapStoreError(err, "delete author")
	}
	s.logger.Info("author deleted", "author_id", authorID)
	return nil
}

// CreateBook adds a book. A given author must exist.
func (s *CatalogService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, req.AuthorID); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		AuthorID:    req.AuthorID,
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, mapStoreError(err, "create book")
	}

	s.logger.Info("book created", "book_id", book.ID, "title", book.Title)

	// Re-read so the response carries the resolved author.
	return s.GetBook(ctx, book.ID)
}

// GetBook returns a book by ID with its author resolved.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, mapStoreError(err, "get book")
	}
	return book, nil
}

// ListBooks returns the books matching filter ordered by title.
func (s *CatalogService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "list books")
	}
	return books, nil
}

// UpdateBook applies a partial update to a book.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.ClearStock && req.Stock != nil {
		return nil, domainerrors.Validation("in_stock and clear_stock are mutually exclusive")
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return nil, err
		}
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, mapStoreError(err, "get book")
	}

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	switch {
	case req.ClearStock:
		book.Stock = nil
	case req.Stock != nil:
		book.Stock = domain.IntPtr(*req.Stock)
	}
	if req.AuthorID != nil {
		if err := s.checkAuthor(ctx, *req.AuthorID); err != nil {
			return nil, err
		}
		book.AuthorID = *req.AuthorID
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, mapStoreError(err, "update book")
	}

	return s.GetBook(ctx, book.ID)
}

// DeleteBook removes a book. Cart lines holding it go with it; placed orders
// keep their lines.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return mapStoreError(err, "delete book")
	}
	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

// checkAuthor verifies an optional author reference.
func (s *CatalogService) checkAuthor(ctx context.Context, authorID string) error {
	if authorID == "" {
		return nil
	}
	if _, err := s.store.GetAuthor(ctx, authorID); err != nil {
		if errors.Is(err, store.ErrAuthorNotFound) {
			return domainerrors.NotFound("author not found")
		}
		return mapStoreError(err, "get author")
	}
	return nil
}
