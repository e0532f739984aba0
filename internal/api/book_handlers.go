package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/pagebound/bookstore-server/internal/domain"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the catalog ordered by title, optionally filtered",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a book to the catalog (admin only). Omit in_stock for untracked stock.",
		Tags:          []string{"Books"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Changes the given fields of a book (admin only)",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Removes a book and any cart lines holding it; placed orders keep their lines (admin only)",
		Tags:          []string{"Books"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)
}

// ListBooksInput contains the catalog filters.
type ListBooksInput struct {
	Query       string `query:"q" maxLength:"200" doc:"Case-insensitive title substring"`
	AuthorID    string `query:"author_id" doc:"Only books by this author"`
	MinPrice    string `query:"min_price" doc:"Lowest price, inclusive"`
	MaxPrice    string `query:"max_price" doc:"Highest price, inclusive"`
	InStockOnly bool   `query:"in_stock_only" doc:"Only books with tracked stock above zero"`
}

// BookIDInput identifies a book by path.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body *BookResponse
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body []*BookResponse
}

// CreateBookRequest is the request body for a new book.
type CreateBookRequest struct {
	Title       string  `json:"title" maxLength:"500" doc:"Title"`
	Description string  `json:"description,omitempty" maxLength:"10000" doc:"Description"`
	Price       float64 `json:"price" minimum:"0" doc:"Unit price"`
	InStock     *int    `json:"in_stock,omitempty" minimum:"0" doc:"Units in stock; omit to leave stock untracked"`
	AuthorID    string  `json:"author_id,omitempty" doc:"Author ID"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// UpdateBookRequest is the request body for a book update. Omitted fields
// are left unchanged.
type UpdateBookRequest struct {
	Title       *string  `json:"title,omitempty" maxLength:"500" doc:"Title"`
	Description *string  `json:"description,omitempty" maxLength:"10000" doc:"Description"`
	Price       *float64 `json:"price,omitempty" minimum:"0" doc:"Unit price"`
	InStock     *int     `json:"in_stock,omitempty" minimum:"0" doc:"Units in stock"`
	ClearStock  bool     `json:"clear_stock,omitempty" doc:"Stop tracking stock for this book"`
	AuthorID    *string  `json:"author_id,omitempty" doc:"Author ID; empty string removes the author"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	filter := domain.BookFilter{
		Query:       input.Query,
		AuthorID:    input.AuthorID,
		InStockOnly: input.InStockOnly,
	}

	var err error
	if filter.MinPrice, err = parsePriceParam("min_price", input.MinPrice); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = parsePriceParam("max_price", input.MaxPrice); err != nil {
		return nil, err
	}

	books, err := s.services.Catalog.ListBooks(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, newBookResponse(b))
	}
	return &ListBooksOutput{Body: resp}, nil
}

// parsePriceParam parses an optional decimal query parameter.
func parsePriceParam(name, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed: "+name,
			map[string]string{name: "must be a number"})
	}
	return &d, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.CreateBook(ctx, service.CreateBookRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Price:       decimal.NewFromFloat(input.Body.Price),
		Stock:       input.Body.InStock,
		AuthorID:    input.Body.AuthorID,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	req := service.UpdateBookRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Stock:       input.Body.InStock,
		ClearStock:  input.Body.ClearStock,
		AuthorID:    input.Body.AuthorID,
	}
	if input.Body.Price != nil {
		price := decimal.NewFromFloat(*input.Body.Price)
		req.Price = &price
	}

	book, err := s.services.Catalog.UpdateBook(ctx, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.services.Catalog.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
