package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagebound/bookstore-server/internal/service"
)

func (s *Server) registerCartRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCart",
		Method:      http.MethodGet,
		Path:        "/api/v1/cart",
		Summary:     "Get cart",
		Description: "Returns the current user's cart with line totals at current prices",
		Tags:        []string{"Cart"},
		Security:    bearerSecurity,
	}, s.handleGetCart)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addToCart",
		Method:        http.MethodPost,
		Path:          "/api/v1/cart",
		Summary:       "Add to cart",
		Description:   "Adds units of a book, incrementing an existing line. Fails with INSUFFICIENT_STOCK when the line would exceed tracked stock.",
		Tags:          []string{"Cart"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddToCart)

	huma.Register(s.api, huma.Operation{
		OperationID:   "removeCartItem",
		Method:        http.MethodDelete,
		Path:          "/api/v1/cart/{id}",
		Summary:       "Remove cart line",
		Tags:          []string{"Cart"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleRemoveCartItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearCart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart",
		Summary:     "Clear cart",
		Tags:        []string{"Cart"},
		Security:    bearerSecurity,
	}, s.handleClearCart)
}

// CartOutput wraps the cart for Huma.
type CartOutput struct {
	Body CartResponse
}

// AddToCartRequest is the request body for adding to the cart.
type AddToCartRequest struct {
	BookID   string `json:"book_id" doc:"Book ID"`
	Quantity int    `json:"quantity,omitempty" minimum:"1" maximum:"10000" default:"1" doc:"Units to add"`
}

// AddToCartInput wraps the add request for Huma.
type AddToCartInput struct {
	Body AddToCartRequest
}

// CartItemOutput wraps a cart line for Huma.
type CartItemOutput struct {
	Body CartItemResponse
}

// CartItemIDInput identifies a cart line by path.
type CartItemIDInput struct {
	ID string `path:"id" doc:"Cart item ID"`
}

// ClearCartResponse reports how many lines were removed.
type ClearCartResponse struct {
	Removed int `json:"removed" doc:"Number of cart lines removed"`
}

// ClearCartOutput wraps the clear result for Huma.
type ClearCartOutput struct {
	Body ClearCartResponse
}

func (s *Server) handleGetCart(ctx context.Context, _ *struct{}) (*CartOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Cart.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartOutput{Body: newCartResponse(items)}, nil
}

func (s *Server) handleAddToCart(ctx context.Context, input *AddToCartInput) (*CartItemOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	quantity := input.Body.Quantity
	if quantity == 0 {
		quantity = 1
	}

	item, err := s.services.Cart.Add(ctx, user.ID, service.AddCartItemRequest{
		BookID:   input.Body.BookID,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}
	return &CartItemOutput{Body: newCartItemResponse(item)}, nil
}

func (s *Server) handleRemoveCartItem(ctx context.Context, input *CartItemIDInput) (*struct{}, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Cart.Remove(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleClearCart(ctx context.Context, _ *struct{}) (*ClearCartOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Cart.Clear(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &ClearCartOutput{Body: ClearCartResponse{Removed: n}}, nil
}
