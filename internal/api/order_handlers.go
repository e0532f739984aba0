package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "placeOrder",
		Method:        http.MethodPost,
		Path:          "/api/v1/orders",
		Summary:       "Place order",
		Description:   "Converts the whole cart into an order at current prices, takes the quantities from stock and empties the cart, atomically",
		Tags:          []string{"Orders"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handlePlaceOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders",
		Description: "Returns the current user's orders, newest first",
		Tags:        []string{"Orders"},
		Security:    bearerSecurity,
	}, s.handleListOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}",
		Summary:     "Get order",
		Tags:        []string{"Orders"},
		Security:    bearerSecurity,
	}, s.handleGetOrder)
}

// OrderOutput wraps an order for Huma.
type OrderOutput struct {
	Body OrderResponse
}

// ListOrdersOutput wraps the order list for Huma.
type ListOrdersOutput struct {
	Body []OrderResponse
}

// OrderIDInput identifies an order by path.
type OrderIDInput struct {
	ID string `path:"id" doc:"Order ID"`
}

func (s *Server) handlePlaceOrder(ctx context.Context, _ *struct{}) (*OrderOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Orders.PlaceOrder(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: newOrderResponse(order)}, nil
}

func (s *Server) handleListOrders(ctx context.Context, _ *struct{}) (*ListOrdersOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.services.Orders.ListOrders(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o))
	}
	return &ListOrdersOutput{Body: resp}, nil
}

func (s *Server) handleGetOrder(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Orders.GetOrder(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: newOrderResponse(order)}, nil
}
