package api

import "github.com/pagebound/bookstore-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Cart    *service.CartService
	Orders  *service.OrderService
}
