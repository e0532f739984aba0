package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_EmptyCart(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "a@x.com")

	resp := ts.api.Post("/api/v1/orders", bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "EMPTY_CART", decodeEnvelope(t, resp).Code)
}

func TestOrders_ListAndGet(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "a@x.com")
	other := ts.registerAndLogin(t, "b@x.com")
	book := ts.createBook(t, "Dune", 10, nil)

	resp := ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": book.ID, "quantity": 3})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Post("/api/v1/orders", bearer(token))
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())
	var order OrderResponse
	decodeData(t, resp, &order)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, 30.0, order.TotalPrice)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 10.0, order.Items[0].UnitPrice)

	resp = ts.api.Get("/api/v1/orders", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var orders []OrderResponse
	decodeData(t, resp, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	resp = ts.api.Get("/api/v1/orders/"+order.ID, bearer(token))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/orders/"+order.ID, bearer(other))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Deleting the book keeps the order line.
	resp = ts.api.Delete("/api/v1/books/"+book.ID, bearer(ts.adminToken(t)))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/orders/"+order.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var after OrderResponse
	decodeData(t, resp, &after)
	require.Len(t, after.Items, 1)
	assert.Equal(t, book.ID, after.Items[0].BookID)
	assert.Nil(t, after.Items[0].Book)
	assert.Equal(t, 30.0, after.TotalPrice)
}

// A shopper registers, logs in and buys the whole stock of a book the admin
// just created, after being turned away for asking for one too many.
func TestCheckoutFlow(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "a@x.com")
	book := ts.createBook(t, "T", 10.0, intPtr(2))

	resp := ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": book.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())

	resp = ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": book.ID, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeEnvelope(t, resp).Code)

	resp = ts.api.Post("/api/v1/orders", bearer(token))
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())
	var order OrderResponse
	decodeData(t, resp, &order)
	assert.Equal(t, 20.0, order.TotalPrice)

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	var got BookResponse
	decodeData(t, resp, &got)
	require.NotNil(t, got.InStock)
	assert.Equal(t, 0, *got.InStock)

	resp = ts.api.Get("/api/v1/cart", bearer(token))
	var cart CartResponse
	decodeData(t, resp, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)
}
