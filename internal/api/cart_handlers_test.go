package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/v1/cart").Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/cart", map[string]any{"book_id": "bk-x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/orders").Code)
}

func TestCart_AddListRemove(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "a@x.com")
	dune := ts.createBook(t, "Dune", 10, nil)
	emma := ts.createBook(t, "Emma", 4.5, nil)

	// Quantity defaults to one.
	resp := ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": dune.ID})
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())
	var line CartItemResponse
	decodeData(t, resp, &line)
	assert.Equal(t, 1, line.Quantity)

	resp = ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": dune.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.Code)
	decodeData(t, resp, &line)
	assert.Equal(t, 3, line.Quantity)

	resp = ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": emma.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.Code)
	var emmaLine CartItemResponse
	decodeData(t, resp, &emmaLine)

	resp = ts.api.Get("/api/v1/cart", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var cart CartResponse
	decodeData(t, resp, &cart)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, dune.ID, cart.Items[0].BookID)
	assert.Equal(t, 30.0, cart.Items[0].LineTotal)
	assert.Equal(t, 39.0, cart.Total)

	resp = ts.api.Delete("/api/v1/cart/"+emmaLine.ID, bearer(token))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Delete("/api/v1/cart/"+emmaLine.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/cart", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var cleared ClearCartResponse
	decodeData(t, resp, &cleared)
	assert.Equal(t, 1, cleared.Removed)
}

func TestCart_Rejects(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "a@x.com")
	other := ts.registerAndLogin(t, "b@x.com")
	book := ts.createBook(t, "Dune", 10, intPtr(1))

	resp := ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": "bk-missing"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": book.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": book.ID, "quantity": 2})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)
	assert.EqualValues(t, 1, env.Details["available"])

	// Lines are private to their owner.
	resp = ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": book.ID})
	require.Equal(t, http.StatusCreated, resp.Code)
	var line CartItemResponse
	decodeData(t, resp, &line)

	resp = ts.api.Delete("/api/v1/cart/"+line.ID, bearer(other))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
