package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrigros/marketplace-api/internal/catalog"
	"github.com/afrigros/marketplace-api/internal/orders"
	"github.com/afrigros/marketplace-api/internal/reviews"
	"github.com/afrigros/marketplace-api/internal/users"
)

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"no items", orders.ErrNoItems, http.StatusBadRequest},
		{"validation", &orders.ValidationError{Reason: "bad"}, http.StatusBadRequest},
		{"product missing", &orders.ProductNotFoundError{ProductID: "p-1"}, http.StatusNotFound},
		{"product unavailable", &orders.ProductUnavailableError{ProductID: "p-1", Name: "A"}, http.StatusBadRequest},
		{"insufficient stock", &orders.InsufficientStockError{ProductID: "p-1", Requested: 9, Available: 5}, http.StatusConflict},
		{"cancel state", &orders.StateError{Status: orders.StatusShipped}, http.StatusConflict},
		{"bad transition", &orders.TransitionError{From: orders.StatusPending, To: orders.StatusDelivered}, http.StatusConflict},
		{"order missing", orders.ErrNotFound, http.StatusNotFound},
		{"user missing", users.ErrNotFound, http.StatusNotFound},
		{"email taken", users.ErrEmailTaken, http.StatusConflict},
		{"category in use", catalog.ErrCategoryInUse, http.StatusBadRequest},
		{"duplicate review", reviews.ErrDuplicate, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, c.err)
			assert.Equal(t, c.code, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body["status"])
		})
	}
}

func TestInsufficientStockBodyCarriesAvailable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, &orders.InsufficientStockError{
		ProductID: "p-1", Name: "Mangoes", Requested: 9, Available: 5,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "p-1", body["productId"])
	assert.Equal(t, float64(5), body["available"])
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	success(rec, http.StatusCreated, map[string]any{"order": map[string]any{"id": "o-1"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "order")
}
