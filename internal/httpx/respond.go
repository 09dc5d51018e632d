package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/afrigros/marketplace-api/internal/catalog"
	"github.com/afrigros/marketplace-api/internal/orders"
	"github.com/afrigros/marketplace-api/internal/reviews"
	"github.com/afrigros/marketplace-api/internal/users"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// success wraps payloads in the {"status":"success","data":{...}} envelope
// clients expect.
func success(w http.ResponseWriter, code int, data map[string]any) {
	writeJSON(w, code, map[string]any{"status": "success", "data": data})
}

func successList(w http.ResponseWriter, results int, data map[string]any) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "results": results, "data": data})
}

func fail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"status": "error", "message": msg})
}

// writeDomainError maps typed domain failures to HTTP statuses. Anything
// unrecognized is a 500 with a generic body.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		ve *orders.ValidationError
		nf *orders.ProductNotFoundError
		ue *orders.ProductUnavailableError
		se *orders.InsufficientStockError
		st *orders.StateError
		tr *orders.TransitionError
	)
	switch {
	case errors.Is(err, orders.ErrNoItems):
		fail(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ve):
		fail(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status": "error", "message": nf.Error(), "productId": nf.ProductID,
		})
	case errors.As(err, &ue):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error", "message": ue.Error(), "productId": ue.ProductID,
		})
	case errors.As(err, &se):
		writeJSON(w, http.StatusConflict, map[string]any{
			"status": "error", "message": se.Error(),
			"productId": se.ProductID, "available": se.Available,
		})
	case errors.As(err, &st), errors.As(err, &tr):
		fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, reviews.ErrNotFound):
		fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, catalog.ErrCategoryExists),
		errors.Is(err, reviews.ErrDuplicate):
		fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrCategoryInUse):
		fail(w, http.StatusBadRequest, err.Error())
	default:
		fail(w, http.StatusInternalServerError, "internal error")
	}
}
