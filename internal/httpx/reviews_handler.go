package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/afrigros/marketplace-api/internal/catalog"
	"github.com/afrigros/marketplace-api/internal/reviews"
	"github.com/afrigros/marketplace-api/internal/users"
)

type ReviewsHandler struct {
	Reviews  *reviews.Repo
	Products *catalog.ProductRepo
	Auth     *Authenticator
}

func (h *ReviewsHandler) Register(r *chi.Mux) {
	r.Route("/api/reviews", func(r chi.Router) {
		r.Get("/product/{productId}", h.listByProduct)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware)
			r.Post("/", h.create)
			r.Get("/user/me", h.listMine)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		fail(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		fail(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	if _, err := h.Products.GetByID(r.Context(), req.ProductID); err != nil {
		writeDomainError(w, err)
		return
	}

	u := userFrom(r.Context())
	rv := &reviews.Review{
		UserID:    u.ID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.Reviews.Create(r.Context(), rv); err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusCreated, map[string]any{"review": rv})
}

func (h *ReviewsHandler) listByProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if _, err := h.Products.GetByID(r.Context(), productID); err != nil {
		writeDomainError(w, err)
		return
	}
	list, err := h.Reviews.ListByProduct(r.Context(), productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	successList(w, len(list), map[string]any{"reviews": list})
}

func (h *ReviewsHandler) get(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Reviews.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"review": rv})
}

func (h *ReviewsHandler) listMine(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	list, err := h.Reviews.ListByUser(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	successList(w, len(list), map[string]any{"reviews": list})
}

func (h *ReviewsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}

	rv, err := h.Reviews.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	u := userFrom(r.Context())
	if rv.UserID != u.ID {
		fail(w, http.StatusForbidden, "you are not allowed to modify this review")
		return
	}

	if req.Rating != 0 {
		if req.Rating < 1 || req.Rating > 5 {
			fail(w, http.StatusBadRequest, "rating must be between 1 and 5")
			return
		}
		rv.Rating = req.Rating
	}
	if req.Comment != "" {
		rv.Comment = req.Comment
	}
	if err := h.Reviews.Update(r.Context(), rv); err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"review": rv})
}

func (h *ReviewsHandler) delete(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Reviews.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	u := userFrom(r.Context())
	if rv.UserID != u.ID && u.Role != users.RoleAdmin {
		fail(w, http.StatusForbidden, "you are not allowed to delete this review")
		return
	}

	if err := h.Reviews.Delete(r.Context(), rv.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
