package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/afrigros/marketplace-api/internal/catalog"
	"github.com/afrigros/marketplace-api/internal/users"
)

type CategoriesHandler struct {
	Categories *catalog.CategoryRepo
	Products   *catalog.ProductRepo
	Auth       *Authenticator
}

func (h *CategoriesHandler) Register(r *chi.Mux) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/products", h.listProducts)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware, RequireRole(users.RoleAdmin))
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *CategoriesHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.Categories.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	successList(w, len(list), map[string]any{"categories": list})
}

func (h *CategoriesHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Categories.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"category": c})
}

func (h *CategoriesHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Categories.GetByID(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	products, err := h.Products.ListByCategory(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	successList(w, len(products), map[string]any{"products": products})
}

type categoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	ImageURL    string `json:"imageUrl"`
}

func (h *CategoriesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		fail(w, http.StatusBadRequest, "name is required")
		return
	}

	c := &catalog.Category{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
		ImageURL:    req.ImageURL,
	}
	if err := h.Categories.Create(r.Context(), c); err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusCreated, map[string]any{"category": c})
}

func (h *CategoriesHandler) update(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := h.Categories.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Description != "" {
		c.Description = req.Description
	}
	if req.Slug != "" {
		c.Slug = req.Slug
	}
	if req.ImageURL != "" {
		c.ImageURL = req.ImageURL
	}
	if err := h.Categories.Update(r.Context(), c); err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"category": c})
}

func (h *CategoriesHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
