package httpx

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/afrigros/marketplace-api/internal/catalog"
	"github.com/afrigros/marketplace-api/internal/reviews"
	"github.com/afrigros/marketplace-api/internal/users"
)

type ProductsHandler struct {
	Products   *catalog.ProductRepo
	Categories *catalog.CategoryRepo
	Reviews    *reviews.Repo
	Images     *ImageStore
	Auth       *Authenticator
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/search", h.search)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware)
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f catalog.ListFilter
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	if f.Limit < 1 {
		f.Limit = 10
	}
	f.CategoryID = q.Get("category")
	if v := q.Get("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid minPrice")
			return
		}
		f.MinPrice = &d
	}
	if v := q.Get("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid maxPrice")
			return
		}
		f.MaxPrice = &d
	}
	if v := q.Get("available"); v != "" {
		avail := v == "true"
		f.Available = &avail
	}

	products, total, err := h.Products.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"results":     len(products),
		"totalPages":  int(math.Ceil(float64(total) / float64(f.Limit))),
		"currentPage": page,
		"data":        map[string]any{"products": products},
	})
}

func (h *ProductsHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		fail(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	products, err := h.Products.Search(r.Context(), query)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	successList(w, len(products), map[string]any{"products": products})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	revs, err := h.Reviews.ListByProduct(r.Context(), p.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"product": p, "reviews": revs})
}

// create accepts multipart/form-data so the image can ride along with the
// product fields.
func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := r.FormValue("name")
	categoryID := r.FormValue("categoryId")
	if name == "" || categoryID == "" {
		fail(w, http.StatusBadRequest, "name and categoryId are required")
		return
	}
	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || price.IsNegative() {
		fail(w, http.StatusBadRequest, "price must be a non-negative number")
		return
	}
	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil || stock < 0 {
		fail(w, http.StatusBadRequest, "stock must be a non-negative integer")
		return
	}

	if _, err := h.Categories.GetByID(r.Context(), categoryID); err != nil {
		writeDomainError(w, err)
		return
	}

	var imageURL string
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imageURL, err = h.Images.Save(file, header)
		if err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	u := userFrom(r.Context())
	p := &catalog.Product{
		Name:        name,
		Description: r.FormValue("description"),
		Price:       price,
		Stock:       stock,
		ImageURL:    imageURL,
		IsAvailable: true,
		SellerID:    u.ID,
		CategoryID:  categoryID,
	}
	if err := h.Products.Create(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusCreated, map[string]any{"product": p})
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	u := userFrom(r.Context())
	if p.SellerID != u.ID && u.Role != users.RoleAdmin {
		fail(w, http.StatusForbidden, "you are not allowed to modify this product")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if v := r.FormValue("name"); v != "" {
		p.Name = v
	}
	if v := r.FormValue("description"); v != "" {
		p.Description = v
	}
	if v := r.FormValue("price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			fail(w, http.StatusBadRequest, "price must be a non-negative number")
			return
		}
		p.Price = d
	}
	if v := r.FormValue("stock"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(w, http.StatusBadRequest, "stock must be a non-negative integer")
			return
		}
		p.Stock = n
	}
	if v := r.FormValue("categoryId"); v != "" {
		if _, err := h.Categories.GetByID(r.Context(), v); err != nil {
			writeDomainError(w, err)
			return
		}
		p.CategoryID = v
	}
	if v := r.FormValue("slug"); v != "" {
		p.Slug = v
	}
	if v := r.FormValue("isAvailable"); v != "" {
		p.IsAvailable = v == "true"
	}
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		url, err := h.Images.Save(file, header)
		if err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
		if p.ImageURL != "" {
			h.Images.Remove(p.ImageURL)
		}
		p.ImageURL = url
	}

	if err := h.Products.Update(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"product": p})
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	u := userFrom(r.Context())
	if p.SellerID != u.ID && u.Role != users.RoleAdmin {
		fail(w, http.StatusForbidden, "you are not allowed to delete this product")
		return
	}

	if err := h.Products.Delete(r.Context(), p.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	if p.ImageURL != "" {
		h.Images.Remove(p.ImageURL)
	}
	w.WriteHeader(http.StatusNoContent)
}
