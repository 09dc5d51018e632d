package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/afrigros/marketplace-api/internal/auth"
	"github.com/afrigros/marketplace-api/internal/users"
)

type UsersHandler struct {
	Repo   *users.Repo
	Tokens *auth.Tokens
	Auth   *Authenticator
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware)
			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.updateProfile)
			r.Put("/password", h.changePassword)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(users.RoleAdmin))
				r.Get("/", h.listUsers)
				r.Get("/{id}", h.getUser)
				r.Put("/{id}", h.updateUser)
				r.Delete("/{id}", h.deleteUser)
			})
		})
	})
}

type registerReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// publicUser strips password material from responses.
func publicUser(u *users.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"phone":     u.Phone,
		"address":   u.Address,
		"role":      u.Role,
		"isActive":  u.IsActive,
	}
}

func (h *UsersHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "firstName, lastName, email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	u := &users.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
	}
	if err := h.Repo.Create(r.Context(), u); err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := h.Tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"token":  token,
		"data":   map[string]any{"user": publicUser(u)},
	})
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.Repo.GetByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		fail(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}
	if !u.IsActive {
		fail(w, http.StatusUnauthorized, "account is deactivated")
		return
	}

	token, err := h.Tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
		"data":   map[string]any{"user": publicUser(u)},
	})
}

func (h *UsersHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	success(w, http.StatusOK, map[string]any{"user": publicUser(u)})
}

func (h *UsersHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}

	u := userFrom(r.Context())
	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.Address != "" {
		u.Address = req.Address
	}
	if err := h.Repo.Update(r.Context(), u); err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"user": publicUser(u)})
}

func (h *UsersHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		fail(w, http.StatusBadRequest, "currentPassword and newPassword are required")
		return
	}

	u := userFrom(r.Context())
	if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		fail(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.Repo.UpdatePassword(r.Context(), u.ID, hash); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "password updated"})
}

func (h *UsersHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(list))
	for i := range list {
		out = append(out, publicUser(&list[i]))
	}
	successList(w, len(out), map[string]any{"users": out})
}

func (h *UsersHandler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"user": publicUser(u)})
}

func (h *UsersHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		Role      string `json:"role"`
		IsActive  *bool  `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.Address != "" {
		u.Address = req.Address
	}
	if req.Role != "" {
		if req.Role != users.RoleUser && req.Role != users.RoleAdmin {
			fail(w, http.StatusBadRequest, "invalid role")
			return
		}
		u.Role = req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if err := h.Repo.Update(r.Context(), u); err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"user": publicUser(u)})
}

func (h *UsersHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
