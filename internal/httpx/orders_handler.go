package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/afrigros/marketplace-api/internal/kafka"
	"github.com/afrigros/marketplace-api/internal/orders"
	"github.com/afrigros/marketplace-api/internal/redisx"
	"github.com/afrigros/marketplace-api/internal/users"
)

type OrdersHandler struct {
	Repo      *orders.Repo
	Created   *kafkax.Producer
	Cancelled *kafkax.Producer
	Redis     *redis.Client
	Service   string
	Auth      *Authenticator
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(h.Auth.Middleware)
		r.Post("/", h.place)
		r.Get("/", h.listMine)
		r.Get("/{id}", h.get)
		r.Get("/{id}/status", h.getStatus)
		r.Put("/{id}/cancel", h.cancel)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(users.RoleAdmin))
			r.Get("/admin/all", h.listAll)
			r.Put("/{id}/status", h.updateStatus)
			r.Put("/{id}/payment", h.updatePayment)
		})
	})
}

type placeReq struct {
	Items           []orders.LineRequest `json:"items"`
	ShippingAddress string               `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}

	u := userFrom(r.Context())
	sum, err := h.Repo.Place(r.Context(), u.ID, orders.PlaceInput{
		Lines:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cacheStatus(r, sum.ID, sum.Status, sum.PaymentStatus)

	// event payload carries the priced items; re-read is fine, the order
	// is committed
	if order, err := h.Repo.GetForUser(r.Context(), u.ID, sum.ID); err == nil {
		h.publish(h.Created, orders.EventOrderCreated, r, orders.OrderCreatedPayload{
			OrderID:     order.ID,
			UserID:      order.UserID,
			Items:       eventItems(order.Items),
			TotalAmount: order.TotalAmount,
		})
	}

	success(w, http.StatusCreated, map[string]any{"order": sum})
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	order, err := h.Repo.Cancel(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cacheStatus(r, order.ID, order.Status, order.PaymentStatus)
	h.publish(h.Cancelled, orders.EventOrderCancelled, r, orders.OrderCancelledPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Items:   eventItems(order.Items),
	})

	success(w, http.StatusOK, map[string]any{"order": order})
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	list, err := h.Repo.ListForUser(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	successList(w, len(list), map[string]any{"orders": list})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	order, err := h.Repo.GetForUser(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	success(w, http.StatusOK, map[string]any{"order": order})
}

// getStatus serves the hot polling path from Redis, falling back to the
// database which stays the source of truth.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s))
		return
	}

	u := userFrom(r.Context())
	order, err := h.Repo.GetForUser(r.Context(), u.ID, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	body := statusBody(order.Status, order.PaymentStatus)
	_ = h.Redis.Set(r.Context(), key, body, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	successList(w, len(list), map[string]any{"orders": list})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status         string `json:"status"`
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}
	to := orders.Status(req.Status)
	if !to.Valid() {
		fail(w, http.StatusBadRequest, "invalid status")
		return
	}

	order, err := h.Repo.UpdateStatus(r.Context(), chi.URLParam(r, "id"), to, req.TrackingNumber)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheStatus(r, order.ID, order.Status, order.PaymentStatus)
	success(w, http.StatusOK, map[string]any{"order": order})
}

func (h *OrdersHandler) updatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}
	to := orders.PaymentStatus(req.PaymentStatus)
	if !to.Valid() {
		fail(w, http.StatusBadRequest, "invalid payment status")
		return
	}

	order, err := h.Repo.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheStatus(r, order.ID, order.Status, order.PaymentStatus)
	success(w, http.StatusOK, map[string]any{"order": order})
}

func statusBody(s orders.Status, p orders.PaymentStatus) []byte {
	return kafkax.MustMarshal(map[string]any{"status": s, "payment_status": p})
}

func (h *OrdersHandler) cacheStatus(r *http.Request, orderID string, s orders.Status, p orders.PaymentStatus) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(r.Context(), key, statusBody(s, p), redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(p *kafkax.Producer, eventType string, r *http.Request, payload any) {
	ev := orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     h.Service,
		TraceID:      r.Header.Get("X-Request-Id"),
	}
	switch pl := payload.(type) {
	case orders.OrderCreatedPayload:
		ev.CorrelationID = pl.OrderID
	case orders.OrderCancelledPayload:
		ev.CorrelationID = pl.OrderID
	}
	ev.Payload = kafkax.MustMarshal(payload)
	p.Publish(orders.PartitionKey(ev.CorrelationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func eventItems(items []orders.Item) []orders.EventItem {
	out := make([]orders.EventItem, 0, len(items))
	for _, it := range items {
		out = append(out, orders.EventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return out
}
