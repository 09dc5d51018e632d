package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/afrigros/marketplace-api/internal/kafka"
	"github.com/afrigros/marketplace-api/internal/orders"
	"github.com/afrigros/marketplace-api/internal/redisx"
)

// Service moves freshly placed orders into fulfillment: every order.created
// event advances the order from pending to processing.
type Service struct {
	Repo  *orders.Repo
	Redis *redis.Client
	Log   zerolog.Logger
}

// HandleOrderCreated is wired as the consumer handler.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil // ignore
	}

	// dedup on event id so redeliveries are harmless
	dkey := fmt.Sprintf(redisx.KeyDedup, "fulfillment", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	order, err := s.Repo.UpdateStatus(ctx, p.OrderID, orders.StatusProcessing, "")
	if err != nil {
		// a replayed or already-cancelled order is not a failure; the
		// transition table simply refuses it
		var te *orders.TransitionError
		if errors.As(err, &te) {
			s.Log.Debug().Str("order_id", p.OrderID).
				Str("from", string(te.From)).Msg("order already past pending")
			return nil
		}
		if errors.Is(err, orders.ErrNotFound) {
			s.Log.Warn().Str("order_id", p.OrderID).Msg("order vanished before fulfillment")
			return nil
		}
		return err
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, order.ID)
	body := kafkax.MustMarshal(map[string]any{
		"status": order.Status, "payment_status": order.PaymentStatus,
	})
	_ = s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()

	s.Log.Info().Str("order_id", order.ID).Msg("order moved to processing")
	return nil
}
