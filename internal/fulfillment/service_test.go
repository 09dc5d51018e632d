package fulfillment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/afrigros/marketplace-api/internal/kafka"
	"github.com/afrigros/marketplace-api/internal/orders"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := orders.OrderCreatedPayload{
		OrderID: "o-1",
		UserID:  "u-1",
		Items:   []orders.EventItem{{ProductID: "p-1", Quantity: 2}},
	}
	env := orders.Envelope{
		EventID:       "ev-1",
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "marketplace-api",
		CorrelationID: "o-1",
		Payload:       kafkax.MustMarshal(payload),
	}

	raw := kafkax.MustMarshal(env)

	var got orders.Envelope
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, orders.EventOrderCreated, got.EventType)

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](got.Payload)
	require.NoError(t, err)
	assert.Equal(t, "o-1", p.OrderID)
	require.Len(t, p.Items, 1)
	assert.Equal(t, 2, p.Items[0].Quantity)
}
