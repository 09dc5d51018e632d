package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestValidateInput(t *testing.T) {
	valid := PlaceInput{
		Lines:           []LineRequest{{ProductID: "p-1", Quantity: 1}},
		ShippingAddress: "12 Market St",
		PaymentMethod:   "card",
	}

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, validateInput(valid))
	})

	t.Run("empty lines", func(t *testing.T) {
		in := valid
		in.Lines = nil
		assert.ErrorIs(t, validateInput(in), ErrNoItems)
	})

	t.Run("zero quantity", func(t *testing.T) {
		in := valid
		in.Lines = []LineRequest{{ProductID: "p-1", Quantity: 0}}
		var ve *ValidationError
		assert.ErrorAs(t, validateInput(in), &ve)
	})

	t.Run("missing product id", func(t *testing.T) {
		in := valid
		in.Lines = []LineRequest{{Quantity: 2}}
		var ve *ValidationError
		assert.ErrorAs(t, validateInput(in), &ve)
	})

	t.Run("blank address", func(t *testing.T) {
		in := valid
		in.ShippingAddress = "   "
		var ve *ValidationError
		assert.ErrorAs(t, validateInput(in), &ve)
	})

	t.Run("blank payment method", func(t *testing.T) {
		in := valid
		in.PaymentMethod = ""
		var ve *ValidationError
		assert.ErrorAs(t, validateInput(in), &ve)
	})
}

func TestCheckLine(t *testing.T) {
	p := productState{ID: "p-1", Name: "Mangoes", Price: dec("3.50"), Stock: 5, IsAvailable: true}

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, checkLine(p, 5))
	})

	t.Run("unavailable", func(t *testing.T) {
		off := p
		off.IsAvailable = false
		err := checkLine(off, 1)
		var ue *ProductUnavailableError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "p-1", ue.ProductID)
	})

	t.Run("insufficient stock carries available count", func(t *testing.T) {
		err := checkLine(p, 10)
		var se *InsufficientStockError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "p-1", se.ProductID)
		assert.Equal(t, 10, se.Requested)
		assert.Equal(t, 5, se.Available)
	})
}

func TestPriceLineSnapshotsSubtotal(t *testing.T) {
	p := productState{ID: "p-1", Name: "Mangoes", Price: dec("3.50"), Stock: 5, IsAvailable: true}

	it := priceLine("o-1", "i-1", p, 3)
	assert.Equal(t, "o-1", it.OrderID)
	assert.Equal(t, "p-1", it.ProductID)
	assert.Equal(t, 3, it.Quantity)
	assert.True(t, it.Price.Equal(dec("3.50")))
	assert.True(t, it.Subtotal.Equal(dec("10.50")))
}

// The order total must be exactly the sum of line subtotals.
func TestLineTotalsAccumulate(t *testing.T) {
	a := productState{ID: "a", Name: "A", Price: dec("3.50"), Stock: 5, IsAvailable: true}
	b := productState{ID: "b", Name: "B", Price: dec("12.00"), Stock: 10, IsAvailable: true}

	itA := priceLine("o-1", "i-1", a, 3)
	itB := priceLine("o-1", "i-2", b, 1)
	total := decimal.Zero.Add(itA.Subtotal).Add(itB.Subtotal)

	assert.True(t, total.Equal(dec("22.50")))
	assert.True(t, total.Equal(itA.Subtotal.Add(itB.Subtotal)))
}

func TestPlaceValidatesBeforeTouchingStorage(t *testing.T) {
	// a nil pool is safe here: validation fails before the transaction opens
	r := &Repo{}
	_, err := r.Place(context.Background(), "u-1", PlaceInput{})
	assert.ErrorIs(t, err, ErrNoItems)
	assert.True(t, errors.Is(err, ErrNoItems))
}
