package orders

import (
	"strings"

	"github.com/shopspring/decimal"
)

// validateInput rejects malformed placement requests before a transaction
// is opened.
func validateInput(in PlaceInput) error {
	if len(in.Lines) == 0 {
		return ErrNoItems
	}
	for _, l := range in.Lines {
		if l.ProductID == "" {
			return &ValidationError{Reason: "line item is missing a product id"}
		}
		if l.Quantity <= 0 {
			return &ValidationError{Reason: "line item quantity must be positive"}
		}
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return &ValidationError{Reason: "shipping address is required"}
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return &ValidationError{Reason: "payment method is required"}
	}
	return nil
}

// checkLine verifies one line against the locked product state.
func checkLine(p productState, qty int) error {
	if !p.IsAvailable {
		return &ProductUnavailableError{ProductID: p.ID, Name: p.Name}
	}
	if qty > p.Stock {
		return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: qty, Available: p.Stock}
	}
	return nil
}

// priceLine snapshots the unit price into an order item.
func priceLine(orderID, itemID string, p productState, qty int) Item {
	sub := p.Price.Mul(decimal.NewFromInt(int64(qty)))
	return Item{
		ID:        itemID,
		OrderID:   orderID,
		ProductID: p.ID,
		Quantity:  qty,
		Price:     p.Price,
		Subtotal:  sub,
	}
}
