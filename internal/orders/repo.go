package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

// Place runs the whole check-and-decrement sequence in one transaction.
// Product rows are locked with FOR UPDATE, so two concurrent placements
// against the same product serialize on the row lock and the second one
// sees the decremented stock. Any failure rolls back everything: no
// partial stock change, no order row.
func (r *Repo) Place(ctx context.Context, userID string, in PlaceInput) (*Summary, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID := uuid.NewString()
	var (
		items []Item
		total = decimal.Zero
	)
	for _, line := range in.Lines {
		var p productState
		p.ID = line.ProductID
		err := tx.QueryRow(ctx,
			`SELECT name, price, stock, is_available FROM products WHERE id=$1 FOR UPDATE`,
			line.ProductID,
		).Scan(&p.Name, &p.Price, &p.Stock, &p.IsAvailable)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, err
		}
		if err := checkLine(p, line.Quantity); err != nil {
			return nil, err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
			line.ProductID, line.Quantity); err != nil {
			return nil, err
		}

		item := priceLine(orderID, uuid.NewString(), p, line.Quantity)
		items = append(items, item)
		total = total.Add(item.Subtotal)
	}

	var summary Summary
	summary.ID = orderID
	summary.TotalAmount = total
	summary.Status = StatusPending
	summary.PaymentStatus = PaymentPending
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, total_amount, status, shipping_address, payment_method, payment_status)
		VALUES ($1,$2,$3,'pending',$4,$5,'pending')
		RETURNING created_at`,
		orderID, userID, total, in.ShippingAddress, in.PaymentMethod,
	).Scan(&summary.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, quantity, price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price, it.Subtotal); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Cancel restores stock for every item and flips the status to cancelled,
// atomically. Only the owner may cancel, and only from pending/processing.
func (r *Repo) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// lock the order row so concurrent cancels cannot both restock
	var status Status
	err = tx.QueryRow(ctx,
		`SELECT status FROM orders WHERE id=$1 AND user_id=$2 FOR UPDATE`,
		orderID, userID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !status.Cancellable() {
		return nil, &StateError{Status: status}
	}

	rows, err := tx.Query(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	type restock struct {
		productID string
		qty       int
	}
	var recs []restock
	for rows.Next() {
		var x restock
		if err := rows.Scan(&x.productID, &x.qty); err != nil {
			rows.Close()
			return nil, err
		}
		recs = append(recs, x)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, x := range recs {
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`,
			x.productID, x.qty); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status='cancelled', updated_at=now() WHERE id=$1`, orderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetForUser(ctx, userID, orderID)
}

const orderCols = `id, user_id, total_amount, status, shipping_address, payment_method,
	payment_status, COALESCE(tracking_number, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress,
		&o.PaymentMethod, &o.PaymentStatus, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) GetForUser(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1 AND user_id=$2`, orderID, userID))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.itemsFor(ctx, o.ID)
	return o, err
}

func (r *Repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1`, orderID))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.itemsFor(ctx, o.ID)
	return o, err
}

func (r *Repo) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC`)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.itemsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) itemsFor(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price, subtotal
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateStatus is the admin path; the transition table guards it.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status, trackingNumber string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !CanTransition(from, to) {
		return nil, &TransitionError{From: from, To: to}
	}

	if trackingNumber != "" {
		_, err = tx.Exec(ctx,
			`UPDATE orders SET status=$2, tracking_number=$3, updated_at=now() WHERE id=$1`,
			orderID, to, trackingNumber)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, to)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *Repo) UpdatePaymentStatus(ctx context.Context, orderID string, to PaymentStatus) (*Order, error) {
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET payment_status=$2, updated_at=now() WHERE id=$1`, orderID, to)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, orderID)
}
