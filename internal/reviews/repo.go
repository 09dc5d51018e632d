package reviews

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("review not found")
	ErrDuplicate = errors.New("user already reviewed this product")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, rv *Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO reviews(id, user_id, product_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		rv.ID, rv.UserID, rv.ProductID, rv.Rating, rv.Comment,
	).Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Review, error) {
	var (
		rv Review
		a  Author
		p  ProductRef
	)
	err := r.DB.QueryRow(ctx, `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, r.updated_at,
		       u.id, u.first_name, u.last_name, p.id, p.name, p.image_url
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN products p ON p.id = r.product_id
		WHERE r.id=$1`, id,
	).Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
		&a.ID, &a.FirstName, &a.LastName, &p.ID, &p.Name, &p.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rv.Author, rv.Product = &a, &p
	return &rv, nil
}

func (r *Repo) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, r.updated_at,
		       u.id, u.first_name, u.last_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id=$1
		ORDER BY r.created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var (
			rv Review
			a  Author
		)
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment,
			&rv.CreatedAt, &rv.UpdatedAt, &a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		rv.Author = &a
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, r.updated_at,
		       p.id, p.name, p.image_url
		FROM reviews r
		JOIN products p ON p.id = r.product_id
		WHERE r.user_id=$1
		ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var (
			rv Review
			p  ProductRef
		)
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment,
			&rv.CreatedAt, &rv.UpdatedAt, &p.ID, &p.Name, &p.ImageURL); err != nil {
			return nil, err
		}
		rv.Product = &p
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, rv *Review) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE reviews SET rating=$2, comment=$3, updated_at=now() WHERE id=$1`,
		rv.ID, rv.Rating, rv.Comment)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
