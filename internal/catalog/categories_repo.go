package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")
	ErrCategoryInUse    = errors.New("category still has products")
)

type CategoryRepo struct{ DB *pgxpool.Pool }

const categoryCols = `id, name, description, slug, image_url, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO categories(id, name, description, slug, image_url)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Description, c.Slug, c.ImageURL,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCategoryExists
		}
		return err
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*Category, error) {
	return scanCategory(r.DB.QueryRow(ctx, `SELECT `+categoryCols+` FROM categories WHERE id=$1`, id))
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+categoryCols+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Update(ctx context.Context, c *Category) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE categories SET name=$2, description=$3, slug=$4, image_url=$5, updated_at=now()
		WHERE id=$1`,
		c.ID, c.Name, c.Description, c.Slug, c.ImageURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCategoryExists
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete refuses to remove a category that still has products.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	var n int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
