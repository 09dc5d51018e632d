package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepo struct{ DB *pgxpool.Pool }

const productCols = `p.id, p.name, p.description, p.price, p.stock, p.image_url, p.slug,
	p.is_available, p.seller_id, p.category_id, p.created_at, p.updated_at`

const productJoinedCols = productCols + `,
	c.id, c.name, c.slug, u.id, u.first_name, u.last_name`

const productJoins = ` FROM products p
	JOIN categories c ON c.id = p.category_id
	JOIN users u ON u.id = p.seller_id`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.Slug,
		&p.IsAvailable, &p.SellerID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProductJoined(row pgx.Row) (*Product, error) {
	var (
		p Product
		c CategoryRef
		s SellerRef
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.Slug,
		&p.IsAvailable, &p.SellerID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
		&c.ID, &c.Name, &c.Slug, &s.ID, &s.FirstName, &s.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Category, p.Seller = &c, &s
	return &p, nil
}

// Create generates the slug from the name; on a slug collision a timestamp
// suffix keeps it unique.
func (r *ProductRepo) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	var exists bool
	if err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE slug=$1)`, p.Slug).Scan(&exists); err != nil {
		return err
	}
	if exists {
		p.Slug = fmt.Sprintf("%s-%d", p.Slug, time.Now().UnixMilli())
	}
	return r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, description, price, stock, image_url, slug, is_available, seller_id, category_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Slug, p.IsAvailable,
		p.SellerID, p.CategoryID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	return scanProductJoined(r.DB.QueryRow(ctx,
		`SELECT `+productJoinedCols+productJoins+` WHERE p.id=$1`, id))
}

// List applies the filter and returns the matching page plus the total count.
func (r *ProductRepo) List(ctx context.Context, f ListFilter) ([]Product, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if f.CategoryID != "" {
		add("p.category_id = ?", f.CategoryID)
	}
	if f.MinPrice != nil {
		add("p.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= ?", *f.MaxPrice)
	}
	if f.Available != nil {
		add("p.is_available = ?", *f.Available)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM products p WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	args = append(args, limit, (page-1)*limit)
	q := fmt.Sprintf(`SELECT %s%s WHERE %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		productJoinedCols, productJoins, cond, len(args)-1, len(args))

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectJoined(rows)
	return out, total, err
}

func (r *ProductRepo) Search(ctx context.Context, query string) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productJoinedCols+productJoins+`
		 WHERE p.name ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%'
		 ORDER BY p.created_at DESC`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJoined(rows)
}

func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products p WHERE p.category_id=$1 ORDER BY p.created_at DESC`,
		categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func collectJoined(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		p, err := scanProductJoined(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Update(ctx context.Context, p *Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$2, description=$3, price=$4, stock=$5, image_url=$6,
		       slug=$7, is_available=$8, category_id=$9, updated_at=now()
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Slug, p.IsAvailable, p.CategoryID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
