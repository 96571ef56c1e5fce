package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductService manages the wine catalog. Prices stored here are current
// list prices; consignments snapshot them at shipment time.
type ProductService interface {
	// List returns products ordered by name. search matches name or country,
	// case-insensitive; typeFilter narrows by wine type. Both optional.
	List(ctx context.Context, search string, typeFilter WineType) ([]Product, error)
	GetByID(ctx context.Context, id int) (*Product, error)
	Create(ctx context.Context, input ProductInput) (*Product, error)
	Update(ctx context.Context, id int, input ProductPatch) (*Product, error)
	// Delete removes a product permanently. It fails with ErrConflict when
	// the product appears in any consignment, count, or stock row.
	Delete(ctx context.Context, id int) error
	CountAll(ctx context.Context) (int, error)
}

type ProductInput struct {
	Name      string          `json:"name"`
	Country   string          `json:"country"`
	Type      WineType        `json:"type"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Volume    string          `json:"volume"`
	Photo     *string         `json:"photo,omitempty"`
}

type ProductPatch struct {
	Name      *string          `json:"name,omitempty"`
	Country   *string          `json:"country,omitempty"`
	Type      *WineType        `json:"type,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Volume    *string          `json:"volume,omitempty"`
	Photo     *string          `json:"photo,omitempty"`
}

type productService struct {
	pool *pgxpool.Pool
}

// NewProductService constructs a ProductService backed by PostgreSQL.
func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = "id, name, country, type, unit_price, volume, photo"

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Country, &p.Type, &p.UnitPrice, &p.Volume, &p.Photo)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, search string, typeFilter WineType) ([]Product, error) {
	if typeFilter != "" && !ValidWineType(typeFilter) {
		return nil, InvalidArgumentf("invalid wine type %q", typeFilter)
	}

	query := "SELECT " + productColumns + " FROM products WHERE 1=1"
	var args []any
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR country ILIKE $%d)", len(args), len(args))
	}
	if typeFilter != "" {
		args = append(args, typeFilter)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Country, &p.Type, &p.UnitPrice, &p.Volume, &p.Photo); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *productService) GetByID(ctx context.Context, id int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("product %d", id)
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*Product, error) {
	if input.Name == "" {
		return nil, InvalidArgumentf("product name is required")
	}
	if !ValidWineType(input.Type) {
		return nil, InvalidArgumentf("invalid wine type %q", input.Type)
	}
	if input.UnitPrice.IsNegative() {
		return nil, InvalidArgumentf("unit price cannot be negative")
	}
	volume := input.Volume
	if volume == "" {
		volume = "750ml"
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (name, country, type, unit_price, volume, photo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		input.Name, input.Country, input.Type, input.UnitPrice, volume, input.Photo,
	))
	if err != nil {
		return nil, fmt.Errorf("create product %q: %w", input.Name, err)
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, id int, input ProductPatch) (*Product, error) {
	if input.Type != nil && !ValidWineType(*input.Type) {
		return nil, InvalidArgumentf("invalid wine type %q", *input.Type)
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return nil, InvalidArgumentf("unit price cannot be negative")
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products SET
			name       = COALESCE($2, name),
			country    = COALESCE($3, country),
			type       = COALESCE($4, type),
			unit_price = COALESCE($5, unit_price),
			volume     = COALESCE($6, volume),
			photo      = COALESCE($7, photo)
		WHERE id = $1
		RETURNING `+productColumns,
		id, input.Name, input.Country, input.Type, input.UnitPrice, input.Volume, input.Photo,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("product %d", id)
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id int) error {
	var referenced bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM consignment_items WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM stock_counts WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM client_stock WHERE product_id = $1)`,
		id,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check product %d references: %w", id, err)
	}
	if referenced {
		return Conflictf("product %d has consignment or stock history", id)
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Conflictf("product %d is referenced", id)
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("product %d", id)
	}
	return nil
}

func (s *productService) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
