package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockCountService manages the historical count ledger: one record per
// count of a (client, product, consignment) triple.
type StockCountService interface {
	List(ctx context.Context, clientID *int) ([]StockCount, error)
	GetByID(ctx context.Context, id int) (*StockCount, error)
	// Create derives quantity_sold and total_sold from the input. The
	// derivation is unclamped; remaining above sent yields a negative sold.
	Create(ctx context.Context, input StockCountInput) (*StockCount, error)
	// Update merges a partial update and recomputes the derived fields from
	// the merged values.
	Update(ctx context.Context, id int, patch StockCountPatch) (*StockCount, error)
	Delete(ctx context.Context, id int) error
	// CreateBatch inserts a whole count sheet in one transaction; one bad
	// line rolls back the lot.
	CreateBatch(ctx context.Context, inputs []StockCountInput) ([]StockCount, error)
	// CreateBaselineTx seeds a zero-sales count for a freshly delivered
	// triple within the caller's TX. A triple that already has a count is
	// left untouched.
	CreateBaselineTx(ctx context.Context, tx pgx.Tx, clientID, productID, consignmentID, quantitySent int, unitPrice decimal.Decimal) error
	TotalSalesValue(ctx context.Context) (decimal.Decimal, error)
}

type stockCountService struct {
	pool *pgxpool.Pool
}

// NewStockCountService constructs a StockCountService backed by PostgreSQL.
func NewStockCountService(pool *pgxpool.Pool) StockCountService {
	return &stockCountService{pool: pool}
}

const stockCountColumns = `id, client_id, product_id, consignment_id,
	quantity_sent, quantity_remaining, quantity_sold, unit_price, total_sold, count_date`

func scanStockCount(row pgx.Row) (*StockCount, error) {
	sc := &StockCount{}
	err := row.Scan(
		&sc.ID, &sc.ClientID, &sc.ProductID, &sc.ConsignmentID,
		&sc.QuantitySent, &sc.QuantityRemaining, &sc.QuantitySold,
		&sc.UnitPrice, &sc.TotalSold, &sc.CountDate,
	)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *stockCountService) List(ctx context.Context, clientID *int) ([]StockCount, error) {
	query := "SELECT " + stockCountColumns + " FROM stock_counts"
	var args []any
	if clientID != nil {
		query += " WHERE client_id = $1"
		args = append(args, *clientID)
	}
	query += " ORDER BY count_date DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock counts: %w", err)
	}
	defer rows.Close()

	var counts []StockCount
	for rows.Next() {
		var sc StockCount
		if err := rows.Scan(
			&sc.ID, &sc.ClientID, &sc.ProductID, &sc.ConsignmentID,
			&sc.QuantitySent, &sc.QuantityRemaining, &sc.QuantitySold,
			&sc.UnitPrice, &sc.TotalSold, &sc.CountDate,
		); err != nil {
			return nil, fmt.Errorf("scan stock count: %w", err)
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func (s *stockCountService) GetByID(ctx context.Context, id int) (*StockCount, error) {
	sc, err := scanStockCount(s.pool.QueryRow(ctx,
		"SELECT "+stockCountColumns+" FROM stock_counts WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("stock count %d", id)
		}
		return nil, fmt.Errorf("get stock count %d: %w", id, err)
	}
	return sc, nil
}

func validateCountInput(input StockCountInput) error {
	if input.ClientID == 0 || input.ProductID == 0 || input.ConsignmentID == 0 {
		return InvalidArgumentf("client_id, product_id and consignment_id are required")
	}
	if input.QuantitySent < 0 || input.QuantityRemaining < 0 {
		return InvalidArgumentf("quantities cannot be negative")
	}
	if input.UnitPrice.IsNegative() {
		return InvalidArgumentf("unit price cannot be negative")
	}
	return nil
}

func (s *stockCountService) Create(ctx context.Context, input StockCountInput) (*StockCount, error) {
	if err := validateCountInput(input); err != nil {
		return nil, err
	}
	return s.insert(ctx, s.pool, input)
}

// insert runs against either the pool or a transaction.
func (s *stockCountService) insert(ctx context.Context, q querier, input StockCountInput) (*StockCount, error) {
	sold, totalSold := DeriveStockCount(input.QuantitySent, input.QuantityRemaining, input.UnitPrice)

	sc, err := scanStockCount(q.QueryRow(ctx, `
		INSERT INTO stock_counts (client_id, product_id, consignment_id,
			quantity_sent, quantity_remaining, quantity_sold, unit_price, total_sold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+stockCountColumns,
		input.ClientID, input.ProductID, input.ConsignmentID,
		input.QuantitySent, input.QuantityRemaining, sold, input.UnitPrice, totalSold,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, NotFoundf("client %d, product %d or consignment %d",
				input.ClientID, input.ProductID, input.ConsignmentID)
		}
		return nil, fmt.Errorf("insert stock count: %w", err)
	}
	return sc, nil
}

// querier is the subset of pgxpool.Pool and pgx.Tx the insert path needs.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *stockCountService) Update(ctx context.Context, id int, patch StockCountPatch) (*StockCount, error) {
	if patch.QuantitySent != nil && *patch.QuantitySent < 0 {
		return nil, InvalidArgumentf("quantity_sent cannot be negative")
	}
	if patch.QuantityRemaining != nil && *patch.QuantityRemaining < 0 {
		return nil, InvalidArgumentf("quantity_remaining cannot be negative")
	}
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return nil, InvalidArgumentf("unit price cannot be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin count update tx: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := scanStockCount(tx.QueryRow(ctx,
		"SELECT "+stockCountColumns+" FROM stock_counts WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("stock count %d", id)
		}
		return nil, fmt.Errorf("lock stock count %d: %w", id, err)
	}

	merged := existing.ApplyPatch(patch)
	sc, err := scanStockCount(tx.QueryRow(ctx, `
		UPDATE stock_counts SET
			quantity_sent      = $2,
			quantity_remaining = $3,
			quantity_sold      = $4,
			unit_price         = $5,
			total_sold         = $6
		WHERE id = $1
		RETURNING `+stockCountColumns,
		id, merged.QuantitySent, merged.QuantityRemaining, merged.QuantitySold,
		merged.UnitPrice, merged.TotalSold,
	))
	if err != nil {
		return nil, fmt.Errorf("update stock count %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit count update: %w", err)
	}
	return sc, nil
}

func (s *stockCountService) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM stock_counts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete stock count %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("stock count %d", id)
	}
	return nil
}

func (s *stockCountService) CreateBatch(ctx context.Context, inputs []StockCountInput) ([]StockCount, error) {
	if len(inputs) == 0 {
		return nil, InvalidArgumentf("batch needs at least one count")
	}
	for _, in := range inputs {
		if err := validateCountInput(in); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	out := make([]StockCount, 0, len(inputs))
	for _, in := range inputs {
		sc, err := s.insert(ctx, tx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}
	return out, nil
}

func (s *stockCountService) CreateBaselineTx(ctx context.Context, tx pgx.Tx, clientID, productID, consignmentID, quantitySent int, unitPrice decimal.Decimal) error {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM stock_counts
			WHERE client_id = $1 AND product_id = $2 AND consignment_id = $3
		)`,
		clientID, productID, consignmentID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check baseline count: %w", err)
	}
	if exists {
		return nil
	}

	// Baseline: nothing sold yet, remaining equals sent.
	_, err = tx.Exec(ctx, `
		INSERT INTO stock_counts (client_id, product_id, consignment_id,
			quantity_sent, quantity_remaining, quantity_sold, unit_price, total_sold)
		VALUES ($1, $2, $3, $4, $4, 0, $5, 0)`,
		clientID, productID, consignmentID, quantitySent, unitPrice,
	)
	if err != nil {
		return fmt.Errorf("insert baseline count: %w", err)
	}
	return nil
}

func (s *stockCountService) TotalSalesValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(total_sold), 0) FROM stock_counts").Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total sales value: %w", err)
	}
	return total, nil
}
