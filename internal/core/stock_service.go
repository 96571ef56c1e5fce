package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ClientStockService manages the live per-client ledger and the real-time
// count flow that reconciles it.
type ClientStockService interface {
	GetClientStock(ctx context.Context, clientID int) ([]ClientStockWithDetails, error)
	GetProductStock(ctx context.Context, clientID, productID int) (*ClientStock, error)
	// ProcessCount reconciles a physical count against the ledger: sold is
	// the drop from the stored quantity (clamped at zero), the ledger is
	// overwritten with the counted value, and the sale is valued at the most
	// recent consignment price for the pair, falling back to the catalog
	// price. Runs in one transaction with the ledger row locked.
	ProcessCount(ctx context.Context, clientID, productID, counted int) (*CountResult, error)
	// AddStockTx adds delivered quantity to the ledger within the caller's
	// TX, creating the row at the default alert threshold if absent.
	AddStockTx(ctx context.Context, tx pgx.Tx, clientID, productID, quantity int) error
	// GetLowStockAlerts returns rows at or below their alert threshold.
	// A nil clientID means all clients.
	GetLowStockAlerts(ctx context.Context, clientID *int) ([]ClientStockWithDetails, error)
	SetMinimumAlert(ctx context.Context, clientID, productID, minimum int) (*ClientStock, error)
	// UpdateProductStock patches a ledger row directly (manual correction).
	UpdateProductStock(ctx context.Context, clientID, productID int, patch ClientStockPatch) (*ClientStock, error)
	// GetTotalStockValue values a client's on-hand stock at current catalog
	// prices.
	GetTotalStockValue(ctx context.Context, clientID int) (decimal.Decimal, error)
}

// ClientStockPatch is a partial update to a ledger row; nil fields keep the
// stored value.
type ClientStockPatch struct {
	Quantity     *int `json:"quantity,omitempty"`
	MinimumAlert *int `json:"minimum_alert,omitempty"`
}

type clientStockService struct {
	pool *pgxpool.Pool
}

// NewClientStockService constructs a ClientStockService backed by PostgreSQL.
func NewClientStockService(pool *pgxpool.Pool) ClientStockService {
	return &clientStockService{pool: pool}
}

const stockDetailQuery = `
	SELECT cs.id, cs.client_id, cs.product_id, cs.quantity, cs.minimum_alert, cs.last_updated,
	       p.id, p.name, p.country, p.type, p.unit_price, p.volume, p.photo,
	       cl.id, cl.name, cl.cnpj, cl.address, cl.phone, cl.contact_name, cl.is_active
	FROM client_stock cs
	JOIN products p ON p.id = cs.product_id
	JOIN clients cl ON cl.id = cs.client_id`

func scanStockDetails(rows pgx.Rows) ([]ClientStockWithDetails, error) {
	var out []ClientStockWithDetails
	for rows.Next() {
		var d ClientStockWithDetails
		if err := rows.Scan(
			&d.ID, &d.ClientID, &d.ProductID, &d.Quantity, &d.MinimumAlert, &d.LastUpdated,
			&d.Product.ID, &d.Product.Name, &d.Product.Country, &d.Product.Type,
			&d.Product.UnitPrice, &d.Product.Volume, &d.Product.Photo,
			&d.Client.ID, &d.Client.Name, &d.Client.CNPJ, &d.Client.Address,
			&d.Client.Phone, &d.Client.ContactName, &d.Client.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan client stock: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *clientStockService) GetClientStock(ctx context.Context, clientID int) ([]ClientStockWithDetails, error) {
	rows, err := s.pool.Query(ctx,
		stockDetailQuery+" WHERE cs.client_id = $1 ORDER BY p.name", clientID)
	if err != nil {
		return nil, fmt.Errorf("get stock for client %d: %w", clientID, err)
	}
	defer rows.Close()
	return scanStockDetails(rows)
}

func (s *clientStockService) GetProductStock(ctx context.Context, clientID, productID int) (*ClientStock, error) {
	cs := &ClientStock{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, client_id, product_id, quantity, minimum_alert, last_updated
		FROM client_stock
		WHERE client_id = $1 AND product_id = $2`,
		clientID, productID,
	).Scan(&cs.ID, &cs.ClientID, &cs.ProductID, &cs.Quantity, &cs.MinimumAlert, &cs.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("stock for client %d product %d", clientID, productID)
		}
		return nil, fmt.Errorf("get stock for client %d product %d: %w", clientID, productID, err)
	}
	return cs, nil
}

func (s *clientStockService) ProcessCount(ctx context.Context, clientID, productID, counted int) (*CountResult, error) {
	if counted < 0 {
		return nil, InvalidArgumentf("counted quantity cannot be negative, got %d", counted)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin count tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var before int
	err = tx.QueryRow(ctx, `
		SELECT quantity FROM client_stock
		WHERE client_id = $1 AND product_id = $2
		FOR UPDATE`,
		clientID, productID,
	).Scan(&before)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("stock for client %d product %d", clientID, productID)
		}
		return nil, fmt.Errorf("lock stock for client %d product %d: %w", clientID, productID, err)
	}

	sold := SoldQuantity(before, counted)

	// Value the sale at the price agreed when the goods shipped; only fall
	// back to the catalog when the pair has no consignment history.
	var unitPrice decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT ci.unit_price
		FROM consignment_items ci
		JOIN consignments co ON co.id = ci.consignment_id
		WHERE co.client_id = $1 AND ci.product_id = $2
		ORDER BY co.date DESC, ci.id DESC
		LIMIT 1`,
		clientID, productID,
	).Scan(&unitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx, "SELECT unit_price FROM products WHERE id = $1", productID).Scan(&unitPrice)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve price for product %d: %w", productID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE client_stock
		SET quantity = $3, last_updated = NOW()
		WHERE client_id = $1 AND product_id = $2`,
		clientID, productID, counted,
	)
	if err != nil {
		return nil, fmt.Errorf("write counted quantity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit count: %w", err)
	}

	return &CountResult{
		QuantitySold:   sold,
		SalesValue:     SalesValue(sold, unitPrice).StringFixed(2),
		RemainingStock: counted,
	}, nil
}

func (s *clientStockService) AddStockTx(ctx context.Context, tx pgx.Tx, clientID, productID, quantity int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO client_stock (client_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, product_id)
		DO UPDATE SET quantity = client_stock.quantity + EXCLUDED.quantity, last_updated = NOW()`,
		clientID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert stock for client %d product %d: %w", clientID, productID, err)
	}
	return nil
}

func (s *clientStockService) GetLowStockAlerts(ctx context.Context, clientID *int) ([]ClientStockWithDetails, error) {
	query := stockDetailQuery + " WHERE cs.quantity <= cs.minimum_alert"
	var args []any
	if clientID != nil {
		query += " AND cs.client_id = $1"
		args = append(args, *clientID)
	}
	query += " ORDER BY cl.name, p.name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get low stock alerts: %w", err)
	}
	defer rows.Close()
	return scanStockDetails(rows)
}

func (s *clientStockService) SetMinimumAlert(ctx context.Context, clientID, productID, minimum int) (*ClientStock, error) {
	if minimum < 0 {
		return nil, InvalidArgumentf("minimum alert cannot be negative, got %d", minimum)
	}

	cs := &ClientStock{}
	err := s.pool.QueryRow(ctx, `
		UPDATE client_stock
		SET minimum_alert = $3, last_updated = NOW()
		WHERE client_id = $1 AND product_id = $2
		RETURNING id, client_id, product_id, quantity, minimum_alert, last_updated`,
		clientID, productID, minimum,
	).Scan(&cs.ID, &cs.ClientID, &cs.ProductID, &cs.Quantity, &cs.MinimumAlert, &cs.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("stock for client %d product %d", clientID, productID)
		}
		return nil, fmt.Errorf("set minimum alert: %w", err)
	}
	return cs, nil
}

func (s *clientStockService) UpdateProductStock(ctx context.Context, clientID, productID int, patch ClientStockPatch) (*ClientStock, error) {
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, InvalidArgumentf("quantity cannot be negative, got %d", *patch.Quantity)
	}
	if patch.MinimumAlert != nil && *patch.MinimumAlert < 0 {
		return nil, InvalidArgumentf("minimum alert cannot be negative, got %d", *patch.MinimumAlert)
	}

	cs := &ClientStock{}
	err := s.pool.QueryRow(ctx, `
		UPDATE client_stock SET
			quantity      = COALESCE($3, quantity),
			minimum_alert = COALESCE($4, minimum_alert),
			last_updated  = NOW()
		WHERE client_id = $1 AND product_id = $2
		RETURNING id, client_id, product_id, quantity, minimum_alert, last_updated`,
		clientID, productID, patch.Quantity, patch.MinimumAlert,
	).Scan(&cs.ID, &cs.ClientID, &cs.ProductID, &cs.Quantity, &cs.MinimumAlert, &cs.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("stock for client %d product %d", clientID, productID)
		}
		return nil, fmt.Errorf("update stock for client %d product %d: %w", clientID, productID, err)
	}
	return cs, nil
}

func (s *clientStockService) GetTotalStockValue(ctx context.Context, clientID int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(cs.quantity * p.unit_price), 0)
		FROM client_stock cs
		JOIN products p ON p.id = cs.product_id
		WHERE cs.client_id = $1`,
		clientID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stock value for client %d: %w", clientID, err)
	}
	return total.Round(2), nil
}
