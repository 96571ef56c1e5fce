package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ConsignmentService manages shipments and their lifecycle. Marking a
// consignment delivered is the event that moves goods onto the client's
// live stock ledger.
type ConsignmentService interface {
	List(ctx context.Context, filter ConsignmentFilter) ([]ConsignmentWithDetails, error)
	GetByID(ctx context.Context, id int) (*ConsignmentWithDetails, error)
	// Create inserts the consignment and its items in one transaction.
	// Item prices default to the product's current catalog price; total_value
	// is the sum of quantity * unit_price over all items.
	Create(ctx context.Context, input ConsignmentInput) (*ConsignmentWithDetails, error)
	// Update applies a partial update. A status transition INTO delivered
	// triggers the stock hand-off: each item's quantity is added to the
	// client's live ledger and a baseline count record is seeded. The trigger
	// fires only on the transition, so repeating the update is harmless.
	Update(ctx context.Context, id int, input ConsignmentPatch) (*ConsignmentWithDetails, error)
	Delete(ctx context.Context, id int) error
	TotalConsignedValue(ctx context.Context) (decimal.Decimal, error)
}

type ConsignmentInput struct {
	ClientID int                    `json:"client_id"`
	Date     *time.Time             `json:"date,omitempty"`
	Status   ConsignmentStatus      `json:"status,omitempty"`
	Items    []ConsignmentItemInput `json:"items"`
}

type ConsignmentPatch struct {
	ClientID *int               `json:"client_id,omitempty"`
	Date     *time.Time         `json:"date,omitempty"`
	Status   *ConsignmentStatus `json:"status,omitempty"`
}

type consignmentService struct {
	pool        *pgxpool.Pool
	clientStock ClientStockService
	stockCounts StockCountService
}

// NewConsignmentService constructs a ConsignmentService backed by PostgreSQL.
// The stock services provide the TX-scoped delivery hand-off.
func NewConsignmentService(pool *pgxpool.Pool, clientStock ClientStockService, stockCounts StockCountService) ConsignmentService {
	return &consignmentService{pool: pool, clientStock: clientStock, stockCounts: stockCounts}
}

func (s *consignmentService) List(ctx context.Context, filter ConsignmentFilter) ([]ConsignmentWithDetails, error) {
	query := `
		SELECT co.id, co.client_id, co.date, co.status, co.total_value,
		       cl.id, cl.name, cl.cnpj, cl.address, cl.phone, cl.contact_name, cl.is_active
		FROM consignments co
		JOIN clients cl ON cl.id = co.client_id
		WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (cl.name ILIKE %s OR cl.cnpj ILIKE %s)", p, p)
	}
	if filter.Status != "" {
		query += " AND co.status = " + arg(filter.Status)
	}
	if filter.StartDate != nil {
		query += " AND co.date >= " + arg(*filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND co.date <= " + arg(*filter.EndDate)
	}
	if filter.ClientID != 0 {
		query += " AND co.client_id = " + arg(filter.ClientID)
	}
	query += " ORDER BY co.date DESC, co.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consignments: %w", err)
	}
	defer rows.Close()

	var out []ConsignmentWithDetails
	ids := make([]int, 0)
	byID := make(map[int]int)
	for rows.Next() {
		var c ConsignmentWithDetails
		if err := rows.Scan(
			&c.ID, &c.ClientID, &c.Date, &c.Status, &c.TotalValue,
			&c.Client.ID, &c.Client.Name, &c.Client.CNPJ, &c.Client.Address,
			&c.Client.Phone, &c.Client.ContactName, &c.Client.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan consignment: %w", err)
		}
		byID[c.ID] = len(out)
		ids = append(ids, c.ID)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemRows, err := s.pool.Query(ctx, `
		SELECT ci.id, ci.consignment_id, ci.product_id, ci.quantity, ci.unit_price,
		       p.id, p.name, p.country, p.type, p.unit_price, p.volume, p.photo
		FROM consignment_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.consignment_id = ANY($1)
		ORDER BY ci.id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("list consignment items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it ConsignmentItemWithProduct
		if err := itemRows.Scan(
			&it.ID, &it.ConsignmentID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.Product.ID, &it.Product.Name, &it.Product.Country, &it.Product.Type,
			&it.Product.UnitPrice, &it.Product.Volume, &it.Product.Photo,
		); err != nil {
			return nil, fmt.Errorf("scan consignment item: %w", err)
		}
		i := byID[it.ConsignmentID]
		out[i].Items = append(out[i].Items, it)
	}
	return out, itemRows.Err()
}

func (s *consignmentService) GetByID(ctx context.Context, id int) (*ConsignmentWithDetails, error) {
	c := &ConsignmentWithDetails{}
	err := s.pool.QueryRow(ctx, `
		SELECT co.id, co.client_id, co.date, co.status, co.total_value,
		       cl.id, cl.name, cl.cnpj, cl.address, cl.phone, cl.contact_name, cl.is_active
		FROM consignments co
		JOIN clients cl ON cl.id = co.client_id
		WHERE co.id = $1`,
		id,
	).Scan(
		&c.ID, &c.ClientID, &c.Date, &c.Status, &c.TotalValue,
		&c.Client.ID, &c.Client.Name, &c.Client.CNPJ, &c.Client.Address,
		&c.Client.Phone, &c.Client.ContactName, &c.Client.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("consignment %d", id)
		}
		return nil, fmt.Errorf("get consignment %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ci.id, ci.consignment_id, ci.product_id, ci.quantity, ci.unit_price,
		       p.id, p.name, p.country, p.type, p.unit_price, p.volume, p.photo
		FROM consignment_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.consignment_id = $1
		ORDER BY ci.id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get consignment %d items: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it ConsignmentItemWithProduct
		if err := rows.Scan(
			&it.ID, &it.ConsignmentID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.Product.ID, &it.Product.Name, &it.Product.Country, &it.Product.Type,
			&it.Product.UnitPrice, &it.Product.Volume, &it.Product.Photo,
		); err != nil {
			return nil, fmt.Errorf("scan consignment item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

func (s *consignmentService) Create(ctx context.Context, input ConsignmentInput) (*ConsignmentWithDetails, error) {
	if input.ClientID == 0 {
		return nil, InvalidArgumentf("client_id is required")
	}
	if len(input.Items) == 0 {
		return nil, InvalidArgumentf("consignment needs at least one item")
	}
	status := input.Status
	if status == "" {
		status = ConsignmentPending
	}
	if !ValidConsignmentStatus(status) {
		return nil, InvalidArgumentf("invalid status %q", status)
	}
	for _, it := range input.Items {
		if it.Quantity <= 0 {
			return nil, InvalidArgumentf("item quantity must be positive, got %d for product %d", it.Quantity, it.ProductID)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, InvalidArgumentf("item unit price cannot be negative for product %d", it.ProductID)
		}
	}
	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin consignment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var clientExists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)", input.ClientID).Scan(&clientExists); err != nil {
		return nil, fmt.Errorf("check client %d: %w", input.ClientID, err)
	}
	if !clientExists {
		return nil, NotFoundf("client %d", input.ClientID)
	}

	// Snapshot prices and compute the total before inserting anything.
	lines := make([]deliveryLine, 0, len(input.Items))
	total := decimal.Zero
	for _, it := range input.Items {
		var price decimal.Decimal
		if it.UnitPrice != nil {
			price = *it.UnitPrice
		} else {
			err := tx.QueryRow(ctx, "SELECT unit_price FROM products WHERE id = $1", it.ProductID).Scan(&price)
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, NotFoundf("product %d", it.ProductID)
			}
			if err != nil {
				return nil, fmt.Errorf("snapshot price for product %d: %w", it.ProductID, err)
			}
		}
		lines = append(lines, deliveryLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: price})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	total = total.Round(2)

	var consignmentID int
	err = tx.QueryRow(ctx, `
		INSERT INTO consignments (client_id, date, status, total_value)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		input.ClientID, date, status, total,
	).Scan(&consignmentID)
	if err != nil {
		return nil, fmt.Errorf("insert consignment: %w", err)
	}

	for _, l := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO consignment_items (consignment_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			consignmentID, l.ProductID, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, NotFoundf("product %d", l.ProductID)
			}
			return nil, fmt.Errorf("insert consignment item for product %d: %w", l.ProductID, err)
		}
	}

	// A consignment created already delivered hands off stock immediately.
	if status == ConsignmentDelivered {
		if err := s.deliverTx(ctx, tx, consignmentID, input.ClientID, lines); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit consignment: %w", err)
	}
	return s.GetByID(ctx, consignmentID)
}

type deliveryLine struct {
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
}

func (s *consignmentService) Update(ctx context.Context, id int, input ConsignmentPatch) (*ConsignmentWithDetails, error) {
	if input.Status != nil && !ValidConsignmentStatus(*input.Status) {
		return nil, InvalidArgumentf("invalid status %q", *input.Status)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin consignment update tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var prevStatus ConsignmentStatus
	var clientID int
	err = tx.QueryRow(ctx,
		"SELECT status, client_id FROM consignments WHERE id = $1 FOR UPDATE", id,
	).Scan(&prevStatus, &clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("consignment %d", id)
		}
		return nil, fmt.Errorf("lock consignment %d: %w", id, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE consignments SET
			client_id = COALESCE($2, client_id),
			date      = COALESCE($3, date),
			status    = COALESCE($4, status)
		WHERE id = $1`,
		id, input.ClientID, input.Date, input.Status,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, NotFoundf("client %d", derefInt(input.ClientID))
		}
		return nil, fmt.Errorf("update consignment %d: %w", id, err)
	}

	if input.ClientID != nil {
		clientID = *input.ClientID
	}

	// The stock hand-off fires only on the transition into delivered.
	if input.Status != nil && *input.Status == ConsignmentDelivered && prevStatus != ConsignmentDelivered {
		rows, err := tx.Query(ctx,
			"SELECT product_id, quantity, unit_price FROM consignment_items WHERE consignment_id = $1", id)
		if err != nil {
			return nil, fmt.Errorf("load items for delivery of consignment %d: %w", id, err)
		}
		var lines []deliveryLine
		for rows.Next() {
			var l deliveryLine
			if err := rows.Scan(&l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan delivery line: %w", err)
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		if err := s.deliverTx(ctx, tx, id, clientID, lines); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit consignment update: %w", err)
	}
	return s.GetByID(ctx, id)
}

// deliverTx moves a delivered consignment's items onto the client's live
// ledger and seeds baseline count records within the caller's TX.
func (s *consignmentService) deliverTx(ctx context.Context, tx pgx.Tx, consignmentID, clientID int, lines []deliveryLine) error {
	for _, l := range lines {
		if err := s.clientStock.AddStockTx(ctx, tx, clientID, l.ProductID, l.Quantity); err != nil {
			return fmt.Errorf("add stock for product %d: %w", l.ProductID, err)
		}
		if err := s.stockCounts.CreateBaselineTx(ctx, tx, clientID, l.ProductID, consignmentID, l.Quantity, l.UnitPrice); err != nil {
			return fmt.Errorf("seed baseline count for product %d: %w", l.ProductID, err)
		}
	}
	return nil
}

func (s *consignmentService) Delete(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin consignment delete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM stock_counts WHERE consignment_id = $1", id); err != nil {
		return fmt.Errorf("delete counts of consignment %d: %w", id, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM consignment_items WHERE consignment_id = $1", id); err != nil {
		return fmt.Errorf("delete items of consignment %d: %w", id, err)
	}
	tag, err := tx.Exec(ctx, "DELETE FROM consignments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete consignment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("consignment %d", id)
	}
	return tx.Commit(ctx)
}

func (s *consignmentService) TotalConsignedValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(total_value), 0) FROM consignments").Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total consigned value: %w", err)
	}
	return total, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
