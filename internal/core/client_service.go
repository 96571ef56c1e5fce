package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientService manages the registry of consignment clients (restaurants,
// wine bars, retail shops).
type ClientService interface {
	// List returns clients ordered by name. search matches name or CNPJ,
	// case-insensitive; empty means no filter.
	List(ctx context.Context, search string, includeInactive bool) ([]Client, error)
	GetByID(ctx context.Context, id int) (*Client, error)
	Create(ctx context.Context, input ClientInput) (*Client, error)
	Update(ctx context.Context, id int, input ClientPatch) (*Client, error)
	// Delete removes a client permanently. It fails with ErrConflict when the
	// client is referenced by consignments, counts, or stock rows.
	Delete(ctx context.Context, id int) error
	Deactivate(ctx context.Context, id int) (*Client, error)
	Activate(ctx context.Context, id int) (*Client, error)
	CountActive(ctx context.Context) (int, error)
}

type ClientInput struct {
	Name        string `json:"name"`
	CNPJ        string `json:"cnpj"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	ContactName string `json:"contact_name"`
}

type ClientPatch struct {
	Name        *string `json:"name,omitempty"`
	CNPJ        *string `json:"cnpj,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type clientService struct {
	pool *pgxpool.Pool
}

// NewClientService constructs a ClientService backed by PostgreSQL.
func NewClientService(pool *pgxpool.Pool) ClientService {
	return &clientService{pool: pool}
}

const clientColumns = "id, name, cnpj, address, phone, contact_name, is_active"

func scanClient(row pgx.Row) (*Client, error) {
	c := &Client{}
	err := row.Scan(&c.ID, &c.Name, &c.CNPJ, &c.Address, &c.Phone, &c.ContactName, &c.IsActive)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *clientService) List(ctx context.Context, search string, includeInactive bool) ([]Client, error) {
	query := "SELECT " + clientColumns + " FROM clients WHERE 1=1"
	var args []any
	if !includeInactive {
		query += " AND is_active = true"
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += " AND (name ILIKE $1 OR cnpj ILIKE $1)"
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CNPJ, &c.Address, &c.Phone, &c.ContactName, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *clientService) GetByID(ctx context.Context, id int) (*Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("client %d", id)
		}
		return nil, fmt.Errorf("get client %d: %w", id, err)
	}
	return c, nil
}

func (s *clientService) Create(ctx context.Context, input ClientInput) (*Client, error) {
	if input.Name == "" {
		return nil, InvalidArgumentf("client name is required")
	}
	if input.CNPJ == "" {
		return nil, InvalidArgumentf("client cnpj is required")
	}

	c, err := scanClient(s.pool.QueryRow(ctx, `
		INSERT INTO clients (name, cnpj, address, phone, contact_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+clientColumns,
		input.Name, input.CNPJ, input.Address, input.Phone, input.ContactName,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, Conflictf("client with cnpj %q already exists", input.CNPJ)
		}
		return nil, fmt.Errorf("create client %q: %w", input.Name, err)
	}
	return c, nil
}

func (s *clientService) Update(ctx context.Context, id int, input ClientPatch) (*Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx, `
		UPDATE clients SET
			name         = COALESCE($2, name),
			cnpj         = COALESCE($3, cnpj),
			address      = COALESCE($4, address),
			phone        = COALESCE($5, phone),
			contact_name = COALESCE($6, contact_name),
			is_active    = COALESCE($7, is_active)
		WHERE id = $1
		RETURNING `+clientColumns,
		id, input.Name, input.CNPJ, input.Address, input.Phone, input.ContactName, input.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("client %d", id)
		}
		if isUniqueViolation(err) {
			return nil, Conflictf("client cnpj already in use")
		}
		return nil, fmt.Errorf("update client %d: %w", id, err)
	}
	return c, nil
}

func (s *clientService) Delete(ctx context.Context, id int) error {
	var referenced bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM consignments WHERE client_id = $1)
		    OR EXISTS (SELECT 1 FROM stock_counts WHERE client_id = $1)
		    OR EXISTS (SELECT 1 FROM client_stock WHERE client_id = $1)`,
		id,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check client %d references: %w", id, err)
	}
	if referenced {
		return Conflictf("client %d has consignment or stock history; deactivate instead", id)
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("client %d", id)
	}
	return nil
}

func (s *clientService) Deactivate(ctx context.Context, id int) (*Client, error) {
	return s.setActive(ctx, id, false)
}

func (s *clientService) Activate(ctx context.Context, id int) (*Client, error) {
	return s.setActive(ctx, id, true)
}

func (s *clientService) setActive(ctx context.Context, id int, active bool) (*Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		"UPDATE clients SET is_active = $2 WHERE id = $1 RETURNING "+clientColumns,
		id, active,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("client %d", id)
		}
		return nil, fmt.Errorf("set client %d active=%v: %w", id, active, err)
	}
	return c, nil
}

func (s *clientService) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients WHERE is_active = true").Scan(&n); err != nil {
		return 0, fmt.Errorf("count active clients: %w", err)
	}
	return n, nil
}
