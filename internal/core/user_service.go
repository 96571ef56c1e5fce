package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserService manages staff accounts. There is no login flow; these records
// exist for attribution and role display.
type UserService interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	Create(ctx context.Context, input UserInput) (*User, error)
	Update(ctx context.Context, id int, input UserPatch) (*User, error)
	Deactivate(ctx context.Context, id int) (*User, error)
}

type UserInput struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

type UserPatch struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Role     *UserRole `json:"role,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

type userService struct {
	pool *pgxpool.Pool
}

func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = "id, name, email, role, is_active, created_at"

func validUserRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *userService) GetByID(ctx context.Context, id int) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("user %d", id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, input UserInput) (*User, error) {
	if input.Name == "" || input.Email == "" {
		return nil, InvalidArgumentf("user name and email are required")
	}
	role := input.Role
	if role == "" {
		role = RoleUser
	}
	if !validUserRole(role) {
		return nil, InvalidArgumentf("invalid role %q", role)
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		input.Name, input.Email, role,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, Conflictf("user with email %q already exists", input.Email)
		}
		return nil, fmt.Errorf("create user %q: %w", input.Email, err)
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id int, input UserPatch) (*User, error) {
	if input.Role != nil && !validUserRole(*input.Role) {
		return nil, InvalidArgumentf("invalid role %q", *input.Role)
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		UPDATE users SET
			name      = COALESCE($2, name),
			email     = COALESCE($3, email),
			role      = COALESCE($4, role),
			is_active = COALESCE($5, is_active)
		WHERE id = $1
		RETURNING `+userColumns,
		id, input.Name, input.Email, input.Role, input.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("user %d", id)
		}
		if isUniqueViolation(err) {
			return nil, Conflictf("user email already in use")
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return u, nil
}

func (s *userService) Deactivate(ctx context.Context, id int) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"UPDATE users SET is_active = false WHERE id = $1 RETURNING "+userColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("user %d", id)
		}
		return nil, fmt.Errorf("deactivate user %d: %w", id, err)
	}
	return u, nil
}
