package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, string, error)
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	UpdateByEmail(ctx context.Context, email string, params UpdateUserParams) (*User, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = "id, email, role, orders_permission, created_at, updated_at"

// GetByEmail also returns the stored password hash; it never leaves this
// package.
func (r *repository) GetByEmail(ctx context.Context, email string) (*User, string, error) {
	log := logger.FromCtx(ctx)

	var u User
	var hash string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, role, orders_permission, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Role, &u.OrdersPermission, &hash, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		log.Error("DB query failed GetByEmail", zap.Error(err))
		return nil, "", apperr.Wrap(apperr.Upstream, "failed to fetch user", err)
	}

	return &u, hash, nil
}

func (r *repository) List(ctx context.Context) ([]*User, error) {
	log := logger.FromCtx(ctx)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		log.Error("DB query failed ListUsers", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to list users", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.OrdersPermission, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Upstream, "failed to list users", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *repository) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	log := logger.FromCtx(ctx)

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to hash password", err)
	}

	var u User
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, role, orders_permission, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns+`
	`, params.Email, params.Role, params.OrdersPermission, hash).
		Scan(&u.ID, &u.Email, &u.Role, &u.OrdersPermission, &u.CreatedAt, &u.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return nil, apperr.New(apperr.Validation, "a user with this email already exists")
	}
	if err != nil {
		log.Error("DB query failed CreateUser", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to create user", err)
	}

	return &u, nil
}

func (r *repository) UpdateByEmail(ctx context.Context, email string, params UpdateUserParams) (*User, error) {
	log := logger.FromCtx(ctx)

	set := []string{"updated_at = NOW()"}
	args := []interface{}{}

	appendSet := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if params.Role != nil {
		appendSet("role", *params.Role)
	}
	if params.OrdersPermission != nil {
		appendSet("orders_permission", *params.OrdersPermission)
	}
	if params.Password != nil {
		hash, err := HashPassword(*params.Password)
		if err != nil {
			return nil, apperr.Wrap(apperr.Upstream, "failed to hash password", err)
		}
		appendSet("password_hash", hash)
	}

	args = append(args, email)
	query := fmt.Sprintf(`
		UPDATE users SET %s
		WHERE email = $%d
		RETURNING %s
	`, strings.Join(set, ", "), len(args), userColumns)

	var u User
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Email, &u.Role, &u.OrdersPermission, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		log.Error("DB query failed UpdateUser", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to update user", err)
	}

	return &u, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx)

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("DB query failed DeleteUser", zap.Error(err))
		return apperr.Wrap(apperr.Upstream, "failed to delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}
