package category

import (
	"context"
	"database/sql"
	"errors"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PgUniqueViolation is the Postgres error code for unique constraint breaks.
const PgUniqueViolation = "23505"

type Repository interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Delete(ctx context.Context, id string) error
	CountItems(ctx context.Context, categoryID string) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx)

	query := `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("DB query failed List categories", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to list categories", err)
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, apperr.Wrap(apperr.Upstream, "failed to list categories", err)
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to list categories", err)
	}

	return categories, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		WHERE id = $1
	`

	var c Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "category not found")
		}
		return nil, apperr.Wrap(apperr.Upstream, "failed to get category", err)
	}

	return &c, nil
}

func (r *repository) Create(ctx context.Context, name string) (*Category, error) {
	log := logger.FromCtx(ctx).With(zap.String("category_name", name))
	log.Info("Create category started")

	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`

	var c Category
	err := r.db.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			return nil, apperr.New(apperr.Validation, "category name already exists")
		}
		log.Error("Create category DB query failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to create category", err)
	}

	log.Info("Create category success", zap.String("category_id", c.ID))
	return &c, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to delete category", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to delete category", err)
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, "category not found")
	}

	return nil
}

func (r *repository) CountItems(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE category_id = $1`, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, apperr.Wrap(apperr.Upstream, "failed to count items in category", err)
	}
	return count, nil
}
