package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/category"
	"vinestore-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, params CreateItemParams) (*Item, error)
	Update(ctx context.Context, params UpdateItemParams) (*Item, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const itemColumns = `
	i.id, i.name, i.category_id, i.price, i.has_custom_price,
	i.image_url, i.is_active, i.created_at,
	c.id, c.name, c.created_at
`

func scanItem(row interface{ Scan(...interface{}) error }) (*Item, error) {
	var it Item
	var cat category.Category
	var price decimal.NullDecimal
	err := row.Scan(
		&it.ID, &it.Name, &it.CategoryID, &price, &it.HasCustomPrice,
		&it.ImageURL, &it.IsActive, &it.CreatedAt,
		&cat.ID, &cat.Name, &cat.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		it.Price = &price.Decimal
	}
	it.Category = &cat
	return &it, nil
}

// nullDecimal adapts an optional decimal for use as a query argument.
func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (r *repository) List(ctx context.Context) ([]*Item, error) {
	log := logger.FromCtx(ctx)

	query := `
		SELECT ` + itemColumns + `
		FROM items i
		JOIN categories c ON c.id = i.category_id
		ORDER BY i.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("DB query failed List items", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to list items", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, apperr.Wrap(apperr.Upstream, "failed to list items", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to list items", err)
	}

	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.id = $1
	`

	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "item not found")
		}
		return nil, apperr.Wrap(apperr.Upstream, "failed to get item", err)
	}

	return it, nil
}

func (r *repository) Create(ctx context.Context, params CreateItemParams) (*Item, error) {
	log := logger.FromCtx(ctx).With(zap.String("item_name", params.Name))
	log.Info("Create item started")

	query := `
		INSERT INTO items (name, category_id, price, has_custom_price, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		params.Name, params.CategoryID, nullDecimal(params.Price), params.HasCustomPrice, params.ImageURL,
	).Scan(&id)
	if err != nil {
		log.Error("Create item DB query failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to create item", err)
	}

	log.Info("Create item success", zap.String("item_id", id))
	return r.GetByID(ctx, id)
}

func (r *repository) Update(ctx context.Context, params UpdateItemParams) (*Item, error) {
	log := logger.FromCtx(ctx).With(zap.String("item_id", params.ID))

	set := []string{}
	args := []interface{}{}

	appendSet := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if params.Name != nil {
		appendSet("name", *params.Name)
	}
	if params.CategoryID != nil {
		appendSet("category_id", *params.CategoryID)
	}
	if params.HasCustomPrice != nil {
		appendSet("has_custom_price", *params.HasCustomPrice)
		// price follows the flag: custom-price items carry no catalog price
		appendSet("price", nullDecimal(params.Price))
	} else if params.Price != nil {
		appendSet("price", nullDecimal(params.Price))
	}
	if params.ImageURL != nil {
		appendSet("image_url", *params.ImageURL)
	}
	if params.IsActive != nil {
		appendSet("is_active", *params.IsActive)
	}

	if len(set) == 0 {
		return nil, apperr.New(apperr.Validation, "no fields to update")
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(
		`UPDATE items SET %s WHERE id = $%d RETURNING id`,
		strings.Join(set, ", "), len(args),
	)

	var id string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "item not found")
		}
		log.Error("Update item DB query failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to update item", err)
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to delete item", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to delete item", err)
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, "item not found")
	}

	return nil
}
