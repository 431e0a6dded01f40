package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	FetchOrders(ctx context.Context, from, to *time.Time) ([]*OrderRow, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FetchOrders(ctx context.Context, from, to *time.Time) ([]*OrderRow, error) {
	log := logger.FromCtx(ctx)

	query := `
		SELECT id, total_cost, is_paid, payment_type, created_at
		FROM orders
	`

	where := []string{}
	args := []interface{}{}

	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed FetchOrders", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to fetch orders for report", err)
	}
	defer rows.Close()

	orders := []*OrderRow{}
	byID := map[string]*OrderRow{}
	for rows.Next() {
		var o OrderRow
		if err := rows.Scan(&o.ID, &o.TotalCost, &o.IsPaid, &o.PaymentType, &o.CreatedAt); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, apperr.Wrap(apperr.Upstream, "failed to fetch orders for report", err)
		}
		orders = append(orders, &o)
		byID[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to fetch orders for report", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	// The join resolves each line to the item's current category, not a
	// snapshot; lines whose item was deleted come back with a NULL name.
	lineRows, err := r.db.QueryContext(ctx, `
		SELECT oi.order_id, oi.quantity, oi.price_at_time, oi.item_name_at_time, c.name
		FROM order_items oi
		LEFT JOIN items i ON i.id = oi.item_id
		LEFT JOIN categories c ON c.id = i.category_id
		WHERE oi.order_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		log.Error("DB query failed FetchOrders lines", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to fetch order items for report", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l LineRow
		if err := lineRows.Scan(&l.OrderID, &l.Quantity, &l.PriceAtTime, &l.ItemNameAtTime, &l.CategoryName); err != nil {
			return nil, apperr.Wrap(apperr.Upstream, "failed to fetch order items for report", err)
		}
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}

	if err := lineRows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to fetch order items for report", err)
	}

	return orders, nil
}
