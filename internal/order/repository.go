package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, customerName string, total decimal.Decimal, lines []LineInput) (*Order, error)
	Replace(ctx context.Context, orderID string, total decimal.Decimal, lines []LineInput) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	SetPaymentStatus(ctx context.Context, id string, isPaid bool, paymentType *PaymentType) (*Order, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]*Order, error)
	Count(ctx context.Context, q ListQuery) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(
	ctx context.Context,
	customerName string,
	total decimal.Decimal,
	lines []LineInput,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(zap.String("customer_name", customerName))
	log.Info("Create order started")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to create order", err)
	}
	defer tx.Rollback()

	var orderID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, total_cost, is_paid)
		VALUES ($1, $2, false)
		RETURNING id
	`, customerName, total).Scan(&orderID)
	if err != nil {
		log.Error("Create order DB query failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to create order", err)
	}

	if err := insertLines(ctx, tx, orderID, lines); err != nil {
		log.Error("Create order line insert failed", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to create order", err)
	}

	log.Info("Create order success", zap.String("order_id", orderID))
	return r.GetByID(ctx, orderID)
}

// Replace swaps an order's lines wholesale and updates its total in one
// transaction; the order is never observable with deleted-but-not-yet-
// recreated items.
func (r *repository) Replace(
	ctx context.Context,
	orderID string,
	total decimal.Decimal,
	lines []LineInput,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(zap.String("order_id", orderID))
	log.Info("Replace order items started")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to edit order", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM order_items WHERE order_id = $1`, orderID,
	); err != nil {
		log.Error("Replace order items delete failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to edit order", err)
	}

	if err := insertLines(ctx, tx, orderID, lines); err != nil {
		log.Error("Replace order items insert failed", zap.Error(err))
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET total_cost = $1 WHERE id = $2`, total, orderID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to edit order", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to edit order", err)
	}

	log.Info("Replace order items success")
	return r.GetByID(ctx, orderID)
}

func insertLines(ctx context.Context, tx *sql.Tx, orderID string, lines []LineInput) error {
	const q = `
		INSERT INTO order_items (order_id, item_id, quantity, price_at_time, item_name_at_time)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, q,
			orderID, line.ItemID, line.Quantity, line.Price, line.Name,
		); err != nil {
			return apperr.Wrap(apperr.Upstream, "failed to write order items", err)
		}
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `
		SELECT id, customer_name, total_cost, is_paid, payment_type, created_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.CustomerName, &o.TotalCost, &o.IsPaid, &o.PaymentType, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "order not found")
		}
		return nil, apperr.Wrap(apperr.Upstream, "failed to get order", err)
	}

	if err := r.attachItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) SetPaymentStatus(
	ctx context.Context,
	id string,
	isPaid bool,
	paymentType *PaymentType,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("order_id", id),
		zap.Bool("is_paid", isPaid),
	)
	log.Info("SetPaymentStatus started")

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET is_paid = $1, payment_type = $2 WHERE id = $3`,
		isPaid, paymentType, id,
	)
	if err != nil {
		log.Error("SetPaymentStatus DB query failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to update payment status", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to update payment status", err)
	}
	if affected == 0 {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx).With(zap.String("order_id", id))
	log.Info("Delete order started")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to delete order", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM order_items WHERE order_id = $1`, id,
	); err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to delete order", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to delete order", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.New(apperr.NotFound, "order not found")
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to delete order", err)
	}

	log.Info("Delete order success")
	return nil
}

// buildListWhere translates the store-native filters into SQL. The customer
// name filter deliberately never appears here (see ListQuery).
func buildListWhere(q ListQuery) (string, []interface{}) {
	where := []string{}
	args := []interface{}{}

	if q.UnpaidOnly {
		where = append(where, "is_paid = false")
	}
	if q.StartDate != nil {
		args = append(args, *q.StartDate)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if q.EndDate != nil {
		args = append(args, *q.EndDate)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}
	return clause, args
}

func orderByClause(q ListQuery) string {
	col := "created_at"
	if q.SortBy == SortByCustomerName {
		col = "customer_name"
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

func (r *repository) List(ctx context.Context, q ListQuery) ([]*Order, error) {
	log := logger.FromCtx(ctx)

	query := `
		SELECT id, customer_name, total_cost, is_paid, payment_type, created_at
		FROM orders
	`

	clause, args := buildListWhere(q)
	query += clause
	query += orderByClause(q)

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed List orders", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to list orders", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.CustomerName, &o.TotalCost, &o.IsPaid, &o.PaymentType, &o.CreatedAt,
		); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, apperr.Wrap(apperr.Upstream, "failed to list orders", err)
		}
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to list orders", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *repository) Count(ctx context.Context, q ListQuery) (int64, error) {
	clause, args := buildListWhere(q)

	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders`+clause, args...,
	).Scan(&count)
	if err != nil {
		return 0, apperr.Wrap(apperr.Upstream, "failed to count orders", err)
	}

	return count, nil
}

// attachItems batch-loads the line snapshots for a set of orders.
func (r *repository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Items = []*OrderItem{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, item_id, quantity, price_at_time, item_name_at_time
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to load order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oi OrderItem
		if err := rows.Scan(
			&oi.ID, &oi.OrderID, &oi.ItemID, &oi.Quantity, &oi.PriceAtTime, &oi.ItemNameAtTime,
		); err != nil {
			return apperr.Wrap(apperr.Upstream, "failed to load order items", err)
		}
		if o, ok := byID[oi.OrderID]; ok {
			o.Items = append(o.Items, &oi)
		}
	}

	return rows.Err()
}
