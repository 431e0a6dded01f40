package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"vinestore-be/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "customer_name", "total_cost", "is_paid", "payment_type", "created_at",
	})
}

func orderItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_id", "item_id", "quantity", "price_at_time", "item_name_at_time",
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	lines := []LineInput{
		{Name: "Coffee", Price: dec("2.50"), Quantity: 3},
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs("Alex", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ord-1"))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs("ord-1", nil, 3, sqlmock.AnyArg(), "Coffee").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT id, customer_name, total_cost, is_paid, payment_type, created_at").
			WithArgs("ord-1").
			WillReturnRows(orderRows().AddRow("ord-1", "Alex", "7.50", false, nil, time.Now()))
		mock.ExpectQuery("SELECT id, order_id, item_id, quantity, price_at_time, item_name_at_time").
			WillReturnRows(orderItemRows().AddRow("oi-1", "ord-1", nil, 3, "2.50", "Coffee"))

		o, err := repo.Create(context.Background(), "Alex", dec("7.50"), lines)
		require.NoError(t, err)
		assert.Equal(t, "ord-1", o.ID)
		assert.False(t, o.IsPaid)
		assert.True(t, o.TotalCost.Equal(dec("7.50")))
		require.Len(t, o.Items, 1)
		assert.Equal(t, "Coffee", o.Items[0].ItemNameAtTime)
	})

	t.Run("Rolls back when line insert fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ord-2"))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), "Alex", dec("7.50"), lines)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Replace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	lines := []LineInput{
		{Name: "Cake", Price: dec("3.00"), Quantity: 2},
	}

	t.Run("Delete and insert run in one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM order_items WHERE order_id = \\$1").
			WithArgs("ord-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs("ord-1", nil, 2, sqlmock.AnyArg(), "Cake").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE orders SET total_cost").
			WithArgs(sqlmock.AnyArg(), "ord-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT id, customer_name, total_cost, is_paid, payment_type, created_at").
			WithArgs("ord-1").
			WillReturnRows(orderRows().AddRow("ord-1", "Alex", "6.00", false, nil, time.Now()))
		mock.ExpectQuery("SELECT id, order_id, item_id, quantity, price_at_time, item_name_at_time").
			WillReturnRows(orderItemRows().AddRow("oi-2", "ord-1", nil, 2, "3.00", "Cake"))

		o, err := repo.Replace(context.Background(), "ord-1", dec("6.00"), lines)
		require.NoError(t, err)
		assert.True(t, o.TotalCost.Equal(dec("6.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM order_items").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE orders SET total_cost").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Replace(context.Background(), "missing", dec("6.00"), lines)
		assert.True(t, apperr.Is(err, apperr.NotFound))
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, customer_name, total_cost").
			WithArgs("missing").
			WillReturnRows(orderRows())

		_, err := repo.GetByID(context.Background(), "missing")
		assert.True(t, apperr.Is(err, apperr.NotFound))
	})

	t.Run("Payment type scanned when set", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, customer_name, total_cost").
			WithArgs("ord-1").
			WillReturnRows(orderRows().AddRow("ord-1", "Alex", "7.50", true, "Cash", time.Now()))
		mock.ExpectQuery("SELECT id, order_id, item_id").
			WillReturnRows(orderItemRows())

		o, err := repo.GetByID(context.Background(), "ord-1")
		require.NoError(t, err)
		require.NotNil(t, o.PaymentType)
		assert.Equal(t, PaymentCash, *o.PaymentType)
	})
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Items deleted before the order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM order_items WHERE order_id = \\$1").
			WithArgs("ord-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM orders WHERE id = \\$1").
			WithArgs("ord-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(context.Background(), "ord-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM order_items").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM orders").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), "missing")
		assert.True(t, apperr.Is(err, apperr.NotFound))
	})
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Filters and pagination in SQL", func(t *testing.T) {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("SELECT id, customer_name, total_cost(.|\n)*WHERE is_paid = false AND created_at >= \\$1(.|\n)*ORDER BY customer_name ASC(.|\n)*LIMIT \\$2 OFFSET \\$3").
			WithArgs(start, 10, 0).
			WillReturnRows(orderRows().AddRow("ord-1", "Alex", "7.50", false, nil, time.Now()))
		mock.ExpectQuery("SELECT id, order_id, item_id").
			WillReturnRows(orderItemRows())

		orders, err := repo.List(context.Background(), ListQuery{
			UnpaidOnly: true,
			StartDate:  &start,
			SortBy:     SortByCustomerName,
			SortOrder:  "asc",
			Limit:      10,
		})

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "Alex", orders[0].CustomerName)
	})

	t.Run("No limit fetches everything", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, customer_name, total_cost(.|\n)*ORDER BY created_at DESC").
			WillReturnRows(orderRows().
				AddRow("ord-1", "Alex", "7.50", false, nil, time.Now()).
				AddRow("ord-2", "José", "3.00", true, "Cash", time.Now()))
		mock.ExpectQuery("SELECT id, order_id, item_id").
			WillReturnRows(orderItemRows().
				AddRow("oi-1", "ord-1", nil, 3, "2.50", "Coffee").
				AddRow("oi-2", "ord-2", "item-9", 1, "3.00", "Cake"))

		orders, err := repo.List(context.Background(), ListQuery{})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		require.Len(t, orders[0].Items, 1)
		require.NotNil(t, orders[1].Items[0].ItemID)
		assert.Equal(t, "item-9", *orders[1].Items[0].ItemID)
	})

	t.Run("Query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, customer_name, total_cost").
			WillReturnError(errors.New("db error"))

		_, err := repo.List(context.Background(), ListQuery{})
		assert.True(t, apperr.Is(err, apperr.Upstream))
	})
}

func TestRepository_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders WHERE is_paid = false").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), ListQuery{UnpaidOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestRepository_SetPaymentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		cash := PaymentCash
		mock.ExpectExec("UPDATE orders SET is_paid = \\$1, payment_type = \\$2").
			WithArgs(true, &cash, "ord-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectQuery("SELECT id, customer_name, total_cost").
			WithArgs("ord-1").
			WillReturnRows(orderRows().AddRow("ord-1", "Alex", "7.50", true, "Cash", time.Now()))
		mock.ExpectQuery("SELECT id, order_id, item_id").
			WillReturnRows(orderItemRows())

		o, err := repo.SetPaymentStatus(context.Background(), "ord-1", true, &cash)
		require.NoError(t, err)
		assert.True(t, o.IsPaid)
	})

	t.Run("Unknown order", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders SET is_paid").
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.SetPaymentStatus(context.Background(), "missing", false, nil)
		assert.True(t, apperr.Is(err, apperr.NotFound))
	})
}
