package report

import (
	"context"
	"time"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	bucketPaid    = "Paid"
	bucketUnpaid  = "Unpaid"
	bucketUnknown = "Unknown"
)

// Service produces sales aggregations over a month or the full history.
type Service interface {
	Generate(ctx context.Context, month, year *int) (*Report, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// monthRange converts a month/year pair into an inclusive [from, to] window:
// midnight on the first day through the last millisecond of the last day,
// in server-local time.
func monthRange(month, year int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return from, to
}

func (s *service) Generate(ctx context.Context, month, year *int) (*Report, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GenerateReport"),
	)

	if (month == nil) != (year == nil) {
		return nil, apperr.New(apperr.Validation, "month and year must be provided together")
	}

	var from, to *time.Time
	if month != nil {
		if *month < 1 || *month > 12 {
			return nil, apperr.Newf(apperr.Validation, "invalid month %d", *month)
		}
		f, t := monthRange(*month, *year)
		from, to = &f, &t
	}

	orders, err := s.repo.FetchOrders(ctx, from, to)
	if err != nil {
		log.Error("failed to fetch orders", zap.Error(err))
		return nil, err
	}

	rep := aggregate(orders)
	log.Info("GenerateReport success", zap.Int("order_count", len(orders)))
	return rep, nil
}

// aggregate walks the order set once and fills every breakdown. Both payment
// buckets are always present so an all-paid (or empty) period still reports
// an explicit zero for the other side.
func aggregate(orders []*OrderRow) *Report {
	rep := &Report{
		ByDate:     map[string]*Bucket{},
		ByCategory: map[string]*Bucket{},
		ByPaymentType: map[string]*Bucket{
			bucketPaid:   {Total: decimal.Zero},
			bucketUnpaid: {Total: decimal.Zero},
		},
		ByPaymentMethod: map[string]*Bucket{},
		ItemsByDate:     map[string]map[string]*ItemBucket{},
	}
	rep.Summary.TotalRevenue = decimal.Zero

	for _, o := range orders {
		day := o.CreatedAt.Format("2006-01-02")

		rep.Summary.TotalRevenue = rep.Summary.TotalRevenue.Add(o.TotalCost)
		rep.Summary.TotalOrders++

		addBucket(rep.ByDate, day, o.TotalCost)

		if o.IsPaid {
			rep.Summary.PaidOrders++
			addBucket(rep.ByPaymentType, bucketPaid, o.TotalCost)

			method := bucketUnknown
			if o.PaymentType != nil {
				method = *o.PaymentType
			}
			addBucket(rep.ByPaymentMethod, method, o.TotalCost)
		} else {
			rep.Summary.UnpaidOrders++
			addBucket(rep.ByPaymentType, bucketUnpaid, o.TotalCost)
		}

		for _, l := range o.Lines {
			revenue := l.PriceAtTime.Mul(decimal.NewFromInt(int64(l.Quantity)))

			catName := bucketUnknown
			if l.CategoryName != nil {
				catName = *l.CategoryName
			}
			// Category counts track units sold, not orders.
			cat, ok := rep.ByCategory[catName]
			if !ok {
				cat = &Bucket{Total: decimal.Zero}
				rep.ByCategory[catName] = cat
			}
			cat.Total = cat.Total.Add(revenue)
			cat.Count += l.Quantity

			items, ok := rep.ItemsByDate[day]
			if !ok {
				items = map[string]*ItemBucket{}
				rep.ItemsByDate[day] = items
			}
			ib, ok := items[l.ItemNameAtTime]
			if !ok {
				ib = &ItemBucket{Revenue: decimal.Zero}
				items[l.ItemNameAtTime] = ib
			}
			ib.Quantity += l.Quantity
			ib.Revenue = ib.Revenue.Add(revenue)
		}
	}

	return rep
}

// addBucket accumulates an order-level bucket: one count per order.
func addBucket(m map[string]*Bucket, key string, amount decimal.Decimal) {
	b, ok := m[key]
	if !ok {
		b = &Bucket{Total: decimal.Zero}
		m[key] = b
	}
	b.Total = b.Total.Add(amount)
	b.Count++
}
