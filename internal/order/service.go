package order

import (
	"context"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"
	"vinestore-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service defines the business logic for orders.
type Service interface {
	Create(ctx context.Context, customerName string, lines []LineInput) (*Order, error)
	Edit(ctx context.Context, orderID string, lines []LineInput) (*Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, isPaid bool, paymentType *PaymentType) (*Order, error)
	Delete(ctx context.Context, orderID string) error
	Get(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// validateLines checks the line requests and returns the server-computed
// total. A client-sent total is never trusted.
func validateLines(lines []LineInput) (decimal.Decimal, error) {
	if len(lines) == 0 {
		return decimal.Zero, apperr.New(apperr.Validation, "order must contain at least one item")
	}

	total := decimal.Zero
	for _, line := range lines {
		if strings.TrimSpace(line.Name) == "" {
			return decimal.Zero, apperr.New(apperr.Validation, "order item name is required")
		}
		if line.Quantity <= 0 {
			return decimal.Zero, apperr.New(apperr.Validation, "order item quantity must be positive")
		}
		if line.Price.IsNegative() {
			return decimal.Zero, apperr.New(apperr.Validation, "order item price must not be negative")
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return total, nil
}

func (s *service) Create(ctx context.Context, customerName string, lines []LineInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, apperr.New(apperr.Validation, "customer name is required")
	}

	total, err := validateLines(lines)
	if err != nil {
		log.Warn("CreateOrder validation failed", zap.Error(err))
		return nil, err
	}

	o, err := s.repo.Create(ctx, customerName, total, lines)
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("CreateOrder success",
		zap.String("order_id", o.ID),
		zap.String("total_cost", o.TotalCost.String()),
	)
	return o, nil
}

// Edit replaces the order's lines wholesale and recomputes the total.
// Paid orders are immutable.
func (s *service) Edit(ctx context.Context, orderID string, lines []LineInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "EditOrder"),
		zap.String("order_id", orderID),
	)

	if orderID == "" {
		return nil, apperr.New(apperr.Validation, "order ID is required")
	}

	existing, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.IsPaid {
		log.Warn("EditOrder rejected: order already paid")
		return nil, apperr.New(apperr.State, "cannot edit a paid order")
	}

	total, err := validateLines(lines)
	if err != nil {
		log.Warn("EditOrder validation failed", zap.Error(err))
		return nil, err
	}

	o, err := s.repo.Replace(ctx, orderID, total, lines)
	if err != nil {
		log.Error("failed to edit order", zap.Error(err))
		return nil, err
	}

	log.Info("EditOrder success", zap.String("total_cost", o.TotalCost.String()))
	return o, nil
}

// SetPaymentStatus marks the order paid or unpaid. Marking paid requires a
// payment type; marking unpaid always clears it — the method history is
// discarded, and re-marking paid requires picking the type again.
func (s *service) SetPaymentStatus(
	ctx context.Context,
	orderID string,
	isPaid bool,
	paymentType *PaymentType,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetPaymentStatus"),
		zap.String("order_id", orderID),
	)

	if orderID == "" {
		return nil, apperr.New(apperr.Validation, "order ID is required")
	}

	if isPaid {
		if paymentType == nil {
			return nil, apperr.New(apperr.Validation, "payment type is required when marking as paid")
		}
		if !ValidPaymentType(*paymentType) {
			return nil, apperr.Newf(apperr.Validation, "invalid payment type %q", string(*paymentType))
		}
	} else {
		paymentType = nil
	}

	o, err := s.repo.SetPaymentStatus(ctx, orderID, isPaid, paymentType)
	if err != nil {
		log.Error("failed to update payment status", zap.Error(err))
		return nil, err
	}

	log.Info("SetPaymentStatus success", zap.Bool("is_paid", isPaid))
	return o, nil
}

func (s *service) Delete(ctx context.Context, orderID string) error {
	if orderID == "" {
		return apperr.New(apperr.Validation, "order ID is required")
	}
	return s.repo.Delete(ctx, orderID)
}

func (s *service) Get(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, apperr.New(apperr.Validation, "order ID is required")
	}
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListOrders"),
	)

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	q := ListQuery{
		UnpaidOnly: params.UnpaidOnly,
		StartDate:  params.StartDate,
		EndDate:    params.EndDate,
		SortBy:     params.SortBy,
		SortOrder:  params.SortOrder,
	}

	name := strings.TrimSpace(params.CustomerName)
	if name == "" {
		q.Limit = limit
		q.Offset = (page - 1) * limit

		orders, err := s.repo.List(ctx, q)
		if err != nil {
			log.Error("failed to list orders", zap.Error(err))
			return nil, err
		}

		total, err := s.repo.Count(ctx, q)
		if err != nil {
			log.Error("failed to count orders", zap.Error(err))
			return nil, err
		}

		return &ListResult{Orders: orders, TotalCount: total, Page: page, Limit: limit}, nil
	}

	// Customer-name search is accent-insensitive, which the store cannot do
	// natively, so the full matching set is filtered here and pagination is
	// applied after the filter.
	all, err := s.repo.List(ctx, q)
	if err != nil {
		log.Error("failed to list orders", zap.Error(err))
		return nil, err
	}

	matched := make([]*Order, 0, len(all))
	for _, o := range all {
		if utils.ContainsFold(o.CustomerName, name) {
			matched = append(matched, o)
		}
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return &ListResult{
		Orders:     matched[start:end],
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}, nil
}
