package item

import (
	"context"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines the business logic for catalog items.
type Service interface {
	List(ctx context.Context) ([]*Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, params CreateItemParams) (*Item, error)
	Update(ctx context.Context, params UpdateItemParams) (*Item, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*Item, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id string) (*Item, error) {
	if id == "" {
		return nil, apperr.New(apperr.Validation, "item ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, params CreateItemParams) (*Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateItem"),
	)

	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, apperr.New(apperr.Validation, "item name is required")
	}
	if params.CategoryID == "" {
		return nil, apperr.New(apperr.Validation, "category is required")
	}

	if params.HasCustomPrice {
		if params.Price != nil {
			return nil, apperr.New(apperr.Validation, "custom-price items must not carry a catalog price")
		}
	} else {
		if params.Price == nil {
			return nil, apperr.New(apperr.Validation, "price is required")
		}
		if params.Price.IsNegative() {
			return nil, apperr.New(apperr.Validation, "price must not be negative")
		}
	}

	it, err := s.repo.Create(ctx, params)
	if err != nil {
		log.Error("failed to create item", zap.Error(err))
		return nil, err
	}

	log.Info("CreateItem success", zap.String("item_id", it.ID))
	return it, nil
}

func (s *service) Update(ctx context.Context, params UpdateItemParams) (*Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateItem"),
		zap.String("item_id", params.ID),
	)

	if params.ID == "" {
		return nil, apperr.New(apperr.Validation, "item ID is required")
	}

	// An is_active-only toggle is the activate/deactivate action and skips
	// price validation entirely.
	if !params.IsActiveOnly() {
		if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
			return nil, apperr.New(apperr.Validation, "item name is required")
		}
		if params.HasCustomPrice != nil {
			if *params.HasCustomPrice {
				if params.Price != nil {
					return nil, apperr.New(apperr.Validation, "custom-price items must not carry a catalog price")
				}
			} else if params.Price == nil {
				return nil, apperr.New(apperr.Validation, "price is required")
			}
		}
		if params.Price != nil && params.Price.IsNegative() {
			return nil, apperr.New(apperr.Validation, "price must not be negative")
		}
	}

	it, err := s.repo.Update(ctx, params)
	if err != nil {
		log.Error("failed to update item", zap.Error(err))
		return nil, err
	}

	log.Info("UpdateItem success")
	return it, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.New(apperr.Validation, "item ID is required")
	}
	return s.repo.Delete(ctx, id)
}
