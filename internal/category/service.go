package category

import (
	"context"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines the business logic for categories.
type Service interface {
	List(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

func (s *service) Create(ctx context.Context, name string) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCategory"),
	)

	name = strings.TrimSpace(name)
	if name == "" {
		log.Warn("CreateCategory validation failed: empty name")
		return nil, apperr.New(apperr.Validation, "category name is required")
	}

	category, err := s.repo.Create(ctx, name)
	if err != nil {
		log.Error("failed to create category", zap.Error(err))
		return nil, err
	}

	log.Info("CreateCategory success", zap.String("category_id", category.ID))
	return category, nil
}

// Delete removes a category. Deletion is blocked, not cascaded, while any
// item still references the category.
func (s *service) Delete(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteCategory"),
		zap.String("category_id", id),
	)

	if id == "" {
		return apperr.New(apperr.Validation, "category ID is required")
	}

	count, err := s.repo.CountItems(ctx, id)
	if err != nil {
		log.Error("failed to count items", zap.Error(err))
		return err
	}
	if count > 0 {
		log.Warn("DeleteCategory blocked: category still referenced", zap.Int64("items", count))
		return apperr.New(apperr.State, "category is still referenced by items")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error("failed to delete category", zap.Error(err))
		return err
	}

	log.Info("DeleteCategory success")
	return nil
}
