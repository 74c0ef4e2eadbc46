package menu

import (
	"context"
	"fmt"
	"strings"

	"kideats-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	ListMenu(ctx context.Context, includeUnavailable bool) ([]*MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	CreateMenuItem(ctx context.Context, input MenuItemInput) (*MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uuid.UUID, input MenuItemInput) (*MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validateInput(input MenuItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMenuItem)
	}
	if input.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidMenuItem)
	}
	return nil
}

func (s *service) ListMenu(ctx context.Context, includeUnavailable bool) ([]*MenuItem, error) {
	return s.repo.List(ctx, !includeUnavailable)
}

func (s *service) GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CreateMenuItem(ctx context.Context, input MenuItemInput) (*MenuItem, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	item := &MenuItem{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
		IsAvailable: input.IsAvailable,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		logger.FromCtx(ctx).Error("failed to create menu item",
			zap.String("name", item.Name),
			zap.Error(err),
		)
		return nil, err
	}

	return item, nil
}

func (s *service) UpdateMenuItem(ctx context.Context, id uuid.UUID, input MenuItemInput) (*MenuItem, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	item := &MenuItem{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
		IsAvailable: input.IsAvailable,
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *service) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
