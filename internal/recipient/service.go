package recipient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service interface {
	ListRecipients(ctx context.Context, userID string) ([]*Recipient, error)
	CreateRecipient(ctx context.Context, userID string, input RecipientInput) (*Recipient, error)
	UpdateRecipient(ctx context.Context, userID string, id uuid.UUID, input RecipientInput) (*Recipient, error)
	DeleteRecipient(ctx context.Context, userID string, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validateInput(input RecipientInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecipient)
	}
	if strings.TrimSpace(input.Class) == "" {
		return fmt.Errorf("%w: class is required", ErrInvalidRecipient)
	}
	return nil
}

func (s *service) ListRecipients(ctx context.Context, userID string) ([]*Recipient, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) CreateRecipient(ctx context.Context, userID string, input RecipientInput) (*Recipient, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	rec := &Recipient{
		ID:     uuid.New(),
		UserID: userID,
		Name:   strings.TrimSpace(input.Name),
		Class:  strings.TrimSpace(input.Class),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *service) UpdateRecipient(ctx context.Context, userID string, id uuid.UUID, input RecipientInput) (*Recipient, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	rec := &Recipient{
		ID:     id,
		UserID: userID,
		Name:   strings.TrimSpace(input.Name),
		Class:  strings.TrimSpace(input.Class),
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *service) DeleteRecipient(ctx context.Context, userID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}
