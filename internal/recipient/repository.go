package recipient

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*Recipient, error)
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*Recipient, error)
	Create(ctx context.Context, rec *Recipient) error
	Update(ctx context.Context, rec *Recipient) error
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, class, created_at
		FROM recipients
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []*Recipient
	for rows.Next() {
		var rec Recipient
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Name, &rec.Class, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recipients = append(recipients, &rec)
	}

	return recipients, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID, userID string) (*Recipient, error) {
	var rec Recipient
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, class, created_at
		FROM recipients
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&rec.ID, &rec.UserID, &rec.Name, &rec.Class, &rec.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecipientNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *repository) Create(ctx context.Context, rec *Recipient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recipients (id, user_id, name, class)
		VALUES ($1, $2, $3, $4)
	`, rec.ID, rec.UserID, rec.Name, rec.Class)
	return err
}

func (r *repository) Update(ctx context.Context, rec *Recipient) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recipients
		SET name = $1, class = $2
		WHERE id = $3 AND user_id = $4
	`, rec.Name, rec.Class, rec.ID, rec.UserID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrRecipientNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM recipients WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrRecipientNotFound
	}
	return nil
}
