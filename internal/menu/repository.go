package menu

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository interface {
	List(ctx context.Context, onlyAvailable bool) ([]*MenuItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*MenuItem, error)
	Create(ctx context.Context, item *MenuItem) error
	Update(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const menuColumns = `id, name, description, price, image_url, category, is_available, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...any) error }) (*MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.Price,
		&m.ImageURL,
		&m.Category,
		&m.IsAvailable,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, onlyAvailable bool) ([]*MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items`
	if onlyAvailable {
		query += ` WHERE is_available = true`
	}
	query += ` ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}

	return items, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id)

	m, err := scanMenuItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*MenuItem, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*MenuItem{}, nil
	}

	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		strIDs = append(strIDs, id.String())
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id = ANY($1)`,
		pq.Array(strIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*MenuItem, len(ids))
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}

	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, item *MenuItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, description, price, image_url, category, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		item.ID,
		item.Name,
		item.Description,
		item.Price,
		item.ImageURL,
		item.Category,
		item.IsAvailable,
	)
	return err
}

func (r *repository) Update(ctx context.Context, item *MenuItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, image_url = $4,
		    category = $5, is_available = $6, updated_at = NOW()
		WHERE id = $7
	`,
		item.Name,
		item.Description,
		item.Price,
		item.ImageURL,
		item.Category,
		item.IsAvailable,
		item.ID,
	)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}
