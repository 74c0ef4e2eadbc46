package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kideats-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	GetOrders(ctx context.Context, userID string, isAdmin bool, filter *OrderFilterInput, limit, offset int32) ([]*Order, error)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*Order, error)

	// Payment-core operations.
	FindPendingForPayment(ctx context.Context, userID string, orderIDs []string) ([]*Order, error)
	AttachPaymentToken(ctx context.Context, orderIDs []string, snapToken, paymentURL, transactionID string) error
	ApplyStatusByTransactionRef(ctx context.Context, ref string, status Status) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_id", o.ID.String()),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, recipient_id,
			total_amount, delivery_date, status
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		o.ID,
		o.UserID,
		o.RecipientID,
		o.TotalAmount,
		o.DeliveryDate,
		o.Status,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, menu_item_id, menu_item_name,
				quantity, unit_price, subtotal
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			item.ID,
			o.ID,
			item.MenuItemID,
			item.MenuItemName,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	return nil
}

const orderColumns = `
	o.id, o.user_id, o.recipient_id, rc.name, rc.class,
	o.total_amount, o.delivery_date, o.status,
	o.snap_token, o.payment_url, o.transaction_id,
	o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.RecipientID,
		&o.RecipientName,
		&o.RecipientClass,
		&o.TotalAmount,
		&o.DeliveryDate,
		&o.Status,
		&o.SnapToken,
		&o.PaymentURL,
		&o.TransactionID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetOrders(
	ctx context.Context,
	userID string,
	isAdmin bool,
	filter *OrderFilterInput,
	limit, offset int32,
) ([]*Order, error) {

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	log := logger.FromCtx(ctx).With(
		zap.String("method", "GetOrders"),
		zap.Bool("is_admin", isAdmin),
		zap.Int32("limit", limit),
		zap.Int32("offset", offset),
	)

	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN recipients rc ON rc.id = o.recipient_id
		WHERE 1=1
	`

	args := []any{}
	argIndex := 1

	if !isAdmin {
		query += fmt.Sprintf(" AND o.user_id = $%d", argIndex)
		args = append(args, userID)
		argIndex++
	}

	if filter != nil {
		if filter.Status != nil {
			query += fmt.Sprintf(" AND o.status = $%d", argIndex)
			args = append(args, *filter.Status)
			argIndex++
		}

		if filter.DateFrom != nil {
			query += fmt.Sprintf(" AND o.delivery_date >= $%d", argIndex)
			args = append(args, *filter.DateFrom)
			argIndex++
		}

		if filter.DateTo != nil {
			query += fmt.Sprintf(" AND o.delivery_date <= $%d", argIndex)
			args = append(args, *filter.DateTo)
			argIndex++
		}
	}

	query += " ORDER BY o.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *repository) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN recipients rc ON rc.id = o.recipient_id
		WHERE o.id = $1
	`, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}

	return o, nil
}

// loadItems hydrates line items for the given orders in one query.
func (r *repository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID.String())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, menu_item_name, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.MenuItemName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		); err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	return rows.Err()
}

// FindPendingForPayment returns the caller's pending orders among the given
// ids, with line items and recipient hydrated. Non-pending and foreign
// orders are filtered out server-side rather than trusted from the client.
func (r *repository) FindPendingForPayment(ctx context.Context, userID string, orderIDs []string) ([]*Order, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN recipients rc ON rc.id = o.recipient_id
		WHERE o.id = ANY($1)
		  AND o.user_id = $2
		  AND o.status = 'pending'
		ORDER BY o.created_at
	`, pq.Array(orderIDs), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// AttachPaymentToken stamps gateway linkage onto every order in the batch
// with a single UPDATE, so the batch is matchable by the webhook as one
// unit. Order status is deliberately not touched here.
func (r *repository) AttachPaymentToken(
	ctx context.Context,
	orderIDs []string,
	snapToken, paymentURL, transactionID string,
) error {

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET snap_token = $1,
		    payment_url = $2,
		    transaction_id = $3,
		    updated_at = NOW()
		WHERE id = ANY($4)
	`, snapToken, paymentURL, transactionID, pq.Array(orderIDs))
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected != int64(len(orderIDs)) {
		return fmt.Errorf("attach payment token: updated %d of %d orders", affected, len(orderIDs))
	}

	return nil
}

// ApplyStatusByTransactionRef performs the conditional status write that
// makes webhook reconciliation idempotent: only orders still pending are
// transitioned, so terminal states stay absorbing no matter how often or
// in what order the gateway redelivers. The ref matches either the stamped
// transaction id (bulk payments) or the order's own id.
func (r *repository) ApplyStatusByTransactionRef(ctx context.Context, ref string, status Status) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    updated_at = NOW()
		WHERE (transaction_id = $2 OR id::text = $2)
		  AND status = 'pending'
	`, status, ref)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, nil
}
