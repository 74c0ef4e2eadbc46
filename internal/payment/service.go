package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"kideats-be/internal/logger"
	"kideats-be/internal/metrics"
	"kideats-be/internal/order"
	"kideats-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const customerEmail = "customer@kideats.com"

const (
	storageAttempts = 3
	storageBackoff  = 200 * time.Millisecond
)

type Service interface {
	Initiate(ctx context.Context, orderIDs []string) (*InitiateResult, error)
	HandleNotification(ctx context.Context, payload []byte) (Outcome, error)
}

type service struct {
	orders    order.Repository
	gateway   Gateway
	serverKey string
}

func NewService(orders order.Repository, gateway Gateway, serverKey string) Service {
	return &service{
		orders:    orders,
		gateway:   gateway,
		serverKey: serverKey,
	}
}

// Initiate creates a single Snap transaction covering one or more of the
// caller's pending orders and stamps every covered order with the payment
// token and shared transaction reference.
func (s *service) Initiate(ctx context.Context, orderIDs []string) (*InitiateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Initiate"),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Warn("payment initiation without authenticated user")
		return nil, order.ErrUnauthorized
	}

	ids, err := normalizeOrderIDs(orderIDs)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.FindPendingForPayment(ctx, userID, ids)
	if err != nil {
		log.Error("failed to load pending orders", zap.Error(err))
		return nil, err
	}
	if len(orders) == 0 {
		log.Warn("no pending orders matched payment request",
			zap.Int("requested", len(ids)),
		)
		return nil, ErrOrdersNotFound
	}

	transactionID := NewBatchRef(len(orders))
	if len(orders) == 1 {
		transactionID = orders[0].ID.String()
	}

	snapReq := buildSnapRequest(transactionID, orders)

	snapResp, err := s.gateway.CreateTransaction(ctx, snapReq)
	if err != nil {
		log.Error("snap transaction creation failed",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return nil, err
	}

	coveredIDs := make([]string, len(orders))
	for i, o := range orders {
		coveredIDs[i] = o.ID.String()
	}

	// The token is already issued at this point, so the stamp must stick;
	// retry transient storage failures before surfacing an error.
	err = withRetry(ctx, storageAttempts, storageBackoff, func() error {
		return s.orders.AttachPaymentToken(ctx, coveredIDs, snapResp.Token, snapResp.RedirectURL, transactionID)
	})
	if err != nil {
		log.Error("failed to attach payment token",
			zap.String("transaction_id", transactionID),
			zap.Strings("order_ids", coveredIDs),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.PaymentInitiated.Inc()
	log.Info("payment initiated",
		zap.String("transaction_id", transactionID),
		zap.Int("order_count", len(orders)),
		zap.Int64("gross_amount", snapReq.TransactionDetails.GrossAmount),
	)

	return &InitiateResult{
		SnapToken:   snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
		OrderIDs:    coveredIDs,
		TotalAmount: totalAmount(orders),
	}, nil
}

// HandleNotification reconciles one gateway notification against stored
// orders. It returns OutcomeRejected with ErrInvalidSignature for forged
// payloads, OutcomeApplied when at least one pending order transitioned,
// and OutcomeIgnored for everything benign (duplicates, unknown refs,
// non-final statuses). A non-nil error with a non-rejected outcome means
// storage failed and the gateway should redeliver.
func (s *service) HandleNotification(ctx context.Context, payload []byte) (Outcome, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "HandleNotification"),
	)

	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		log.Warn("malformed notification payload", zap.Error(err))
		return OutcomeRejected, fmt.Errorf("decode notification: %w", err)
	}

	log = log.With(
		zap.String("transaction_id", n.OrderID),
		zap.String("transaction_status", n.TransactionStatus),
	)

	// Signature first: nothing in the payload is trustworthy before this.
	if !VerifySignature(&n, s.serverKey) {
		metrics.WebhookRejected.Inc()
		log.Warn("notification signature mismatch")
		return OutcomeRejected, ErrInvalidSignature
	}

	if n.OrderID == "" || n.TransactionStatus == "" {
		log.Warn("notification missing required fields")
		metrics.WebhookIgnored.Inc()
		return OutcomeIgnored, nil
	}

	// Midtrans' endpoint test and operator probes send references that do
	// not correspond to anything we issued. Acknowledge without touching
	// storage.
	if !IsOrderRef(n.OrderID) && !IsBatchRef(n.OrderID) {
		log.Info("ignoring notification for unrecognized reference")
		metrics.WebhookIgnored.Inc()
		return OutcomeIgnored, nil
	}

	status := MapTransactionStatus(n.TransactionStatus, n.FraudStatus)
	if status == order.StatusPending {
		log.Info("non-final transaction status, nothing to apply")
		metrics.WebhookIgnored.Inc()
		return OutcomeIgnored, nil
	}

	var affected int64
	err := withRetry(ctx, storageAttempts, storageBackoff, func() error {
		var applyErr error
		affected, applyErr = s.orders.ApplyStatusByTransactionRef(ctx, n.OrderID, status)
		return applyErr
	})
	if err != nil {
		log.Error("failed to apply notification status", zap.Error(err))
		return OutcomeIgnored, err
	}

	if affected == 0 {
		// Duplicate delivery, out-of-order terminal event, or a reference
		// we never stamped. All safe to acknowledge.
		metrics.WebhookIgnored.Inc()
		log.Info("notification matched no pending orders")
		return OutcomeIgnored, nil
	}

	metrics.WebhookApplied.Inc()
	log.Info("notification applied",
		zap.String("status", string(status)),
		zap.Int64("orders_updated", affected),
	)
	return OutcomeApplied, nil
}

// normalizeOrderIDs deduplicates and validates the requested ids while
// preserving their order.
func normalizeOrderIDs(orderIDs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(orderIDs))
	ids := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidOrderID, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrNoOrderIDs
	}
	return ids, nil
}

func buildSnapRequest(transactionID string, orders []*order.Order) *SnapRequest {
	multi := len(orders) > 1

	var items []ItemDetail
	for _, o := range orders {
		for _, it := range o.Items {
			name := it.MenuItemName
			if multi {
				// Disambiguate duplicated menu lines across recipients.
				name = fmt.Sprintf("%s (%s)", it.MenuItemName, o.RecipientName)
			}
			items = append(items, ItemDetail{
				ID:       it.MenuItemID.String(),
				Price:    int64(math.Round(it.UnitPrice)),
				Quantity: it.Quantity,
				Name:     name,
			})
		}
	}

	return &SnapRequest{
		TransactionDetails: TransactionDetails{
			OrderID:     transactionID,
			GrossAmount: int64(math.Round(totalAmount(orders))),
		},
		ItemDetails: items,
		CustomerDetails: CustomerDetails{
			FirstName: orders[0].RecipientName,
			Email:     customerEmail,
		},
	}
}

func totalAmount(orders []*order.Order) float64 {
	var total float64
	for _, o := range orders {
		total += o.TotalAmount
	}
	return total
}

// withRetry runs fn up to attempts times with linear backoff, honoring
// context cancellation between tries.
func withRetry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay * time.Duration(i)):
		}
	}
	return err
}
