package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
	StatusExpired Status = "expired"
)

// IsTerminal reports whether the status is absorbing. Terminal orders are
// never touched again by webhook reconciliation.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusFailed, StatusExpired:
		return true
	}
	return false
}

type Order struct {
	ID             uuid.UUID
	UserID         string
	RecipientID    uuid.UUID
	RecipientName  string
	RecipientClass string
	Items          []OrderItem
	// TotalAmount is fixed at creation time; later menu price changes
	// must not affect it.
	TotalAmount  float64
	DeliveryDate time.Time
	Status       Status

	// Gateway linkage, stamped by payment initiation.
	SnapToken     *string
	PaymentURL    *string
	TransactionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	MenuItemID   uuid.UUID
	MenuItemName string
	Quantity     int
	UnitPrice    float64
	Subtotal     float64
}

type CreateOrderInput struct {
	RecipientID  uuid.UUID
	DeliveryDate time.Time
	Items        []CreateOrderItemInput
}

type CreateOrderItemInput struct {
	MenuItemID uuid.UUID
	Quantity   int
}

type OrderFilterInput struct {
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}
