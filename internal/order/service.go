package order

import (
	"context"
	"fmt"
	"time"

	"kideats-be/internal/logger"
	"kideats-be/internal/menu"
	"kideats-be/internal/recipient"
	"kideats-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrders(ctx context.Context, filter *OrderFilterInput, limit, offset int32) ([]*Order, error)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*Order, error)
}

type service struct {
	repo          Repository
	menuRepo      menu.Repository
	recipientRepo recipient.Repository
}

func NewService(repo Repository, menuRepo menu.Repository, recipientRepo recipient.Repository) Service {
	return &service{
		repo:          repo,
		menuRepo:      menuRepo,
		recipientRepo: recipientRepo,
	}
}

// CreateOrder prices the order from the current menu and persists it in
// pending status. The resulting total is a snapshot: menu price changes
// after this point never alter an existing order.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	// Recipient must belong to the caller.
	rec, err := s.recipientRepo.GetByID(ctx, input.RecipientID, userID)
	if err != nil {
		return nil, err
	}

	menuIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidItem)
		}
		menuIDs = append(menuIDs, item.MenuItemID)
	}

	menuItems, err := s.menuRepo.GetByIDs(ctx, menuIDs)
	if err != nil {
		log.Error("failed to load menu items", zap.Error(err))
		return nil, err
	}

	orderID := uuid.New()
	items := make([]OrderItem, 0, len(input.Items))
	var total float64

	for _, item := range input.Items {
		mi, ok := menuItems[item.MenuItemID]
		if !ok || !mi.IsAvailable {
			return nil, fmt.Errorf("%w: menu item %s unavailable", ErrInvalidItem, item.MenuItemID)
		}

		subtotal := float64(item.Quantity) * mi.Price
		total += subtotal

		items = append(items, OrderItem{
			ID:           uuid.New(),
			OrderID:      orderID,
			MenuItemID:   mi.ID,
			MenuItemName: mi.Name,
			Quantity:     item.Quantity,
			UnitPrice:    mi.Price,
			Subtotal:     subtotal,
		})
	}

	o := &Order{
		ID:             orderID,
		UserID:         userID,
		RecipientID:    rec.ID,
		RecipientName:  rec.Name,
		RecipientClass: rec.Class,
		Items:          items,
		TotalAmount:    total,
		DeliveryDate:   input.DeliveryDate,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.Float64("total_amount", o.TotalAmount),
	)

	return o, nil
}

func (s *service) GetOrders(ctx context.Context, filter *OrderFilterInput, limit, offset int32) ([]*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	return s.repo.GetOrders(ctx, userID, utils.IsAdmin(ctx), filter, limit, offset)
}

func (s *service) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	o, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !utils.IsAdmin(ctx) && o.UserID != userID {
		return nil, ErrUnauthorized
	}

	return o, nil
}
