package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"kideats-be/internal/order"
	"kideats-be/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testServerKey = "SB-Mid-server-test"
	testUserID    = "9a1b2c3d-4e5f-4a6b-8c7d-1e2f3a4b5c6d"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrderTx(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrders(ctx context.Context, userID string, isAdmin bool, filter *order.OrderFilterInput, limit, offset int32) ([]*order.Order, error) {
	args := m.Called(ctx, userID, isAdmin, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindPendingForPayment(ctx context.Context, userID string, orderIDs []string) ([]*order.Order, error) {
	args := m.Called(ctx, userID, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) AttachPaymentToken(ctx context.Context, orderIDs []string, snapToken, paymentURL, transactionID string) error {
	args := m.Called(ctx, orderIDs, snapToken, paymentURL, transactionID)
	return args.Error(0)
}

func (m *MockOrderRepository) ApplyStatusByTransactionRef(ctx context.Context, ref string, status order.Status) (int64, error) {
	args := m.Called(ctx, ref, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateTransaction(ctx context.Context, req *SnapRequest) (*SnapResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SnapResponse), args.Error(1)
}

func authedCtx() context.Context {
	return utils.SetUserContext(context.Background(), testUserID, "parent@example.com", utils.RoleParent)
}

func pendingOrder(recipientName string, total float64, items ...order.OrderItem) *order.Order {
	return &order.Order{
		ID:            uuid.New(),
		UserID:        testUserID,
		RecipientName: recipientName,
		Items:         items,
		TotalAmount:   total,
		Status:        order.StatusPending,
	}
}

func TestService_Initiate(t *testing.T) {
	t.Run("SingleOrderUsesOwnID", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gw := new(MockGateway)
		svc := NewService(repo, gw, testServerKey)

		o := pendingOrder("Budi", 25000,
			order.OrderItem{MenuItemID: uuid.New(), MenuItemName: "Nasi Goreng", Quantity: 1, UnitPrice: 25000, Subtotal: 25000},
		)

		repo.On("FindPendingForPayment", mock.Anything, testUserID, []string{o.ID.String()}).
			Return([]*order.Order{o}, nil)

		gw.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(req *SnapRequest) bool {
			return req.TransactionDetails.OrderID == o.ID.String() &&
				req.TransactionDetails.GrossAmount == 25000 &&
				len(req.ItemDetails) == 1 &&
				req.ItemDetails[0].Name == "Nasi Goreng"
		})).Return(&SnapResponse{Token: "tok-1", RedirectURL: "https://pay.example/1"}, nil)

		repo.On("AttachPaymentToken", mock.Anything, []string{o.ID.String()}, "tok-1", "https://pay.example/1", o.ID.String()).
			Return(nil)

		res, err := svc.Initiate(authedCtx(), []string{o.ID.String()})
		assert.NoError(t, err)
		assert.Equal(t, "tok-1", res.SnapToken)
		assert.Equal(t, []string{o.ID.String()}, res.OrderIDs)
		assert.Equal(t, 25000.0, res.TotalAmount)

		repo.AssertExpectations(t)
		gw.AssertExpectations(t)
	})

	t.Run("BatchUsesBulkRefAndSumsAmounts", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gw := new(MockGateway)
		svc := NewService(repo, gw, testServerKey)

		o1 := pendingOrder("Budi", 25000,
			order.OrderItem{MenuItemID: uuid.New(), MenuItemName: "Nasi Goreng", Quantity: 1, UnitPrice: 25000, Subtotal: 25000},
		)
		o2 := pendingOrder("Sari", 40000,
			order.OrderItem{MenuItemID: uuid.New(), MenuItemName: "Ayam Bakar", Quantity: 2, UnitPrice: 20000, Subtotal: 40000},
		)
		ids := []string{o1.ID.String(), o2.ID.String()}

		repo.On("FindPendingForPayment", mock.Anything, testUserID, ids).
			Return([]*order.Order{o1, o2}, nil)

		var sentRef string
		gw.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(req *SnapRequest) bool {
			sentRef = req.TransactionDetails.OrderID
			return IsBatchRef(req.TransactionDetails.OrderID) &&
				req.TransactionDetails.GrossAmount == 65000 &&
				len(req.ItemDetails) == 2 &&
				req.ItemDetails[0].Name == "Nasi Goreng (Budi)" &&
				req.ItemDetails[1].Name == "Ayam Bakar (Sari)"
		})).Return(&SnapResponse{Token: "tok-bulk", RedirectURL: "https://pay.example/bulk"}, nil)

		repo.On("AttachPaymentToken", mock.Anything, ids, "tok-bulk", "https://pay.example/bulk", mock.MatchedBy(IsBatchRef)).
			Return(nil)

		res, err := svc.Initiate(authedCtx(), ids)
		assert.NoError(t, err)
		assert.Equal(t, 65000.0, res.TotalAmount)
		assert.Regexp(t, `^BULK-\d+-2$`, sentRef)

		repo.AssertExpectations(t)
	})

	t.Run("DeduplicatesRequestedIDs", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gw := new(MockGateway)
		svc := NewService(repo, gw, testServerKey)

		o := pendingOrder("Budi", 25000,
			order.OrderItem{MenuItemID: uuid.New(), MenuItemName: "Nasi Goreng", Quantity: 1, UnitPrice: 25000, Subtotal: 25000},
		)

		repo.On("FindPendingForPayment", mock.Anything, testUserID, []string{o.ID.String()}).
			Return([]*order.Order{o}, nil)
		gw.On("CreateTransaction", mock.Anything, mock.Anything).
			Return(&SnapResponse{Token: "tok", RedirectURL: "url"}, nil)
		repo.On("AttachPaymentToken", mock.Anything, mock.Anything, "tok", "url", o.ID.String()).
			Return(nil)

		_, err := svc.Initiate(authedCtx(), []string{o.ID.String(), o.ID.String()})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidOrderID", func(t *testing.T) {
		svc := NewService(new(MockOrderRepository), new(MockGateway), testServerKey)

		_, err := svc.Initiate(authedCtx(), []string{"not-a-uuid"})
		assert.ErrorIs(t, err, ErrInvalidOrderID)
	})

	t.Run("NoOrderIDs", func(t *testing.T) {
		svc := NewService(new(MockOrderRepository), new(MockGateway), testServerKey)

		_, err := svc.Initiate(authedCtx(), nil)
		assert.ErrorIs(t, err, ErrNoOrderIDs)

		_, err = svc.Initiate(authedCtx(), []string{""})
		assert.ErrorIs(t, err, ErrNoOrderIDs)
	})

	t.Run("NoPendingOrders", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		id := uuid.NewString()
		repo.On("FindPendingForPayment", mock.Anything, testUserID, []string{id}).
			Return([]*order.Order{}, nil)

		_, err := svc.Initiate(authedCtx(), []string{id})
		assert.ErrorIs(t, err, ErrOrdersNotFound)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		svc := NewService(new(MockOrderRepository), new(MockGateway), testServerKey)

		_, err := svc.Initiate(context.Background(), []string{uuid.NewString()})
		assert.ErrorIs(t, err, order.ErrUnauthorized)
	})

	t.Run("GatewayErrorSkipsTokenAttach", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gw := new(MockGateway)
		svc := NewService(repo, gw, testServerKey)

		o := pendingOrder("Budi", 25000,
			order.OrderItem{MenuItemID: uuid.New(), MenuItemName: "Nasi Goreng", Quantity: 1, UnitPrice: 25000, Subtotal: 25000},
		)

		repo.On("FindPendingForPayment", mock.Anything, testUserID, []string{o.ID.String()}).
			Return([]*order.Order{o}, nil)
		gw.On("CreateTransaction", mock.Anything, mock.Anything).
			Return(nil, ErrGateway)

		_, err := svc.Initiate(authedCtx(), []string{o.ID.String()})
		assert.ErrorIs(t, err, ErrGateway)
		repo.AssertNotCalled(t, "AttachPaymentToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TokenAttachRetriedThenFails", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gw := new(MockGateway)
		svc := NewService(repo, gw, testServerKey)

		o := pendingOrder("Budi", 25000,
			order.OrderItem{MenuItemID: uuid.New(), MenuItemName: "Nasi Goreng", Quantity: 1, UnitPrice: 25000, Subtotal: 25000},
		)

		repo.On("FindPendingForPayment", mock.Anything, testUserID, []string{o.ID.String()}).
			Return([]*order.Order{o}, nil)
		gw.On("CreateTransaction", mock.Anything, mock.Anything).
			Return(&SnapResponse{Token: "tok", RedirectURL: "url"}, nil)

		dbErr := errors.New("connection reset")
		repo.On("AttachPaymentToken", mock.Anything, mock.Anything, "tok", "url", o.ID.String()).
			Return(dbErr).Times(storageAttempts)

		_, err := svc.Initiate(authedCtx(), []string{o.ID.String()})
		assert.ErrorIs(t, err, dbErr)
		repo.AssertExpectations(t)
	})
}

func signedNotification(t *testing.T, orderID, transactionStatus, fraudStatus string) []byte {
	t.Helper()
	n := Notification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       "65000.00",
		TransactionStatus: transactionStatus,
		FraudStatus:       fraudStatus,
	}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)

	payload, err := json.Marshal(n)
	assert.NoError(t, err)
	return payload
}

func TestService_HandleNotification(t *testing.T) {
	batchRef := "BULK-1718000000000-3"

	t.Run("SettlementAppliedToBatch", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		repo.On("ApplyStatusByTransactionRef", mock.Anything, batchRef, order.StatusPaid).
			Return(int64(3), nil)

		outcome, err := svc.HandleNotification(context.Background(), signedNotification(t, batchRef, "settlement", ""))
		assert.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
		repo.AssertExpectations(t)
	})

	t.Run("CaptureAcceptApplied", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		id := uuid.NewString()
		repo.On("ApplyStatusByTransactionRef", mock.Anything, id, order.StatusPaid).
			Return(int64(1), nil)

		outcome, err := svc.HandleNotification(context.Background(), signedNotification(t, id, "capture", "accept"))
		assert.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
	})

	t.Run("DuplicateDeliveryIgnored", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		// Orders already paid: the conditional write matches nothing.
		repo.On("ApplyStatusByTransactionRef", mock.Anything, batchRef, order.StatusPaid).
			Return(int64(0), nil)

		outcome, err := svc.HandleNotification(context.Background(), signedNotification(t, batchRef, "settlement", ""))
		assert.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
	})

	t.Run("ExpireAfterSettlementIgnored", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		repo.On("ApplyStatusByTransactionRef", mock.Anything, batchRef, order.StatusExpired).
			Return(int64(0), nil)

		outcome, err := svc.HandleNotification(context.Background(), signedNotification(t, batchRef, "expire", ""))
		assert.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
	})

	t.Run("TamperedSignatureRejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		n := Notification{
			OrderID:           batchRef,
			StatusCode:        "200",
			GrossAmount:       "65000.00",
			TransactionStatus: "settlement",
			SignatureKey:      Signature(batchRef, "200", "1.00", testServerKey),
		}
		payload, _ := json.Marshal(n)

		outcome, err := svc.HandleNotification(context.Background(), payload)
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.Equal(t, OutcomeRejected, outcome)
		repo.AssertNotCalled(t, "ApplyStatusByTransactionRef", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnrecognizedReferenceIgnored", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		// Midtrans' "test notification" shape: made-up order id, valid signature.
		outcome, err := svc.HandleNotification(context.Background(),
			signedNotification(t, "payment_notif_test_G141499710_8b1f", "settlement", ""))
		assert.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
		repo.AssertNotCalled(t, "ApplyStatusByTransactionRef", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PendingStatusIgnoredWithoutStorage", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		outcome, err := svc.HandleNotification(context.Background(),
			signedNotification(t, uuid.NewString(), "pending", ""))
		assert.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
		repo.AssertNotCalled(t, "ApplyStatusByTransactionRef", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CaptureChallengeIgnored", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		outcome, err := svc.HandleNotification(context.Background(),
			signedNotification(t, uuid.NewString(), "capture", "challenge"))
		assert.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
		repo.AssertNotCalled(t, "ApplyStatusByTransactionRef", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StorageExhaustedReturnsError", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		dbErr := errors.New("connection reset")
		repo.On("ApplyStatusByTransactionRef", mock.Anything, batchRef, order.StatusPaid).
			Return(int64(0), dbErr).Times(storageAttempts)

		outcome, err := svc.HandleNotification(context.Background(), signedNotification(t, batchRef, "settlement", ""))
		assert.ErrorIs(t, err, dbErr)
		assert.NotEqual(t, OutcomeApplied, outcome)
		repo.AssertExpectations(t)
	})

	t.Run("StorageErrorThenRecovered", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewService(repo, new(MockGateway), testServerKey)

		repo.On("ApplyStatusByTransactionRef", mock.Anything, batchRef, order.StatusPaid).
			Return(int64(0), errors.New("transient")).Once()
		repo.On("ApplyStatusByTransactionRef", mock.Anything, batchRef, order.StatusPaid).
			Return(int64(3), nil).Once()

		outcome, err := svc.HandleNotification(context.Background(), signedNotification(t, batchRef, "settlement", ""))
		assert.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
	})

	t.Run("MalformedJSONRejected", func(t *testing.T) {
		svc := NewService(new(MockOrderRepository), new(MockGateway), testServerKey)

		outcome, err := svc.HandleNotification(context.Background(), []byte(`{not-json`))
		assert.Error(t, err)
		assert.Equal(t, OutcomeRejected, outcome)
	})
}
