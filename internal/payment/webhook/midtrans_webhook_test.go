package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kideats-be/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Initiate(ctx context.Context, orderIDs []string) (*payment.InitiateResult, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.InitiateResult), args.Error(1)
}

func (m *MockPaymentService) HandleNotification(ctx context.Context, body []byte) (payment.Outcome, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(payment.Outcome), args.Error(1)
}

func postNotification(t *testing.T, h *Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Handle(rr, req)
	return rr
}

func TestWebhookHandler_Handle(t *testing.T) {
	notif := []byte(`{"order_id": "BULK-1718000000000-2", "transaction_status": "settlement"}`)

	t.Run("Applied", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, notif).
			Return(payment.OutcomeApplied, nil)

		rr := postNotification(t, NewHandler(svc), notif)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		svc.AssertExpectations(t)
	})

	t.Run("IgnoredLooksIdenticalToApplied", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, notif).
			Return(payment.OutcomeIgnored, nil)

		rr := postNotification(t, NewHandler(svc), notif)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"success":true`)
	})

	t.Run("InvalidSignature", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, notif).
			Return(payment.OutcomeRejected, payment.ErrInvalidSignature)

		rr := postNotification(t, NewHandler(svc), notif)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid signature")
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		garbage := []byte(`{not-json`)
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, garbage).
			Return(payment.OutcomeRejected, errors.New("decode notification: invalid character"))

		rr := postNotification(t, NewHandler(svc), garbage)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("StorageFailureAsksForRedelivery", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, notif).
			Return(payment.OutcomeIgnored, errors.New("connection reset"))

		rr := postNotification(t, NewHandler(svc), notif)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
