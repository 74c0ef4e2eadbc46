package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kideats-be/internal/logger"
	"kideats-be/internal/order"
	"kideats-be/internal/payment"
	"kideats-be/internal/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type initiatePaymentRequest struct {
	// Single-order form. Kept alongside orderIds so older clients keep
	// working.
	OrderID  string   `json:"orderId,omitempty"`
	OrderIDs []string `json:"orderIds,omitempty"`
}

// Initiate creates one payment transaction over the caller's pending
// orders.
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids := req.OrderIDs
	if req.OrderID != "" {
		ids = append(ids, req.OrderID)
	}

	res, err := h.svc.Initiate(r.Context(), ids)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrNoOrderIDs), errors.Is(err, payment.ErrInvalidOrderID):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, payment.ErrOrdersNotFound):
			utils.RespondError(w, http.StatusNotFound, "no pending orders found")
		case errors.Is(err, order.ErrUnauthorized):
			utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, payment.ErrGateway):
			// Gateway diagnostics stay in the logs.
			utils.RespondError(w, http.StatusBadGateway, "payment gateway unavailable")
		default:
			logger.FromCtx(r.Context()).Error("payment initiation failed", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "failed to initiate payment")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"snapToken":   res.SnapToken,
		"redirectUrl": res.RedirectURL,
		"orderIds":    res.OrderIDs,
		"totalAmount": res.TotalAmount,
	})
}
