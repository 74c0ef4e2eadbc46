package webhook

import (
	"errors"
	"io"
	"net/http"

	"kideats-be/internal/logger"
	"kideats-be/internal/payment"
	"kideats-be/internal/utils"

	"go.uber.org/zap"
)

// Notification bodies are small; anything near this limit is garbage.
const maxBodyBytes = 1 << 20

type Handler struct {
	svc payment.Service
}

func NewHandler(svc payment.Service) *Handler {
	return &Handler{svc: svc}
}

// Handle processes a Midtrans payment notification. The response code is
// the contract with the gateway: 2xx acknowledges (including benign
// no-ops, so Midtrans stops redelivering), 401 flags a forged signature,
// and 5xx asks for redelivery after a storage failure.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read notification body", zap.Error(err))
		utils.RespondError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	outcome, err := h.svc.HandleNotification(r.Context(), body)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			utils.RespondError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
		if outcome == payment.OutcomeRejected {
			utils.RespondError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		// Storage failure: ask the gateway to redeliver.
		utils.RespondError(w, http.StatusInternalServerError, "failed to process notification")
		return
	}

	// Applied and ignored are indistinguishable on the wire on purpose:
	// acknowledging duplicates identically is what stops redelivery.
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
	})
}
