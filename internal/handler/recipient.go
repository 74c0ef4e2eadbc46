package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kideats-be/internal/logger"
	"kideats-be/internal/recipient"
	"kideats-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RecipientHandler struct {
	svc recipient.Service
}

func NewRecipientHandler(svc recipient.Service) *RecipientHandler {
	return &RecipientHandler{svc: svc}
}

type recipientRequest struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

func (h *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipients, err := h.svc.ListRecipients(r.Context(), userID)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to list recipients", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to list recipients")
		return
	}

	resp := make([]recipientResponse, 0, len(recipients))
	for _, rec := range recipients {
		resp = append(resp, toRecipientResponse(rec))
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"recipients": resp,
	})
}

func (h *RecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req recipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.svc.CreateRecipient(r.Context(), userID, recipient.RecipientInput{
		Name:  req.Name,
		Class: req.Class,
	})
	if err != nil {
		if errors.Is(err, recipient.ErrInvalidRecipient) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.FromCtx(r.Context()).Error("failed to create recipient", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to create recipient")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"recipient": toRecipientResponse(rec),
	})
}

func (h *RecipientHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid recipient id")
		return
	}

	var req recipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.svc.UpdateRecipient(r.Context(), userID, id, recipient.RecipientInput{
		Name:  req.Name,
		Class: req.Class,
	})
	if err != nil {
		switch {
		case errors.Is(err, recipient.ErrInvalidRecipient):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, recipient.ErrRecipientNotFound):
			utils.RespondError(w, http.StatusNotFound, "recipient not found")
		default:
			logger.FromCtx(r.Context()).Error("failed to update recipient", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "failed to update recipient")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"recipient": toRecipientResponse(rec),
	})
}

func (h *RecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid recipient id")
		return
	}

	if err := h.svc.DeleteRecipient(r.Context(), userID, id); err != nil {
		if errors.Is(err, recipient.ErrRecipientNotFound) {
			utils.RespondError(w, http.StatusNotFound, "recipient not found")
			return
		}
		logger.FromCtx(r.Context()).Error("failed to delete recipient", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete recipient")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}
