package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kideats-be/internal/logger"
	"kideats-be/internal/menu"
	"kideats-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MenuHandler struct {
	svc menu.Service
}

func NewMenuHandler(svc menu.Service) *MenuHandler {
	return &MenuHandler{svc: svc}
}

type menuItemRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Category    string  `json:"category"`
	IsAvailable bool    `json:"isAvailable"`
}

func (req menuItemRequest) toInput() menu.MenuItemInput {
	return menu.MenuItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		IsAvailable: req.IsAvailable,
	}
}

// List returns available menu items. Admins may pass ?includeUnavailable=true
// to see hidden ones too.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	includeUnavailable := r.URL.Query().Get("includeUnavailable") == "true" && utils.IsAdmin(r.Context())

	items, err := h.svc.ListMenu(r.Context(), includeUnavailable)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to list menu", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to list menu")
		return
	}

	resp := make([]menuItemResponse, 0, len(items))
	for _, m := range items {
		resp = append(resp, toMenuItemResponse(m))
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   resp,
	})
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	item, err := h.svc.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, menu.ErrMenuItemNotFound) {
			utils.RespondError(w, http.StatusNotFound, "menu item not found")
			return
		}
		logger.FromCtx(r.Context()).Error("failed to get menu item", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    toMenuItemResponse(item),
	})
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.svc.CreateMenuItem(r.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, menu.ErrInvalidMenuItem) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.FromCtx(r.Context()).Error("failed to create menu item", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to create menu item")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"item":    toMenuItemResponse(item),
	})
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.svc.UpdateMenuItem(r.Context(), id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, menu.ErrInvalidMenuItem):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, menu.ErrMenuItemNotFound):
			utils.RespondError(w, http.StatusNotFound, "menu item not found")
		default:
			logger.FromCtx(r.Context()).Error("failed to update menu item", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "failed to update menu item")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    toMenuItemResponse(item),
	})
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	if err := h.svc.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, menu.ErrMenuItemNotFound) {
			utils.RespondError(w, http.StatusNotFound, "menu item not found")
			return
		}
		logger.FromCtx(r.Context()).Error("failed to delete menu item", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete menu item")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}
