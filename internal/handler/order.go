package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"kideats-be/internal/logger"
	"kideats-be/internal/menu"
	"kideats-be/internal/order"
	"kideats-be/internal/recipient"
	"kideats-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	RecipientID  string                   `json:"recipientId"`
	DeliveryDate string                   `json:"deliveryDate"`
	Items        []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid recipient id")
		return
	}

	deliveryDate, err := time.Parse(dateLayout, req.DeliveryDate)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid delivery date, expected YYYY-MM-DD")
		return
	}

	input := order.CreateOrderInput{
		RecipientID:  recipientID,
		DeliveryDate: deliveryDate,
	}
	for _, it := range req.Items {
		menuItemID, err := uuid.Parse(it.MenuItemID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid menu item id")
			return
		}
		input.Items = append(input.Items, order.CreateOrderItemInput{
			MenuItemID: menuItemID,
			Quantity:   it.Quantity,
		})
	}

	o, err := h.svc.CreateOrder(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrUnauthorized):
			utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, order.ErrEmptyOrder), errors.Is(err, order.ErrInvalidItem):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, recipient.ErrRecipientNotFound):
			utils.RespondError(w, http.StatusNotFound, "recipient not found")
		case errors.Is(err, menu.ErrMenuItemNotFound):
			utils.RespondError(w, http.StatusBadRequest, "menu item not found")
		default:
			logger.FromCtx(r.Context()).Error("failed to create order", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"order":   toOrderResponse(o),
	})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, offset := parsePagination(r)

	orders, err := h.svc.GetOrders(r.Context(), filter, limit, offset)
	if err != nil {
		if errors.Is(err, order.ErrUnauthorized) {
			utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		logger.FromCtx(r.Context()).Error("failed to list orders", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orders":  resp,
	})
}

func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.GetOrderDetail(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			utils.RespondError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrUnauthorized):
			utils.RespondError(w, http.StatusForbidden, "forbidden")
		default:
			logger.FromCtx(r.Context()).Error("failed to get order", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "failed to get order")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   toOrderResponse(o),
	})
}

func parseOrderFilter(r *http.Request) (*order.OrderFilterInput, error) {
	q := r.URL.Query()
	filter := &order.OrderFilterInput{}
	empty := true

	if s := q.Get("status"); s != "" {
		status := order.Status(s)
		switch status {
		case order.StatusPending, order.StatusPaid, order.StatusFailed, order.StatusExpired:
			filter.Status = &status
			empty = false
		default:
			return nil, errors.New("invalid status filter")
		}
	}

	if from := q.Get("dateFrom"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return nil, errors.New("invalid dateFrom, expected YYYY-MM-DD")
		}
		filter.DateFrom = &t
		empty = false
	}

	if to := q.Get("dateTo"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return nil, errors.New("invalid dateTo, expected YYYY-MM-DD")
		}
		filter.DateTo = &t
		empty = false
	}

	if empty {
		return nil, nil
	}
	return filter, nil
}

func parsePagination(r *http.Request) (limit, offset int32) {
	limit = defaultPageSize
	q := r.URL.Query()

	if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}
	if v, err := strconv.ParseInt(q.Get("offset"), 10, 32); err == nil && v > 0 {
		offset = int32(v)
	}
	return limit, offset
}
