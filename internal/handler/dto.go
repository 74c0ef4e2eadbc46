package handler

import (
	"time"

	"kideats-be/internal/menu"
	"kideats-be/internal/order"
	"kideats-be/internal/recipient"
)

// Response DTOs. Domain models stay tag-free; the JSON shape is a
// transport concern and lives here.

type menuItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Category    string  `json:"category"`
	IsAvailable bool    `json:"isAvailable"`
}

func toMenuItemResponse(m *menu.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		Category:    m.Category,
		IsAvailable: m.IsAvailable,
	}
}

type recipientResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

func toRecipientResponse(rec *recipient.Recipient) recipientResponse {
	return recipientResponse{
		ID:    rec.ID.String(),
		Name:  rec.Name,
		Class: rec.Class,
	}
}

type orderItemResponse struct {
	MenuItemID   string  `json:"menuItemId"`
	MenuItemName string  `json:"menuItemName"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	Subtotal     float64 `json:"subtotal"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	RecipientID    string              `json:"recipientId"`
	RecipientName  string              `json:"recipientName"`
	RecipientClass string              `json:"recipientClass"`
	Items          []orderItemResponse `json:"items"`
	TotalAmount    float64             `json:"totalAmount"`
	DeliveryDate   string              `json:"deliveryDate"`
	Status         string              `json:"status"`
	SnapToken      *string             `json:"snapToken,omitempty"`
	PaymentURL     *string             `json:"paymentUrl,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			MenuItemID:   it.MenuItemID.String(),
			MenuItemName: it.MenuItemName,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
		})
	}

	return orderResponse{
		ID:             o.ID.String(),
		RecipientID:    o.RecipientID.String(),
		RecipientName:  o.RecipientName,
		RecipientClass: o.RecipientClass,
		Items:          items,
		TotalAmount:    o.TotalAmount,
		DeliveryDate:   o.DeliveryDate.Format(dateLayout),
		Status:         string(o.Status),
		SnapToken:      o.SnapToken,
		PaymentURL:     o.PaymentURL,
		CreatedAt:      o.CreatedAt,
	}
}
