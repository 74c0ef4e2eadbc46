package transport

import (
	"database/sql"
	"net/http"

	"kideats-be/internal/config"
	"kideats-be/internal/handler"
	"kideats-be/internal/logger"
	"kideats-be/internal/menu"
	"kideats-be/internal/middleware"
	"kideats-be/internal/order"
	"kideats-be/internal/payment"
	"kideats-be/internal/payment/webhook"
	"kideats-be/internal/recipient"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the full HTTP surface: public menu reads, authenticated
// parent routes, admin menu management, payment initiation, and the
// gateway webhook. The webhook sits outside the auth chain because
// Midtrans authenticates with a payload signature, not a session.
func NewRouter(cfg *config.Config, database *sql.DB) *chi.Mux {
	menuRepo := menu.NewRepository(database)
	menuSvc := menu.NewService(menuRepo)

	recipientRepo := recipient.NewRepository(database)
	recipientSvc := recipient.NewService(recipientRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, menuRepo, recipientRepo)

	gateway := payment.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction)
	paymentSvc := payment.NewService(orderRepo, gateway, cfg.MidtransServerKey)

	menuHandler := handler.NewMenuHandler(menuSvc)
	recipientHandler := handler.NewRecipientHandler(recipientSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	webhookHandler := webhook.NewHandler(paymentSvc)

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Post("/webhook/payment", webhookHandler.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", menuHandler.List)
		r.Get("/menu/{id}", menuHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/recipients", recipientHandler.List)
			r.Post("/recipients", recipientHandler.Create)
			r.Put("/recipients/{id}", recipientHandler.Update)
			r.Delete("/recipients/{id}", recipientHandler.Delete)

			r.Post("/orders", orderHandler.Create)
			r.Get("/orders", orderHandler.List)
			r.Get("/orders/{id}", orderHandler.Detail)

			r.Post("/payments", paymentHandler.Initiate)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireAdmin)

			r.Post("/menu", menuHandler.Create)
			r.Put("/menu/{id}", menuHandler.Update)
			r.Delete("/menu/{id}", menuHandler.Delete)
		})
	})

	return r
}
