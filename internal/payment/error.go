package payment

import "errors"

var (
	ErrNoOrderIDs       = errors.New("at least one order id is required")
	ErrInvalidOrderID   = errors.New("invalid order id")
	ErrOrdersNotFound   = errors.New("no pending orders found for payment")
	ErrGateway          = errors.New("payment gateway error")
	ErrInvalidSignature = errors.New("invalid notification signature")
)
