package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order has no items")
	ErrInvalidItem   = errors.New("invalid order item")
	ErrUnauthorized  = errors.New("unauthorized")
)
