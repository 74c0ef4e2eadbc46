package menu

import "errors"

var (
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrInvalidMenuItem  = errors.New("invalid menu item")
)
