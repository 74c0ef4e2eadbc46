package recipient

import "errors"

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInvalidRecipient  = errors.New("invalid recipient")
)
