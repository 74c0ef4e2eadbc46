package recipient

import (
	"time"

	"github.com/google/uuid"
)

// Recipient is a child registered by a parent to receive meal deliveries.
type Recipient struct {
	ID        uuid.UUID
	UserID    string
	Name      string
	Class     string
	CreatedAt time.Time
}

type RecipientInput struct {
	Name  string
	Class string
}
