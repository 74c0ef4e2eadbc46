package menu

import (
	"time"

	"github.com/google/uuid"
)

type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Price       float64
	ImageURL    *string
	Category    string
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MenuItemInput struct {
	Name        string
	Description *string
	Price       float64
	ImageURL    *string
	Category    string
	IsAvailable bool
}
