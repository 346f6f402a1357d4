package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is catalog item
type Product struct {
	ID           uuid.UUID
	Name         string
	Description  string
	Price        float64
	Category     string
	Stock        int32
	ImageURL     string
	ShippingCost float64
	CreatedAt    time.Time
}

// CartItem is per-user, per-product quantity
type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Product   *Product
}

// Favorite marks product saved by user
type Favorite struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	CreatedAt time.Time
}
