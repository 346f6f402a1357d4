package models

import (
	"time"

	"github.com/google/uuid"
)

// order payment status
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
)

// order shipping status, moves independently of payment status
const (
	ShippingStatusPending    = "pending"
	ShippingStatusProcessing = "processing"
	ShippingStatusShipped    = "shipped"
	ShippingStatusDelivered  = "delivered"
)

// payment methods offered at checkout
const (
	PaymentMethodPix      = "pix"
	PaymentMethodDebit    = "debit"
	PaymentMethodCredit1x = "credit_1x"
	PaymentMethodCredit12 = "credit_12x"
)

// Order is purchase record. It is created pending/pending at checkout and
// mutated only by payment reconciliation and admin shipping updates.
type Order struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	TotalAmount    float64
	ShippingCost   float64
	PaymentMethod  string
	Status         string
	ShippingStatus string
	TrackingCode   *string
	CreatedAt      time.Time
	Items          []OrderItem
}

// OrderItem is snapshot of product at purchase time. Later product edits
// must not change it.
type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int32
	PriceAtPurchase float64
}
