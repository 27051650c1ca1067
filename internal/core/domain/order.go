package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// Order is a single payment attempt. CheckoutRequestID is assigned by the
// gateway on initiation, is unique across orders and is the join key for
// callback reconciliation. Status moves one way: pending -> completed or
// pending -> failed.
type Order struct {
	ID                uuid.UUID
	Phone             string
	Amount            decimal.Decimal
	Status            OrderStatus
	CheckoutRequestID string
	MerchantRequestID string
	ReceiptCode       string
	FailureReason     string
	FailureCode       int
	CallbackReceived  bool
	RawCallback       string
	ShortCode         string
	SubmittedAt       time.Time
	CreatedAt         time.Time
	CompletedAt       *time.Time
}
