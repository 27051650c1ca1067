package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/nkimemia/sokopay/internal/core/domain"
)

type CheckoutResult struct {
	OrderID uuid.UUID
	Gateway *PaymentResponse
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	Checkout(ctx context.Context, phone string, amount decimal.Decimal) (*CheckoutResult, error)
	ProcessCallback(ctx context.Context, cb *domain.STKCallback) error

	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.Order, bool, error)

	ListProducts(ctx context.Context) ([]*domain.Product, error)
}
