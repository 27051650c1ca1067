package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nkimemia/sokopay/internal/core/domain"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// Order
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ReadOrderByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.Order, error)
	// CompleteOrder and FailOrder apply a terminal transition only where the
	// order is still pending; they return domain.ErrNoUpdatedData when the
	// conditional update matched no row.
	CompleteOrder(ctx context.Context, checkoutRequestID string, receiptCode string, rawCallback string, completedAt time.Time) error
	FailOrder(ctx context.Context, checkoutRequestID string, failureCode int, failureReason string, rawCallback string, failedAt time.Time) error

	// Product
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	SeedProducts(ctx context.Context, products []*domain.Product) error
}
