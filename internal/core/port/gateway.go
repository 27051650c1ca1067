package port

import (
	"context"
	"time"

	"github.com/govalues/decimal"
)

type PaymentRequest struct {
	Phone            string
	Amount           decimal.Decimal
	AccountReference string
	Description      string
}

type PaymentResponse struct {
	CheckoutRequestID   string
	MerchantRequestID   string
	ResponseDescription string
	CustomerMessage     string
	// SubmittedAt is the timestamp the client signed the request with.
	SubmittedAt time.Time
}

//go:generate mockgen -source=gateway.go -destination=mock/gateway.go -package=mock
type GatewayClient interface {
	AccessToken(ctx context.Context) (string, error)
	InitiatePayment(ctx context.Context, token string, req PaymentRequest) (*PaymentResponse, error)
}
