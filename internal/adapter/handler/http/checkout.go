package http

import (
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/nkimemia/sokopay/internal/adapter/metrics"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/port"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	Handler
	service port.Service
	metrics *metrics.Metrics
}

func NewCheckoutHandler(service port.Service, m *metrics.Metrics, logger *zap.Logger) (*CheckoutHandler, error) {
	return &CheckoutHandler{
		Handler: *NewHandler(logger),
		service: service,
		metrics: m,
	}, nil
}

type checkoutRequest struct {
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
}

type checkoutData struct {
	OrderID             string `json:"orderId"`
	CheckoutRequestID   string `json:"checkoutRequestId"`
	MerchantRequestID   string `json:"merchantRequestId"`
	ResponseDescription string `json:"responseDescription"`
	CustomerMessage     string `json:"customerMessage"`
}

func (ch *CheckoutHandler) Checkout(ctx *gin.Context) {
	var req checkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ch.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	amount, err := decimal.NewFromFloat64(req.Amount)
	if err != nil {
		ch.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	result, err := ch.service.Checkout(ctx, req.Phone, amount)
	if err != nil {
		ch.metrics.Checkouts.WithLabelValues("rejected").Inc()
		ch.handleError(ctx, err)
		return
	}

	ch.metrics.Checkouts.WithLabelValues("accepted").Inc()
	ch.handleSuccess(ctx, "STK push initiated, awaiting confirmation", checkoutData{
		OrderID:             result.OrderID.String(),
		CheckoutRequestID:   result.Gateway.CheckoutRequestID,
		MerchantRequestID:   result.Gateway.MerchantRequestID,
		ResponseDescription: result.Gateway.ResponseDescription,
		CustomerMessage:     result.Gateway.CustomerMessage,
	})
}
