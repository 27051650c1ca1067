package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/port"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type orderResponse struct {
	ID                string      `json:"id"`
	Phone             string      `json:"phone"`
	Amount            jsonDecimal `json:"amount"`
	Status            string      `json:"status"`
	CheckoutRequestID string      `json:"checkoutRequestId"`
	MerchantRequestID string      `json:"merchantRequestId"`
	ReceiptCode       string      `json:"receiptCode,omitempty"`
	FailureReason     string      `json:"failureReason,omitempty"`
	FailureCode       int         `json:"failureCode,omitempty"`
	CallbackReceived  bool        `json:"callbackReceived"`
	CreatedAt         time.Time   `json:"createdAt"`
	CompletedAt       *time.Time  `json:"completedAt,omitempty"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:                o.ID.String(),
		Phone:             o.Phone,
		Amount:            jsonDecimal(o.Amount),
		Status:            string(o.Status),
		CheckoutRequestID: o.CheckoutRequestID,
		MerchantRequestID: o.MerchantRequestID,
		ReceiptCode:       o.ReceiptCode,
		FailureReason:     o.FailureReason,
		FailureCode:       o.FailureCode,
		CallbackReceived:  o.CallbackReceived,
		CreatedAt:         o.CreatedAt,
		CompletedAt:       o.CompletedAt,
	}
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("orderID"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.service.GetOrder(ctx, id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newOrderResponse(order))
}

// GetOrderByCheckoutID is the diagnostic lookup by correlation id: absence
// is reported with found=false, never a 404.
func (oh *OrderHandler) GetOrderByCheckoutID(ctx *gin.Context) {
	checkoutRequestID := ctx.Param("checkoutRequestID")

	order, found, err := oh.service.GetOrderByCheckoutID(ctx, checkoutRequestID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	resp := gin.H{
		"found":             found,
		"checkoutRequestId": checkoutRequestID,
		"order":             nil,
	}
	if found {
		resp["order"] = newOrderResponse(order)
	}

	ctx.JSON(http.StatusOK, resp)
}
