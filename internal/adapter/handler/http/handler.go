package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,

	domain.ErrBadRequest: http.StatusBadRequest,

	domain.ErrPhoneRequired:      http.StatusBadRequest,
	domain.ErrAmountRequired:     http.StatusBadRequest,
	domain.ErrAmountTooSmall:     http.StatusBadRequest,
	domain.ErrInvalidPhoneNumber: http.StatusBadRequest,

	domain.ErrAuthentication: http.StatusBadRequest,
	domain.ErrGatewayTimeout: http.StatusBadRequest,
}

type jsonDecimal decimal.Decimal

func (j jsonDecimal) MarshalJSON() ([]byte, error) {
	s := fmt.Sprintf("%f", decimal.Decimal(j))
	return []byte(s), nil
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// handleValidationError sends an error response for some specific request validation error
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, errorResponse{Success: false, Error: err.Error()})
}

// handleError maps a service error to its status code and sends the error envelope
func (h *Handler) handleError(ctx *gin.Context, err error) {
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		ctx.JSON(http.StatusBadRequest, errorResponse{Success: false, Error: gwErr.Error()})
		return
	}

	statusCode, ok := errorStatusMap[err]
	if !ok {
		statusCode = http.StatusInternalServerError
		h.logger.Error("error processing request", zap.Error(err))
		err = domain.ErrInternal
	}
	ctx.JSON(statusCode, errorResponse{Success: false, Error: err.Error()})
}

// handleSuccess sends a success envelope with the optional data
func (h *Handler) handleSuccess(ctx *gin.Context, message string, data any) {
	ctx.JSON(http.StatusOK, successResponse{Success: true, Message: message, Data: data})
}
