package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkimemia/sokopay/internal/core/port"
	"go.uber.org/zap"
)

type ProductHandler struct {
	Handler
	service port.Service
}

func NewProductHandler(service port.Service, logger *zap.Logger) (*ProductHandler, error) {
	return &ProductHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type productResponse struct {
	Name        string      `json:"name"`
	Price       jsonDecimal `json:"price"`
	Description string      `json:"description"`
}

func (ph *ProductHandler) ListProducts(ctx *gin.Context) {
	list, err := ph.service.ListProducts(ctx)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	result := make([]productResponse, 0, len(list))
	for _, p := range list {
		result = append(result, productResponse{
			Name:        p.Name,
			Price:       jsonDecimal(p.Price),
			Description: p.Description,
		})
	}

	ctx.JSON(http.StatusOK, result)
}
