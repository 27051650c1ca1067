package http

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/nkimemia/sokopay/internal/adapter/config"
	"github.com/nkimemia/sokopay/internal/adapter/metrics"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.App,
	checkoutHandler *CheckoutHandler,
	callbackHandler *CallbackHandler,
	orderHandler *OrderHandler,
	productHandler *ProductHandler) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.POST("/callback", callbackHandler.HandleCallback)

	api := router.Group("/api")
	{
		api.GET("/products", productHandler.ListProducts)
		api.POST("/checkout", checkoutHandler.Checkout)
		api.GET("/order/:orderID", orderHandler.GetOrder)
		api.GET("/debug/order/:checkoutRequestID", orderHandler.GetOrderByCheckoutID)
	}

	// single-page asset for everything else
	index := filepath.Join(conf.StaticDir, "index.html")
	router.NoRoute(func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodGet {
			ctx.File(index)
			return
		}
		ctx.Status(http.StatusNotFound)
	})

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
