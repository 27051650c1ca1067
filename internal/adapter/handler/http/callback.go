package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkimemia/sokopay/internal/adapter/metrics"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/port"
	"go.uber.org/zap"
)

type CallbackHandler struct {
	Handler
	service port.Service
	metrics *metrics.Metrics
}

func NewCallbackHandler(service port.Service, m *metrics.Metrics, logger *zap.Logger) (*CallbackHandler, error) {
	return &CallbackHandler{
		Handler: *NewHandler(logger),
		service: service,
		metrics: m,
	}, nil
}

// gateway callback body: {Body:{stkCallback:{...}}}
type callbackBody struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// HandleCallback acknowledges every delivery with 200, including malformed
// bodies and internal failures. The gateway retries on anything else, and a
// handler that cannot recover must not be retry-stormed; failures go to the
// log instead.
func (ch *CallbackHandler) HandleCallback(ctx *gin.Context) {
	ack := func() { ctx.JSON(http.StatusOK, gin.H{"received": true}) }

	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ch.logger.Error("Callback body read failed", zap.Error(err))
		ch.metrics.Callbacks.WithLabelValues("unparsed").Inc()
		ack()
		return
	}

	var body callbackBody
	if err := json.Unmarshal(raw, &body); err != nil {
		ch.logger.Error("Callback body parse failed", zap.Error(err))
		ch.metrics.Callbacks.WithLabelValues("unparsed").Inc()
		ack()
		return
	}

	stk := body.Body.StkCallback
	cb := &domain.STKCallback{
		CheckoutRequestID: stk.CheckoutRequestID,
		MerchantRequestID: stk.MerchantRequestID,
		ResultCode:        stk.ResultCode,
		ResultDesc:        stk.ResultDesc,
		Raw:               string(raw),
	}
	for _, item := range stk.CallbackMetadata.Item {
		cb.Items = append(cb.Items, domain.CallbackItem{Name: item.Name, Value: item.Value})
	}

	if err := ch.service.ProcessCallback(ctx, cb); err != nil {
		ch.logger.Error("Callback processing failed", zap.Error(err),
			zap.String("checkout_request_id", cb.CheckoutRequestID))
		ch.metrics.Callbacks.WithLabelValues("error").Inc()
		ack()
		return
	}

	if stk.ResultCode == 0 {
		ch.metrics.Callbacks.WithLabelValues("success").Inc()
	} else {
		ch.metrics.Callbacks.WithLabelValues("failure").Inc()
	}
	ack()
}
