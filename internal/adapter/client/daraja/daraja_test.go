package daraja_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/govalues/decimal"
	"github.com/nkimemia/sokopay/internal/adapter/client/daraja"
	"github.com/nkimemia/sokopay/internal/adapter/config"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/port"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *daraja.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := zap.NewProduction()
	client, err := daraja.NewClient(&config.Daraja{
		APIHost:        server.URL,
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/callback",
	}, logger)
	assert.NoError(t, err)

	return client
}

func TestClient_AccessToken(t *testing.T) {
	var tokenCalls int

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "consumer-key", user)
		assert.Equal(t, "consumer-secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc123","expires_in":"3599"}`))
	}))

	token, err := client.AccessToken(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "abc123", token)

	// second call served from cache
	token, err = client.AccessToken(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "abc123", token)
	assert.Equal(t, 1, tokenCalls)
}

func TestClient_AccessTokenRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	token, err := client.AccessToken(context.Background())
	assert.Empty(t, token)
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	// the credential must never leak through the error
	assert.NotContains(t, err.Error(), "consumer-key")
	assert.NotContains(t, err.Error(), "consumer-secret")
}

func TestClient_InitiatePayment(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "174379", body["BusinessShortCode"])
		assert.Equal(t, "254712345678", body["PhoneNumber"])
		assert.Equal(t, "100", body["Amount"])
		assert.Equal(t, "CustomerPayBillOnline", body["TransactionType"])
		assert.Equal(t, "https://example.com/callback", body["CallBackURL"])

		// password is base64(shortcode + passkey + timestamp)
		decoded, err := base64.StdEncoding.DecodeString(body["Password"])
		assert.NoError(t, err)
		assert.Equal(t, "174379passkey"+body["Timestamp"], string(decoded))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"MerchantRequestID":"29115-34620561-1",
			"CheckoutRequestID":"ws_CO_191220191020363925",
			"ResponseCode":"0",
			"ResponseDescription":"Success. Request accepted for processing",
			"CustomerMessage":"Success. Request accepted for processing"
		}`))
	}))

	amount, _ := decimal.New(100, 0)
	resp, err := client.InitiatePayment(context.Background(), "abc123", port.PaymentRequest{
		Phone:            "254712345678",
		Amount:           amount,
		AccountReference: "sokopay",
		Description:      "Payment of goods",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", resp.MerchantRequestID)
	assert.False(t, resp.SubmittedAt.IsZero())
}

func TestClient_InitiatePaymentRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessage":"Bad Request - Invalid Amount"}`))
	}))

	amount, _ := decimal.New(100, 0)
	resp, err := client.InitiatePayment(context.Background(), "abc123", port.PaymentRequest{
		Phone:  "254712345678",
		Amount: amount,
	})

	assert.Nil(t, resp)
	var gwErr *domain.GatewayError
	assert.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.Status)
	assert.Contains(t, gwErr.Body, "Invalid Amount")
}
