package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nkimemia/sokopay/internal/adapter/config"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/port"
	"go.uber.org/zap"
)

const (
	tokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	timestampLayout = "20060102150405"

	// refresh the cached token slightly before the gateway expires it
	tokenExpirySlack = 30 * time.Second
)

type Client struct {
	logger         *zap.Logger
	host           string
	consumerKey    string
	consumerSecret string
	shortCode      string
	passkey        string
	callbackURL    string
	httpClient     *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg *config.Daraja, log *zap.Logger) (*Client, error) {
	return &Client{
		logger:         log,
		host:           cfg.APIHost,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		shortCode:      cfg.ShortCode,
		passkey:        cfg.Passkey,
		callbackURL:    cfg.CallbackURL,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// AccessToken exchanges the consumer key/secret for a bearer token. The
// token is cached until shortly before expiry. Errors never carry the
// credentials.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+tokenPath, http.NoBody)
	if err != nil {
		return "", domain.ErrAuthentication
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", domain.ErrGatewayTimeout
		}
		c.logger.Error("Token request failed", zap.Error(err))
		return "", domain.ErrAuthentication
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Token request rejected", zap.Int("status", resp.StatusCode))
		return "", domain.ErrAuthentication
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("Token response decode failed", zap.Error(err))
		return "", domain.ErrAuthentication
	}
	if result.AccessToken == "" {
		return "", domain.ErrAuthentication
	}

	ttl := time.Hour
	if sec, err := strconv.Atoi(result.ExpiresIn); err == nil {
		ttl = time.Duration(sec) * time.Second
	}

	c.mu.Lock()
	c.token = result.AccessToken
	c.tokenExpiry = time.Now().Add(ttl - tokenExpirySlack)
	c.mu.Unlock()

	return result.AccessToken, nil
}

// InitiatePayment submits an STK push. The request password is derived
// from the shortcode, passkey and a second-precision timestamp, which is
// also returned to the caller as submission metadata.
func (c *Client) InitiatePayment(ctx context.Context, token string, payment port.PaymentRequest) (*port.PaymentResponse, error) {
	now := time.Now()
	timestamp := now.Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString([]byte(c.shortCode + c.passkey + timestamp))

	body := stkPushRequest{
		BusinessShortCode: c.shortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            payment.Amount.String(),
		PartyA:            payment.Phone,
		PartyB:            c.shortCode,
		PhoneNumber:       payment.Phone,
		CallBackURL:       c.callbackURL,
		AccountReference:  payment.AccountReference,
		TransactionDesc:   payment.Description,
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding stk push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+stkPushPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error building stk push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Fire stk push request", zap.String("phone", payment.Phone))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.ErrGatewayTimeout
		}
		return nil, &domain.GatewayError{Status: 0, Body: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		upstream, _ := io.ReadAll(resp.Body)
		c.logger.Error("Stk push rejected",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", upstream))
		return nil, &domain.GatewayError{Status: resp.StatusCode, Body: string(upstream)}
	}

	var result stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}

	return &port.PaymentResponse{
		CheckoutRequestID:   result.CheckoutRequestID,
		MerchantRequestID:   result.MerchantRequestID,
		ResponseDescription: result.ResponseDescription,
		CustomerMessage:     result.CustomerMessage,
		SubmittedAt:         now,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
