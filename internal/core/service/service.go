package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/port"
	"github.com/nkimemia/sokopay/internal/core/utils"
	"go.uber.org/zap"
)

const resultCodeSuccess = 0

const (
	accountReference = "sokopay"
	paymentDesc      = "Payment of goods"
)

type Service struct {
	repo      port.Repository
	gateway   port.GatewayClient
	minAmount decimal.Decimal
	shortCode string
	logger    *zap.Logger
}

func NewService(repo port.Repository, gateway port.GatewayClient,
	minAmount decimal.Decimal, shortCode string, logger *zap.Logger) (*Service, error) {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		minAmount: minAmount,
		shortCode: shortCode,
		logger:    logger,
	}, nil
}

// Checkout initiates an STK push for the given phone and amount and
// persists a pending order keyed by the gateway's correlation ids. No
// order exists if any step before persistence fails.
func (s *Service) Checkout(ctx context.Context, phone string, amount decimal.Decimal) (*port.CheckoutResult, error) {
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}
	if amount.IsZero() {
		return nil, domain.ErrAmountRequired
	}
	if amount.Cmp(s.minAmount) < 0 {
		return nil, domain.ErrAmountTooSmall
	}

	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	token, err := s.gateway.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.InitiatePayment(ctx, token, port.PaymentRequest{
		Phone:            normalized,
		Amount:           amount,
		AccountReference: accountReference,
		Description:      paymentDesc,
	})
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:                uuid.New(),
		Phone:             normalized,
		Amount:            amount,
		Status:            domain.OrderStatusPending,
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		ShortCode:         s.shortCode,
		SubmittedAt:       resp.SubmittedAt,
		CreatedAt:         time.Now(),
	}

	if _, err := s.repo.CreateOrder(ctx, order); err != nil {
		s.logger.Error("Create order", zap.Error(err),
			zap.String("checkout_request_id", resp.CheckoutRequestID))
		return nil, domain.ErrInternal
	}

	s.logger.Info("Checkout initiated",
		zap.String("order_id", order.ID.String()),
		zap.String("checkout_request_id", resp.CheckoutRequestID))

	return &port.CheckoutResult{OrderID: order.ID, Gateway: resp}, nil
}

// ProcessCallback applies the terminal transition reported by the gateway.
// Both transitions are conditional on the order still being pending, so a
// duplicate delivery matches no row and is ignored. An unknown correlation
// id is logged and ignored: the initiation was never durably recorded, so
// there is nothing to reconcile against.
func (s *Service) ProcessCallback(ctx context.Context, cb *domain.STKCallback) error {
	order, err := s.repo.ReadOrderByCheckoutID(ctx, cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Warn("Callback for unknown checkout request",
				zap.String("checkout_request_id", cb.CheckoutRequestID))
			return nil
		}
		return err
	}

	if cb.ResultCode == resultCodeSuccess {
		err = s.repo.CompleteOrder(ctx, cb.CheckoutRequestID, cb.ReceiptCode(), cb.Raw, time.Now())
	} else {
		err = s.repo.FailOrder(ctx, cb.CheckoutRequestID, cb.ResultCode, cb.ResultDesc, cb.Raw, time.Now())
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoUpdatedData) {
			s.logger.Info("Duplicate callback ignored",
				zap.String("checkout_request_id", cb.CheckoutRequestID),
				zap.String("status", string(order.Status)))
			return nil
		}
		return err
	}

	if cb.ResultCode == resultCodeSuccess {
		s.logger.Info("Order completed",
			zap.String("checkout_request_id", cb.CheckoutRequestID),
			zap.String("receipt", cb.ReceiptCode()))
	} else {
		s.logger.Info("Order failed",
			zap.String("checkout_request_id", cb.CheckoutRequestID),
			zap.Int("result_code", cb.ResultCode),
			zap.String("reason", cb.ResultDesc))
	}

	return nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.ReadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) GetOrderByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.Order, bool, error) {
	order, err := s.repo.ReadOrderByCheckoutID(ctx, checkoutRequestID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return order, true, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	list, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.Error("List products", zap.Error(err))
		return nil, err
	}
	return list, nil
}
