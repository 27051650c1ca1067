package service_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/nkimemia/sokopay/internal/adapter/config"
	"github.com/nkimemia/sokopay/internal/adapter/storage"
	"github.com/nkimemia/sokopay/internal/adapter/storage/repository"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/port/mock"
	"github.com/nkimemia/sokopay/internal/core/service"
	"github.com/nkimemia/sokopay/internal/e2etest/testdb"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var dbtest *testdb.TestDBInstance

func setup() {
	var err error
	dbtest, err = testdb.NewTestDBInstance()
	if err != nil {
		if errors.Is(err, testdb.ErrNoDatabase) {
			fmt.Println("skipping db tests:", err)
			os.Exit(0)
		}
		log.Fatal(err)
	}
}

func shutdown() {
	if dbtest != nil {
		dbtest.Down()
	}
}

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	shutdown()
	os.Exit(code)
}

func getRepo() (*repository.Repository, error) {
	db, err := storage.NewDBStorage(context.Background(), &config.Database{DSN: dbtest.DSN})
	if err != nil {
		return nil, err
	}
	err = db.RunMigrations()
	if err != nil {
		return nil, err
	}
	return repository.NewRepository(db)
}

func newPendingOrder(t *testing.T, repo *repository.Repository) *domain.Order {
	t.Helper()

	amount, _ := decimal.New(100, 0)
	order := &domain.Order{
		ID:                uuid.New(),
		Phone:             "254712345678",
		Amount:            amount,
		Status:            domain.OrderStatusPending,
		CheckoutRequestID: "ws_CO_" + uuid.New().String(),
		MerchantRequestID: "29115-34620561-1",
		ShortCode:         "174379",
		SubmittedAt:       time.Now(),
		CreatedAt:         time.Now(),
	}

	_, err := repo.CreateOrder(context.Background(), order)
	assert.NoError(t, err)

	return order
}

// The pending-only conditional update is the concurrency and idempotence
// guard for reconciliation, exercised against a real database.
func TestRepositoryDB_ConditionalTerminalUpdates(t *testing.T) {
	repo, err := getRepo()
	assert.NoError(t, err)

	ctx := context.Background()

	t.Run("complete applies once", func(t *testing.T) {
		order := newPendingOrder(t, repo)

		err := repo.CompleteOrder(ctx, order.CheckoutRequestID, "NLJ7RT61SV", `{"raw":true}`, time.Now())
		assert.NoError(t, err)

		err = repo.CompleteOrder(ctx, order.CheckoutRequestID, "OTHER", `{"raw":2}`, time.Now())
		assert.Equal(t, domain.ErrNoUpdatedData, err)

		got, err := repo.ReadOrderByCheckoutID(ctx, order.CheckoutRequestID)
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCompleted, got.Status)
		assert.Equal(t, "NLJ7RT61SV", got.ReceiptCode)
		assert.True(t, got.CallbackReceived)
	})

	t.Run("fail cannot overwrite completed", func(t *testing.T) {
		order := newPendingOrder(t, repo)

		err := repo.CompleteOrder(ctx, order.CheckoutRequestID, "NLJ7RT61SV", `{"raw":true}`, time.Now())
		assert.NoError(t, err)

		err = repo.FailOrder(ctx, order.CheckoutRequestID, 1032, "Request cancelled by user", `{"raw":3}`, time.Now())
		assert.Equal(t, domain.ErrNoUpdatedData, err)

		got, err := repo.ReadOrderByCheckoutID(ctx, order.CheckoutRequestID)
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCompleted, got.Status)
		assert.Empty(t, got.FailureReason)
		assert.Zero(t, got.FailureCode)
	})

	t.Run("fail applies once on pending", func(t *testing.T) {
		order := newPendingOrder(t, repo)

		err := repo.FailOrder(ctx, order.CheckoutRequestID, 1032, "Request cancelled by user", `{"raw":4}`, time.Now())
		assert.NoError(t, err)

		err = repo.FailOrder(ctx, order.CheckoutRequestID, 1037, "DS timeout", `{"raw":5}`, time.Now())
		assert.Equal(t, domain.ErrNoUpdatedData, err)

		got, err := repo.ReadOrderByCheckoutID(ctx, order.CheckoutRequestID)
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderStatusFailed, got.Status)
		assert.Equal(t, 1032, got.FailureCode)
		assert.Equal(t, "Request cancelled by user", got.FailureReason)
	})
}

func TestServiceDB_CallbackReconciliation(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	repo, err := getRepo()
	assert.NoError(t, err)

	logger, _ := zap.NewProduction()
	minAmount, _ := decimal.New(1, 0)
	// the gateway is never called during reconciliation
	gateway := mock.NewMockGatewayClient(mockCtrl)

	s, err := service.NewService(repo, gateway, minAmount, "174379", logger)
	assert.NoError(t, err)

	ctx := context.Background()

	t.Run("replayed success callback mutates once", func(t *testing.T) {
		order := newPendingOrder(t, repo)

		callback := &domain.STKCallback{
			CheckoutRequestID: order.CheckoutRequestID,
			ResultCode:        0,
			ResultDesc:        "The service request is processed successfully.",
			Items: []domain.CallbackItem{
				{Name: "Amount", Value: 100.0},
				{Name: "MpesaReceiptNumber", Value: "NLJ7RT61SV"},
			},
			Raw: `{"Body":{"stkCallback":{}}}`,
		}

		assert.NoError(t, s.ProcessCallback(ctx, callback))

		first, err := repo.ReadOrderByCheckoutID(ctx, order.CheckoutRequestID)
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCompleted, first.Status)
		assert.Equal(t, "NLJ7RT61SV", first.ReceiptCode)
		assert.True(t, first.CallbackReceived)
		assert.NotNil(t, first.CompletedAt)

		// identical delivery again
		assert.NoError(t, s.ProcessCallback(ctx, callback))

		second, err := repo.ReadOrderByCheckoutID(ctx, order.CheckoutRequestID)
		assert.NoError(t, err)
		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.ReceiptCode, second.ReceiptCode)
		assert.Equal(t, first.RawCallback, second.RawCallback)
		assert.True(t, first.CompletedAt.Equal(*second.CompletedAt))
	})

	t.Run("late failure after completion is ignored", func(t *testing.T) {
		order := newPendingOrder(t, repo)

		assert.NoError(t, s.ProcessCallback(ctx, &domain.STKCallback{
			CheckoutRequestID: order.CheckoutRequestID,
			ResultCode:        0,
			Items:             []domain.CallbackItem{{Name: "MpesaReceiptNumber", Value: "NLJ7RT61SV"}},
			Raw:               `{"Body":{"stkCallback":{}}}`,
		}))

		assert.NoError(t, s.ProcessCallback(ctx, &domain.STKCallback{
			CheckoutRequestID: order.CheckoutRequestID,
			ResultCode:        1032,
			ResultDesc:        "Request cancelled by user",
			Raw:               `{"Body":{"stkCallback":{}}}`,
		}))

		got, err := repo.ReadOrderByCheckoutID(ctx, order.CheckoutRequestID)
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCompleted, got.Status)
		assert.Empty(t, got.FailureReason)
	})

	t.Run("unknown checkout request id leaves no trace", func(t *testing.T) {
		assert.NoError(t, s.ProcessCallback(ctx, &domain.STKCallback{
			CheckoutRequestID: "ws_CO_unknown",
			ResultCode:        0,
			Raw:               `{"Body":{"stkCallback":{}}}`,
		}))

		_, err := repo.ReadOrderByCheckoutID(ctx, "ws_CO_unknown")
		assert.Equal(t, domain.ErrDataNotFound, err)
	})
}
