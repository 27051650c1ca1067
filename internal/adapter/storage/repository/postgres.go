package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nkimemia/sokopay/internal/adapter/storage"
	"github.com/nkimemia/sokopay/internal/core/domain"
)

var orderColumns = []string{
	"id", "phone", "amount", "status",
	"checkout_request_id", "merchant_request_id",
	"receipt_code", "failure_reason", "failure_code",
	"callback_received", "raw_callback",
	"short_code", "submitted_at", "created_at", "completed_at",
}

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	statement := r.db.QueryBuilder.Insert("orders").
		Columns(orderColumns...).
		Values(order.ID, order.Phone, order.Amount, order.Status,
			order.CheckoutRequestID, order.MerchantRequestID,
			order.ReceiptCode, order.FailureReason, order.FailureCode,
			order.CallbackReceived, order.RawCallback,
			order.ShortCode, order.SubmittedAt, order.CreatedAt, order.CompletedAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	_, err = r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	return order, nil
}

func (r *Repository) ReadOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.readOrderWhere(ctx, sq.Eq{"id": id})
}

func (r *Repository) ReadOrderByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.Order, error) {
	return r.readOrderWhere(ctx, sq.Eq{"checkout_request_id": checkoutRequestID})
}

func (r *Repository) readOrderWhere(ctx context.Context, where sq.Eq) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(where)

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order := domain.Order{}

	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&order.ID,
		&order.Phone,
		&order.Amount,
		&order.Status,
		&order.CheckoutRequestID,
		&order.MerchantRequestID,
		&order.ReceiptCode,
		&order.FailureReason,
		&order.FailureCode,
		&order.CallbackReceived,
		&order.RawCallback,
		&order.ShortCode,
		&order.SubmittedAt,
		&order.CreatedAt,
		&order.CompletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// CompleteOrder is the idempotence guard for the success path: the status
// precondition makes the terminal transition a compare-and-swap at the
// storage layer, so concurrent or replayed callbacks mutate at most one
// row once.
func (r *Repository) CompleteOrder(ctx context.Context, checkoutRequestID string,
	receiptCode string, rawCallback string, completedAt time.Time) error {
	statement := r.db.QueryBuilder.Update("orders").
		Set("status", domain.OrderStatusCompleted).
		Set("receipt_code", receiptCode).
		Set("callback_received", true).
		Set("raw_callback", rawCallback).
		Set("completed_at", completedAt).
		Where(sq.Eq{
			"checkout_request_id": checkoutRequestID,
			"status":              domain.OrderStatusPending,
		})

	return r.execGuarded(ctx, statement)
}

// FailOrder carries the same pending-only precondition, so a late failure
// callback cannot overwrite an already completed order.
func (r *Repository) FailOrder(ctx context.Context, checkoutRequestID string,
	failureCode int, failureReason string, rawCallback string, failedAt time.Time) error {
	statement := r.db.QueryBuilder.Update("orders").
		Set("status", domain.OrderStatusFailed).
		Set("failure_code", failureCode).
		Set("failure_reason", failureReason).
		Set("callback_received", true).
		Set("raw_callback", rawCallback).
		Set("completed_at", failedAt).
		Where(sq.Eq{
			"checkout_request_id": checkoutRequestID,
			"status":              domain.OrderStatusPending,
		})

	return r.execGuarded(ctx, statement)
}

func (r *Repository) execGuarded(ctx context.Context, statement sq.UpdateBuilder) error {
	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNoUpdatedData
	}
	return nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	statement := r.db.QueryBuilder.
		Select("name", "price", "description").
		From("products").
		OrderBy("name")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Product, 0)
	for rows.Next() {
		product := domain.Product{}
		err := rows.Scan(&product.Name, &product.Price, &product.Description)
		if err != nil {
			return nil, err
		}
		list = append(list, &product)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (r *Repository) SeedProducts(ctx context.Context, products []*domain.Product) error {
	statement := r.db.QueryBuilder.Insert("products").
		Columns("name", "price", "description").
		Suffix("ON CONFLICT (name) DO NOTHING")

	for _, p := range products {
		statement = statement.Values(p.Name, p.Price, p.Description)
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Pool.Exec(ctx, sql, args...)
	return err
}
