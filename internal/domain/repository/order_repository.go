package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations.
// Status changes go through conditional writes only; a false result means
// the row no longer matched the expected state.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error)
	GetByIntentRef(ctx context.Context, ref string) (*entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	ListActiveByTable(ctx context.Context, tableID uuid.UUID) ([]entity.Order, error)
	// ListAwaitingPayment returns online orders whose payment is still pending
	// and that were placed before olderThan
	ListAwaitingPayment(ctx context.Context, olderThan time.Time, limit int) ([]entity.Order, error)
	SetIntentRef(ctx context.Context, id uuid.UUID, ref string) error
	// ApplyTransition updates status (and payment status when set) only if the
	// row is still at from/version
	ApplyTransition(ctx context.Context, id uuid.UUID, from enum.OrderStatus, version int, change OrderChange) (bool, error)
	// SetPaymentStatus updates the payment status only if it is still from
	SetPaymentStatus(ctx context.Context, id uuid.UUID, from, to enum.PaymentStatus) (bool, error)
	// CompleteForBill marks every active table order in ids completed and
	// links it to billID, returning how many rows matched
	CompleteForBill(ctx context.Context, ids []uuid.UUID, billID uuid.UUID) (int64, error)
}

// OrderChange is the write side of a state machine decision
type OrderChange struct {
	To            enum.OrderStatus
	PaymentStatus enum.PaymentStatus
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.OrderStatus
	Channel    *enum.Channel
	TableID    *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortOrder  string
}
