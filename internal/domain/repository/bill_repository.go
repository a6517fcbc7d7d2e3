package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	// NextBillNumber allocates the next number from the single serialized sequence
	NextBillNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
	// ListUnpaidByCustomer returns the customer's bills with unpaid > 0, oldest first
	ListUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Bill, error)
	// ReduceUnpaid lowers a bill's unpaid amount if it still covers amount
	ReduceUnpaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
}

// BillFilterParams contains filtering parameters for bill queries.
// A nil Pagination returns every matching bill.
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	CustomerID *uuid.UUID
	UnpaidOnly bool
	StartDate  *time.Time
	EndDate    *time.Time
}
