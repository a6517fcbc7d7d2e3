package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ErrCustomerNotFound is returned by writes that matched no customer
var ErrCustomerNotFound = errors.New("repository: customer not found")

// CustomerRepository defines the interface for customer ledger operations
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	// FindOrCreateByPhone returns the outlet's customer for phone, creating it with name if absent
	FindOrCreateByPhone(ctx context.Context, name, phone string) (*entity.Customer, error)
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	// IncrementDue returns ErrCustomerNotFound when no customer has id
	IncrementDue(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	// DecrementDue lowers the due amount only if it is at least amount
	DecrementDue(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
}

// DuePaymentRepository defines the interface for due payment records
type DuePaymentRepository interface {
	Create(ctx context.Context, payment *entity.DuePayment) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) ([]entity.DuePayment, int64, error)
}
