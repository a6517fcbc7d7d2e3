package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillNumberSequence is created by the migration; nextval is never rolled back
const BillNumberSequence = "bill_number_seq"

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) NextBillNumber(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Raw("SELECT nextval(?::regclass)", BillNumberSequence).Scan(&n).Error
	return n, err
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return conn(ctx, r.db).Create(bill).Error
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).
		Scopes(OutletScope(ctx)).
		Preload("Customer").
		Preload("Lines").
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := conn(ctx, r.db).Model(&entity.Bill{}).Scopes(OutletScope(ctx))

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.UnpaidOnly {
		query = query.Where("unpaid > 0")
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination != nil {
		params.Pagination.Validate()
		query = query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage)
	}
	err := query.
		Preload("Customer").
		Preload("Lines").
		Order("bill_number DESC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) ListUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Bill, error) {
	var bills []entity.Bill
	err := conn(ctx, r.db).
		Scopes(OutletScope(ctx)).
		Where("customer_id = ? AND unpaid > 0", customerID).
		Order("bill_number ASC").
		Find(&bills).Error
	return bills, err
}

func (r *billRepository) ReduceUnpaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Bill{}).
		Where("id = ? AND unpaid >= ?", id, amount).
		Updates(map[string]interface{}{
			"unpaid":     gorm.Expr("unpaid - ?", amount),
			"updated_at": time.Now(),
		})
	return result.RowsAffected == 1, result.Error
}
