package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(OutletScope(ctx)).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(OutletScope(ctx)).First(&customer, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

// FindOrCreateByPhone inserts with ON CONFLICT DO NOTHING so two cashiers
// billing the same new phone end up with one customer row
func (r *customerRepository) FindOrCreateByPhone(ctx context.Context, name, phone string) (*entity.Customer, error) {
	outletID, ok := domainRepo.GetOutletID(ctx)
	if !ok {
		return nil, domainRepo.ErrOutletScopeMissing
	}

	customer := &entity.Customer{
		OutletID:  outletID,
		Name:      name,
		Phone:     phone,
		DueAmount: decimal.Zero,
	}
	err := conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outlet_id"}, {Name: "phone"}},
			DoNothing: true,
		}).
		Create(customer).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPhone(ctx, phone)
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := conn(ctx, r.db).Model(&entity.Customer{}).Scopes(OutletScope(ctx))

	if search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&customers).Error

	return customers, total, err
}

func (r *customerRepository) IncrementDue(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result := conn(ctx, r.db).Model(&entity.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"due_amount": gorm.Expr("due_amount + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) DecrementDue(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Customer{}).
		Where("id = ? AND due_amount >= ?", id, amount).
		Updates(map[string]interface{}{
			"due_amount": gorm.Expr("due_amount - ?", amount),
			"updated_at": time.Now(),
		})
	return result.RowsAffected == 1, result.Error
}

type duePaymentRepository struct {
	db *gorm.DB
}

// NewDuePaymentRepository creates a new due payment repository
func NewDuePaymentRepository(db *gorm.DB) domainRepo.DuePaymentRepository {
	return &duePaymentRepository{db: db}
}

func (r *duePaymentRepository) Create(ctx context.Context, payment *entity.DuePayment) error {
	return conn(ctx, r.db).Create(payment).Error
}

func (r *duePaymentRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) ([]entity.DuePayment, int64, error) {
	var payments []entity.DuePayment
	var total int64

	query := conn(ctx, r.db).Model(&entity.DuePayment{}).
		Scopes(OutletScope(ctx)).
		Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&payments).Error

	return payments, total, err
}
