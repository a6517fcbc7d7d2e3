package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

type customerRepository struct {
	s *Store
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	defer r.s.lock(ctx)()

	c, ok := r.s.state.customers[id]
	if !ok || !inScope(ctx, c.OutletID) {
		return nil, nil
	}
	return &c, nil
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	defer r.s.lock(ctx)()

	return r.byPhone(ctx, phone), nil
}

func (r *customerRepository) byPhone(ctx context.Context, phone string) *entity.Customer {
	outletID, ok := domainRepo.GetOutletID(ctx)
	if !ok {
		return nil
	}
	for _, c := range r.s.state.customers {
		if c.OutletID == outletID && c.Phone == phone {
			return &c
		}
	}
	return nil
}

func (r *customerRepository) FindOrCreateByPhone(ctx context.Context, name, phone string) (*entity.Customer, error) {
	defer r.s.lock(ctx)()

	if c := r.byPhone(ctx, phone); c != nil {
		return c, nil
	}
	outletID, ok := domainRepo.GetOutletID(ctx)
	if !ok {
		return nil, domainRepo.ErrOutletScopeMissing
	}

	now := time.Now()
	c := entity.Customer{
		ID:        uuid.New(),
		OutletID:  outletID,
		Name:      name,
		Phone:     phone,
		DueAmount: decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.state.customers[c.ID] = c
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	defer r.s.lock(ctx)()

	search = strings.ToLower(search)
	var customers []entity.Customer
	for _, c := range r.s.state.customers {
		if !inScope(ctx, c.OutletID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(c.Phone, search) {
			continue
		}
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })

	total := int64(len(customers))
	params.Validate()
	start, end := window(len(customers), params.Offset(), params.PerPage)
	return customers[start:end], total, nil
}

func (r *customerRepository) IncrementDue(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	defer r.s.lock(ctx)()

	c, ok := r.s.state.customers[id]
	if !ok {
		return domainRepo.ErrCustomerNotFound
	}
	c.DueAmount = c.DueAmount.Add(amount)
	c.UpdatedAt = time.Now()
	r.s.state.customers[id] = c
	return nil
}

func (r *customerRepository) DecrementDue(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	defer r.s.lock(ctx)()

	c, ok := r.s.state.customers[id]
	if !ok || c.DueAmount.LessThan(amount) {
		return false, nil
	}
	c.DueAmount = c.DueAmount.Sub(amount)
	c.UpdatedAt = time.Now()
	r.s.state.customers[id] = c
	return true, nil
}

type duePaymentRepository struct {
	s *Store
}

func (r *duePaymentRepository) Create(ctx context.Context, payment *entity.DuePayment) error {
	defer r.s.lock(ctx)()

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	r.s.state.duePayments = append(r.s.state.duePayments, *payment)
	return nil
}

func (r *duePaymentRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) ([]entity.DuePayment, int64, error) {
	defer r.s.lock(ctx)()

	var payments []entity.DuePayment
	for i := len(r.s.state.duePayments) - 1; i >= 0; i-- {
		p := r.s.state.duePayments[i]
		if p.CustomerID == customerID && inScope(ctx, p.OutletID) {
			payments = append(payments, p)
		}
	}

	total := int64(len(payments))
	params.Validate()
	start, end := window(len(payments), params.Offset(), params.PerPage)
	return payments[start:end], total, nil
}
