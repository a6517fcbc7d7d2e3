package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type billRepository struct {
	s *Store
}

// NextBillNumber is never rolled back, so aborted bills leave gaps
func (r *billRepository) NextBillNumber(ctx context.Context) (int64, error) {
	defer r.s.lock(ctx)()

	r.s.billSeq++
	return r.s.billSeq, nil
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	defer r.s.lock(ctx)()

	now := time.Now()
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	bill.CreatedAt = now
	bill.UpdatedAt = now
	for i := range bill.Lines {
		if bill.Lines[i].ID == uuid.Nil {
			bill.Lines[i].ID = uuid.New()
		}
		bill.Lines[i].BillID = bill.ID
	}

	r.s.state.bills[bill.ID] = cloneBill(*bill)
	return nil
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	defer r.s.lock(ctx)()

	b, ok := r.s.state.bills[id]
	if !ok || !inScope(ctx, b.OutletID) {
		return nil, nil
	}
	cp := r.withCustomer(b)
	return &cp, nil
}

func (r *billRepository) withCustomer(b entity.Bill) entity.Bill {
	cp := cloneBill(b)
	if b.CustomerID != nil {
		if c, ok := r.s.state.customers[*b.CustomerID]; ok {
			cp.Customer = &c
		}
	}
	return cp
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	defer r.s.lock(ctx)()

	var matched []entity.Bill
	for _, b := range r.s.state.bills {
		if !inScope(ctx, b.OutletID) || !matchBill(b, params) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].BillNumber > matched[j].BillNumber })

	total := int64(len(matched))
	if params.Pagination != nil {
		params.Pagination.Validate()
		start, end := window(len(matched), params.Pagination.Offset(), params.Pagination.PerPage)
		matched = matched[start:end]
	}

	bills := make([]entity.Bill, len(matched))
	for i, b := range matched {
		bills[i] = r.withCustomer(b)
	}
	return bills, total, nil
}

func matchBill(b entity.Bill, params *domainRepo.BillFilterParams) bool {
	if params.CustomerID != nil && (b.CustomerID == nil || *b.CustomerID != *params.CustomerID) {
		return false
	}
	if params.UnpaidOnly && !b.Unpaid.IsPositive() {
		return false
	}
	if params.StartDate != nil && b.CreatedAt.Before(*params.StartDate) {
		return false
	}
	if params.EndDate != nil && b.CreatedAt.After(*params.EndDate) {
		return false
	}
	return true
}

func (r *billRepository) ListUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Bill, error) {
	defer r.s.lock(ctx)()

	var bills []entity.Bill
	for _, b := range r.s.state.bills {
		if inScope(ctx, b.OutletID) && b.CustomerID != nil && *b.CustomerID == customerID && b.Unpaid.IsPositive() {
			bills = append(bills, cloneBill(b))
		}
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].BillNumber < bills[j].BillNumber })
	return bills, nil
}

func (r *billRepository) ReduceUnpaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	defer r.s.lock(ctx)()

	b, ok := r.s.state.bills[id]
	if !ok || b.Unpaid.LessThan(amount) {
		return false, nil
	}
	b.Unpaid = b.Unpaid.Sub(amount)
	b.UpdatedAt = time.Now()
	r.s.state.bills[id] = b
	return true, nil
}
