// Package memory is a process-local Store with the same conditional-write
// contracts as the gorm repositories. It backs STORAGE_DRIVER=memory and the
// service tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
)

type txKey struct{}

// Store holds every aggregate behind one mutex. A transaction holds the
// mutex for its whole duration and restores a snapshot on error.
type Store struct {
	mu      sync.Mutex
	state   *state
	billSeq int64
}

type state struct {
	outlets     map[uuid.UUID]entity.Outlet
	tables      map[uuid.UUID]entity.Table
	orders      map[uuid.UUID]entity.Order
	orderSeq    []uuid.UUID
	bills       map[uuid.UUID]entity.Bill
	customers   map[uuid.UUID]entity.Customer
	duePayments []entity.DuePayment
	idempotency map[string]entity.IdempotencyKey
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{state: &state{
		outlets:     make(map[uuid.UUID]entity.Outlet),
		tables:      make(map[uuid.UUID]entity.Table),
		orders:      make(map[uuid.UUID]entity.Order),
		bills:       make(map[uuid.UUID]entity.Bill),
		customers:   make(map[uuid.UUID]entity.Customer),
		idempotency: make(map[string]entity.IdempotencyKey),
	}}
}

// WithinTransaction implements repository.Transactor
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock returns the unlock func; inside a transaction the mutex is already held
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Orders returns the order repository
func (s *Store) Orders() domainRepo.OrderRepository { return &orderRepository{s: s} }

// Bills returns the bill repository
func (s *Store) Bills() domainRepo.BillRepository { return &billRepository{s: s} }

// Customers returns the customer repository
func (s *Store) Customers() domainRepo.CustomerRepository { return &customerRepository{s: s} }

// DuePayments returns the due payment repository
func (s *Store) DuePayments() domainRepo.DuePaymentRepository { return &duePaymentRepository{s: s} }

// Tables returns the table repository
func (s *Store) Tables() domainRepo.TableRepository { return &tableRepository{s: s} }

// Outlets returns the outlet repository
func (s *Store) Outlets() domainRepo.OutletRepository { return &outletRepository{s: s} }

// Idempotency returns the idempotency key repository
func (s *Store) Idempotency() domainRepo.IdempotencyRepository { return &idempotencyRepository{s: s} }

// PutTable inserts or replaces a table. Table management lives outside this
// service, so this is the only write path for tables.
func (s *Store) PutTable(t entity.Table) entity.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.state.tables[t.ID] = t
	return t
}

// inScope mirrors the gorm outlet scope: no outlet in context matches nothing
func inScope(ctx context.Context, outletID uuid.UUID) bool {
	if domainRepo.SkipOutletScope(ctx) {
		return true
	}
	id, ok := domainRepo.GetOutletID(ctx)
	return ok && id == outletID
}

func (st *state) clone() *state {
	cp := &state{
		outlets:     make(map[uuid.UUID]entity.Outlet, len(st.outlets)),
		tables:      make(map[uuid.UUID]entity.Table, len(st.tables)),
		orders:      make(map[uuid.UUID]entity.Order, len(st.orders)),
		orderSeq:    append([]uuid.UUID(nil), st.orderSeq...),
		bills:       make(map[uuid.UUID]entity.Bill, len(st.bills)),
		customers:   make(map[uuid.UUID]entity.Customer, len(st.customers)),
		duePayments: append([]entity.DuePayment(nil), st.duePayments...),
		idempotency: make(map[string]entity.IdempotencyKey, len(st.idempotency)),
	}
	for k, v := range st.outlets {
		cp.outlets[k] = v
	}
	for k, v := range st.tables {
		cp.tables[k] = v
	}
	for k, v := range st.orders {
		cp.orders[k] = cloneOrder(v)
	}
	for k, v := range st.bills {
		cp.bills[k] = cloneBill(v)
	}
	for k, v := range st.customers {
		cp.customers[k] = v
	}
	for k, v := range st.idempotency {
		cp.idempotency[k] = v
	}
	return cp
}

func cloneOrder(o entity.Order) entity.Order {
	o.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return o
}

func cloneBill(b entity.Bill) entity.Bill {
	b.Lines = append([]entity.BillLine(nil), b.Lines...)
	b.SourceOrderIDs = append([]uuid.UUID(nil), b.SourceOrderIDs...)
	b.Customer = nil
	return b
}

// window applies offset/limit to n items
func window(n, offset, limit int) (int, int) {
	if offset > n {
		offset = n
	}
	end := offset + limit
	if limit <= 0 || end > n {
		end = n
	}
	return offset, end
}
