package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
)

type orderRepository struct {
	s *Store
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	defer r.s.lock(ctx)()

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Version == 0 {
		order.Version = 1
	}
	for i := range order.Lines {
		if order.Lines[i].ID == uuid.Nil {
			order.Lines[i].ID = uuid.New()
		}
		order.Lines[i].OrderID = order.ID
		order.Lines[i].CreatedAt = now
	}

	r.s.state.orders[order.ID] = cloneOrder(*order)
	r.s.state.orderSeq = append(r.s.state.orderSeq, order.ID)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.state.orders[id]
	if !ok || !inScope(ctx, o.OutletID) {
		return nil, nil
	}
	cp := cloneOrder(o)
	return &cp, nil
}

func (r *orderRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error) {
	defer r.s.lock(ctx)()

	orders := make([]entity.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.s.state.orders[id]; ok && inScope(ctx, o.OutletID) {
			orders = append(orders, cloneOrder(o))
		}
	}
	return orders, nil
}

func (r *orderRepository) GetByIntentRef(ctx context.Context, ref string) (*entity.Order, error) {
	defer r.s.lock(ctx)()

	for _, o := range r.s.state.orders {
		if o.PaymentIntentRef != nil && *o.PaymentIntentRef == ref && inScope(ctx, o.OutletID) {
			cp := cloneOrder(o)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	defer r.s.lock(ctx)()

	var matched []entity.Order
	for _, id := range r.s.state.orderSeq {
		o := r.s.state.orders[id]
		if !inScope(ctx, o.OutletID) || !matchOrder(o, params) {
			continue
		}
		matched = append(matched, o)
	}

	if params.SortOrder != "asc" && params.SortOrder != "ASC" {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	total := int64(len(matched))
	if params.Pagination != nil {
		params.Pagination.Validate()
		start, end := window(len(matched), params.Pagination.Offset(), params.Pagination.PerPage)
		matched = matched[start:end]
	}

	orders := make([]entity.Order, len(matched))
	for i, o := range matched {
		orders[i] = cloneOrder(o)
	}
	return orders, total, nil
}

func matchOrder(o entity.Order, params *domainRepo.OrderFilterParams) bool {
	if params.Status != nil && o.Status != *params.Status {
		return false
	}
	if params.Channel != nil && o.Channel != *params.Channel {
		return false
	}
	if params.TableID != nil && (o.TableID == nil || *o.TableID != *params.TableID) {
		return false
	}
	if params.StartDate != nil && o.CreatedAt.Before(*params.StartDate) {
		return false
	}
	if params.EndDate != nil && o.CreatedAt.After(*params.EndDate) {
		return false
	}
	return true
}

func (r *orderRepository) ListActiveByTable(ctx context.Context, tableID uuid.UUID) ([]entity.Order, error) {
	defer r.s.lock(ctx)()

	var orders []entity.Order
	for _, id := range r.s.state.orderSeq {
		o := r.s.state.orders[id]
		if !inScope(ctx, o.OutletID) || o.Channel != enum.ChannelTable || !o.Status.IsActive() {
			continue
		}
		if o.TableID != nil && *o.TableID == tableID {
			orders = append(orders, cloneOrder(o))
		}
	}
	return orders, nil
}

func (r *orderRepository) ListAwaitingPayment(ctx context.Context, olderThan time.Time, limit int) ([]entity.Order, error) {
	defer r.s.lock(ctx)()

	var orders []entity.Order
	for _, id := range r.s.state.orderSeq {
		o := r.s.state.orders[id]
		if !inScope(ctx, o.OutletID) || !o.IsOnline() {
			continue
		}
		if o.Status != enum.OrderStatusPending || o.PaymentStatus != enum.PaymentStatusPending {
			continue
		}
		if o.CreatedAt.Before(olderThan) {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r *orderRepository) SetIntentRef(ctx context.Context, id uuid.UUID, ref string) error {
	defer r.s.lock(ctx)()

	o, ok := r.s.state.orders[id]
	if !ok {
		return nil
	}
	o.PaymentIntentRef = &ref
	o.UpdatedAt = time.Now()
	r.s.state.orders[id] = o
	return nil
}

func (r *orderRepository) ApplyTransition(ctx context.Context, id uuid.UUID, from enum.OrderStatus, version int, change domainRepo.OrderChange) (bool, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.state.orders[id]
	if !ok || o.Status != from || o.Version != version {
		return false, nil
	}
	o.Status = change.To
	if change.PaymentStatus != enum.PaymentStatusNone {
		o.PaymentStatus = change.PaymentStatus
	}
	o.Version++
	o.UpdatedAt = time.Now()
	r.s.state.orders[id] = o
	return true, nil
}

func (r *orderRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, from, to enum.PaymentStatus) (bool, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.state.orders[id]
	if !ok || o.PaymentStatus != from {
		return false, nil
	}
	o.PaymentStatus = to
	o.Version++
	o.UpdatedAt = time.Now()
	r.s.state.orders[id] = o
	return true, nil
}

func (r *orderRepository) CompleteForBill(ctx context.Context, ids []uuid.UUID, billID uuid.UUID) (int64, error) {
	defer r.s.lock(ctx)()

	var affected int64
	now := time.Now()
	for _, id := range ids {
		o, ok := r.s.state.orders[id]
		if !ok || o.Channel != enum.ChannelTable || !o.Status.IsActive() {
			continue
		}
		o.Status = enum.OrderStatusCompleted
		o.BillID = &billID
		o.Version++
		o.UpdatedAt = now
		r.s.state.orders[id] = o
		affected++
	}
	return affected, nil
}
