package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/pkg/apperror"
)

type tableRepository struct {
	s *Store
}

func (r *tableRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Table, error) {
	defer r.s.lock(ctx)()

	t, ok := r.s.state.tables[id]
	if !ok || !inScope(ctx, t.OutletID) {
		return nil, nil
	}
	return &t, nil
}

func (r *tableRepository) List(ctx context.Context) ([]entity.Table, error) {
	defer r.s.lock(ctx)()

	var tables []entity.Table
	for _, t := range r.s.state.tables {
		if inScope(ctx, t.OutletID) {
			tables = append(tables, t)
		}
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Label < tables[j].Label })
	return tables, nil
}

type outletRepository struct {
	s *Store
}

func (r *outletRepository) Create(ctx context.Context, outlet *entity.Outlet) error {
	defer r.s.lock(ctx)()

	for _, o := range r.s.state.outlets {
		if o.Slug == outlet.Slug {
			return apperror.NewConflictError("Outlet slug already taken")
		}
	}
	if outlet.ID == uuid.Nil {
		outlet.ID = uuid.New()
	}
	now := time.Now()
	outlet.CreatedAt = now
	outlet.UpdatedAt = now
	r.s.state.outlets[outlet.ID] = *outlet
	return nil
}

func (r *outletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Outlet, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.state.outlets[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *outletRepository) GetBySlug(ctx context.Context, slug string) (*entity.Outlet, error) {
	defer r.s.lock(ctx)()

	for _, o := range r.s.state.outlets {
		if o.Slug == slug {
			return &o, nil
		}
	}
	return nil, nil
}

func (r *outletRepository) UpdateSettings(ctx context.Context, id uuid.UUID, settings entity.OutletSettings) error {
	defer r.s.lock(ctx)()

	o, ok := r.s.state.outlets[id]
	if !ok {
		return nil
	}
	o.Settings = settings
	o.UpdatedAt = time.Now()
	r.s.state.outlets[id] = o
	return nil
}

type idempotencyRepository struct {
	s *Store
}

func idempotencyKey(outletID uuid.UUID, actorID, key string) string {
	return outletID.String() + "|" + actorID + "|" + key
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, outletID uuid.UUID, actorID, key string) (*entity.IdempotencyKey, error) {
	defer r.s.lock(ctx)()

	ikey, ok := r.s.state.idempotency[idempotencyKey(outletID, actorID, key)]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	defer r.s.lock(ctx)()

	k := idempotencyKey(ikey.OutletID, ikey.ActorID, ikey.Key)
	if _, ok := r.s.state.idempotency[k]; ok {
		return false, nil
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = time.Now()
	r.s.state.idempotency[k] = *ikey
	return true, nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	defer r.s.lock(ctx)()

	var n int64
	for k, ikey := range r.s.state.idempotency {
		if ikey.IsExpired() {
			delete(r.s.state.idempotency, k)
			n++
		}
	}
	return n, nil
}
