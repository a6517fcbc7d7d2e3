package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
)

// TableRepository is read-only here; tables are managed elsewhere
type TableRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Table, error)
	List(ctx context.Context) ([]entity.Table, error)
}

// OutletRepository defines the interface for outlet lookups
type OutletRepository interface {
	Create(ctx context.Context, outlet *entity.Outlet) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Outlet, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Outlet, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, settings entity.OutletSettings) error
}
