package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"gorm.io/gorm"
)

type outletRepository struct {
	db *gorm.DB
}

// NewOutletRepository creates a new outlet repository
func NewOutletRepository(db *gorm.DB) domainRepo.OutletRepository {
	return &outletRepository{db: db}
}

func (r *outletRepository) Create(ctx context.Context, outlet *entity.Outlet) error {
	return conn(ctx, r.db).Create(outlet).Error
}

func (r *outletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Outlet, error) {
	var outlet entity.Outlet
	err := conn(ctx, r.db).First(&outlet, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &outlet, err
}

func (r *outletRepository) GetBySlug(ctx context.Context, slug string) (*entity.Outlet, error) {
	var outlet entity.Outlet
	err := conn(ctx, r.db).First(&outlet, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &outlet, err
}

func (r *outletRepository) UpdateSettings(ctx context.Context, id uuid.UUID, settings entity.OutletSettings) error {
	return conn(ctx, r.db).Model(&entity.Outlet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"settings": settings, "updated_at": time.Now()}).Error
}
