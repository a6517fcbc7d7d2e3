package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	if order.Version == 0 {
		order.Version = 1
	}
	return conn(ctx, r.db).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := conn(ctx, r.db).
		Scopes(OutletScope(ctx)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	if len(ids) == 0 {
		return orders, nil
	}
	err := conn(ctx, r.db).
		Scopes(OutletScope(ctx)).
		Preload("Lines").
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByIntentRef(ctx context.Context, ref string) (*entity.Order, error) {
	var order entity.Order
	err := conn(ctx, r.db).
		Scopes(OutletScope(ctx)).
		Preload("Lines").
		First(&order, "payment_intent_ref = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := conn(ctx, r.db).Model(&entity.Order{}).Scopes(OutletScope(ctx))

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Channel != nil {
		query = query.Where("channel = ?", *params.Channel)
	}

	if params.TableID != nil {
		query = query.Where("table_id = ?", *params.TableID)
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

	sortOrder := "DESC"
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	if params.Pagination != nil {
		params.Pagination.Validate()
		query = query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage)
	}
	err := query.
		Preload("Lines").
		Order("created_at " + sortOrder).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) ListActiveByTable(ctx context.Context, tableID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := conn(ctx, r.db).
		Scopes(OutletScope(ctx)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("table_id = ? AND channel = ? AND status IN ?", tableID, enum.ChannelTable, enum.ActiveTableStatuses).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListAwaitingPayment(ctx context.Context, olderThan time.Time, limit int) ([]entity.Order, error) {
	var orders []entity.Order
	query := conn(ctx, r.db).
		Scopes(OutletScope(ctx)).
		Where("channel <> ? AND payment_method = ?", enum.ChannelTable, enum.PaymentMethodOnline).
		Where("status = ? AND payment_status = ?", enum.OrderStatusPending, enum.PaymentStatusPending).
		Where("created_at < ?", olderThan).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&orders).Error
	return orders, err
}

func (r *orderRepository) SetIntentRef(ctx context.Context, id uuid.UUID, ref string) error {
	return conn(ctx, r.db).Model(&entity.Order{}).
		Where("id = ?", id).
		Update("payment_intent_ref", ref).Error
}

func (r *orderRepository) ApplyTransition(ctx context.Context, id uuid.UUID, from enum.OrderStatus, version int, change domainRepo.OrderChange) (bool, error) {
	updates := map[string]interface{}{
		"status":     change.To,
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	}
	if change.PaymentStatus != enum.PaymentStatusNone {
		updates["payment_status"] = change.PaymentStatus
	}

	result := conn(ctx, r.db).Model(&entity.Order{}).
		Where("id = ? AND status = ? AND version = ?", id, from, version).
		Updates(updates)
	return result.RowsAffected == 1, result.Error
}

func (r *orderRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, from, to enum.PaymentStatus) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Order{}).
		Where("id = ? AND payment_status = ?", id, from).
		Updates(map[string]interface{}{
			"payment_status": to,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now(),
		})
	return result.RowsAffected == 1, result.Error
}

func (r *orderRepository) CompleteForBill(ctx context.Context, ids []uuid.UUID, billID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Model(&entity.Order{}).
		Where("id IN ? AND channel = ? AND status IN ?", ids, enum.ChannelTable, enum.ActiveTableStatuses).
		Updates(map[string]interface{}{
			"status":     enum.OrderStatusCompleted,
			"bill_id":    billID,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
