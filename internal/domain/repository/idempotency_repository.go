package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves a stored response for the outlet, actor and key
	GetByKey(ctx context.Context, outletID uuid.UUID, actorID, key string) (*entity.IdempotencyKey, error)
	// Create stores a new idempotency key. stored is false when a concurrent
	// request already stored the same key.
	Create(ctx context.Context, ikey *entity.IdempotencyKey) (stored bool, err error)
	// DeleteExpired removes expired keys and returns how many were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
