package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores processed bill/order creations so client retries
// replay the first response instead of billing twice
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OutletID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idem_outlet_actor_key"`
	ActorID      string    `gorm:"size:255;not null;uniqueIndex:idx_idem_outlet_actor_key"` // staff user id or client fingerprint
	Key          string    `gorm:"size:255;not null;uniqueIndex:idx_idem_outlet_actor_key"`
	Endpoint     string    `gorm:"size:255;not null"`
	RequestHash  string    `gorm:"size:64;not null"` // SHA256 of the request body
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Matches reports whether a retry carries the same body as the original request
func (i *IdempotencyKey) Matches(requestHash string) bool {
	return i.RequestHash == requestHash
}
