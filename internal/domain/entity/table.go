package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Table is a physical dining table. Table management owns writes to it.
type Table struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OutletID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"outlet_id"`
	Label     string           `gorm:"size:50;not null" json:"label"`
	Capacity  int              `gorm:"not null;default:2" json:"capacity"`
	Location  string           `gorm:"size:100" json:"location"`
	Status    enum.TableStatus `gorm:"size:20;not null;default:'available'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new table
func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Table model
func (Table) TableName() string {
	return "dining_tables"
}
