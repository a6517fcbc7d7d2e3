package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Outlet is one restaurant. Every order, bill, table and customer belongs to exactly one.
type Outlet struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	Settings  OutletSettings `gorm:"type:jsonb;serializer:json" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new outlet
func (o *Outlet) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Outlet model
func (Outlet) TableName() string {
	return "outlets"
}

// OutletSettings holds per-outlet billing and receipt configuration
type OutletSettings struct {
	Currency          string           `json:"currency,omitempty"`
	DefaultTaxPercent *decimal.Decimal `json:"default_tax_percent,omitempty"`
	TaxLabel          string           `json:"tax_label,omitempty"`
	Address           string           `json:"address,omitempty"`
	Phone             string           `json:"phone,omitempty"`
	TaxID             string           `json:"tax_id,omitempty"`
	ReceiptFooter     string           `json:"receipt_footer,omitempty"`
}

// Scan implements the sql.Scanner interface for OutletSettings
func (s *OutletSettings) Scan(value interface{}) error {
	if value == nil {
		*s = OutletSettings{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan OutletSettings: unsupported type")
	}

	return json.Unmarshal(bytes, s)
}

// Value implements the driver.Valuer interface for OutletSettings
func (s OutletSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// TaxPercent returns the configured default tax, falling back to fallback
func (s OutletSettings) TaxPercent(fallback decimal.Decimal) decimal.Decimal {
	if s.DefaultTaxPercent == nil {
		return fallback
	}
	return *s.DefaultTaxPercent
}

// ReceiptHeader builds the printable header for this outlet
func (o *Outlet) ReceiptHeader() ReceiptHeader {
	return ReceiptHeader{
		StoreName: o.Name,
		Address:   o.Settings.Address,
		Phone:     o.Settings.Phone,
		TaxID:     o.Settings.TaxID,
	}
}
