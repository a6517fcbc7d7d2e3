package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is identified by phone within an outlet and carries the
// outstanding balance across all of its bills
type Customer struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OutletID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customer_outlet_phone" json:"outlet_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Phone     string          `gorm:"size:50;not null;uniqueIndex:idx_customer_outlet_phone" json:"phone"`
	Email     *string         `gorm:"size:255" json:"email,omitempty"`
	DueAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;check:due_amount >= 0" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MarshalJSON renders the due amount as a decimal rounded to cents
func (c Customer) MarshalJSON() ([]byte, error) {
	type Alias Customer
	return json.Marshal(&struct {
		Alias
		DueAmount float64 `json:"due_amount"`
	}{
		Alias:     Alias(c),
		DueAmount: money.Float(c.DueAmount),
	})
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// DuePayment records money received against a customer's due balance
type DuePayment struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OutletID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"outlet_id"`
	CustomerID uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	Amount     decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"-"`
	Method     enum.PaymentMethod `gorm:"size:20;not null" json:"method"`
	ReceivedBy uuid.UUID          `gorm:"type:uuid;not null" json:"received_by"`
	Notes      *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time          `gorm:"index" json:"created_at"`
}

// MarshalJSON renders the amount as a decimal rounded to cents
func (p DuePayment) MarshalJSON() ([]byte, error) {
	type Alias DuePayment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: money.Float(p.Amount),
	})
}

// BeforeCreate generates a UUID before creating a new due payment
func (p *DuePayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DuePayment model
func (DuePayment) TableName() string {
	return "due_payments"
}
