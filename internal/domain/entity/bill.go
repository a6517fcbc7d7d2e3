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

// Bill is the financial record produced by consolidating orders. Apart from
// Unpaid, which only due payments reduce, it is never modified after creation.
type Bill struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OutletID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"outlet_id"`
	BillNumber     int64              `gorm:"not null;uniqueIndex" json:"bill_number"`
	DiscountType   enum.DiscountType  `gorm:"not null;default:0" json:"discount_type"`
	DiscountValue  decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	DiscountAmount decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	Subtotal       decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	TaxPercent     decimal.Decimal    `gorm:"type:numeric(6,3);not null;default:0" json:"-"`
	TaxAmount      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	Total          decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	AmountPaid     decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	ChangeGiven    decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	Unpaid         decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0;index" json:"-"`
	PaymentMethod  enum.PaymentMethod `gorm:"size:20;not null" json:"payment_method"`
	CustomerID     *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CreatedBy      uuid.UUID          `gorm:"type:uuid;not null" json:"created_by"`
	SourceOrderIDs []uuid.UUID        `gorm:"type:jsonb;serializer:json" json:"source_order_ids"`
	CreatedAt      time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`

	// Relationships
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Lines    []BillLine `gorm:"foreignKey:BillID" json:"lines"`
}

// MarshalJSON renders money fields as decimals rounded to cents
func (b Bill) MarshalJSON() ([]byte, error) {
	type Alias Bill
	return json.Marshal(&struct {
		Alias
		DiscountValue  float64 `json:"discount_value"`
		DiscountAmount float64 `json:"discount_amount"`
		Subtotal       float64 `json:"subtotal"`
		TaxPercent     float64 `json:"tax_percent"`
		TaxAmount      float64 `json:"tax_amount"`
		Total          float64 `json:"total"`
		AmountPaid     float64 `json:"amount_paid"`
		ChangeGiven    float64 `json:"change"`
		Unpaid         float64 `json:"unpaid"`
	}{
		Alias:          Alias(b),
		DiscountValue:  money.Float(b.DiscountValue),
		DiscountAmount: money.Float(b.DiscountAmount),
		Subtotal:       money.Float(b.Subtotal),
		TaxPercent:     b.TaxPercent.InexactFloat64(),
		TaxAmount:      money.Float(b.TaxAmount),
		Total:          money.Float(b.Total),
		AmountPaid:     money.Float(b.AmountPaid),
		ChangeGiven:    money.Float(b.ChangeGiven),
		Unpaid:         money.Float(b.Unpaid),
	})
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// ApplyBreakdown copies calculator output onto the bill
func (b *Bill) ApplyBreakdown(br money.Breakdown) {
	b.Subtotal = br.Subtotal
	b.DiscountAmount = br.DiscountAmount
	b.TaxAmount = br.TaxAmount
	b.Total = br.Total
	b.AmountPaid = br.AmountPaid
	b.ChangeGiven = br.Change
	b.Unpaid = br.Unpaid
}

// BillLine is one snapshot line of a bill
type BillLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"-"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"-"`
}

// MarshalJSON renders money fields as decimals rounded to cents
func (l BillLine) MarshalJSON() ([]byte, error) {
	type Alias BillLine
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(l),
		UnitPrice: money.Float(l.UnitPrice),
		Total:     money.Float(l.Total),
	})
}

// BeforeCreate generates a UUID before creating a new bill line
func (l *BillLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillLine model
func (BillLine) TableName() string {
	return "bill_lines"
}
