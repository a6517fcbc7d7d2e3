package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/lifecycle"
	"github.com/sangkips/tableside-api/internal/domain/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a table, pickup or delivery order. Lines are a price/name snapshot
// taken at order time and are never joined to the live menu.
type Order struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OutletID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"outlet_id"`
	TableID          *uuid.UUID         `gorm:"type:uuid;index" json:"table_id,omitempty"`
	Channel          enum.Channel       `gorm:"size:20;not null;index" json:"channel"`
	Status           enum.OrderStatus   `gorm:"not null;default:0;index" json:"status"`
	PaymentMethod    enum.PaymentMethod `gorm:"size:20" json:"payment_method,omitempty"`
	PaymentStatus    enum.PaymentStatus `gorm:"size:20" json:"payment_status,omitempty"`
	PaymentIntentRef *string            `gorm:"size:255;index" json:"payment_intent_ref,omitempty"`
	CustomerName     *string            `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone    *string            `gorm:"size:50" json:"customer_phone,omitempty"`
	Notes            *string            `gorm:"type:text" json:"notes,omitempty"`
	DeliveryAddress  *string            `gorm:"type:text" json:"delivery_address,omitempty"`
	PickupAt         *time.Time         `json:"pickup_at,omitempty"`
	DeliveryCharge   decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	TotalAmount      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"-"`
	BillID           *uuid.UUID         `gorm:"type:uuid;index" json:"bill_id,omitempty"`
	PlacedBy         *uuid.UUID         `gorm:"type:uuid" json:"placed_by,omitempty"`
	Version          int                `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Relationships
	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines"`
}

// MarshalJSON renders money fields as decimals rounded to cents
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		DeliveryCharge float64 `json:"delivery_charge"`
		TotalAmount    float64 `json:"total_amount"`
	}{
		Alias:          Alias(o),
		DeliveryCharge: money.Float(o.DeliveryCharge),
		TotalAmount:    money.Float(o.TotalAmount),
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Subject exposes the fields the state machine decides on
func (o *Order) Subject() lifecycle.Subject {
	return lifecycle.Subject{
		Channel:       o.Channel,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Status:        o.Status,
	}
}

// MoneyLines converts the order lines for the calculator
func (o *Order) MoneyLines() []money.Line {
	lines := make([]money.Line, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = money.Line{Price: l.UnitPrice, Quantity: l.Quantity}
	}
	return lines
}

// ComputeTotal returns the line sum plus the delivery charge
func (o *Order) ComputeTotal() decimal.Decimal {
	return money.Subtotal(o.MoneyLines()).Add(o.DeliveryCharge)
}

// IsOnline reports whether the order is settled through the payment provider
func (o *Order) IsOnline() bool {
	return o.Channel != enum.ChannelTable && o.PaymentMethod == enum.PaymentMethodOnline
}

// OrderLine is one snapshot line of an order
type OrderLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"-"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	ImageRef  *string         `gorm:"size:500" json:"image_ref,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// MarshalJSON renders money fields as decimals rounded to cents
func (l OrderLine) MarshalJSON() ([]byte, error) {
	type Alias OrderLine
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(l),
		UnitPrice: money.Float(l.UnitPrice),
		Total:     money.Float(l.Total()),
	})
}

// Total is unit price x quantity
func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// BeforeCreate generates a UUID before creating a new order line
func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}
