package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// OrderLineRequest is one line of an order. Prices accept JSON numbers or strings.
type OrderLineRequest struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageRef  *string         `json:"image_ref" binding:"omitempty,max=500"`
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	Channel         enum.Channel       `json:"channel" binding:"required"`
	TableID         *uuid.UUID         `json:"table_id"`
	Lines           []OrderLineRequest `json:"lines"`
	PaymentMethod   enum.PaymentMethod `json:"payment_method"`
	CustomerName    *string            `json:"customer_name" binding:"omitempty,max=255"`
	CustomerPhone   *string            `json:"customer_phone" binding:"omitempty,max=50"`
	Notes           *string            `json:"notes"`
	DeliveryAddress *string            `json:"delivery_address"`
	PickupAt        *time.Time         `json:"pickup_at"`
	DeliveryCharge  decimal.Decimal    `json:"delivery_charge"`
}

// TransitionOrderRequest asks for an order status change
type TransitionOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderFilterRequest represents order filter parameters
type OrderFilterRequest struct {
	Status    string `form:"status"`
	Channel   string `form:"channel"`
	TableID   string `form:"table_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
