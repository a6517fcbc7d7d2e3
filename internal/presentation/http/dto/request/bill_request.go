package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// BillLineRequest is a manual line added at the till
type BillLineRequest struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// BillCustomerRequest names the customer a bill is charged to
type BillCustomerRequest struct {
	Name  string `json:"name" binding:"max=255"`
	Phone string `json:"phone" binding:"max=50"`
}

// CreateBillRequest represents a bill creation or preview request.
// An absent tax_percent uses the outlet default.
type CreateBillRequest struct {
	OrderIDs      []uuid.UUID          `json:"order_ids"`
	Lines         []BillLineRequest    `json:"lines"`
	Customer      *BillCustomerRequest `json:"customer"`
	DiscountType  enum.DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal      `json:"discount_value"`
	TaxPercent    *decimal.Decimal     `json:"tax_percent"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	PaymentMethod enum.PaymentMethod   `json:"payment_method"`
}
