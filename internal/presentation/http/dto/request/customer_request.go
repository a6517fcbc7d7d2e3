package request

import (
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// RecordDuePaymentRequest is money received against a customer's due balance
type RecordDuePaymentRequest struct {
	Amount decimal.Decimal    `json:"amount"`
	Method enum.PaymentMethod `json:"method"`
	Notes  *string            `json:"notes"`
}
