package request

import "github.com/shopspring/decimal"

// UpdateSettingsRequest replaces the billing and receipt settings of an outlet
type UpdateSettingsRequest struct {
	Currency          string           `json:"currency"`
	DefaultTaxPercent *decimal.Decimal `json:"default_tax_percent"`
	TaxLabel          string           `json:"tax_label"`
	Address           string           `json:"address"`
	Phone             string           `json:"phone"`
	TaxID             string           `json:"tax_id"`
	ReceiptFooter     string           `json:"receipt_footer"`
}
