package entity

// ReceiptHeader holds the outlet header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// Receipt is a printable view of a Bill. It is composed at print time and
// never stored; amounts are pre-formatted to two decimals.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	BillNo        string        `json:"bill_no"`
	Date          string        `json:"date"`
	Cashier       string        `json:"cashier,omitempty"`
	Customer      string        `json:"customer,omitempty"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Items         []ReceiptItem `json:"items"`
	SubTotal      string        `json:"sub_total"`
	Discount      string        `json:"discount"`
	TaxLabel      string        `json:"tax_label"`
	Tax           string        `json:"tax"`
	Total         string        `json:"total"`
	Paid          string        `json:"paid"`
	Change        string        `json:"change"`
	Due           string        `json:"due"`
	Footer        string        `json:"footer,omitempty"`
}
