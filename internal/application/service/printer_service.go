package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/money"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/sangkips/tableside-api/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	bills       repository.BillRepository
	outlets     repository.OutletRepository
	printerType string
	width       int
	log         *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	bills repository.BillRepository,
	outlets repository.OutletRepository,
	printerType string,
	width int,
	log *zap.Logger,
) *PrinterService {
	if width <= 0 {
		width = printer.Width58mm
	}
	return &PrinterService{
		printer:     p,
		bills:       bills,
		outlets:     outlets,
		printerType: printerType,
		width:       width,
		log:         log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != printer.TypeNone && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:   entity.ReceiptHeader{StoreName: "PRINTER TEST"},
		BillNo:   "TEST-001",
		Date:     time.Now().Format("2006-01-02 15:04"),
		Cashier:  "System",
		Items:    []entity.ReceiptItem{{Name: "Test Item", Quantity: 2, UnitPrice: "5.00", Total: "10.00"}},
		SubTotal: "10.00",
		Discount: "0.00",
		TaxLabel: "Tax",
		Tax:      "0.00",
		Total:    "10.00",
		Paid:     "10.00",
		Change:   "0.00",
		Due:      "0.00",
	}

	if err := s.printer.Print(ctx, s.FormatReceipt(receipt)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// BuildReceipt composes the printable view of a bill under the outlet header
func (s *PrinterService) BuildReceipt(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	outlet, err := s.outlets.GetByID(ctx, bill.OutletID)
	if err != nil {
		return nil, err
	}
	return ReceiptFor(bill, outlet), nil
}

// PrintBill prints the receipt of a bill. The receipt is returned even when
// the printer fails so the client can fall back to rendering it.
func (s *PrinterService) PrintBill(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.BuildReceipt(ctx, billID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, s.FormatReceipt(receipt)); err != nil {
		s.log.Warn("receipt print failed", zap.String("bill_id", billID.String()), zap.Error(err))
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// ReceiptFor converts a bill into a Receipt. outlet may be nil.
func ReceiptFor(bill *entity.Bill, outlet *entity.Outlet) *entity.Receipt {
	receipt := &entity.Receipt{
		BillNo:        strconv.FormatInt(bill.BillNumber, 10),
		Date:          bill.CreatedAt.Format("2006-01-02 15:04"),
		PaymentMethod: bill.PaymentMethod.String(),
		SubTotal:      amount(bill.Subtotal),
		Discount:      amount(bill.DiscountAmount),
		TaxLabel:      "Tax",
		Tax:           amount(bill.TaxAmount),
		Total:         amount(bill.Total),
		Paid:          amount(bill.AmountPaid),
		Change:        amount(bill.ChangeGiven),
		Due:           amount(bill.Unpaid),
	}
	if outlet != nil {
		receipt.Header = outlet.ReceiptHeader()
		receipt.Footer = outlet.Settings.ReceiptFooter
		if outlet.Settings.TaxLabel != "" {
			receipt.TaxLabel = outlet.Settings.TaxLabel
		}
	}
	if bill.TaxPercent.IsPositive() {
		receipt.TaxLabel = fmt.Sprintf("%s %s%%", receipt.TaxLabel, bill.TaxPercent.String())
	}
	if bill.Customer != nil {
		receipt.Customer = bill.Customer.Name
	}

	for _, l := range bill.Lines {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: amount(l.UnitPrice),
			Total:     amount(l.Total),
		})
	}
	return receipt
}

func amount(d decimal.Decimal) string {
	return money.Round(d).StringFixed(money.Scale)
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func (s *PrinterService) FormatReceipt(r *entity.Receipt) []byte {
	doc := printer.NewDocument(s.width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.TextF("Tax ID: %s", r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	// Bill info
	doc.KeyValue("Bill:", r.BillNo).
		KeyValue("Date:", r.Date)

	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.PaymentMethod != "" {
		doc.KeyValue("Payment:", r.PaymentMethod)
	}

	doc.Separator('-')

	// Items
	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total)
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	// Totals
	doc.KeyValue("Subtotal:", r.SubTotal)
	if r.Discount != "" && r.Discount != "0.00" {
		doc.KeyValue("Discount:", "-"+r.Discount)
	}
	if r.Tax != "" && r.Tax != "0.00" {
		doc.KeyValue(r.TaxLabel+":", r.Tax)
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", r.Total).
		SetBold(false)

	doc.KeyValue("Paid:", r.Paid)
	if r.Change != "" && r.Change != "0.00" {
		doc.KeyValue("Change:", r.Change)
	}
	if r.Due != "" && r.Due != "0.00" {
		doc.KeyValue("Due:", r.Due)
	}

	doc.Separator('-')

	// Footer
	footer := r.Footer
	if footer == "" {
		footer = "Thank you for dining with us!"
	}
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text(footer).
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
