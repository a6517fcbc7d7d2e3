package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/money"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService renders bills as PDF documents and sales workbooks
type ReportService struct {
	bills   repository.BillRepository
	outlets repository.OutletRepository
	receipt *PrinterService
	log     *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(bills repository.BillRepository, outlets repository.OutletRepository, receipts *PrinterService, log *zap.Logger) *ReportService {
	return &ReportService{bills: bills, outlets: outlets, receipt: receipts, log: log}
}

const salesSheet = "Bills"

var salesColumns = []interface{}{
	"Bill No", "Date", "Customer", "Payment", "Subtotal", "Discount", "Tax", "Total", "Paid", "Unpaid",
}

// BillPDF renders one bill as an A4 document
func (s *ReportService) BillPDF(ctx context.Context, billID uuid.UUID) ([]byte, error) {
	receipt, err := s.receipt.BuildReceipt(ctx, billID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, receipt.Header.StoreName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{receipt.Header.Address, receipt.Header.Phone} {
		if line != "" {
			pdf.CellFormat(0, 5, line, "", 1, "C", false, 0, "")
		}
	}
	if receipt.Header.TaxID != "" {
		pdf.CellFormat(0, 5, "Tax ID: "+receipt.Header.TaxID, "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 7, "Bill No: "+receipt.BillNo)
	pdf.Ln(7)
	pdf.Cell(40, 7, "Date: "+receipt.Date)
	pdf.Ln(7)
	if receipt.Customer != "" {
		pdf.Cell(40, 7, "Customer: "+receipt.Customer)
		pdf.Ln(7)
	}
	pdf.Cell(40, 7, "Payment: "+receipt.PaymentMethod)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range receipt.Items {
		pdf.CellFormat(95, 7, item.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, item.UnitPrice, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, item.Total, "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	totals := [][2]string{
		{"Subtotal", receipt.SubTotal},
		{"Discount", receipt.Discount},
		{receipt.TaxLabel, receipt.Tax},
		{"Total", receipt.Total},
		{"Paid", receipt.Paid},
		{"Change", receipt.Change},
		{"Due", receipt.Due},
	}
	for _, t := range totals {
		if t[0] == "Total" {
			pdf.SetFont("Arial", "B", 12)
		} else {
			pdf.SetFont("Arial", "", 11)
		}
		pdf.CellFormat(150, 7, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, t[1], "", 1, "R", false, 0, "")
	}

	if receipt.Footer != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 6, receipt.Footer, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render bill pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// SalesWorkbook exports every bill created in [from, to] as an xlsx workbook
func (s *ReportService) SalesWorkbook(ctx context.Context, from, to *time.Time) ([]byte, error) {
	bills, _, err := s.bills.List(ctx, &repository.BillFilterParams{StartDate: from, EndDate: to})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(salesSheet, "A1", &salesColumns); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(salesSheet, 1, 1, header); err != nil {
		return nil, err
	}

	totals := make([]decimal.Decimal, 6)
	for i, b := range bills {
		amounts := []decimal.Decimal{b.Subtotal, b.DiscountAmount, b.TaxAmount, b.Total, b.AmountPaid, b.Unpaid}
		row := []interface{}{b.BillNumber, b.CreatedAt.Format("2006-01-02 15:04"), customerName(b), b.PaymentMethod.String()}
		for j, a := range amounts {
			row = append(row, money.Float(a))
			totals[j] = totals[j].Add(a)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(salesSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	summary := []interface{}{"Total", "", "", ""}
	for _, t := range totals {
		summary = append(summary, money.Float(t))
	}
	cell, err := excelize.CoordinatesToCellName(1, len(bills)+2)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(salesSheet, cell, &summary); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(salesSheet, "B", "C", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write sales workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func customerName(b entity.Bill) string {
	if b.Customer == nil {
		return ""
	}
	return b.Customer.Name
}
