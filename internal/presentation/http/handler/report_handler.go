package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHandler serves bill documents and sales exports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// BillPDF renders a bill as a PDF document
func (h *ReportHandler) BillPDF(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	doc, err := h.reportService.BillPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, pdfContentType, fmt.Sprintf("bill-%s.pdf", id), true, doc)
}

// SalesExport downloads the bills of a date range as a workbook
func (h *ReportHandler) SalesExport(c *gin.Context) {
	from, to := dateRange(c, "from", "to")

	book, err := h.reportService.SalesWorkbook(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, xlsxContentType, "bills.xlsx", false, book)
}
