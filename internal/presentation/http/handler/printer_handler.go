package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
)

// PrinterHandler serves the till's receipt printer
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// printResult carries the receipt that was sent, and a warning when the
// printer did not take it
type printResult struct {
	Receipt *entity.Receipt `json:"receipt"`
	Printed bool            `json:"printed"`
	Warning string          `json:"warning,omitempty"`
}

func newPrintResult(receipt *entity.Receipt, err error) printResult {
	res := printResult{Receipt: receipt, Printed: err == nil}
	if err != nil {
		res.Warning = err.Error()
	}
	return res
}

func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus())
}

// TestPrint sends a test page. A disabled printer is reported as a warning.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint(c.Request.Context())
	response.OK(c, "Test page processed", newPrintResult(receipt, err))
}

// Receipt returns the receipt of a bill without printing it
func (h *PrinterHandler) Receipt(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	receipt, err := h.printerService.BuildReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt built", receipt)
}

// PrintBill prints the receipt of a bill. When the bill exists but the
// printer fails the receipt is still returned so the till can show it.
func (h *PrinterHandler) PrintBill(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintBill(c.Request.Context(), id)
	if err != nil && receipt == nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill receipt processed", newPrintResult(receipt, err))
}
