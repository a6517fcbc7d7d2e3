package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
)

// BillHandler handles bill consolidation requests
type BillHandler struct {
	billService *service.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// Create consolidates orders and manual lines into a bill
func (h *BillHandler) Create(c *gin.Context) {
	input, ok := h.bind(c)
	if !ok {
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", bill)
}

// Preview computes a bill without saving it
func (h *BillHandler) Preview(c *gin.Context) {
	input, ok := h.bind(c)
	if !ok {
		return
	}

	bill, err := h.billService.PreviewBill(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill preview computed", bill)
}

func (h *BillHandler) bind(c *gin.Context) (*service.CreateBillInput, bool) {
	var req request.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}

	input := &service.CreateBillInput{
		OrderIDs:      req.OrderIDs,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		TaxPercent:    req.TaxPercent,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: req.PaymentMethod,
	}
	if userID := GetUserID(c); userID != nil {
		input.CreatedBy = *userID
	}
	for _, l := range req.Lines {
		input.Lines = append(input.Lines, service.BillLineInput{
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	if req.Customer != nil {
		input.Customer = &service.BillCustomerInput{Name: req.Customer.Name, Phone: req.Customer.Phone}
	}
	return input, true
}

// Get handles getting a single bill
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// List handles listing bills
func (h *BillHandler) List(c *gin.Context) {
	params := &repository.BillFilterParams{
		Pagination: pageParams(c),
		UnpaidOnly: c.Query("unpaid") == "true",
	}
	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			params.CustomerID = &customerID
		}
	}
	params.StartDate, params.EndDate = dateRange(c, "start_date", "end_date")

	result, err := h.billService.ListBills(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Bills retrieved successfully", result)
}
