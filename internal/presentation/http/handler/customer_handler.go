package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer ledger requests
type CustomerHandler struct {
	ledgerService *service.LedgerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(ledgerService *service.LedgerService) *CustomerHandler {
	return &CustomerHandler{ledgerService: ledgerService}
}

// List handles listing customers. With ?phone= it returns the single
// customer registered under that number.
func (h *CustomerHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if phone, ok := c.GetQuery("phone"); ok {
		customer, err := h.ledgerService.LookupByPhone(ctx, phone)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Customer retrieved successfully", customer)
		return
	}

	result, err := h.ledgerService.ListCustomers(ctx, pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Customers retrieved successfully", result)
}

// Get returns a customer with their unpaid bills
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	ledger, err := h.ledgerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", ledger)
}

// ListDuePayments lists the payments a customer made against their due
func (h *CustomerHandler) ListDuePayments(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.ledgerService.ListDuePayments(c.Request.Context(), id, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Due payments retrieved successfully", result)
}

// RecordDuePayment records money received against a customer's due
func (h *CustomerHandler) RecordDuePayment(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	var req request.RecordDuePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.RecordDuePaymentInput{
		CustomerID: id,
		Amount:     req.Amount,
		Method:     req.Method,
		Notes:      req.Notes,
	}
	if userID := GetUserID(c); userID != nil {
		input.ReceivedBy = *userID
	}

	payment, err := h.ledgerService.RecordDuePayment(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Due payment recorded successfully", payment)
}
