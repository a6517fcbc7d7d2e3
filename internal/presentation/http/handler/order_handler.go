package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tableside-api/pkg/apperror"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles listing orders
func (h *OrderHandler) List(c *gin.Context) {
	var req request.OrderFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.OrderFilterParams{
		Pagination: pageParams(c),
		SortOrder:  req.SortOrder,
	}
	if req.Status != "" {
		status, err := enum.ParseOrderStatus(req.Status)
		if err != nil {
			response.ValidationError(c, []apperror.FieldError{{Field: "status", Message: err.Error()}})
			return
		}
		params.Status = &status
	}
	if req.Channel != "" {
		channel := enum.Channel(req.Channel)
		params.Channel = &channel
	}
	if req.TableID != "" {
		if tableID, err := uuid.Parse(req.TableID); err == nil {
			params.TableID = &tableID
		}
	}
	params.StartDate, params.EndDate = dateRange(c, "start_date", "end_date")

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Orders retrieved successfully", result)
}

// Create handles order intake by staff
func (h *OrderHandler) Create(c *gin.Context) {
	h.create(c, GetUserID(c))
}

// CreatePublic handles self-service and online checkout orders
func (h *OrderHandler) CreatePublic(c *gin.Context) {
	h.create(c, nil)
}

func (h *OrderHandler) create(c *gin.Context, placedBy *uuid.UUID) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	lines := make([]service.OrderLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.OrderLineInput{
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			ImageRef:  l.ImageRef,
		}
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderInput{
		Channel:         req.Channel,
		TableID:         req.TableID,
		Lines:           lines,
		PaymentMethod:   req.PaymentMethod,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Notes:           req.Notes,
		DeliveryAddress: req.DeliveryAddress,
		PickupAt:        req.PickupAt,
		DeliveryCharge:  req.DeliveryCharge,
		PlacedBy:        placedBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", result)
}

// Get handles getting a single order
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// Transition handles an order status change
func (h *OrderHandler) Transition(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}

	var req request.TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	target, err := enum.ParseOrderStatus(req.Status)
	if err != nil {
		response.ValidationError(c, []apperror.FieldError{{Field: "status", Message: err.Error()}})
		return
	}

	order, err := h.orderService.TransitionOrder(c.Request.Context(), id, target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order status updated", order)
}
