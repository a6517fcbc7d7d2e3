package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/cart"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/event"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/sangkips/tableside-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles order intake and status transitions
type OrderService struct {
	orders      repository.OrderRepository
	tables      repository.TableRepository
	payments    *PaymentService
	poller      *PaymentPoller
	events      event.Publisher
	transitions transitioner
	log         *zap.Logger
}

// NewOrderService creates a new order service. poller may be nil, in which
// case online payments are only settled by webhook, queue or sweeper.
func NewOrderService(
	orders repository.OrderRepository,
	tables repository.TableRepository,
	payments *PaymentService,
	poller *PaymentPoller,
	events event.Publisher,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:      orders,
		tables:      tables,
		payments:    payments,
		poller:      poller,
		events:      events,
		transitions: transitioner{orders: orders},
		log:         log,
	}
}

// OrderLineInput is one requested line
type OrderLineInput struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageRef  *string
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	Channel         enum.Channel
	TableID         *uuid.UUID
	Lines           []OrderLineInput
	PaymentMethod   enum.PaymentMethod
	CustomerName    *string
	CustomerPhone   *string
	Notes           *string
	DeliveryAddress *string
	PickupAt        *time.Time
	DeliveryCharge  decimal.Decimal
	PlacedBy        *uuid.UUID
}

// CreateOrderResult carries the client secret for online checkout
type CreateOrderResult struct {
	Order        *entity.Order `json:"order"`
	ClientSecret string        `json:"client_secret,omitempty"`
}

// CreateOrder validates and stores a new order. Online pickup and delivery
// orders get a payment intent; if the provider cannot create one the order
// is cancelled and PaymentFailure is returned.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreateOrderResult, error) {
	outletID, ok := repository.GetOutletID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Outlet context required")
	}

	lines, err := normalizeLines(input.Lines)
	if err != nil {
		return nil, err
	}
	if err := s.validateChannel(ctx, input); err != nil {
		return nil, err
	}

	order := &entity.Order{
		OutletID:        outletID,
		Channel:         input.Channel,
		Status:          enum.OrderStatusPending,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		Notes:           input.Notes,
		DeliveryCharge:  input.DeliveryCharge,
		PlacedBy:        input.PlacedBy,
		Lines:           lines,
		DeliveryAddress: input.DeliveryAddress,
		PickupAt:        input.PickupAt,
	}
	if input.Channel == enum.ChannelTable {
		order.TableID = input.TableID
	} else {
		order.PaymentMethod = input.PaymentMethod
		order.PaymentStatus = enum.PaymentStatusPending
	}
	order.TotalAmount = order.ComputeTotal()

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("channel", order.Channel.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	publish(ctx, s.events, s.log, event.New(event.OrderCreated, outletID, order.ID, order))

	result := &CreateOrderResult{Order: order}
	if !order.IsOnline() {
		return result, nil
	}

	intent, err := s.payments.OpenIntent(ctx, order)
	if err != nil {
		s.abandonOrder(ctx, order)
		return nil, err
	}
	order.PaymentIntentRef = &intent.Ref
	result.ClientSecret = intent.ClientSecret

	if s.poller != nil {
		s.poller.Watch(ctx, order.ID)
	}
	return result, nil
}

// abandonOrder cancels an online order whose intent could not be created
func (s *OrderService) abandonOrder(ctx context.Context, order *entity.Order) {
	cancelled, _, err := s.transitions.apply(ctx, order.ID, enum.OrderStatusCancelled, enum.PaymentStatusFailed)
	if err != nil {
		s.log.Error("failed to cancel order after payment intent failure",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return
	}
	*order = *cancelled
	publish(ctx, s.events, s.log, event.New(event.OrderPaymentFailed, order.OutletID, order.ID, order))
}

func normalizeLines(inputs []OrderLineInput) ([]entity.OrderLine, error) {
	if len(inputs) == 0 {
		return nil, apperror.ErrEmptyOrder
	}

	var fieldErrors []apperror.FieldError
	basket := cart.New()
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		switch {
		case name == "":
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "lines.name", Message: "Line name is required"})
		case in.Quantity <= 0:
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "lines.quantity", Message: "Quantity must be greater than zero"})
		case in.UnitPrice.IsNegative():
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "lines.unit_price", Message: "Unit price cannot be negative"})
		default:
			item := cart.Item{Name: name, Price: in.UnitPrice, Quantity: in.Quantity}
			if in.ImageRef != nil {
				item.ImageRef = *in.ImageRef
			}
			basket = basket.Add(item)
		}
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	items := basket.Items()
	lines := make([]entity.OrderLine, len(items))
	for i, it := range items {
		lines[i] = entity.OrderLine{Name: it.Name, UnitPrice: it.Price, Quantity: it.Quantity}
		if it.ImageRef != "" {
			ref := it.ImageRef
			lines[i].ImageRef = &ref
		}
	}
	return lines, nil
}

func (s *OrderService) validateChannel(ctx context.Context, input *CreateOrderInput) error {
	if !input.Channel.IsValid() {
		return apperror.NewFieldError("channel", "Channel must be table, pickup or delivery")
	}
	if input.DeliveryCharge.IsNegative() {
		return apperror.NewFieldError("delivery_charge", "Delivery charge cannot be negative")
	}

	switch input.Channel {
	case enum.ChannelTable:
		if input.TableID == nil {
			return apperror.NewFieldError("table_id", "Table is required for table orders")
		}
		if input.DeliveryCharge.IsPositive() {
			return apperror.NewFieldError("delivery_charge", "Table orders have no delivery charge")
		}
		table, err := s.tables.GetByID(ctx, *input.TableID)
		if err != nil {
			return err
		}
		if table == nil {
			return apperror.NewNotFoundError("Table")
		}
		if table.Status == enum.TableStatusMaintenance {
			return apperror.NewFieldError("table_id", "Table is under maintenance")
		}
	case enum.ChannelPickup, enum.ChannelDelivery:
		if input.PaymentMethod != enum.PaymentMethodCash && input.PaymentMethod != enum.PaymentMethodOnline {
			return apperror.NewFieldError("payment_method", "Payment method must be cash or online")
		}
		if input.CustomerPhone == nil || strings.TrimSpace(*input.CustomerPhone) == "" {
			return apperror.NewFieldError("customer_phone", "Phone is required for pickup and delivery")
		}
		if input.Channel == enum.ChannelDelivery && (input.DeliveryAddress == nil || strings.TrimSpace(*input.DeliveryAddress) == "") {
			return apperror.NewFieldError("delivery_address", "Delivery address is required")
		}
		if input.Channel == enum.ChannelPickup && input.DeliveryCharge.IsPositive() {
			return apperror.NewFieldError("delivery_charge", "Pickup orders have no delivery charge")
		}
	}
	return nil
}

// GetOrder returns one order of the current outlet
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders returns a page of orders
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	orders, total, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, p), nil
}

// TransitionOrder moves an order to target. Requests for a terminal state
// the order already holds succeed without writing.
func (s *OrderService) TransitionOrder(ctx context.Context, id uuid.UUID, target enum.OrderStatus) (*entity.Order, error) {
	order, decision, err := s.transitions.apply(ctx, id, target, enum.PaymentStatusNone)
	if err != nil {
		return nil, err
	}
	if decision.Noop {
		return order, nil
	}

	s.log.Info("order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", decision.From.String()),
		zap.String("to", decision.To.String()))
	publish(ctx, s.events, s.log, event.New(event.OrderStatusChanged, order.OutletID, order.ID, map[string]interface{}{
		"from":           decision.From,
		"to":             decision.To,
		"payment_status": order.PaymentStatus,
	}))

	if decision.To == enum.OrderStatusCancelled && decision.PaymentStatus == enum.PaymentStatusFailed &&
		order.PaymentIntentRef != nil {
		s.payments.cancelIntent(ctx, order.ID, *order.PaymentIntentRef)
		publish(ctx, s.events, s.log, event.New(event.OrderPaymentFailed, order.OutletID, order.ID, nil))
	}
	return order, nil
}
