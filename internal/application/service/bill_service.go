package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/cart"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/event"
	"github.com/sangkips/tableside-api/internal/domain/money"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/sangkips/tableside-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillService consolidates table orders and manual lines into bills
type BillService struct {
	tx         repository.Transactor
	bills      repository.BillRepository
	orders     repository.OrderRepository
	customers  repository.CustomerRepository
	outlets    repository.OutletRepository
	events     event.Publisher
	defaultTax decimal.Decimal
	log        *zap.Logger
}

// NewBillService creates a new bill service
func NewBillService(
	tx repository.Transactor,
	bills repository.BillRepository,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	outlets repository.OutletRepository,
	events event.Publisher,
	defaultTax decimal.Decimal,
	log *zap.Logger,
) *BillService {
	return &BillService{
		tx:         tx,
		bills:      bills,
		orders:     orders,
		customers:  customers,
		outlets:    outlets,
		events:     events,
		defaultTax: defaultTax,
		log:        log,
	}
}

// BillLineInput is a manual line added at the till
type BillLineInput struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// BillCustomerInput identifies the customer a bill is charged to
type BillCustomerInput struct {
	Name  string
	Phone string
}

// CreateBillInput represents the create bill input. A nil TaxPercent uses the
// outlet default.
type CreateBillInput struct {
	OrderIDs      []uuid.UUID
	Lines         []BillLineInput
	Customer      *BillCustomerInput
	DiscountType  enum.DiscountType
	DiscountValue decimal.Decimal
	TaxPercent    *decimal.Decimal
	AmountPaid    decimal.Decimal
	PaymentMethod enum.PaymentMethod
	CreatedBy     uuid.UUID
}

// draft is a computed, unsaved bill together with the orders it absorbs
type draft struct {
	bill     *entity.Bill
	orderIDs []uuid.UUID
}

// CreateBill persists a bill for the given orders and manual lines. Number
// allocation, the bill insert and completion of the source orders commit
// together; if any source order is no longer active nothing is written and
// StaleOrderState is returned. A due balance is charged to the customer
// afterwards; if that fails the saved bill is returned with PartialSagaFailure.
func (s *BillService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	d, err := s.assemble(ctx, input)
	if err != nil {
		return nil, err
	}
	bill := d.bill

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if input.Customer != nil {
			customer, err := s.customers.FindOrCreateByPhone(ctx, strings.TrimSpace(input.Customer.Name), strings.TrimSpace(input.Customer.Phone))
			if err != nil {
				return err
			}
			bill.CustomerID = &customer.ID
			bill.Customer = customer
		}

		number, err := s.bills.NextBillNumber(ctx)
		if err != nil {
			return err
		}
		bill.BillNumber = number

		if err := s.bills.Create(ctx, bill); err != nil {
			return err
		}
		if len(d.orderIDs) == 0 {
			return nil
		}

		n, err := s.orders.CompleteForBill(ctx, d.orderIDs, bill.ID)
		if err != nil {
			return err
		}
		if n != int64(len(d.orderIDs)) {
			return staleOrders("order already billed or cancelled", d.orderIDs...)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrStaleOrderState) {
			s.log.Info("bill rejected, source orders changed", zap.Int("orders", len(d.orderIDs)))
		}
		return nil, err
	}

	s.log.Info("bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.Int64("bill_number", bill.BillNumber),
		zap.String("total", bill.Total.StringFixed(2)),
		zap.String("unpaid", bill.Unpaid.StringFixed(2)))

	if bill.Unpaid.IsPositive() && bill.CustomerID != nil {
		if err := s.customers.IncrementDue(ctx, *bill.CustomerID, bill.Unpaid); err != nil {
			s.log.Error("bill saved but customer due not updated, reconcile manually",
				zap.String("bill_id", bill.ID.String()),
				zap.String("customer_id", bill.CustomerID.String()),
				zap.String("unpaid", bill.Unpaid.StringFixed(2)),
				zap.Error(err))
			publish(ctx, s.events, s.log, event.New(event.LedgerSyncFailed, bill.OutletID, bill.ID, map[string]interface{}{
				"customer_id": bill.CustomerID,
				"unpaid":      bill.Unpaid.StringFixed(2),
			}))
			return bill, apperror.ErrPartialSagaFailure.Wrap(err).WithDetails(map[string]interface{}{"bill": bill})
		}
		if bill.Customer != nil {
			bill.Customer.DueAmount = bill.Customer.DueAmount.Add(bill.Unpaid)
		}
	}

	publish(ctx, s.events, s.log, event.New(event.BillCreated, bill.OutletID, bill.ID, bill))
	return bill, nil
}

// PreviewBill computes the bill CreateBill would write without saving it
func (s *BillService) PreviewBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	d, err := s.assemble(ctx, input)
	if err != nil {
		return nil, err
	}
	return d.bill, nil
}

// assemble validates the input, loads the source orders and runs the calculator
func (s *BillService) assemble(ctx context.Context, input *CreateBillInput) (*draft, error) {
	outletID, ok := repository.GetOutletID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Outlet context required")
	}
	if err := validateBillInput(input); err != nil {
		return nil, err
	}

	ids := dedupe(input.OrderIDs)
	basket := cart.New()

	if len(ids) > 0 {
		orders, err := s.orders.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		found := make(map[uuid.UUID]entity.Order, len(orders))
		for _, o := range orders {
			found[o.ID] = o
		}

		var inactive []uuid.UUID
		for _, id := range ids {
			o, ok := found[id]
			if !ok {
				return nil, apperror.NewNotFoundError("Order " + id.String())
			}
			if o.Channel != enum.ChannelTable {
				return nil, apperror.NewFieldError("order_ids", "Only table orders can be billed")
			}
			if !o.Status.IsActive() {
				inactive = append(inactive, id)
				continue
			}
			for _, l := range o.Lines {
				basket = basket.Add(cart.Item{Name: l.Name, Price: l.UnitPrice, Quantity: l.Quantity})
			}
		}
		if len(inactive) > 0 {
			return nil, staleOrders("order already billed or cancelled", inactive...)
		}
	}

	for _, l := range input.Lines {
		basket = basket.Add(cart.Item{Name: strings.TrimSpace(l.Name), Price: l.UnitPrice, Quantity: l.Quantity})
	}
	if basket.IsEmpty() {
		return nil, apperror.ErrEmptyOrder
	}

	taxPercent, err := s.taxPercent(ctx, outletID, input.TaxPercent)
	if err != nil {
		return nil, err
	}

	breakdown := money.Calculate(money.Input{
		Lines:      basket.MoneyLines(),
		Discount:   money.Discount{Type: input.DiscountType, Value: input.DiscountValue},
		TaxPercent: taxPercent,
		AmountPaid: input.AmountPaid,
	}).Rounded()

	method := input.PaymentMethod
	if method == "" {
		method = enum.PaymentMethodCash
	}

	bill := &entity.Bill{
		OutletID:       outletID,
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue,
		TaxPercent:     taxPercent,
		PaymentMethod:  method,
		CreatedBy:      input.CreatedBy,
		SourceOrderIDs: ids,
	}
	bill.ApplyBreakdown(breakdown)

	items := basket.Items()
	bill.Lines = make([]entity.BillLine, len(items))
	for i, it := range items {
		bill.Lines[i] = entity.BillLine{
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
			Total:     money.Round(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		}
	}
	return &draft{bill: bill, orderIDs: ids}, nil
}

func (s *BillService) taxPercent(ctx context.Context, outletID uuid.UUID, requested *decimal.Decimal) (decimal.Decimal, error) {
	if requested != nil {
		return *requested, nil
	}
	outlet, err := s.outlets.GetByID(ctx, outletID)
	if err != nil {
		return decimal.Zero, err
	}
	if outlet == nil {
		return s.defaultTax, nil
	}
	return outlet.Settings.TaxPercent(s.defaultTax), nil
}

func validateBillInput(input *CreateBillInput) error {
	var fieldErrors []apperror.FieldError
	add := func(field, msg string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: msg})
	}

	for _, l := range input.Lines {
		switch {
		case strings.TrimSpace(l.Name) == "":
			add("lines.name", "Line name is required")
		case l.Quantity <= 0:
			add("lines.quantity", "Quantity must be greater than zero")
		case l.UnitPrice.IsNegative():
			add("lines.unit_price", "Unit price cannot be negative")
		}
	}
	if input.DiscountValue.IsNegative() {
		add("discount_value", "Discount cannot be negative")
	}
	if input.DiscountType != enum.DiscountTypePercentage && input.DiscountType != enum.DiscountTypeFixed {
		add("discount_type", "Discount type must be percentage or fixed")
	}
	if input.TaxPercent != nil && input.TaxPercent.IsNegative() {
		add("tax_percent", "Tax percent cannot be negative")
	}
	if input.AmountPaid.IsNegative() {
		add("amount_paid", "Amount paid cannot be negative")
	}
	if input.PaymentMethod != "" && !input.PaymentMethod.IsValid() {
		add("payment_method", "Payment method must be cash, card or online")
	}
	if input.Customer != nil && strings.TrimSpace(input.Customer.Phone) == "" {
		add("customer.phone", "Customer phone is required")
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// GetBill returns one bill of the current outlet
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills returns a page of bills, newest number first
func (s *BillService) ListBills(ctx context.Context, params *repository.BillFilterParams) (*pagination.PaginatedResult[entity.Bill], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	bills, total, err := s.bills.List(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bills, p), nil
}
