package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
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

// LedgerService tracks what customers owe across their bills
type LedgerService struct {
	tx          repository.Transactor
	customers   repository.CustomerRepository
	duePayments repository.DuePaymentRepository
	bills       repository.BillRepository
	events      event.Publisher
	log         *zap.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	tx repository.Transactor,
	customers repository.CustomerRepository,
	duePayments repository.DuePaymentRepository,
	bills repository.BillRepository,
	events event.Publisher,
	log *zap.Logger,
) *LedgerService {
	return &LedgerService{
		tx:          tx,
		customers:   customers,
		duePayments: duePayments,
		bills:       bills,
		events:      events,
		log:         log,
	}
}

// CustomerLedger is a customer with the bills that still carry a balance
type CustomerLedger struct {
	Customer    *entity.Customer `json:"customer"`
	UnpaidBills []entity.Bill    `json:"unpaid_bills"`
}

// RecordDuePaymentInput represents money received against a customer's due
type RecordDuePaymentInput struct {
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	Method     enum.PaymentMethod
	ReceivedBy uuid.UUID
	Notes      *string
}

// OverpaymentDetails carries the due amount a rejected payment exceeded
type OverpaymentDetails struct {
	DueAmount float64 `json:"due_amount"`
}

// LookupByPhone returns the outlet's customer for phone
func (s *LedgerService) LookupByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, apperror.NewFieldError("phone", "Phone is required")
	}
	customer, err := s.customers.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// EnsureCustomer returns the customer for phone, creating it if absent
func (s *LedgerService) EnsureCustomer(ctx context.Context, name, phone string) (*entity.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, apperror.NewFieldError("phone", "Phone is required")
	}
	return s.customers.FindOrCreateByPhone(ctx, strings.TrimSpace(name), phone)
}

// GetCustomer returns the customer with its unpaid bills, oldest first
func (s *LedgerService) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerLedger, error) {
	customer, err := s.customer(ctx, id)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.ListUnpaidByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []entity.Bill{}
	}
	return &CustomerLedger{Customer: customer, UnpaidBills: bills}, nil
}

// ListCustomers returns a page of customers matching search on name or phone
func (s *LedgerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	customers, total, err := s.customers.List(ctx, params, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, p), nil
}

// ListDuePayments returns a page of the customer's due payments, newest first
func (s *LedgerService) ListDuePayments(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.DuePayment], error) {
	if _, err := s.customer(ctx, customerID); err != nil {
		return nil, err
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	payments, total, err := s.duePayments.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(payments, p), nil
}

// RecordDuePayment lowers the customer's due by amount, stores the payment
// and settles the customer's unpaid bills oldest first. Amounts above the
// current due are rejected with OverpaymentRejected.
func (s *LedgerService) RecordDuePayment(ctx context.Context, input *RecordDuePaymentInput) (*entity.DuePayment, error) {
	amount := money.Round(input.Amount)
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount
	}
	method := input.Method
	if method == "" {
		method = enum.PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, apperror.NewFieldError("method", "Payment method must be cash, card or online")
	}

	var payment *entity.DuePayment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customer(ctx, input.CustomerID)
		if err != nil {
			return err
		}

		ok, err := s.customers.DecrementDue(ctx, customer.ID, amount)
		if err != nil {
			return err
		}
		if !ok {
			current, err := s.customer(ctx, customer.ID)
			if err != nil {
				return err
			}
			return apperror.ErrOverpaymentRejected.WithDetails(OverpaymentDetails{DueAmount: money.Float(current.DueAmount)})
		}

		payment = &entity.DuePayment{
			OutletID:   customer.OutletID,
			CustomerID: customer.ID,
			Amount:     amount,
			Method:     method,
			ReceivedBy: input.ReceivedBy,
			Notes:      input.Notes,
		}
		if err := s.duePayments.Create(ctx, payment); err != nil {
			return err
		}
		return s.settleBills(ctx, customer.ID, amount)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("due payment recorded",
		zap.String("customer_id", input.CustomerID.String()),
		zap.String("amount", amount.StringFixed(2)))
	publish(ctx, s.events, s.log, event.New(event.DuePaymentRecorded, payment.OutletID, payment.CustomerID, payment))
	return payment, nil
}

// settleBills applies amount to the customer's unpaid bills, oldest first
func (s *LedgerService) settleBills(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error {
	bills, err := s.bills.ListUnpaidByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	remaining := amount
	for _, b := range bills {
		if !remaining.IsPositive() {
			break
		}
		applied := decimal.Min(remaining, b.Unpaid)
		ok, err := s.bills.ReduceUnpaid(ctx, b.ID, applied)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewConflictError("Bill balance changed, please retry")
		}
		remaining = remaining.Sub(applied)
	}

	if remaining.IsPositive() {
		s.log.Warn("due payment exceeds unpaid bills",
			zap.String("customer_id", customerID.String()),
			zap.String("unapplied", remaining.StringFixed(2)))
	}
	return nil
}

func (s *LedgerService) customer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}
