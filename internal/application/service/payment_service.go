package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/event"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/sangkips/tableside-api/pkg/payment"
	"go.uber.org/zap"
)

// Outcome is what a reconciliation reports to the client
type Outcome string

const (
	OutcomePaid       Outcome = "paid"
	OutcomeFailed     Outcome = "failed"
	OutcomePending    Outcome = "pending"
	OutcomeProcessing Outcome = "processing"
)

// PaymentOutcome is the result of reconciling one online order
type PaymentOutcome struct {
	OrderID     uuid.UUID        `json:"order_id"`
	Status      Outcome          `json:"status"`
	OrderStatus enum.OrderStatus `json:"order_status"`
}

// Final reports whether polling can stop
func (o *PaymentOutcome) Final() bool {
	return o.Status == OutcomePaid || o.Status == OutcomeFailed
}

// PaymentService reconciles online orders with the payment provider
type PaymentService struct {
	orders      repository.OrderRepository
	provider    payment.Provider
	transitions transitioner
	events      event.Publisher
	currency    string
	log         *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	orders repository.OrderRepository,
	provider payment.Provider,
	events event.Publisher,
	currency string,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orders:      orders,
		provider:    provider,
		transitions: transitioner{orders: orders},
		events:      events,
		currency:    currency,
		log:         log,
	}
}

// OpenIntent creates the provider intent for an online order, retrying once
func (s *PaymentService) OpenIntent(ctx context.Context, order *entity.Order) (*payment.Intent, error) {
	req := payment.IntentRequest{
		OrderID:  order.ID,
		OutletID: order.OutletID,
		Amount:   order.TotalAmount,
		Currency: s.currency,
	}

	var intent *payment.Intent
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		intent, err = s.provider.CreateIntent(ctx, req)
		if err == nil {
			break
		}
		s.log.Warn("payment intent creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	if err != nil {
		return nil, apperror.ErrPaymentFailure.Wrap(err).WithDetails(map[string]interface{}{
			"order_id": order.ID,
			"message":  err.Error(),
		})
	}

	if err := s.orders.SetIntentRef(ctx, order.ID, intent.Ref); err != nil {
		s.cancelIntent(ctx, order.ID, intent.Ref)
		return nil, err
	}
	return intent, nil
}

// Reconcile reads the provider status for an online order and applies it
func (s *PaymentService) Reconcile(ctx context.Context, orderID uuid.UUID) (*PaymentOutcome, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if !order.IsOnline() {
		return nil, apperror.NewFieldError("order_id", "Order is not paid online")
	}
	if outcome, done := settled(order); done {
		return outcome, nil
	}
	if order.PaymentIntentRef == nil {
		return outcomeOf(order, OutcomePending), nil
	}

	status, err := s.providerStatus(ctx, *order.PaymentIntentRef)
	if err != nil {
		return nil, apperror.ErrPaymentFailure.Wrap(err).WithDetails(map[string]interface{}{
			"order_id": order.ID,
			"message":  err.Error(),
		})
	}
	return s.apply(ctx, order, status)
}

func (s *PaymentService) providerStatus(ctx context.Context, ref string) (payment.Status, error) {
	status, err := s.provider.GetIntentStatus(ctx, ref)
	if err == nil || errors.Is(err, payment.ErrUnknownIntent) {
		return status, err
	}
	return s.provider.GetIntentStatus(ctx, ref)
}

// HandleEvent applies a provider notification. Replays of an already applied
// status are no-ops.
func (s *PaymentService) HandleEvent(ctx context.Context, ev payment.Event) (*PaymentOutcome, error) {
	if ev.IntentRef == "" {
		return nil, apperror.NewFieldError("intent_ref", "Intent reference is required")
	}

	order, err := s.orders.GetByIntentRef(repository.WithSkipOutletScope(ctx, true), ev.IntentRef)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return s.apply(repository.WithOutlet(ctx, order.OutletID), order, ev.Status)
}

func (s *PaymentService) apply(ctx context.Context, order *entity.Order, status payment.Status) (*PaymentOutcome, error) {
	if outcome, done := settled(order); done {
		return outcome, nil
	}

	switch status {
	case payment.StatusSucceeded:
		return s.markPaid(ctx, order)
	case payment.StatusFailed, payment.StatusCanceled:
		return s.markFailed(ctx, order)
	default:
		return outcomeOf(order, OutcomePending), nil
	}
}

func (s *PaymentService) markPaid(ctx context.Context, order *entity.Order) (*PaymentOutcome, error) {
	ok, err := s.orders.SetPaymentStatus(ctx, order.ID, enum.PaymentStatusPending, enum.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.current(ctx, order.ID)
	}
	order.PaymentStatus = enum.PaymentStatusPaid

	if order.Status == enum.OrderStatusCancelled {
		s.log.Warn("payment captured for a cancelled order, refund manually",
			zap.String("order_id", order.ID.String()))
	}
	s.log.Info("online payment settled", zap.String("order_id", order.ID.String()))
	publish(ctx, s.events, s.log, event.New(event.OrderPaid, order.OutletID, order.ID, map[string]interface{}{
		"total_amount": order.TotalAmount.StringFixed(2),
	}))
	return outcomeOf(order, OutcomePaid), nil
}

// markFailed cancels the order, records the failure and cancels the intent
func (s *PaymentService) markFailed(ctx context.Context, order *entity.Order) (*PaymentOutcome, error) {
	if !order.Status.IsTerminal() {
		updated, _, err := s.transitions.apply(ctx, order.ID, enum.OrderStatusCancelled, enum.PaymentStatusFailed)
		if err != nil && !apperror.IsAppError(err) {
			return nil, err
		}
		if err != nil {
			s.log.Warn("order could not be cancelled after payment failure",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		} else {
			order = updated
		}
	}

	if order.PaymentStatus != enum.PaymentStatusFailed {
		ok, err := s.orders.SetPaymentStatus(ctx, order.ID, enum.PaymentStatusPending, enum.PaymentStatusFailed)
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.current(ctx, order.ID)
		}
		order.PaymentStatus = enum.PaymentStatusFailed
	}

	if order.PaymentIntentRef != nil {
		s.cancelIntent(ctx, order.ID, *order.PaymentIntentRef)
	}
	s.log.Info("online payment failed, order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("order_status", order.Status.String()))
	publish(ctx, s.events, s.log, event.New(event.OrderPaymentFailed, order.OutletID, order.ID, nil))
	return outcomeOf(order, OutcomeFailed), nil
}

func (s *PaymentService) cancelIntent(ctx context.Context, orderID uuid.UUID, ref string) {
	if err := s.provider.CancelIntent(ctx, ref); err != nil {
		s.log.Error("compensating intent cancel failed",
			zap.String("order_id", orderID.String()),
			zap.String("intent_ref", ref),
			zap.Error(err))
	}
}

func (s *PaymentService) current(ctx context.Context, orderID uuid.UUID) (*PaymentOutcome, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if outcome, done := settled(order); done {
		return outcome, nil
	}
	return outcomeOf(order, OutcomePending), nil
}

func settled(order *entity.Order) (*PaymentOutcome, bool) {
	switch order.PaymentStatus {
	case enum.PaymentStatusPaid:
		return outcomeOf(order, OutcomePaid), true
	case enum.PaymentStatusFailed:
		return outcomeOf(order, OutcomeFailed), true
	}
	return nil, false
}

func outcomeOf(order *entity.Order, status Outcome) *PaymentOutcome {
	return &PaymentOutcome{OrderID: order.ID, Status: status, OrderStatus: order.Status}
}

// Sweep reconciles online orders whose payment has been pending since before
// olderThan, across all outlets. It returns how many reached a final outcome.
func (s *PaymentService) Sweep(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	orders, err := s.orders.ListAwaitingPayment(repository.WithSkipOutletScope(ctx, true), olderThan, limit)
	if err != nil {
		return 0, err
	}

	settledCount := 0
	for i := range orders {
		if ctx.Err() != nil {
			return settledCount, ctx.Err()
		}
		outcome, err := s.Reconcile(repository.WithOutlet(ctx, orders[i].OutletID), orders[i].ID)
		if err != nil {
			s.log.Warn("sweep reconcile failed", zap.String("order_id", orders[i].ID.String()), zap.Error(err))
			continue
		}
		if outcome.Final() {
			settledCount++
		}
	}
	return settledCount, nil
}

// RunSweeper calls Sweep every interval until ctx is done
func (s *PaymentService) RunSweeper(ctx context.Context, interval, after time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.Sweep(ctx, time.Now().Add(-after), 100)
			if err != nil && ctx.Err() == nil {
				s.log.Error("payment sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("payment sweep settled orders", zap.Int("count", n))
			}
		}
	}
}

// PaymentPoller is the recovery path for a single online order when no
// provider event arrives
type PaymentPoller struct {
	payments *PaymentService
	interval time.Duration
	attempts int
	base     context.Context
	wg       sync.WaitGroup
	log      *zap.Logger
}

// NewPaymentPoller creates a poller. Watches started later stop when base is done.
func NewPaymentPoller(base context.Context, payments *PaymentService, interval time.Duration, attempts int, log *zap.Logger) *PaymentPoller {
	return &PaymentPoller{
		payments: payments,
		interval: interval,
		attempts: attempts,
		base:     base,
		log:      log,
	}
}

// Poll reconciles orderID every interval until the outcome is final, ctx is
// done or the attempt budget runs out. Exhaustion reports OutcomeProcessing
// and leaves the order untouched.
func (p *PaymentPoller) Poll(ctx context.Context, orderID uuid.UUID) (*PaymentOutcome, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		outcome, err := p.payments.Reconcile(ctx, orderID)
		if err != nil {
			switch apperror.KindOf(err) {
			case apperror.KindNotFound, apperror.KindValidation:
				return nil, err
			}
			p.log.Warn("payment poll failed",
				zap.String("order_id", orderID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if outcome.Final() {
			return outcome, nil
		}
	}

	p.log.Info("payment poll budget exhausted", zap.String("order_id", orderID.String()), zap.Int("attempts", p.attempts))
	return &PaymentOutcome{OrderID: orderID, Status: OutcomeProcessing, OrderStatus: enum.OrderStatusPending}, nil
}

// Watch polls orderID in the background under the poller's base context,
// keeping the outlet of ctx
func (p *PaymentPoller) Watch(ctx context.Context, orderID uuid.UUID) {
	watchCtx := p.base
	if outletID, ok := repository.GetOutletID(ctx); ok {
		watchCtx = repository.WithOutlet(watchCtx, outletID)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.Poll(watchCtx, orderID); err != nil && !errors.Is(err, context.Canceled) {
			p.log.Warn("payment watch ended with error", zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}()
}

// Wait blocks until every watch has returned
func (p *PaymentPoller) Wait() {
	p.wg.Wait()
}
