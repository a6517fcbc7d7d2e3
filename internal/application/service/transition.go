package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/lifecycle"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/apperror"
)

// StaleDetails tells the client which orders moved underneath it
type StaleDetails struct {
	OrderIDs []uuid.UUID `json:"order_ids"`
	Reason   string      `json:"reason"`
}

func staleOrders(reason string, ids ...uuid.UUID) error {
	return apperror.ErrStaleOrderState.WithDetails(StaleDetails{OrderIDs: ids, Reason: reason})
}

// transitioner applies state machine decisions with conditional writes.
// A lost race is re-read and retried once before StaleOrderState is returned.
type transitioner struct {
	orders repository.OrderRepository
}

// apply moves order id to target. paymentStatus, when set, overrides the
// payment status the decision would write.
func (t transitioner) apply(ctx context.Context, id uuid.UUID, target enum.OrderStatus, paymentStatus enum.PaymentStatus) (*entity.Order, lifecycle.Decision, error) {
	for attempt := 0; attempt < 2; attempt++ {
		order, err := t.orders.GetByID(ctx, id)
		if err != nil {
			return nil, lifecycle.Decision{}, err
		}
		if order == nil {
			return nil, lifecycle.Decision{}, apperror.NewNotFoundError("Order")
		}

		decision, err := lifecycle.Plan(order.Subject(), target)
		if err != nil {
			return order, decision, err
		}
		if decision.Noop {
			return order, decision, nil
		}
		if paymentStatus != enum.PaymentStatusNone {
			decision.PaymentStatus = paymentStatus
		}

		ok, err := t.orders.ApplyTransition(ctx, id, decision.From, order.Version, repository.OrderChange{
			To:            decision.To,
			PaymentStatus: decision.PaymentStatus,
		})
		if err != nil {
			return nil, lifecycle.Decision{}, err
		}
		if ok {
			order.Status = decision.To
			if decision.PaymentStatus != enum.PaymentStatusNone {
				order.PaymentStatus = decision.PaymentStatus
			}
			order.Version++
			return order, decision, nil
		}
	}
	return nil, lifecycle.Decision{}, staleOrders("order changed while the transition was applied", id)
}
