// Package lifecycle declares the legal order status transitions per channel.
// It holds no state; persistence applies a Decision with a conditional write.
package lifecycle

import (
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/pkg/apperror"
)

// Subject is the part of an order the machine looks at
type Subject struct {
	Channel       enum.Channel
	PaymentMethod enum.PaymentMethod
	PaymentStatus enum.PaymentStatus
	Status        enum.OrderStatus
}

// Decision is the write a transition requires
type Decision struct {
	From          enum.OrderStatus
	To            enum.OrderStatus
	PaymentStatus enum.PaymentStatus
	// Noop is set when the order already sits in the requested terminal state
	Noop bool
}

// TransitionDetails is returned to clients when a transition is refused
type TransitionDetails struct {
	CurrentStatus   enum.OrderStatus `json:"current_status"`
	RequestedStatus enum.OrderStatus `json:"requested_status"`
	Reason          string           `json:"reason"`
}

type edges map[enum.OrderStatus][]enum.OrderStatus

var (
	tableEdges = edges{
		enum.OrderStatusPending:   {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
		enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
		enum.OrderStatusReady:     {enum.OrderStatusServed, enum.OrderStatusCancelled},
		enum.OrderStatusServed:    {enum.OrderStatusCancelled},
	}
	pickupCashEdges = edges{
		enum.OrderStatusPending:   {enum.OrderStatusConfirmed, enum.OrderStatusDelivered, enum.OrderStatusCancelled},
		enum.OrderStatusConfirmed: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
	}
	pickupOnlineEdges = edges{
		enum.OrderStatusPending: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
	}
	deliveryEdges = edges{
		enum.OrderStatusPending:   {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
		enum.OrderStatusConfirmed: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
	}
)

func edgesFor(s Subject) edges {
	switch s.Channel {
	case enum.ChannelTable:
		return tableEdges
	case enum.ChannelPickup:
		if s.PaymentMethod == enum.PaymentMethodOnline {
			return pickupOnlineEdges
		}
		return pickupCashEdges
	case enum.ChannelDelivery:
		return deliveryEdges
	}
	return nil
}

// Allowed lists the statuses reachable from the subject's current status
func Allowed(s Subject) []enum.OrderStatus {
	next := edgesFor(s)[s.Status]
	out := make([]enum.OrderStatus, len(next))
	copy(out, next)
	return out
}

// Plan validates a requested transition and returns the write it implies
func Plan(s Subject, target enum.OrderStatus) (Decision, error) {
	if target == enum.OrderStatusCompleted {
		return Decision{}, refuse(s, target, "orders are completed by billing")
	}
	if s.Status == target && target.IsTerminal() {
		return Decision{From: s.Status, To: target, PaymentStatus: s.PaymentStatus, Noop: true}, nil
	}
	if !contains(edgesFor(s)[s.Status], target) {
		return Decision{}, refuse(s, target, "transition not allowed from current status")
	}

	d := Decision{From: s.Status, To: target, PaymentStatus: s.PaymentStatus}
	if s.PaymentMethod == enum.PaymentMethodOnline && s.Channel != enum.ChannelTable {
		if (target == enum.OrderStatusConfirmed || target == enum.OrderStatusDelivered) &&
			s.PaymentStatus != enum.PaymentStatusPaid {
			return Decision{}, refuse(s, target, "online payment is not settled")
		}
		// an open intent must not settle onto a cancelled order
		if target == enum.OrderStatusCancelled && s.PaymentStatus == enum.PaymentStatusPending {
			d.PaymentStatus = enum.PaymentStatusFailed
		}
	}
	if target == enum.OrderStatusDelivered && s.PaymentMethod != enum.PaymentMethodOnline {
		d.PaymentStatus = enum.PaymentStatusPaid
	}
	return d, nil
}

// CanComplete reports whether the order may be absorbed into a bill
func CanComplete(s Subject) bool {
	return s.Channel == enum.ChannelTable && s.Status.IsActive()
}

func refuse(s Subject, target enum.OrderStatus, reason string) error {
	return apperror.ErrInvalidTransition.WithDetails(TransitionDetails{
		CurrentStatus:   s.Status,
		RequestedStatus: target,
		Reason:          reason,
	})
}

func contains(list []enum.OrderStatus, s enum.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
