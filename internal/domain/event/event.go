// Package event holds the domain events emitted after state changes commit.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type is the routing key an event is published under
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	OrderPaid          Type = "order.paid"
	OrderPaymentFailed Type = "order.payment_failed"
	BillCreated        Type = "bill.created"
	DuePaymentRecorded Type = "due_payment.recorded"
	LedgerSyncFailed   Type = "ledger.sync_failed"
)

// Event is the envelope sent to the broker
type Event struct {
	ID          uuid.UUID   `json:"id"`
	Type        Type        `json:"type"`
	OutletID    uuid.UUID   `json:"outlet_id"`
	AggregateID uuid.UUID   `json:"aggregate_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Payload     interface{} `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time
func New(t Type, outletID, aggregateID uuid.UUID, payload interface{}) Event {
	return Event{
		ID:          uuid.New(),
		Type:        t,
		OutletID:    outletID,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

// Publisher delivers events. Implementations must not block on a down broker
// for longer than ctx allows.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Types lists the recorded event types in publish order
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]Type, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
