package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type ctxKey string

const (
	// OutletIDKey is the context key for the current outlet
	OutletIDKey ctxKey = "outlet_id"
	// SkipOutletScopeKey marks background jobs that work across outlets
	SkipOutletScopeKey ctxKey = "skip_outlet_scope"
)

// WithOutlet adds the outlet ID to context
func WithOutlet(ctx context.Context, outletID uuid.UUID) context.Context {
	return context.WithValue(ctx, OutletIDKey, outletID)
}

// GetOutletID extracts the outlet ID from context
func GetOutletID(ctx context.Context) (uuid.UUID, bool) {
	outletID, ok := ctx.Value(OutletIDKey).(uuid.UUID)
	return outletID, ok
}

// WithSkipOutletScope lets sweepers and the payment consumer read every outlet
func WithSkipOutletScope(ctx context.Context, skip bool) context.Context {
	return context.WithValue(ctx, SkipOutletScopeKey, skip)
}

// SkipOutletScope reports whether outlet filtering is disabled for ctx
func SkipOutletScope(ctx context.Context) bool {
	skip, ok := ctx.Value(SkipOutletScopeKey).(bool)
	return ok && skip
}

// Transactor runs fn in a single transaction. Repositories called with the
// ctx passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ErrOutletScopeMissing is returned by writes that need an outlet but ran without one
var ErrOutletScopeMissing = errors.New("repository: outlet scope missing from context")
