package service

import (
	"context"

	"github.com/sangkips/tableside-api/internal/domain/event"
	"go.uber.org/zap"
)

// publish sends e after the state change it describes has committed. Broker
// failures are logged and never undo the change.
func publish(ctx context.Context, pub event.Publisher, log *zap.Logger, e event.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, e); err != nil {
		log.Warn("domain event not published",
			zap.String("type", string(e.Type)),
			zap.String("aggregate_id", e.AggregateID.String()),
			zap.Error(err))
	}
}
