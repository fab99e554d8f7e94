package eventbus

import (
	"context"
	"time"

	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/core/ports"

	"go.uber.org/zap"
)

// AlertLogger logs every status change. Entering Exception is a warning,
// leaving it is informational.
func AlertLogger(logger *zap.Logger) Subscriber {
	logger = logger.With(zap.String("component", "exception_alerts"))

	return func(event shipment.StatusChanged) {
		fields := []zap.Field{
			zap.String("shipment_id", event.ShipmentID.String()),
			zap.String("from", event.From.String()),
			zap.String("to", event.To.String()),
			zap.Time("occurred_at", event.OccurredAt),
		}
		if event.EntersException() {
			logger.Warn("shipment entered exception", fields...)
			return
		}
		logger.Info("shipment left exception", fields...)
	}
}

// Forwarder relays events to an external publisher such as Redis pub/sub.
// Each publish gets its own timeout; failures are logged and dropped.
func Forwarder(publisher ports.EventPublisher, timeout time.Duration, logger *zap.Logger) Subscriber {
	logger = logger.With(zap.String("component", "event_forwarder"))

	return func(event shipment.StatusChanged) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := publisher.Publish(ctx, event); err != nil {
			logger.Error("failed to forward status change",
				zap.String("shipment_id", event.ShipmentID.String()),
				zap.Error(err),
			)
		}
	}
}
