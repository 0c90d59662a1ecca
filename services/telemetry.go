package services

import (
	"context"
	"time"

	"github.com/tivrax/storefront/events"
	aws_pkg "github.com/tivrax/storefront/pkg/aws"
	"go.uber.org/zap"
)

// publishEvent sends an event and logs on failure. Events never fail the
// request that produced them.
func publishEvent(ctx context.Context, publisher events.Publisher, logger *zap.Logger, eventType, key string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, eventType, key, payload); err != nil {
		logger.Error("Failed to publish event", zap.String("event_type", eventType), zap.String("key", key), zap.Error(err))
		return
	}
	logger.Debug("Published event", zap.String("event_type", eventType), zap.String("key", key))
}

// recordMetrics runs fn in the background with its own 5s deadline.
func recordMetrics(metrics aws_pkg.MetricsRecorder, fn func(ctx context.Context, m aws_pkg.MetricsRecorder)) {
	if metrics == nil || !metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx, metrics)
	}()
}
