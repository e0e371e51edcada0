// Package services implements the translation resolution pipeline and its
// supporting services.
package services

import (
	"context"
	"time"

	"linguatranslate/internal/config"
	"linguatranslate/internal/observability"
	"linguatranslate/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

// SlidingWindowLimiter admits at most Limit requests per client within a
// sliding Window. Storage failures fail open: an unreachable store must not
// take the service down with it.
type SlidingWindowLimiter struct {
	store  storage.Store
	window time.Duration
	limit  int
	logger *observability.Logger
}

// NewSlidingWindowLimiter creates a rate limiter over the given store.
func NewSlidingWindowLimiter(store storage.Store, cfg *config.RateLimitConfig, logger *observability.Logger) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		window: cfg.Window,
		limit:  cfg.Limit,
		logger: logger,
	}
}

// Allow reports whether the client may proceed. Admitted requests are
// recorded; rejected requests are not, so a client at the limit does not
// push its own window forward by retrying.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, clientID string) (allowed bool, err error) {
	ctx, span := observability.TraceRateLimitFunction(ctx, "Allow",
		observability.AttributeClientID(clientID),
	)
	defer observability.FinishSpan(span, &err)

	now := time.Now()
	cutoff := now.Add(-l.window)
	key := "ratelimit:" + clientID

	// Purge, check, and record run as one store operation; two concurrent
	// requests at limit-1 must not both be admitted.
	admitted, count, err := l.store.WindowAllow(ctx, key, cutoff, now, l.window, int64(l.limit))
	if err != nil {
		l.logger.Warn(ctx, "Rate limit storage unavailable, failing open", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
		return true, nil
	}

	if !admitted {
		span.SetAttributes(attribute.Int64("ratelimit.count", count))
		l.logger.Debug(ctx, "Rate limit exceeded", map[string]interface{}{
			"client_id": clientID,
			"count":     count,
			"limit":     l.limit,
		})
		return false, nil
	}
	return true, nil
}
