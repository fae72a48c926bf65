package broker

import (
	"context"
	"time"

	"admissions/internal/config"
	"admissions/internal/logger"
	"admissions/pkg/errors"
	"admissions/pkg/metrics"
	"admissions/pkg/models"
	"admissions/pkg/retry"
)

func retryPolicy(cfg config.RetryConfig) retry.Policy {
	return cfg.Policy()
}

// handleWithRetry runs handler under the retry policy, turning panics into
// errors. Invalid envelopes are never retried.
func handleWithRetry(ctx context.Context, log logger.Logger, policy retry.Policy, topic string, envelope models.MessageEnvelope, handler HandlerFunc) error {
	if err := envelope.Validate(); err != nil {
		return err
	}

	return retry.Do(ctx, policy, func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.RecoverPanic(r)
				log.ErrorwCtx(ctx, "Panic recovered during message processing",
					"error", err,
					"topic", topic,
				)
			}
		}()
		return handler(ctx, envelope)
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.IncRetryAttempt("consume:" + topic)
		log.WarnwCtx(ctx, "Retrying message processing",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
			"topic", topic,
		)
	})
}
