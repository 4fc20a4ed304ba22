package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DeliveryPolicy governs in-process redelivery of a queued job before it
// is routed to the dead-letter topic. Attempts comes from the consumer's
// configured contract with its transport.
func DeliveryPolicy(attempts int, log *zap.Logger) Policy {
	return Policy{
		Name:     "job-delivery",
		Attempts: attempts,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 30 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("job delivery attempt failed", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("job delivery attempts exhausted", zap.Error(err))
			}
		},
	}
}
