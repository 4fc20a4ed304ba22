package delivery

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/domain/notification"
	kafkax "github.com/notifyhub/herald/internal/repository/kafka"
)

type Runner struct {
	log  *zap.Logger
	cons *kafkax.Consumer
	h    *Handler

	mConsumed prometheus.Counter
	mDone     prometheus.Counter
	mErrors   prometheus.Counter
}

// NewRunner binds a handler to its consumer. Counters carry the channel
// as a constant label, so email and sms runners register cleanly even
// when hosted in one process.
func NewRunner(log *zap.Logger, cons *kafkax.Consumer, h *Handler, channel notification.Channel) *Runner {
	labels := prometheus.Labels{"channel": string(channel)}
	return &Runner{
		log:  log.With(zap.String("channel", string(channel))),
		cons: cons,
		h:    h,
		mConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "delivery_jobs_consumed_total",
			Help:        "Jobs consumed from the dispatch queue",
			ConstLabels: labels,
		}),
		mDone: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "delivery_jobs_delivered_total",
			Help:        "Jobs delivered and reconciled",
			ConstLabels: labels,
		}),
		mErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "delivery_job_errors_total",
			Help:        "Job attempts that failed",
			ConstLabels: labels,
		}),
	}
}

// Run consumes jobs one at a time. Job structure is trusted: only the
// intake orchestrator produces messages on this topic.
func (r *Runner) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(
		func(ctx context.Context, _ []byte, job notification.Job) error {
			r.mConsumed.Inc()
			if err := r.h.HandleJob(ctx, job); err != nil {
				r.mErrors.Inc()
				return err
			}
			r.mDone.Inc()
			return nil
		},
	)

	if err := r.cons.Consume(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		r.log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return ctx.Err()
}
