package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/retry"
)

type Handler func(ctx context.Context, key, value []byte) error

// ConsumerConfig is the explicit contract between a delivery worker and
// its transport: how many times a message is attempted before it is
// parked on the dead-letter topic.
type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topic           string
	FromBeginning   bool
	MaxAttempts     int
	DeadLetterTopic string
	Logger          *zap.Logger
}

// deadLetter is where a message is parked once its attempt budget is
// spent.
type deadLetter interface {
	PublishRaw(ctx context.Context, key, value []byte) error
	Close() error
}

type Consumer struct {
	reader *kafka.Reader
	dlq    deadLetter
	log    *zap.Logger
	cfg    *ConsumerConfig
}

func NewConsumer(cfg *ConsumerConfig) *Consumer {
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	start := kafka.LastOffset
	if cfg.FromBeginning {
		start = kafka.FirstOffset
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:               cfg.Brokers,
		GroupID:               cfg.GroupID,
		Topic:                 cfg.Topic,
		StartOffset:           start,
		WatchPartitionChanges: true,

		MinBytes:          1e3,
		MaxBytes:          10e6,
		SessionTimeout:    10 * time.Second,
		RebalanceTimeout:  15 * time.Second,
		HeartbeatInterval: 3 * time.Second,
	})

	log := cfg.Logger.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.GroupID),
	)

	var dlq deadLetter
	if cfg.DeadLetterTopic != "" {
		dlq = NewProducer(cfg.Brokers, cfg.DeadLetterTopic).WithLogger(cfg.Logger)
	}

	return &Consumer{reader: r, dlq: dlq, log: log, cfg: cfg}
}

func (c *Consumer) WithLogger(l *zap.Logger) *Consumer {
	if l == nil {
		return c
	}
	cp := *c
	cp.log = l.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", c.cfg.Topic),
		zap.String("group", c.cfg.GroupID),
	)
	return &cp
}

// Consume fetches messages one at a time. A message whose handler fails
// MaxAttempts times is forwarded to the dead-letter topic and committed;
// everything else is committed only after the handler succeeds.
func (c *Consumer) Consume(ctx context.Context, h Handler) error {
	log := c.log
	log.Info("consumer started", zap.Int("max_attempts", c.cfg.MaxAttempts), zap.String("dead_letter", c.cfg.DeadLetterTopic))

	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("consumer stopped (ctx canceled)")
			return ctx.Err()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped (ctx canceled)")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				log.Debug("fetch EOF; retry", zap.Duration("backoff", backoff))
			} else {
				log.Warn("fetch failed; retry", zap.Error(err), zap.Duration("backoff", backoff))
			}
			time.Sleep(backoff)
			if backoff < maxBackoff {
				backoff *= 2
			}
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = 200 * time.Millisecond

		if !c.process(ctx, msg, h) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				log.Info("commit interrupted by context cancel")
				return ctx.Err()
			}
			log.Warn("commit failed; will retry later", zap.Error(err))
		}
	}
}

// process runs the handler with the configured attempt budget and
// reports whether the message may be committed. An exhausted message is
// parked on the dead-letter topic first; if no dead-letter destination
// is configured, or parking itself fails, the message stays uncommitted
// so the transport redelivers it.
func (c *Consumer) process(ctx context.Context, msg kafka.Message, h Handler) bool {
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, consumerCarrier(msg.Headers))

	herr := retry.Do(msgCtx, func() error {
		return h(msgCtx, msg.Key, msg.Value)
	}, retry.DeliveryPolicy(c.cfg.MaxAttempts, c.log))
	if herr == nil {
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	c.log.Error("handler failed after all attempts",
		zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(herr))
	if c.dlq == nil {
		return false
	}
	if derr := c.dlq.PublishRaw(msgCtx, msg.Key, msg.Value); derr != nil {
		c.log.Error("dead-letter publish failed", zap.Error(derr))
		return false
	}
	c.log.Warn("message dead-lettered",
		zap.String("dead_letter", c.cfg.DeadLetterTopic),
		zap.Int64("offset", msg.Offset))
	return true
}

func (c *Consumer) Close() error {
	if c.dlq != nil {
		_ = c.dlq.Close()
	}
	return c.reader.Close()
}
