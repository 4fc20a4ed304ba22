package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/notifyhub/herald/internal/domain/notification"
)

var ErrEmptyJob = errors.New("job carries no channel config")

// JobQueueKafka routes each job to the topic of its channel. One topic
// per channel, keyed by notification id.
type JobQueueKafka struct {
	email *Producer
	sms   *Producer
}

func NewJobQueue(email, sms *Producer) *JobQueueKafka {
	return &JobQueueKafka{email: email, sms: sms}
}

var _ notification.JobQueue = (*JobQueueKafka)(nil)

func (q *JobQueueKafka) Enqueue(ctx context.Context, job notification.Job) error {
	switch job.Channel() {
	case notification.ChannelEmail:
		return q.email.PublishJSON(ctx, []byte(job.NotificationID), job)
	case notification.ChannelSMS:
		return q.sms.PublishJSON(ctx, []byte(job.NotificationID), job)
	default:
		return ErrEmptyJob
	}
}

func (q *JobQueueKafka) Close() error {
	err := q.email.Close()
	if e := q.sms.Close(); err == nil {
		err = e
	}
	return err
}

// JSONHandler decodes message bodies into T before invoking handle.
func JSONHandler[T any](handle func(context.Context, []byte, T) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var msg T
		if err := json.Unmarshal(value, &msg); err != nil {
			return fmt.Errorf("decode message: %w", err)
		}
		return handle(ctx, key, msg)
	}
}
