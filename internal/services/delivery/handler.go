package delivery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/domain/notification"
	"github.com/notifyhub/herald/internal/obs"
)

// Handler runs one delivery attempt: send through the channel provider,
// look up the record, merge the terminal fields, write the full record
// back. Every error returns to the consumer loop untouched; retry and
// dead-lettering live there, not here. Redelivery of the same job simply
// repeats the sequence, which re-sends the message but converges on the
// same SENT record.
type Handler struct {
	Repo  notification.Repo
	Email notification.EmailSender
	SMS   notification.SMSSender
	Log   *zap.Logger
}

func (h *Handler) HandleJob(ctx context.Context, job notification.Job) error {
	rcpt, err := h.send(ctx, job)
	if err != nil {
		return fmt.Errorf("send %s %s: %w", job.Channel(), job.NotificationID, err)
	}

	n, err := h.Repo.GetByID(ctx, job.NotificationID)
	if err != nil {
		return fmt.Errorf("get notification %s: %w", job.NotificationID, err)
	}

	n.MarkSent(rcpt.MessageID)

	if err := h.Repo.Update(ctx, n); err != nil {
		return fmt.Errorf("update notification %s: %w", job.NotificationID, err)
	}

	obs.WithTrace(ctx, h.Log).Info("notification delivered",
		zap.String("notification_id", n.ID),
		zap.String("channel", string(n.Type)),
		zap.String("message_id", n.MessageID),
	)
	return nil
}

func (h *Handler) send(ctx context.Context, job notification.Job) (notification.Receipt, error) {
	switch job.Channel() {
	case notification.ChannelEmail:
		if h.Email == nil {
			return notification.Receipt{}, fmt.Errorf("no email sender configured")
		}
		return h.Email.Send(ctx, *job.EmailConfig)
	case notification.ChannelSMS:
		if h.SMS == nil {
			return notification.Receipt{}, fmt.Errorf("no sms sender configured")
		}
		return h.SMS.Send(ctx, *job.SMSConfig)
	default:
		return notification.Receipt{}, fmt.Errorf("job carries no channel config")
	}
}
