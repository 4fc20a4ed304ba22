package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/domain/notification"
)

var ErrValidation = errors.New("validation error")

// NotifyRequest is the inbound payload. A channel flag set to true
// requires its config to be present; the gate runs before any side
// effect.
type NotifyRequest struct {
	CustomerID  string            `json:"customerId" validate:"required"`
	NotifyEmail bool              `json:"notifyEmail"`
	EmailConfig *EmailConfigInput `json:"emailConfig" validate:"required_if=NotifyEmail true"`
	NotifySMS   bool              `json:"notifySMS"`
	SMSConfig   *SMSConfigInput   `json:"smsConfig" validate:"required_if=NotifySMS true"`
}

type EmailConfigInput struct {
	Email   string `json:"email" validate:"required,email"`
	Content string `json:"content" validate:"required"`
	Sender  string `json:"sender" validate:"required"`
	Subject string `json:"subject"`
}

type SMSConfigInput struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Text        string `json:"text" validate:"required"`
	Sender      string `json:"sender"`
}

var (
	mAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_requests_accepted_total", Help: "Notify requests fully accepted.",
	})
	mRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_requests_rejected_total", Help: "Notify requests failing validation.",
	})
	mFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_requests_failed_total", Help: "Notify requests failing on enqueue or persist.",
	})
	mJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_jobs_enqueued_total", Help: "Jobs enqueued per channel.",
	}, []string{"channel"})
)

// Usecase is the intake orchestrator: one fresh id, enqueue, then
// persist, per requested channel, sequentially. Enqueue happens before
// persist so that intent-to-send is never lost; a dangling queued job
// with no record is the accepted trade-off.
type Usecase struct {
	queue notification.JobQueue
	repo  notification.Repo
	val   *validator.Validate
	newID func() string
	log   *zap.Logger
}

func New(queue notification.JobQueue, repo notification.Repo, log *zap.Logger) *Usecase {
	return &Usecase{
		queue: queue,
		repo:  repo,
		val:   validator.New(validator.WithRequiredStructEnabled()),
		newID: uuid.NewString,
		log:   log,
	}
}

func (u *Usecase) Notify(ctx context.Context, req *NotifyRequest) error {
	if err := u.val.Struct(req); err != nil {
		mRejected.Inc()
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if req.NotifyEmail {
		job := notification.Job{
			EmailConfig: &notification.EmailConfig{
				Email:   req.EmailConfig.Email,
				Content: req.EmailConfig.Content,
				Sender:  req.EmailConfig.Sender,
				Subject: req.EmailConfig.Subject,
			},
		}
		if err := u.dispatch(ctx, req.CustomerID, job); err != nil {
			mFailed.Inc()
			return err
		}
	}

	if req.NotifySMS {
		job := notification.Job{
			SMSConfig: &notification.SMSConfig{
				PhoneNumber: req.SMSConfig.PhoneNumber,
				Text:        req.SMSConfig.Text,
				Sender:      req.SMSConfig.Sender,
			},
		}
		if err := u.dispatch(ctx, req.CustomerID, job); err != nil {
			mFailed.Inc()
			return err
		}
	}

	mAccepted.Inc()
	return nil
}

func (u *Usecase) dispatch(ctx context.Context, customerID string, job notification.Job) error {
	job.NotificationID = u.newID()
	ch := job.Channel()

	if err := u.queue.Enqueue(ctx, job); err != nil {
		u.log.Error("enqueue failed",
			zap.String("channel", string(ch)),
			zap.String("notification_id", job.NotificationID),
			zap.Error(err))
		return fmt.Errorf("enqueue %s job: %w", ch, err)
	}
	mJobs.WithLabelValues(string(ch)).Inc()

	n := &notification.Notification{
		ID:          job.NotificationID,
		CustomerID:  customerID,
		Type:        ch,
		Status:      notification.StatusAccepted,
		EmailConfig: job.EmailConfig,
		SMSConfig:   job.SMSConfig,
	}
	if err := u.repo.Create(ctx, n); err != nil {
		// The job is already in flight; delivery may still happen even
		// though the caller sees a failure.
		u.log.Error("persist failed after enqueue",
			zap.String("channel", string(ch)),
			zap.String("notification_id", job.NotificationID),
			zap.Error(err))
		return fmt.Errorf("persist %s notification: %w", ch, err)
	}

	u.log.Info("notification accepted",
		zap.String("channel", string(ch)),
		zap.String("notification_id", job.NotificationID),
		zap.String("customer_id", customerID))
	return nil
}
