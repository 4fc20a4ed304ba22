package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/domain/notification"
)

type fakeRepo struct {
	records   map[string]*notification.Notification
	getErr    error
	updateErr error
	updates   int
}

func newFakeRepo(seed ...*notification.Notification) *fakeRepo {
	r := &fakeRepo{records: map[string]*notification.Notification{}}
	for _, n := range seed {
		cp := *n
		r.records[n.ID] = &cp
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, n *notification.Notification) error {
	cp := *n
	r.records[n.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	n, ok := r.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *n
	return &cp, nil
}

func (r *fakeRepo) ListByCustomer(_ context.Context, customerID string) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range r.records {
		if n.CustomerID == customerID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, n *notification.Notification) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	cp := *n
	r.records[n.ID] = &cp
	return nil
}

type fakeEmailSender struct {
	calls     int
	messageID string
	err       error
}

func (s *fakeEmailSender) Send(_ context.Context, _ notification.EmailConfig) (notification.Receipt, error) {
	s.calls++
	if s.err != nil {
		return notification.Receipt{}, s.err
	}
	return notification.Receipt{MessageID: s.messageID}, nil
}

type fakeSMSSender struct {
	calls     int
	messageID string
	err       error
}

func (s *fakeSMSSender) Send(_ context.Context, _ notification.SMSConfig) (notification.Receipt, error) {
	s.calls++
	if s.err != nil {
		return notification.Receipt{}, s.err
	}
	return notification.Receipt{MessageID: s.messageID}, nil
}

func acceptedEmailNotification(id string) *notification.Notification {
	return &notification.Notification{
		ID:         id,
		CustomerID: "c1",
		Type:       notification.ChannelEmail,
		Status:     notification.StatusAccepted,
		EmailConfig: &notification.EmailConfig{
			Email:   "a@b.com",
			Content: "hi",
			Sender:  "s@b.com",
			Subject: "greetings",
		},
	}
}

func emailJob(id string) notification.Job {
	return notification.Job{
		NotificationID: id,
		EmailConfig: &notification.EmailConfig{
			Email:   "a@b.com",
			Content: "hi",
			Sender:  "s@b.com",
			Subject: "greetings",
		},
	}
}

func TestHandleJob_EmailDelivered(t *testing.T) {
	repo := newFakeRepo(acceptedEmailNotification("n1"))
	sender := &fakeEmailSender{messageID: "prov-123"}
	h := &Handler{Repo: repo, Email: sender, Log: zap.NewNop()}

	require.NoError(t, h.HandleJob(context.Background(), emailJob("n1")))

	assert.Equal(t, 1, sender.calls)
	got := repo.records["n1"]
	assert.Equal(t, notification.StatusSent, got.Status)
	assert.Equal(t, "prov-123", got.MessageID)
	// everything else preserved verbatim
	assert.Equal(t, "c1", got.CustomerID)
	assert.Equal(t, notification.ChannelEmail, got.Type)
	assert.Equal(t, "greetings", got.EmailConfig.Subject)
}

func TestHandleJob_SMSDelivered(t *testing.T) {
	repo := newFakeRepo(&notification.Notification{
		ID:         "n2",
		CustomerID: "c2",
		Type:       notification.ChannelSMS,
		Status:     notification.StatusAccepted,
		SMSConfig:  &notification.SMSConfig{PhoneNumber: "+15550001111", Text: "hi"},
	})
	sender := &fakeSMSSender{messageID: "sms-9"}
	h := &Handler{Repo: repo, SMS: sender, Log: zap.NewNop()}

	job := notification.Job{
		NotificationID: "n2",
		SMSConfig:      &notification.SMSConfig{PhoneNumber: "+15550001111", Text: "hi"},
	}
	require.NoError(t, h.HandleJob(context.Background(), job))

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, notification.StatusSent, repo.records["n2"].Status)
	assert.Equal(t, "sms-9", repo.records["n2"].MessageID)
}

func TestHandleJob_DuplicateDeliveryConverges(t *testing.T) {
	repo := newFakeRepo(acceptedEmailNotification("n1"))
	sender := &fakeEmailSender{messageID: "prov-123"}
	h := &Handler{Repo: repo, Email: sender, Log: zap.NewNop()}

	job := emailJob("n1")
	require.NoError(t, h.HandleJob(context.Background(), job))
	require.NoError(t, h.HandleJob(context.Background(), job))

	assert.Equal(t, 2, sender.calls, "redelivery re-sends the message")
	assert.Equal(t, 2, repo.updates)
	got := repo.records["n1"]
	assert.Equal(t, notification.StatusSent, got.Status)
	assert.Equal(t, "prov-123", got.MessageID)
}

func TestHandleJob_SendFailurePropagates(t *testing.T) {
	repo := newFakeRepo(acceptedEmailNotification("n1"))
	sender := &fakeEmailSender{err: errors.New("provider rejected")}
	h := &Handler{Repo: repo, Email: sender, Log: zap.NewNop()}

	err := h.HandleJob(context.Background(), emailJob("n1"))
	require.Error(t, err)
	assert.Equal(t, notification.StatusAccepted, repo.records["n1"].Status)
	assert.Zero(t, repo.updates)
}

func TestHandleJob_LookupFailurePropagates(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeEmailSender{messageID: "prov-123"}
	h := &Handler{Repo: repo, Email: sender, Log: zap.NewNop()}

	err := h.HandleJob(context.Background(), emailJob("missing"))
	require.Error(t, err)
	assert.Equal(t, 1, sender.calls, "send already happened when the lookup failed")
}

func TestHandleJob_UpdateFailurePropagates(t *testing.T) {
	repo := newFakeRepo(acceptedEmailNotification("n1"))
	repo.updateErr = errors.New("store down")
	sender := &fakeEmailSender{messageID: "prov-123"}
	h := &Handler{Repo: repo, Email: sender, Log: zap.NewNop()}

	err := h.HandleJob(context.Background(), emailJob("n1"))
	require.Error(t, err)
	assert.Equal(t, notification.StatusAccepted, repo.records["n1"].Status)
}

func TestHandleJob_NoSenderForChannel(t *testing.T) {
	repo := newFakeRepo(acceptedEmailNotification("n1"))
	h := &Handler{Repo: repo, Log: zap.NewNop()}

	err := h.HandleJob(context.Background(), emailJob("n1"))
	require.Error(t, err)
}
