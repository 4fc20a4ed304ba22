package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/domain/notification"
)

type fakeQueue struct {
	jobs []notification.Job
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job notification.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeRepo struct {
	records   map[string]*notification.Notification
	createErr error
	updateErr error
	getErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*notification.Notification{}}
}

func (r *fakeRepo) Create(_ context.Context, n *notification.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
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
	if _, ok := r.records[n.ID]; !ok {
		return errors.New("not found")
	}
	cp := *n
	r.records[n.ID] = &cp
	return nil
}

func emailRequest() *NotifyRequest {
	return &NotifyRequest{
		CustomerID:  "c1",
		NotifyEmail: true,
		EmailConfig: &EmailConfigInput{
			Email:   "a@b.com",
			Content: "hi",
			Sender:  "s@b.com",
		},
	}
}

func bothChannelsRequest() *NotifyRequest {
	req := emailRequest()
	req.NotifySMS = true
	req.SMSConfig = &SMSConfigInput{
		PhoneNumber: "+15550001111",
		Text:        "hi",
	}
	return req
}

func TestNotify_EmailOnly(t *testing.T) {
	q := &fakeQueue{}
	r := newFakeRepo()
	uc := New(q, r, zap.NewNop())

	require.NoError(t, uc.Notify(context.Background(), emailRequest()))

	require.Len(t, q.jobs, 1)
	job := q.jobs[0]
	assert.Equal(t, notification.ChannelEmail, job.Channel())
	assert.NotEmpty(t, job.NotificationID)
	assert.Equal(t, "a@b.com", job.EmailConfig.Email)
	assert.Nil(t, job.SMSConfig)

	require.Len(t, r.records, 1)
	rec := r.records[job.NotificationID]
	require.NotNil(t, rec, "record keyed by the enqueued job's id")
	assert.Equal(t, "c1", rec.CustomerID)
	assert.Equal(t, notification.ChannelEmail, rec.Type)
	assert.Equal(t, notification.StatusAccepted, rec.Status)
	assert.Empty(t, rec.MessageID)
	assert.Equal(t, job.EmailConfig, rec.EmailConfig)
}

func TestNotify_BothChannels_IndependentNotifications(t *testing.T) {
	q := &fakeQueue{}
	r := newFakeRepo()
	uc := New(q, r, zap.NewNop())

	require.NoError(t, uc.Notify(context.Background(), bothChannelsRequest()))

	require.Len(t, q.jobs, 2)
	assert.NotEqual(t, q.jobs[0].NotificationID, q.jobs[1].NotificationID)
	assert.Equal(t, notification.ChannelEmail, q.jobs[0].Channel())
	assert.Equal(t, notification.ChannelSMS, q.jobs[1].Channel())

	require.Len(t, r.records, 2)
	for _, job := range q.jobs {
		rec := r.records[job.NotificationID]
		require.NotNil(t, rec)
		assert.Equal(t, notification.StatusAccepted, rec.Status)
	}
}

func TestNotify_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		req  *NotifyRequest
	}{
		{"missing customerId", &NotifyRequest{
			NotifyEmail: true,
			EmailConfig: &EmailConfigInput{Email: "a@b.com", Content: "hi", Sender: "s@b.com"},
		}},
		{"notifyEmail without emailConfig", &NotifyRequest{
			CustomerID: "c1", NotifyEmail: true,
		}},
		{"notifySMS without smsConfig", &NotifyRequest{
			CustomerID: "c1", NotifySMS: true,
		}},
		{"bad email address", &NotifyRequest{
			CustomerID: "c1", NotifyEmail: true,
			EmailConfig: &EmailConfigInput{Email: "not-an-email", Content: "hi", Sender: "s@b.com"},
		}},
		{"sms without text", &NotifyRequest{
			CustomerID: "c1", NotifySMS: true,
			SMSConfig: &SMSConfigInput{PhoneNumber: "+15550001111"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{}
			r := newFakeRepo()
			uc := New(q, r, zap.NewNop())

			err := uc.Notify(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, q.jobs, "no queue side effects on validation failure")
			assert.Empty(t, r.records, "no store side effects on validation failure")
		})
	}
}

func TestNotify_EnqueueFails_NothingPersisted(t *testing.T) {
	q := &fakeQueue{err: errors.New("broker down")}
	r := newFakeRepo()
	uc := New(q, r, zap.NewNop())

	err := uc.Notify(context.Background(), emailRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Empty(t, r.records)
}

func TestNotify_PersistFails_JobAlreadyInFlight(t *testing.T) {
	q := &fakeQueue{}
	r := newFakeRepo()
	r.createErr = errors.New("store down")
	uc := New(q, r, zap.NewNop())

	err := uc.Notify(context.Background(), emailRequest())
	require.Error(t, err)
	assert.Len(t, q.jobs, 1, "enqueue happens before persist")
	assert.Empty(t, r.records)
}

func TestNotify_SecondChannelNotAttemptedAfterFirstFails(t *testing.T) {
	q := &fakeQueue{}
	r := newFakeRepo()
	r.createErr = errors.New("store down")
	uc := New(q, r, zap.NewNop())

	err := uc.Notify(context.Background(), bothChannelsRequest())
	require.Error(t, err)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, notification.ChannelEmail, q.jobs[0].Channel())
}

func TestNotify_IDsAreFreshPerCall(t *testing.T) {
	q := &fakeQueue{}
	r := newFakeRepo()
	uc := New(q, r, zap.NewNop())

	require.NoError(t, uc.Notify(context.Background(), emailRequest()))
	require.NoError(t, uc.Notify(context.Background(), emailRequest()))

	require.Len(t, q.jobs, 2)
	assert.NotEqual(t, q.jobs[0].NotificationID, q.jobs[1].NotificationID)
}
