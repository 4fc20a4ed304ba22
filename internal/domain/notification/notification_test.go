package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobChannel(t *testing.T) {
	assert.Equal(t, ChannelEmail, Job{EmailConfig: &EmailConfig{}}.Channel())
	assert.Equal(t, ChannelSMS, Job{SMSConfig: &SMSConfig{}}.Channel())
	assert.Equal(t, Channel(""), Job{}.Channel())
}

func TestMarkSent(t *testing.T) {
	n := Notification{
		ID:          "n1",
		CustomerID:  "c1",
		Type:        ChannelEmail,
		Status:      StatusAccepted,
		EmailConfig: &EmailConfig{Email: "a@b.com", Content: "hi", Sender: "s@b.com"},
	}
	n.MarkSent("prov-1")
	assert.Equal(t, StatusSent, n.Status)
	assert.Equal(t, "prov-1", n.MessageID)

	// applying the same receipt again changes nothing
	before := n
	n.MarkSent("prov-1")
	assert.Equal(t, before, n)
}

func TestJobJSONShape(t *testing.T) {
	job := Job{
		NotificationID: "n1",
		EmailConfig:    &EmailConfig{Email: "a@b.com", Content: "hi", Sender: "s@b.com"},
	}
	raw, err := json.Marshal(job)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "n1", m["notificationId"])
	_, hasSMS := m["smsConfig"]
	assert.False(t, hasSMS, "absent config is omitted from the wire shape")
}
