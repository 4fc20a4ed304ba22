package notification

// Channel is a delivery medium. Each channel owns a queue and a sender.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// Status of a notification. Transitions only forward: ACCEPTED -> SENT.
// Permanent delivery failure is not modeled here; it lives on the
// dead-letter topic.
type Status string

const (
	StatusAccepted Status = "ACCEPTED"
	StatusSent     Status = "SENT"
)

type EmailConfig struct {
	Email   string `json:"email"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
	Subject string `json:"subject,omitempty"`
}

type SMSConfig struct {
	PhoneNumber string `json:"phoneNumber"`
	Text        string `json:"text"`
	Sender      string `json:"sender,omitempty"`
}

// Notification is the durable record tracking one requested delivery.
// Exactly one of EmailConfig/SMSConfig is set, matching Type.
type Notification struct {
	ID          string       `json:"notificationId"`
	CustomerID  string       `json:"customerId"`
	Type        Channel      `json:"type"`
	Status      Status       `json:"status"`
	MessageID   string       `json:"messageId,omitempty"`
	EmailConfig *EmailConfig `json:"emailConfig,omitempty"`
	SMSConfig   *SMSConfig   `json:"smsConfig,omitempty"`
}

// MarkSent advances the record to its terminal state. All other fields
// are preserved verbatim; re-applying with the same receipt is a no-op.
func (n *Notification) MarkSent(messageID string) {
	n.Status = StatusSent
	n.MessageID = messageID
}

// Job is one channel-specific delivery task carried on the dispatch
// queue. It is ephemeral and never persisted on its own. Exactly one
// config must be set.
type Job struct {
	NotificationID string       `json:"notificationId"`
	EmailConfig    *EmailConfig `json:"emailConfig,omitempty"`
	SMSConfig      *SMSConfig   `json:"smsConfig,omitempty"`
}

// Channel reports which channel the job targets, or "" for a job
// carrying no config.
func (j Job) Channel() Channel {
	switch {
	case j.EmailConfig != nil:
		return ChannelEmail
	case j.SMSConfig != nil:
		return ChannelSMS
	default:
		return ""
	}
}
