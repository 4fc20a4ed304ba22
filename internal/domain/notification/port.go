package notification

import "context"

// Repo is the durable status store. Update persists the full record
// keyed by ID; last writer wins, no optimistic locking.
type Repo interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Notification, error)
	Update(ctx context.Context, n *Notification) error
}

// JobQueue hands a job to an at-least-once asynchronous transport.
// Delivery order is not guaranteed and duplicates are possible.
type JobQueue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Receipt is what a channel provider returns for an accepted send.
type Receipt struct {
	MessageID string
}

type EmailSender interface {
	Send(ctx context.Context, cfg EmailConfig) (Receipt, error)
}

type SMSSender interface {
	Send(ctx context.Context, cfg SMSConfig) (Receipt, error)
}
