package postgres

import (
	"context"
	"fmt"

	"github.com/notifyhub/herald/internal/domain/notification"
)

var _ notification.Repo = (*NotificationRepoImpl)(nil)

type NotificationRepoImpl struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepoImpl { return &NotificationRepoImpl{db: db} }

const (
	qNotifInsert = `
INSERT INTO notifications (notification_id, customer_id, type, status, message_id, email_config, sms_config)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7);
`
	qNotifByID = `
SELECT notification_id, customer_id, type, status, COALESCE(message_id, ''), email_config, sms_config
FROM notifications
WHERE notification_id = $1;
`
	qNotifByCustomer = `
SELECT notification_id, customer_id, type, status, COALESCE(message_id, ''), email_config, sms_config
FROM notifications
WHERE customer_id = $1
ORDER BY created_at DESC;
`
	qNotifUpdate = `
UPDATE notifications
SET customer_id  = $2,
    type         = $3,
    status       = $4,
    message_id   = NULLIF($5, ''),
    email_config = $6,
    sms_config   = $7,
    updated_at   = now()
WHERE notification_id = $1;
`
)

func (r *NotificationRepoImpl) Create(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qNotifInsert,
		n.ID,
		n.CustomerID,
		n.Type,
		n.Status,
		n.MessageID,
		n.EmailConfig,
		n.SMSConfig,
	); err != nil {
		return fmt.Errorf("insert notification: %w", mapErr(err))
	}
	return nil
}

func (r *NotificationRepoImpl) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n notification.Notification
	if err := r.db.Pool.QueryRow(ctx, qNotifByID, id).Scan(
		&n.ID,
		&n.CustomerID,
		&n.Type,
		&n.Status,
		&n.MessageID,
		&n.EmailConfig,
		&n.SMSConfig,
	); err != nil {
		return nil, fmt.Errorf("get notification %s: %w", id, mapErr(err))
	}
	return &n, nil
}

func (r *NotificationRepoImpl) ListByCustomer(ctx context.Context, customerID string) ([]*notification.Notification, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qNotifByCustomer, customerID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(
			&n.ID,
			&n.CustomerID,
			&n.Type,
			&n.Status,
			&n.MessageID,
			&n.EmailConfig,
			&n.SMSConfig,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		nc := n
		out = append(out, &nc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *NotificationRepoImpl) Update(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qNotifUpdate,
		n.ID,
		n.CustomerID,
		n.Type,
		n.Status,
		n.MessageID,
		n.EmailConfig,
		n.SMSConfig,
	)
	if err != nil {
		return fmt.Errorf("update notification %s: %w", n.ID, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update notification %s: %w", n.ID, ErrNotFound)
	}
	return nil
}
