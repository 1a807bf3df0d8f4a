package domain

import (
	"context"
	"time"
)

// MessageLog records one customer notification sent outside the platform
// (sms, email, a printed slip) so staff can see what the customer was told.
type MessageLog struct {
	ID        int64
	OrderID   string
	Channel   string
	Recipient string
	Body      string
	CreatedAt time.Time
}

// MessageLogRepository persists the notification trail.
type MessageLogRepository interface {
	Append(ctx context.Context, log *MessageLog) error
	List(ctx context.Context, orderID string, limit int) ([]MessageLog, error)
}
