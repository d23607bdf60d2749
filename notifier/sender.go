package notifier

import (
	"context"
	"time"
)

// SendResult describes a successfully dispatched message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender sends order confirmation mail. Delivery is best-effort: callers
// must never let a send failure affect the transaction that triggered it.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}
