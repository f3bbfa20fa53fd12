package ports

import "context"

// Contact channels for one stop. Either field may be empty; a target with
// neither configured is still a valid send (implementations log it instead).
type NotificationTarget struct {
	Phone string
	Email string
}

// Contract for best-effort message delivery to a stop's contact.
// Failures are per-target and never fatal to the pipeline; no delivery
// receipts are tracked.
type Notifier interface {
	Send(ctx context.Context, target NotificationTarget, message string) error
}
