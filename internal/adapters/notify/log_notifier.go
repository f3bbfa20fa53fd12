package notify

import (
	"context"
	"log"

	"pickup-commit-service/internal/ports"
)

// LogNotifier writes every message to the process log. Used when no broker is
// configured so local runs still show what would have been sent.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, target ports.NotificationTarget, message string) error {
	log.Printf("notify: phone=%q email=%q message=%q", target.Phone, target.Email, message)
	return nil
}
