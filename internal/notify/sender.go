package notify

import (
	"context"
	"fmt"

	"ms-tradein/internal/models"
)

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Sender turns notification events into emails. It is the Kafka consumer's
// handler in the notifier process, and the dispatcher's publisher when Kafka
// is disabled.
type Sender struct {
	Mail Mailer
}

func NewSender(mail Mailer) *Sender {
	return &Sender{Mail: mail}
}

func (s *Sender) Handle(ctx context.Context, event models.NotificationEvent) error {
	email, err := Compose(event)
	if err != nil {
		return fmt.Errorf("compose %s: %w", event.Type, err)
	}
	return s.Mail.Send(ctx, email)
}

func (s *Sender) PublishNotification(ctx context.Context, event models.NotificationEvent) error {
	return s.Handle(ctx, event)
}
