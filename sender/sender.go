package sender

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Message is one outbound HTML e-mail, such as a shipment tracking notice.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Validate rejects messages that cannot be delivered or would break the
// header block.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient is required")
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	if strings.ContainsAny(m.ToName+m.Subject, "\r\n") {
		return errors.New("header fields must be single-line")
	}
	return nil
}

// Receipt identifies a delivered message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Mailer delivers transactional e-mail to customers.
type Mailer interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
