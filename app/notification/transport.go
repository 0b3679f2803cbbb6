package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Message struct {
	FromAddress string
	FromName    string
	To          string
	Subject     string
	HTML        string
}

// Transport delivers one message synchronously.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// NoopTransport is used when no mail credentials are configured.
type NoopTransport struct{}

func (NoopTransport) Name() string { return "noop" }

func (NoopTransport) Send(ctx context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Warn("No mail transport configured, message not sent")
	return nil
}
