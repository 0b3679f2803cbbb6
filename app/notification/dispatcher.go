package notification

import (
	"context"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/metrics"
	"github.com/vibast-solutions/ms-go-mood-journal/config"

	"github.com/sirupsen/logrus"
)

const defaultSendTimeout = 15 * time.Second

type AsyncRunner func(task func())

type Option func(*Dispatcher)

// Dispatcher hands messages to a background task and reports acceptance
// immediately. Delivery tries the primary transport and, on failure, the
// fallback once. Delivery errors are logged and never returned.
type Dispatcher struct {
	primary     Transport
	fallback    Transport
	fromAddress string
	fromName    string
	timeout     time.Duration
	asyncRunner AsyncRunner
}

func NewDispatcher(primary, fallback Transport, fromAddress, fromName string, opts ...Option) *Dispatcher {
	if primary == nil {
		primary = NoopTransport{}
	}
	d := &Dispatcher{
		primary:     primary,
		fallback:    fallback,
		fromAddress: fromAddress,
		fromName:    fromName,
		timeout:     defaultSendTimeout,
		asyncRunner: func(task func()) {
			go task()
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromConfig picks the transport chain once: SendGrid first when an API key
// is present, SMTP as fallback (or primary without SendGrid), otherwise no-op.
func NewFromConfig(cfg config.MailConfig, opts ...Option) *Dispatcher {
	var chain []Transport
	if cfg.SendGridAPIKey != "" {
		chain = append(chain, NewSendGridTransport(cfg.SendGridAPIKey, cfg.SendGridHost))
	}
	if cfg.SMTPHost != "" {
		chain = append(chain, NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword))
	}

	var primary, fallback Transport
	if len(chain) > 0 {
		primary = chain[0]
	}
	if len(chain) > 1 {
		fallback = chain[1]
	}

	if cfg.Timeout > 0 {
		opts = append([]Option{WithTimeout(cfg.Timeout)}, opts...)
	}
	return NewDispatcher(primary, fallback, cfg.FromAddress, cfg.FromName, opts...)
}

func WithAsyncRunner(runner AsyncRunner) Option {
	return func(d *Dispatcher) {
		if runner != nil {
			d.asyncRunner = runner
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// Dispatch schedules delivery and returns true once scheduled.
func (d *Dispatcher) Dispatch(subject, recipient, html string) bool {
	msg := Message{
		FromAddress: d.fromAddress,
		FromName:    d.fromName,
		To:          recipient,
		Subject:     subject,
		HTML:        html,
	}

	d.asyncRunner(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.deliver(ctx, msg)
	})
	return true
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	logger := logrus.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	})

	err := d.primary.Send(ctx, msg)
	if err == nil {
		metrics.EmailsTotal.WithLabelValues(d.primary.Name(), metrics.StatusSuccess).Inc()
		logger.WithField("transport", d.primary.Name()).Info("Email sent")
		return
	}
	metrics.EmailsTotal.WithLabelValues(d.primary.Name(), metrics.StatusFailure).Inc()

	if d.fallback == nil {
		logger.WithError(err).WithField("transport", d.primary.Name()).Error("Failed to send email")
		return
	}
	logger.WithError(err).WithField("transport", d.primary.Name()).Warn("Primary mail transport failed, trying fallback")

	if err = d.fallback.Send(ctx, msg); err != nil {
		metrics.EmailsTotal.WithLabelValues(d.fallback.Name(), metrics.StatusFailure).Inc()
		logger.WithError(err).WithField("transport", d.fallback.Name()).Error("Failed to send email")
		return
	}
	metrics.EmailsTotal.WithLabelValues(d.fallback.Name(), metrics.StatusSuccess).Inc()
	logger.WithField("transport", d.fallback.Name()).Info("Email sent")
}
