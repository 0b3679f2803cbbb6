package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridEndpoint = "/v3/mail/send"

type SendGridTransport struct {
	client *sendgrid.Client
}

// NewSendGridTransport builds a client for the v3 mail send API. An empty host
// means the public SendGrid API.
func NewSendGridTransport(apiKey, host string) *SendGridTransport {
	request := sendgrid.GetRequest(apiKey, sendGridEndpoint, host)
	request.Method = "POST"
	return &SendGridTransport{client: &sendgrid.Client{Request: request}}
}

func (t *SendGridTransport) Name() string { return "sendgrid" }

func (t *SendGridTransport) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(msg.FromName, msg.FromAddress)
	to := mail.NewEmail("", msg.To)
	body := mail.NewV3MailInit(from, msg.Subject, to, mail.NewContent("text/html", msg.HTML))

	resp, err := t.client.SendWithContext(ctx, body)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
