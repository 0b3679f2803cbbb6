package notification

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu   sync.Mutex
	name string
	err  error
	sent []Message
}

func (r *recordingTransport) Name() string { return r.name }

func (r *recordingTransport) Send(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func syncRunner(task func()) { task() }

func TestDispatchUsesPrimary(t *testing.T) {
	primary := &recordingTransport{name: "primary"}
	fallback := &recordingTransport{name: "fallback"}
	d := NewDispatcher(primary, fallback, "no-reply@example.com", "Mood Journal", WithAsyncRunner(syncRunner))

	assert.True(t, d.Dispatch("hello", "alice@example.com", "<p>hi</p>"))
	require.Len(t, primary.sent, 1)
	assert.Empty(t, fallback.sent)
	assert.Equal(t, "alice@example.com", primary.sent[0].To)
	assert.Equal(t, "no-reply@example.com", primary.sent[0].FromAddress)
}

func TestDispatchFallsBackOnce(t *testing.T) {
	primary := &recordingTransport{name: "primary", err: errors.New("api down")}
	fallback := &recordingTransport{name: "fallback", err: errors.New("smtp down")}
	d := NewDispatcher(primary, fallback, "no-reply@example.com", "", WithAsyncRunner(syncRunner))

	assert.True(t, d.Dispatch("hello", "alice@example.com", "<p>hi</p>"))
	assert.Len(t, primary.sent, 1)
	assert.Len(t, fallback.sent, 1)
}

func TestDispatchDoesNotWaitForDelivery(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	primary := &blockingTransport{release: release, done: done}
	d := NewDispatcher(primary, nil, "no-reply@example.com", "")

	assert.True(t, d.Dispatch("hello", "alice@example.com", "<p>hi</p>"))
	close(release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("background delivery did not run")
	}
}

type blockingTransport struct {
	release chan struct{}
	done    chan struct{}
}

func (b *blockingTransport) Name() string { return "blocking" }

func (b *blockingTransport) Send(ctx context.Context, msg Message) error {
	<-b.release
	close(b.done)
	return nil
}

func TestNewFromConfigChain(t *testing.T) {
	d := NewFromConfig(config.MailConfig{})
	assert.Equal(t, "noop", d.primary.Name())
	assert.Nil(t, d.fallback)

	d = NewFromConfig(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 25})
	assert.Equal(t, "smtp", d.primary.Name())
	assert.Nil(t, d.fallback)

	d = NewFromConfig(config.MailConfig{SendGridAPIKey: "key", SMTPHost: "smtp.example.com", SMTPPort: 25, Timeout: time.Second})
	assert.Equal(t, "sendgrid", d.primary.Name())
	require.NotNil(t, d.fallback)
	assert.Equal(t, "smtp", d.fallback.Name())
	assert.Equal(t, time.Second, d.timeout)
}

func TestSendGridTransport(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	transport := NewSendGridTransport("sg-key", server.URL)
	err := transport.Send(context.Background(), Message{
		FromAddress: "no-reply@example.com",
		To:          "alice@example.com",
		Subject:     "hello",
		HTML:        "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "/v3/mail/send", gotPath)
	assert.Equal(t, "Bearer sg-key", gotAuth)
	assert.Contains(t, gotBody, "alice@example.com")
}

func TestSendGridTransportRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	transport := NewSendGridTransport("bad-key", server.URL)
	err := transport.Send(context.Background(), Message{FromAddress: "a@example.com", To: "b@example.com", Subject: "s", HTML: "x"})
	assert.Error(t, err)
}

func TestRenderTemplatesEscapeInput(t *testing.T) {
	html, err := RenderVerification(LinkEmail{Username: "<b>alice</b>", Link: "https://example.com/auth/verify/abc", ValidFor: "24 hours"})
	require.NoError(t, err)
	assert.Contains(t, html, "https://example.com/auth/verify/abc")
	assert.Contains(t, html, "&lt;b&gt;alice&lt;/b&gt;")

	html, err = RenderPasswordReset(LinkEmail{Username: "alice", Link: "https://example.com/auth/reset-password/xyz", ValidFor: "1 hour"})
	require.NoError(t, err)
	assert.Contains(t, html, "reset-password/xyz")
}
