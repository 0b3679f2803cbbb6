package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
	"github.com/vibast-solutions/ms-go-mood-journal/app/repository"
	"github.com/vibast-solutions/ms-go-mood-journal/app/service"
	"github.com/vibast-solutions/ms-go-mood-journal/app/token"
	"github.com/vibast-solutions/ms-go-mood-journal/app/types"
	"github.com/vibast-solutions/ms-go-mood-journal/config"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentMail struct {
	Subject   string
	Recipient string
	HTML      string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *recordingNotifier) Dispatch(subject, recipient, html string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{Subject: subject, Recipient: recipient, HTML: html})
	return true
}

func (n *recordingNotifier) Sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

type testEnv struct {
	cfg      *config.Config
	clock    *fakeClock
	store    *repository.FileStore
	codec    *token.Codec
	notifier *recordingNotifier
	sessions *service.SessionService
	accounts *service.AccountService
	moods    *service.MoodService
}

func newTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			SecretKey: "test-secret",
			BaseURL:   "http://journal.test",
		},
		Session: config.SessionConfig{
			TTL:        time.Hour,
			CookieName: "mj_session",
		},
		Tokens: config.TokenConfig{
			VerifyMaxAge: 24 * time.Hour,
			ResetMaxAge:  time.Hour,
		},
		Password: config.PasswordConfig{
			Policy:     config.PasswordPolicy{MinLength: 6},
			BcryptCost: bcrypt.MinCost,
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := repository.OpenFileStore(filepath.Join(t.TempDir(), "moods.json"))
	require.NoError(t, err)

	cfg := newTestConfig()
	clock := newFakeClock()
	codec := token.NewCodec(cfg.App.SecretKey, token.WithClock(clock.Now))
	notifier := &recordingNotifier{}
	sessions := service.NewSessionService(
		repository.NewMemorySessionStore(),
		codec,
		cfg.Session.TTL,
		service.WithSessionClock(clock.Now),
	)
	accounts := service.NewAccountService(
		store,
		service.NewBcryptHasher(cfg.Password.BcryptCost),
		codec,
		notifier,
		sessions,
		cfg,
		service.WithClock(clock.Now),
	)

	return &testEnv{
		cfg:      cfg,
		clock:    clock,
		store:    store,
		codec:    codec,
		notifier: notifier,
		sessions: sessions,
		accounts: accounts,
		moods:    service.NewMoodService(store, service.WithMoodClock(clock.Now)),
	}
}

func (e *testEnv) register(t *testing.T, username, email, password string) *entity.User {
	t.Helper()

	result, err := e.accounts.Register(context.Background(), &types.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return result.User
}

func (e *testEnv) registerVerified(t *testing.T, username, email, password string) *entity.User {
	t.Helper()

	user := e.register(t, username, email, password)
	tok, err := e.codec.Issue(token.PurposeEmailVerification, email)
	require.NoError(t, err)

	outcome, err := e.accounts.VerifyEmail(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, service.VerifyOutcomeVerified, outcome)
	return user
}
