package service

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
	"github.com/vibast-solutions/ms-go-mood-journal/app/metrics"
	"github.com/vibast-solutions/ms-go-mood-journal/app/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Identity is what a resolved session says about the caller.
type Identity struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

type sessionCodec interface {
	IssueSession(sessionID, userID string, expiresAt time.Time) (string, error)
	VerifySession(tokenString string) (sessionID, userID string, err error)
}

type SessionServiceOption func(*SessionService)

type SessionService struct {
	store repository.SessionStore
	codec sessionCodec
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionService(store repository.SessionStore, codec sessionCodec, ttl time.Duration, opts ...SessionServiceOption) *SessionService {
	s := &SessionService{
		store: store,
		codec: codec,
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithSessionClock(now func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		if now != nil {
			s.now = now
		}
	}
}

// Establish records a new session for userID and returns the signed cookie value.
func (s *SessionService) Establish(ctx context.Context, userID string) (string, time.Time, error) {
	now := s.now()
	session := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return "", time.Time{}, err
	}

	signed, err := s.codec.IssueSession(session.ID, userID, session.ExpiresAt)
	if err != nil {
		return "", time.Time{}, err
	}

	metrics.ActiveSessions.Inc()
	return signed, session.ExpiresAt, nil
}

func (s *SessionService) Resolve(ctx context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidSession
	}

	sessionID, userID, err := s.codec.VerifySession(tokenString)
	if err != nil {
		return nil, ErrInvalidSession
	}

	session, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID || !session.ExpiresAt.After(s.now()) {
		return nil, ErrInvalidSession
	}

	return &Identity{
		UserID:    session.UserID,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Destroy removes the server-side record. Unknown or malformed tokens are a no-op.
func (s *SessionService) Destroy(ctx context.Context, tokenString string) error {
	sessionID, _, err := s.codec.VerifySession(tokenString)
	if err != nil {
		return nil
	}
	deleted, err := s.store.Delete(ctx, sessionID)
	if err != nil {
		return err
	}

	if deleted {
		metrics.ActiveSessions.Dec()
	}
	return nil
}

func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		metrics.ActiveSessions.Sub(float64(removed))
	}
	return removed, nil
}

// RunCleanup deletes expired sessions every interval until ctx is done.
func (s *SessionService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.CleanupExpired(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logrus.WithError(err).Error("Failed to delete expired sessions")
				}
				continue
			}
			if removed > 0 {
				logrus.WithField("removed", removed).Info("Expired sessions deleted")
			}
		}
	}
}
