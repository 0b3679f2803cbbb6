package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
)

const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

var ErrNotFound = errors.New("record not found")

// DuplicateError is returned by Create and UpdateFields when a unique
// constraint rejects the write.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// IsDuplicate reports whether err is a DuplicateError and returns its field.
func IsDuplicate(err error) (string, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Field, true
	}
	return "", false
}

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// UserStore persists user records. Lookups return (nil, nil) when nothing matches.
type UserStore interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByCanonicalEmail(ctx context.Context, canonicalEmail string) (*entity.User, error)
	UpdateFields(ctx context.Context, id string, update entity.UserUpdate) error
	MarkVerified(ctx context.Context, id string, at time.Time) (bool, error)
}

// MoodStore persists mood entries. Every method takes the owner id and applies
// it inside the same query; callers should go through ScopedMoods.
type MoodStore interface {
	Insert(ctx context.Context, entry *entity.MoodEntry) error
	FindOwned(ctx context.Context, ownerID, id string) (*entity.MoodEntry, error)
	ListOwned(ctx context.Context, ownerID string, filter entity.MoodFilter) ([]*entity.MoodEntry, error)
	UpdateOwned(ctx context.Context, ownerID string, entry *entity.MoodEntry) (bool, error)
	DeleteOwned(ctx context.Context, ownerID, id string) (bool, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *entity.Session) error
	Find(ctx context.Context, id string) (*entity.Session, error)
	// Delete reports whether a session was actually removed.
	Delete(ctx context.Context, id string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
