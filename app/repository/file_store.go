package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
)

type fileData struct {
	Users []*entity.User      `json:"users"`
	Moods []*entity.MoodEntry `json:"moods"`
}

// FileStore keeps users and mood entries in a single JSON document. Every
// mutation is checked and applied under one mutex and persisted with a
// write-to-temp-then-rename.
type FileStore struct {
	mu   sync.Mutex
	path string
	data fileData
}

func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read data file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("decode data file: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) Create(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.data.Users {
		if u.Username == user.Username {
			return &DuplicateError{Field: FieldUsername}
		}
		if u.CanonicalEmail == user.CanonicalEmail {
			return &DuplicateError{Field: FieldEmail}
		}
	}

	stored := *user
	s.data.Users = append(s.data.Users, &stored)
	if err := s.flush(); err != nil {
		s.data.Users = s.data.Users[:len(s.data.Users)-1]
		return err
	}
	return nil
}

func (s *FileStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return s.findUser(func(u *entity.User) bool { return u.ID == id }), nil
}

func (s *FileStore) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return s.findUser(func(u *entity.User) bool { return u.Username == username }), nil
}

func (s *FileStore) FindByCanonicalEmail(ctx context.Context, canonicalEmail string) (*entity.User, error) {
	return s.findUser(func(u *entity.User) bool { return u.CanonicalEmail == canonicalEmail }), nil
}

func (s *FileStore) UpdateFields(ctx context.Context, id string, update entity.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *entity.User
	for _, u := range s.data.Users {
		if u.ID == id {
			target = u
			continue
		}
		if update.Username != nil && u.Username == *update.Username {
			return &DuplicateError{Field: FieldUsername}
		}
	}
	if target == nil {
		return ErrNotFound
	}

	previous := *target
	update.Apply(target)
	if err := s.flush(); err != nil {
		*target = previous
		return err
	}
	return nil
}

func (s *FileStore) MarkVerified(ctx context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.data.Users {
		if u.ID != id {
			continue
		}
		if u.Verified {
			return false, nil
		}
		previous := *u
		verifiedAt := at
		u.Verified = true
		u.VerifiedAt = &verifiedAt
		u.UpdatedAt = &verifiedAt
		if err := s.flush(); err != nil {
			*u = previous
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *FileStore) Insert(ctx context.Context, entry *entity.MoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	s.data.Moods = append(s.data.Moods, &stored)
	if err := s.flush(); err != nil {
		s.data.Moods = s.data.Moods[:len(s.data.Moods)-1]
		return err
	}
	return nil
}

func (s *FileStore) FindOwned(ctx context.Context, ownerID, id string) (*entity.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.data.Moods {
		if e.ID == id && e.OwnerID == ownerID {
			found := *e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *FileStore) ListOwned(ctx context.Context, ownerID string, filter entity.MoodFilter) ([]*entity.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*entity.MoodEntry, 0)
	for _, e := range s.data.Moods {
		if e.OwnerID != ownerID || !filter.Matches(e) {
			continue
		}
		found := *e
		entries = append(entries, &found)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

func (s *FileStore) UpdateOwned(ctx context.Context, ownerID string, entry *entity.MoodEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.data.Moods {
		if e.ID != entry.ID || e.OwnerID != ownerID {
			continue
		}
		previous := *e
		e.Date = entry.Date
		e.Time = entry.Time
		e.Color = entry.Color
		e.Trigger = entry.Trigger
		e.Emotion = entry.Emotion
		e.Detail = entry.Detail
		e.UpdatedAt = entry.UpdatedAt
		if err := s.flush(); err != nil {
			*e = previous
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *FileStore) DeleteOwned(ctx context.Context, ownerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.data.Moods {
		if e.ID != id || e.OwnerID != ownerID {
			continue
		}
		previous := s.data.Moods
		moods := make([]*entity.MoodEntry, 0, len(previous)-1)
		moods = append(moods, previous[:i]...)
		moods = append(moods, previous[i+1:]...)
		s.data.Moods = moods
		if err := s.flush(); err != nil {
			s.data.Moods = previous
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *FileStore) findUser(match func(*entity.User) bool) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.data.Users {
		if match(u) {
			found := *u
			return &found
		}
	}
	return nil
}

// flush must be called with mu held.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".moods-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
