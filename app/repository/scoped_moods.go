package repository

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
)

var ErrEmptyOwner = errors.New("mood scope requires an owner id")

// ScopedMoods is a MoodStore bound to a single owner. It is the only way
// services reach mood entries, so another owner's rows are never addressable.
type ScopedMoods struct {
	store   MoodStore
	ownerID string
}

func NewScopedMoods(store MoodStore, ownerID string) (*ScopedMoods, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwner
	}
	return &ScopedMoods{store: store, ownerID: ownerID}, nil
}

func (s *ScopedMoods) OwnerID() string {
	return s.ownerID
}

func (s *ScopedMoods) Insert(ctx context.Context, entry *entity.MoodEntry) error {
	entry.OwnerID = s.ownerID
	return s.store.Insert(ctx, entry)
}

func (s *ScopedMoods) Find(ctx context.Context, id string) (*entity.MoodEntry, error) {
	return s.store.FindOwned(ctx, s.ownerID, id)
}

func (s *ScopedMoods) List(ctx context.Context, filter entity.MoodFilter) ([]*entity.MoodEntry, error) {
	return s.store.ListOwned(ctx, s.ownerID, filter)
}

// Update writes entry if it exists for this owner; the owner id on entry is ignored.
func (s *ScopedMoods) Update(ctx context.Context, entry *entity.MoodEntry) (bool, error) {
	entry.OwnerID = s.ownerID
	return s.store.UpdateOwned(ctx, s.ownerID, entry)
}

func (s *ScopedMoods) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteOwned(ctx, s.ownerID, id)
}
