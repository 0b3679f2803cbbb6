package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
	"github.com/vibast-solutions/ms-go-mood-journal/app/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFileStore(t *testing.T) (*repository.FileStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "moods.json")
	store, err := repository.OpenFileStore(path)
	require.NoError(t, err)
	return store, path
}

func TestFileStore_UserRoundTripSurvivesReopen(t *testing.T) {
	store, path := openFileStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Create(ctx, newUser(now)))

	reopened, err := repository.OpenFileStore(path)
	require.NoError(t, err)

	user, err := reopened.FindByCanonicalEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.Verified)

	missing, err := reopened.FindByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFileStore_CreateRejectsDuplicates(t *testing.T) {
	store, _ := openFileStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Create(ctx, newUser(now)))

	sameName := newUser(now)
	sameName.ID = "other-id"
	sameName.CanonicalEmail = "someone@example.com"
	field, ok := repository.IsDuplicate(store.Create(ctx, sameName))
	assert.True(t, ok)
	assert.Equal(t, repository.FieldUsername, field)

	sameEmail := newUser(now)
	sameEmail.ID = "third-id"
	sameEmail.Username = "alice2"
	field, ok = repository.IsDuplicate(store.Create(ctx, sameEmail))
	assert.True(t, ok)
	assert.Equal(t, repository.FieldEmail, field)
}

func TestFileStore_ConcurrentCreateAdmitsOne(t *testing.T) {
	store, _ := openFileStore(t)
	ctx := context.Background()
	now := time.Now()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := newUser(now)
			user.ID = fmt.Sprintf("id-%d", i)
			user.CanonicalEmail = fmt.Sprintf("alice%d@example.com", i)
			errs <- store.Create(ctx, user)
		}(i)
	}
	wg.Wait()
	close(errs)

	var created, duplicates int
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		if _, ok := repository.IsDuplicate(err); ok {
			duplicates++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, duplicates)
}

func TestFileStore_UpdateFieldsAndMarkVerified(t *testing.T) {
	store, _ := openFileStore(t)
	ctx := context.Background()
	now := time.Now()
	user := newUser(now)
	require.NoError(t, store.Create(ctx, user))

	other := newUser(now)
	other.ID = "bob-id"
	other.Username = "bob"
	other.CanonicalEmail = "bob@example.com"
	require.NoError(t, store.Create(ctx, other))

	taken := "bob"
	err := store.UpdateFields(ctx, user.ID, entity.UserUpdate{Username: &taken, UpdatedAt: now})
	field, ok := repository.IsDuplicate(err)
	assert.True(t, ok)
	assert.Equal(t, repository.FieldUsername, field)

	theme := "dark"
	require.NoError(t, store.UpdateFields(ctx, user.ID, entity.UserUpdate{Theme: &theme, UpdatedAt: now}))

	assert.ErrorIs(t, store.UpdateFields(ctx, "missing", entity.UserUpdate{Theme: &theme, UpdatedAt: now}), repository.ErrNotFound)

	changed, err := store.MarkVerified(ctx, user.ID, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.MarkVerified(ctx, user.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VerifiedAt)
	assert.True(t, stored.Verified)
	assert.True(t, stored.VerifiedAt.Equal(now))
	assert.Equal(t, "dark", stored.Theme)
	assert.Equal(t, "alice", stored.Username)
}

func TestFileStore_MoodsAreOwnerScoped(t *testing.T) {
	store, _ := openFileStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, color := range []string{entity.ColorRed, entity.ColorGreen, entity.ColorRed} {
		require.NoError(t, store.Insert(ctx, &entity.MoodEntry{
			ID:        fmt.Sprintf("mood-%d", i),
			OwnerID:   "alice",
			Date:      fmt.Sprintf("2024-03-0%d", i+1),
			Time:      "09:00",
			Color:     color,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	entries, err := store.ListOwned(ctx, "alice", entity.MoodFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "mood-2", entries[0].ID)

	reds, err := store.ListOwned(ctx, "alice", entity.MoodFilter{Color: entity.ColorRed, Limit: 1})
	require.NoError(t, err)
	require.Len(t, reds, 1)
	assert.Equal(t, "mood-2", reds[0].ID)

	ranged, err := store.ListOwned(ctx, "alice", entity.MoodFilter{From: "2024-03-02", To: "2024-03-02"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "mood-1", ranged[0].ID)

	foreign, err := store.ListOwned(ctx, "mallory", entity.MoodFilter{})
	require.NoError(t, err)
	assert.Empty(t, foreign)

	found, err := store.FindOwned(ctx, "mallory", "mood-0")
	require.NoError(t, err)
	assert.Nil(t, found)

	updated, err := store.UpdateOwned(ctx, "mallory", &entity.MoodEntry{ID: "mood-0", Color: entity.ColorBlue})
	require.NoError(t, err)
	assert.False(t, updated)

	deleted, err := store.DeleteOwned(ctx, "mallory", "mood-0")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = store.DeleteOwned(ctx, "alice", "mood-0")
	require.NoError(t, err)
	assert.True(t, deleted)

	entries, err = store.ListOwned(ctx, "alice", entity.MoodFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
