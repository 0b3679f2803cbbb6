package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
	"github.com/vibast-solutions/ms-go-mood-journal/app/service"
	"github.com/vibast-solutions/ms-go-mood-journal/app/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moodRequest(color, emotion, trigger string) *types.MoodRequest {
	return &types.MoodRequest{
		Date:    "2026-03-02",
		Time:    "09:15",
		Color:   color,
		Emotion: emotion,
		Trigger: trigger,
		Detail:  "  walked to work  ",
	}
}

func TestJournalRequiresOwner(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.moods.For("")
	assert.ErrorIs(t, err, service.ErrInvalidSession)
}

func TestJournalCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	journal, err := env.moods.For("alice-id")
	require.NoError(t, err)

	entry, err := journal.Create(ctx, moodRequest(" Green ", "calm", "walk"))
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "alice-id", entry.OwnerID)
	assert.Equal(t, entity.ColorGreen, entry.Color)
	assert.Equal(t, "walked to work", entry.Detail)
	assert.Equal(t, env.clock.Now(), entry.CreatedAt)

	got, err := journal.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Emotion, got.Emotion)

	_, err = journal.Get(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrMoodNotFound)
}

func TestJournalCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	journal, err := env.moods.For("alice-id")
	require.NoError(t, err)

	tests := map[string]*types.MoodRequest{
		"unknown color": moodRequest("purple", "calm", ""),
		"bad date":      {Date: "02/03/2026", Time: "09:15", Color: "red"},
		"bad time":      {Date: "2026-03-02", Time: "9am", Color: "red"},
		"missing color": {Date: "2026-03-02", Time: "09:15"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := journal.Create(context.Background(), req)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestJournalIsolatesOwners(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, err := env.moods.For("alice-id")
	require.NoError(t, err)
	bob, err := env.moods.For("bob-id")
	require.NoError(t, err)

	entry, err := alice.Create(ctx, moodRequest("blue", "sad", "rain"))
	require.NoError(t, err)

	_, bobGetErr := bob.Get(ctx, entry.ID)
	_, missingGetErr := bob.Get(ctx, "missing")
	assert.ErrorIs(t, bobGetErr, service.ErrMoodNotFound)
	assert.Equal(t, missingGetErr, bobGetErr)

	_, err = bob.Update(ctx, entry.ID, moodRequest("red", "angry", "rain"))
	assert.ErrorIs(t, err, service.ErrMoodNotFound)
	assert.ErrorIs(t, bob.Delete(ctx, entry.ID), service.ErrMoodNotFound)

	list, err := bob.List(ctx, entity.MoodFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	unchanged, err := alice.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "blue", unchanged.Color)
	assert.Nil(t, unchanged.UpdatedAt)
}

func TestJournalUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	journal, err := env.moods.For("alice-id")
	require.NoError(t, err)

	entry, err := journal.Create(ctx, moodRequest("yellow", "nervous", "exam"))
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	updated, err := journal.Update(ctx, entry.ID, moodRequest("green", "relieved", "exam"))
	require.NoError(t, err)
	assert.Equal(t, "green", updated.Color)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, env.clock.Now(), *updated.UpdatedAt)
	assert.Equal(t, entry.CreatedAt, updated.CreatedAt)

	_, err = journal.Update(ctx, entry.ID, moodRequest("pink", "", ""))
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, journal.Delete(ctx, entry.ID))
	assert.ErrorIs(t, journal.Delete(ctx, entry.ID), service.ErrMoodNotFound)
}

func TestJournalListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	journal, err := env.moods.For("alice-id")
	require.NoError(t, err)

	var ids []string
	for _, color := range []string{"red", "blue", "red"} {
		entry, err := journal.Create(ctx, moodRequest(color, "", ""))
		require.NoError(t, err)
		ids = append(ids, entry.ID)
		env.clock.Advance(time.Minute)
	}

	all, err := journal.List(ctx, entity.MoodFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	reds, err := journal.List(ctx, entity.MoodFilter{Color: "red", Limit: 1})
	require.NoError(t, err)
	require.Len(t, reds, 1)
	assert.Equal(t, ids[2], reds[0].ID)
}

func TestJournalStatsAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	journal, err := env.moods.For("alice-id")
	require.NoError(t, err)

	_, err = journal.Create(ctx, moodRequest("red", "Angry", "traffic"))
	require.NoError(t, err)
	env.clock.Advance(8 * 24 * time.Hour)

	inputs := []struct{ color, emotion, trigger string }{
		{"green", "calm", "walk"},
		{"green", "calm", "yoga"},
		{"blue", "sad", "rain"},
		{"yellow", "angry", "traffic"},
		{"green", "happy", "walk"},
		{"green", "calm", ""},
	}
	for _, in := range inputs {
		env.clock.Advance(time.Minute)
		_, err := journal.Create(ctx, moodRequest(in.color, in.emotion, in.trigger))
		require.NoError(t, err)
	}

	stats, err := journal.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, map[string]int{"red": 1, "yellow": 1, "green": 4, "blue": 1}, stats.ByColor)
	assert.Equal(t, 6, stats.LastSevenDays)
	require.NotNil(t, stats.LastEntryAt)
	assert.Equal(t, env.clock.Now(), *stats.LastEntryAt)

	require.NotEmpty(t, stats.TopEmotions)
	assert.Equal(t, "calm", stats.TopEmotions[0].Label)
	assert.Equal(t, 3, stats.TopEmotions[0].Count)
	assert.Equal(t, "angry", stats.TopEmotions[1].Label)
	assert.Equal(t, 2, stats.TopEmotions[1].Count)

	assert.Equal(t, "traffic", stats.TopTriggers[0].Label)
	assert.Equal(t, "walk", stats.TopTriggers[1].Label)
	assert.Len(t, stats.TopTriggers, 4)

	dashboard, err := journal.Dashboard(ctx)
	require.NoError(t, err)
	assert.Len(t, dashboard.Recent, 5)
	assert.Equal(t, "calm", dashboard.Recent[0].Emotion)
	assert.Equal(t, 7, dashboard.Stats.Total)
}

func TestJournalStatsEmpty(t *testing.T) {
	env := newTestEnv(t)
	journal, err := env.moods.For("alice-id")
	require.NoError(t, err)

	stats, err := journal.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Len(t, stats.ByColor, 4)
	assert.Nil(t, stats.LastEntryAt)
	assert.Empty(t, stats.TopEmotions)
}
