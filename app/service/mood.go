package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/dto"
	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
	"github.com/vibast-solutions/ms-go-mood-journal/app/metrics"
	"github.com/vibast-solutions/ms-go-mood-journal/app/repository"
	"github.com/vibast-solutions/ms-go-mood-journal/app/types"

	"github.com/google/uuid"
)

const (
	dashboardRecent = 5
	statsTopN       = 5
	statsWindow     = 7 * 24 * time.Hour
)

type MoodServiceOption func(*MoodService)

type MoodService struct {
	store repository.MoodStore
	now   func() time.Time
}

func NewMoodService(store repository.MoodStore, opts ...MoodServiceOption) *MoodService {
	s := &MoodService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithMoodClock(now func() time.Time) MoodServiceOption {
	return func(s *MoodService) {
		if now != nil {
			s.now = now
		}
	}
}

// For returns the journal of a single owner.
func (s *MoodService) For(ownerID string) (*Journal, error) {
	scoped, err := repository.NewScopedMoods(s.store, ownerID)
	if err != nil {
		return nil, ErrInvalidSession
	}
	return &Journal{moods: scoped, now: s.now}, nil
}

// Journal is a mood log bound to one owner. Entries of other owners are
// reported as not found.
type Journal struct {
	moods *repository.ScopedMoods
	now   func() time.Time
}

func (j *Journal) Create(ctx context.Context, req *types.MoodRequest) (*entity.MoodEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	entry := &entity.MoodEntry{
		ID:        uuid.NewString(),
		Date:      req.Date,
		Time:      req.Time,
		Color:     req.Color,
		Trigger:   req.Trigger,
		Emotion:   req.Emotion,
		Detail:    req.Detail,
		CreatedAt: j.now(),
	}
	if err := j.moods.Insert(ctx, entry); err != nil {
		return nil, err
	}

	metrics.MoodEntriesTotal.WithLabelValues("create").Inc()
	return entry, nil
}

func (j *Journal) Get(ctx context.Context, id string) (*entity.MoodEntry, error) {
	entry, err := j.moods.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrMoodNotFound
	}
	return entry, nil
}

func (j *Journal) List(ctx context.Context, filter entity.MoodFilter) ([]*entity.MoodEntry, error) {
	return j.moods.List(ctx, filter)
}

func (j *Journal) Update(ctx context.Context, id string, req *types.MoodRequest) (*entity.MoodEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	existing, err := j.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := j.now()
	existing.Date = req.Date
	existing.Time = req.Time
	existing.Color = req.Color
	existing.Trigger = req.Trigger
	existing.Emotion = req.Emotion
	existing.Detail = req.Detail
	existing.UpdatedAt = &now

	updated, err := j.moods.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrMoodNotFound
	}

	metrics.MoodEntriesTotal.WithLabelValues("update").Inc()
	return existing, nil
}

func (j *Journal) Delete(ctx context.Context, id string) error {
	deleted, err := j.moods.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMoodNotFound
	}

	metrics.MoodEntriesTotal.WithLabelValues("delete").Inc()
	return nil
}

func (j *Journal) Stats(ctx context.Context) (*dto.MoodStats, error) {
	entries, err := j.moods.List(ctx, entity.MoodFilter{})
	if err != nil {
		return nil, err
	}
	return computeStats(entries, j.now()), nil
}

func (j *Journal) Dashboard(ctx context.Context) (*dto.Dashboard, error) {
	entries, err := j.moods.List(ctx, entity.MoodFilter{})
	if err != nil {
		return nil, err
	}

	recent := entries
	if len(recent) > dashboardRecent {
		recent = recent[:dashboardRecent]
	}
	return &dto.Dashboard{
		Recent: recent,
		Stats:  computeStats(entries, j.now()),
	}, nil
}

// computeStats expects entries newest first.
func computeStats(entries []*entity.MoodEntry, now time.Time) *dto.MoodStats {
	stats := &dto.MoodStats{
		Total:       len(entries),
		ByColor:     make(map[string]int, len(entity.MoodColors)),
		TopEmotions: []dto.CountEntry{},
		TopTriggers: []dto.CountEntry{},
	}
	for _, color := range entity.MoodColors {
		stats.ByColor[color] = 0
	}

	emotions := map[string]int{}
	triggers := map[string]int{}
	cutoff := now.Add(-statsWindow)

	for _, e := range entries {
		stats.ByColor[e.Color]++
		if label := strings.ToLower(strings.TrimSpace(e.Emotion)); label != "" {
			emotions[label]++
		}
		if label := strings.ToLower(strings.TrimSpace(e.Trigger)); label != "" {
			triggers[label]++
		}
		if e.CreatedAt.After(cutoff) {
			stats.LastSevenDays++
		}
	}

	if len(entries) > 0 {
		last := entries[0].CreatedAt
		for _, e := range entries[1:] {
			if e.CreatedAt.After(last) {
				last = e.CreatedAt
			}
		}
		stats.LastEntryAt = &last
	}

	stats.TopEmotions = topCounts(emotions, statsTopN)
	stats.TopTriggers = topCounts(triggers, statsTopN)
	return stats
}

// topCounts orders by count descending, then label, and keeps n.
func topCounts(counts map[string]int, n int) []dto.CountEntry {
	out := make([]dto.CountEntry, 0, len(counts))
	for label, count := range counts {
		out = append(out, dto.CountEntry{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
