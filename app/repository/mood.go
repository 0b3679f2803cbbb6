package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
)

const moodColumns = `id, owner_id, entry_date, entry_time, color, mood_trigger, emotion, detail, created_at, updated_at`

type MoodRepository struct {
	db DBTX
}

func NewMoodRepository(db DBTX) *MoodRepository {
	return &MoodRepository{db: db}
}

func (r *MoodRepository) Insert(ctx context.Context, entry *entity.MoodEntry) error {
	query := `
		INSERT INTO mood_entries (id, owner_id, entry_date, entry_time, color, mood_trigger, emotion, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.Date,
		entry.Time,
		entry.Color,
		entry.Trigger,
		entry.Emotion,
		entry.Detail,
		entry.CreatedAt,
	)
	return err
}

func (r *MoodRepository) FindOwned(ctx context.Context, ownerID, id string) (*entity.MoodEntry, error) {
	query := `
		SELECT ` + moodColumns + `
		FROM mood_entries WHERE id = ? AND owner_id = ?
	`
	entry, err := scanMood(r.db.QueryRowContext(ctx, query, id, ownerID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (r *MoodRepository) ListOwned(ctx context.Context, ownerID string, filter entity.MoodFilter) ([]*entity.MoodEntry, error) {
	query := `
		SELECT ` + moodColumns + `
		FROM mood_entries WHERE owner_id = ?`
	args := []interface{}{ownerID}

	if filter.Color != "" {
		query += ` AND color = ?`
		args = append(args, filter.Color)
	}
	if filter.From != "" {
		query += ` AND entry_date >= ?`
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += ` AND entry_date <= ?`
		args = append(args, filter.To)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*entity.MoodEntry, 0)
	for rows.Next() {
		entry, err := scanMood(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *MoodRepository) UpdateOwned(ctx context.Context, ownerID string, entry *entity.MoodEntry) (bool, error) {
	query := `
		UPDATE mood_entries SET
			entry_date = ?,
			entry_time = ?,
			color = ?,
			mood_trigger = ?,
			emotion = ?,
			detail = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		entry.Date,
		entry.Time,
		entry.Color,
		entry.Trigger,
		entry.Emotion,
		entry.Detail,
		timePtrToNull(entry.UpdatedAt),
		entry.ID,
		ownerID,
	)
	if err != nil {
		return false, err
	}
	return rowsChanged(result)
}

func (r *MoodRepository) DeleteOwned(ctx context.Context, ownerID, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM mood_entries WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, err
	}
	return rowsChanged(result)
}

func rowsChanged(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanMood(scan rowScanner) (*entity.MoodEntry, error) {
	entry := &entity.MoodEntry{}
	var updatedAt sql.NullTime
	if err := scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.Date,
		&entry.Time,
		&entry.Color,
		&entry.Trigger,
		&entry.Emotion,
		&entry.Detail,
		&entry.CreatedAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	entry.UpdatedAt = nullTimePtr(updatedAt)
	return entry, nil
}
