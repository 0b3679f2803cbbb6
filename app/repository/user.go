package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

const userColumns = `id, username, email, canonical_email, password_hash, verified, theme,
		       created_at, verified_at, password_reset_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, canonical_email, password_hash, verified, theme, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.CanonicalEmail,
		user.PasswordHash,
		user.Verified,
		user.Theme,
		user.CreatedAt,
	)
	return translateMySQLError(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE username = ?
	`
	return r.findOne(ctx, query, username)
}

func (r *UserRepository) FindByCanonicalEmail(ctx context.Context, canonicalEmail string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE canonical_email = ?
	`
	return r.findOne(ctx, query, canonicalEmail)
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, update entity.UserUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	if update.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *update.Username)
	}
	if update.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *update.PasswordHash)
	}
	if update.Theme != nil {
		sets = append(sets, "theme = ?")
		args = append(args, *update.Theme)
	}
	if update.PasswordResetAt != nil {
		sets = append(sets, "password_reset_at = ?")
		args = append(args, *update.PasswordResetAt)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, update.UpdatedAt, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateMySQLError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE users SET verified = 1, verified_at = ?, updated_at = ?
		WHERE id = ? AND verified = 0
	`
	result, err := r.db.ExecContext(ctx, query, at, at, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

type rowScanner func(dest ...interface{}) error

func scanUser(scan rowScanner) (*entity.User, error) {
	user := &entity.User{}
	var verifiedAt, passwordResetAt, updatedAt sql.NullTime
	if err := scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CanonicalEmail,
		&user.PasswordHash,
		&user.Verified,
		&user.Theme,
		&user.CreatedAt,
		&verifiedAt,
		&passwordResetAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	user.VerifiedAt = nullTimePtr(verifiedAt)
	user.PasswordResetAt = nullTimePtr(passwordResetAt)
	user.UpdatedAt = nullTimePtr(updatedAt)
	return user, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func timePtrToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// translateMySQLError maps unique-key violations onto DuplicateError using the
// index names declared in the migrations.
func translateMySQLError(err error) error {
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlDuplicateEntry {
		return err
	}

	switch {
	case strings.Contains(mysqlErr.Message, "uq_users_username"):
		return &DuplicateError{Field: FieldUsername}
	case strings.Contains(mysqlErr.Message, "uq_users_canonical_email"):
		return &DuplicateError{Field: FieldEmail}
	default:
		return &DuplicateError{Field: "id"}
	}
}
