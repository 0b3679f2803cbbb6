package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibast-solutions/ms-go-mood-journal/app/repository/migrations"

	"github.com/pressly/goose/v3"
)

const migrationsDir = "."

// gooseRun is replaced in tests.
var gooseRun = func(ctx context.Context, command string, db *sql.DB, dir string) error {
	return goose.RunContext(ctx, command, db, dir)
}

// Migrate applies a goose command (up, down, status, ...) using the embedded
// MySQL migrations.
func Migrate(ctx context.Context, db *sql.DB, command string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseRun(ctx, command, db, migrationsDir)
}
