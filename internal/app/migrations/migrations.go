// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var Migrations embed.FS

const migrationsDir = "sql"

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrator applies the embedded migrations
type Migrator struct {
	logger zerolog.Logger
}

// NewMigrator creates a new Migrator
func NewMigrator(logger zerolog.Logger) *Migrator {
	return &Migrator{logger: logger}
}

// Up applies every pending migration to db
func (m *Migrator) Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetLogger(gooseLogger{m.logger})

	if err := gooseUpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	m.logger.Info().Msg("Database schema is up to date")
	return nil
}

// UpFromPool opens a database/sql handle over the pool for goose and applies migrations
func (m *Migrator) UpFromPool(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	return m.Up(ctx, sqlDB)
}

// gooseLogger routes goose output through zerolog
type gooseLogger struct {
	zerolog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.Logger.Fatal().Msgf(format, v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.Logger.Info().Msgf(format, v...)
}
