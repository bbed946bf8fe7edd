package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	ErrSetDialect      = errors.New("database migrator: failed to set dialect")
	ErrApplyMigrations = errors.New("database migrator: failed to apply migrations")
)

// OpenDBWithDSN creates and configures a MySQL connection pool and verifies it with a ping.
func OpenDBWithDSN(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DB_DSN: %w", err)
	}
	// DATETIME columns scan into time.Time, and UPDATE reports matched rows
	// so an unchanged row is not mistaken for a missing one.
	cfg.ParseTime = true
	cfg.ClientFoundRows = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Log.Info("Database connection pool established")
	return db, nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{})

	if err := goose.SetDialect("mysql"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

// Healthcheck pings the pool. It backs GET /v1/ready.
func Healthcheck(db *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, args ...any) {
	logger.Log.Info(fmt.Sprintf(format, args...), zap.String("component", "goose"))
}

// Fatalf logs at error level only; goose returns the error to Migrate anyway.
func (gooseLogger) Fatalf(format string, args ...any) {
	logger.Log.Error(fmt.Sprintf(format, args...), zap.String("component", "goose"))
}
