// Package database handles database connections and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"plume/internal/config"
	"plume/internal/middleware"
	"plume/internal/models"
	"plume/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	slowQueryThreshold = 200 * time.Millisecond

	poolMaxOpen     = 25
	poolMaxIdle     = 5
	poolMaxLifetime = 5 * time.Minute
)

// DB is the global database connection instance.
var DB *gorm.DB

// slogGormLogger routes GORM's logging through the application's slog
// logger, so query logs carry the same correlation attributes as everything
// else.
type slogGormLogger struct {
	logger *slog.Logger
	cfg    logger.Config
}

func (l *slogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.cfg.LogLevel = level
	return &clone
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.cfg.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.cfg.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.cfg.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs completed statements. Record-not-found is not an error here;
// repositories translate it themselves.
func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.LogLevel <= logger.Silent {
		return
	}

	sql, rows := fc()
	observability.DatabaseQueryLatency.WithLabelValues(queryVerb(sql)).Observe(time.Since(begin).Seconds())

	attrs := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", time.Since(begin)),
	}

	switch {
	case err != nil && l.cfg.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.ErrorContext(ctx, "GORM query error", attrs...)
	case l.cfg.SlowThreshold != 0 && time.Since(begin) > l.cfg.SlowThreshold && l.cfg.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query", attrs...)
	case l.cfg.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query", attrs...)
	}
}

// queryVerb extracts the leading SQL keyword for metric labels.
func queryVerb(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	return strings.ToLower(verb)
}

func buildDSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode)
}

// Connect opens the Postgres connection, runs migrations outside production,
// and configures the pool. The returned handle is also stored in DB.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := &slogGormLogger{
		logger: middleware.Logger,
		cfg: logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	}

	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	middleware.Logger.Info("Database connected successfully")

	if !cfg.IsProduction() {
		// AutoMigrate stays out of production; schema changes there go
		// through reviewed migrations.
		if err := db.AutoMigrate(
			&models.User{},
			&models.Post{},
			&models.Comment{},
			&models.Like{},
			&models.Notification{},
			&models.Contact{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		if err := EnsureSearchIndexes(db); err != nil {
			middleware.Logger.Warn("Failed to create search indexes (continuing, search falls back to sequential scans)",
				slog.String("error", err.Error()))
		}

		middleware.Logger.Info("Database migration completed")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(poolMaxOpen)
		sqlDB.SetMaxIdleConns(poolMaxIdle)
		sqlDB.SetConnMaxLifetime(poolMaxLifetime)
	}

	DB = db
	return DB, nil
}

// EnsureSearchIndexes creates the expression indexes backing full-text and
// suggestion retrieval. AutoMigrate cannot express these.
func EnsureSearchIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_posts_fts ON posts
			USING GIN (to_tsvector('english', coalesce(title,'') || ' ' || coalesce(content,'')))`,
		`CREATE INDEX IF NOT EXISTS idx_posts_title_lower ON posts (lower(title))`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
