package db

import (
	"context"
	"fmt"
	"time"

	"threadvote/internal/config"
	"threadvote/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultPingTimeout  = 5 * time.Second
	defaultMaxIdleConns = 5
	defaultMaxOpenConns = 25
	defaultConnMaxLife  = 30 * time.Minute
	defaultConnMaxIdle  = 10 * time.Minute
)

// partial unique indexes: one vote per (user, post) and per (user, comment)
var voteIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_user_post ON votes (user_id, post_id) WHERE post_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_user_comment ON votes (user_id, comment_id) WHERE comment_id IS NOT NULL`,
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	gLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  toGormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(defaultMaxIdleConns)
	sqlDB.SetMaxOpenConns(defaultMaxOpenConns)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLife)
	sqlDB.SetConnMaxIdleTime(defaultConnMaxIdle)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("database connection established")
	return conn, nil
}

// OpenFromConfig is Open with the application's configured DSN and log level.
func OpenFromConfig(ctx context.Context, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	return Open(ctx, cfg.DatabaseURL, cfg.Log.Level, log)
}

// Migrate creates or updates the schema, including the vote uniqueness indexes.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range voteIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create vote index: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
