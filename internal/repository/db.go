package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/timmy/memerator/internal/config"
	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the configured database, applies pool limits and migrates the schema.
// Parameters:
//   - cfg: driver ("sqlite" by default, or "postgres") and connection settings.
// Returns:
//   - *gorm.DB: ready database handle.
//   - error: non-nil if the driver is unknown or connecting/migrating fails.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logger.Info("[DB] Opening %s database", driverName(cfg.Driver))

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(parseGormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driverName(cfg.Driver), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if isSQLite(cfg.Driver) {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
			if err := db.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	if !cfg.AutoMigrate {
		logger.Info("[DB] AutoMigrate disabled")
		return db, nil
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema. Order matters: memes reference users and templates.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Template{},
		&domain.Meme{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch {
	case cfg.Driver == "postgres":
		// Simple protocol keeps transaction poolers (pgbouncer, Supabase 6543) working
		return postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true,
		}), nil
	case isSQLite(cfg.Driver):
		if cfg.Path != "" && !isInMemory(cfg.Path) {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func isSQLite(driver string) bool {
	return driver == "sqlite" || driver == ""
}

func driverName(driver string) string {
	if isSQLite(driver) {
		return "SQLite"
	}
	if driver == "postgres" {
		return "PostgreSQL"
	}
	return driver
}

func isInMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func parseGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
