// Package db opens the board's store and applies schema migrations.
package db

import (
	"fmt"
	"time"

	"github.com/diewo77/go-board/internal/config"
	"github.com/diewo77/go-board/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 5

// Open connects to the configured driver without migrating.
func Open(cfg config.DatabaseConfig, dev bool) (*gorm.DB, error) {
	level := logger.Warn
	if dev {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level), TranslateError: true}

	switch cfg.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.PostgresDSN()), gcfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gcfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN opens path in WAL mode with BEGIN IMMEDIATE transactions, so
// writers queue on the busy timeout instead of failing when a read lock
// has to be upgraded mid-transaction.
func sqliteDSN(path string) string {
	return path + "?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate"
}

// OpenMemory returns a private in-memory SQLite database with the schema
// applied. name must be unique per database, tests use t.Name().
// A single connection keeps every query on the same in-memory store.
func OpenMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate runs AutoMigrate for all models and fills search keys missing
// from rows written before the column existed.
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Message{},
		&models.Reply{},
		&models.Reaction{},
		&models.Task{},
	)
	if err != nil {
		return err
	}
	n, err := BackfillTextKeys(gdb)
	if err != nil {
		return fmt.Errorf("backfill text keys: %w", err)
	}
	if n > 0 {
		zap.L().Info("backfilled message text keys", zap.Int("updated", n))
	}
	return nil
}

// BackfillTextKeys sets TextKey on messages where it is empty and reports
// how many rows changed.
func BackfillTextKeys(gdb *gorm.DB) (int, error) {
	var msgs []models.Message
	updated := 0
	err := gdb.Select("id", "text").
		Where("text_key = '' OR text_key IS NULL").
		Where("text <> ''").
		FindInBatches(&msgs, 200, func(_ *gorm.DB, _ int) error {
			for _, m := range msgs {
				err := gdb.Model(&models.Message{}).Where("id = ?", m.ID).
					UpdateColumn("text_key", models.FoldText(m.Text)).Error
				if err != nil {
					return err
				}
				updated++
			}
			return nil
		}).Error
	return updated, err
}

// ConnectAndMigrate opens the store, retrying while it comes up, and
// migrates the schema when cfg.App.Migrations is set.
func ConnectAndMigrate(cfg *config.Config) (*gorm.DB, error) {
	var (
		gdb *gorm.DB
		err error
	)
	for i := 0; i < connectAttempts; i++ {
		gdb, err = Open(cfg.Database, cfg.App.Dev)
		if err == nil {
			break
		}
		zap.L().Warn("database connection failed, retrying",
			zap.Int("attempt", i+1), zap.Int("of", connectAttempts), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.App.Migrations {
		if err := Migrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return gdb, nil
}

// Ping checks that the store answers.
func Ping(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
