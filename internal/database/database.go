package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"searchlens/internal/config"
	"searchlens/internal/urlists"
)

// DBManager owns the sqlite connection used for saved URL lists.
type DBManager struct {
	db     *gorm.DB
	logger *slog.Logger
	cfg    *config.Config
}

func NewDBManager(cfg *config.Config, logger *slog.Logger) *DBManager {
	return &DBManager{
		logger: logger,
		cfg:    cfg,
	}
}

// Init opens the database in WAL mode and sizes the connection pool from
// config. The storage directory is created on first run.
func (dm *DBManager) Init() error {
	path := dm.cfg.GetDatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating storage directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("error opening database at %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("error accessing underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(dm.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(dm.cfg.GetMaxIdleConns())
	sqlDB.SetConnMaxLifetime(time.Hour)

	dm.db = db
	dm.logger.Info("Database initialized", slog.String("path", path))
	return nil
}

// GetConnection returns the live gorm handle, nil before Init.
func (dm *DBManager) GetConnection() *gorm.DB {
	return dm.db
}

// MigrateDatabase runs schema migrations in a transaction.
func (dm *DBManager) MigrateDatabase() error {
	db := dm.GetConnection()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&urlists.URLList{},
		)
	})
	if err != nil {
		dm.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	if err := dm.CheckpointWAL("FULL"); err != nil {
		dm.logger.Warn("Failed to checkpoint WAL after migration", slog.Any("error", err))
	}

	dm.logger.Info("Database migration completed successfully")
	return nil
}

// CheckpointWAL flushes the write-ahead log into the main database file so a
// plain file copy is a complete backup.
func (dm *DBManager) CheckpointWAL(mode string) error {
	if dm.db == nil {
		return nil
	}
	if err := dm.db.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)).Error; err != nil {
		return fmt.Errorf("error checkpointing WAL: %w", err)
	}
	return nil
}

func (dm *DBManager) Close() error {
	if dm.db == nil {
		return nil
	}
	sqlDB, err := dm.db.DB()
	if err != nil {
		return fmt.Errorf("error accessing underlying database: %w", err)
	}
	return sqlDB.Close()
}
