package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// NewSQLiteService opens a SQLite database. An empty DSN opens a shared
// in-memory database.
func NewSQLiteService(cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")

	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := OpenSQLite(dsn, gormLog(cfg))
	if err != nil {
		return nil, err
	}
	serviceLog.Debug("Opened SQLite", "path", dsn)
	return &Service{db: db, log: serviceLog, driver: DriverSQLite}, nil
}

// OpenSQLite opens dsn; a nil gl keeps gorm's default logger.
func OpenSQLite(dsn string, gl gormLogger.Interface) (*gorm.DB, error) {
	gcfg := &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true}
	if gl != nil {
		gcfg.Logger = gl
	}
	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	return db, nil
}
