package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"silant-backend/config"
	"silant-backend/internal/logger"
	"silant-backend/internal/model"
)

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&model.User{},
		&model.CatalogEntry{},
		&model.Machine{},
		&model.Maintenance{},
		&model.Complaint{},
	}
}

// Open connects to the configured database and sizes the pool. It does not
// migrate.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	return db, nil
}

// Init opens the database and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	logger.L().Info("database initialization complete", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	logger.L().Info("running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case config.DriverSQLite:
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// sqliteDSN turns foreign keys on for every pooled connection; sqlite leaves
// them off otherwise.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func newGormLogger(level string) gormlogger.Interface {
	lvl := gormlogger.Warn
	switch level {
	case "silent":
		lvl = gormlogger.Silent
	case "error":
		lvl = gormlogger.Error
	case "info":
		lvl = gormlogger.Info
	}
	return gormlogger.New(logger.StdLog(zapcore.InfoLevel), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}
