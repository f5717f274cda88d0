package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const migrationsTable = "schema_migrations"

// Open connects gorm to the configured store. Unique-key violations surface as
// gorm.ErrDuplicatedKey.
func Open(cfg internal.DatabaseConfig, lg *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DriverPostgres:
		dialector = postgres.Open(cfg.Source)
	case internal.DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.Source))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := gormlogger.Warn
	if cfg.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if lg != nil {
		lg.Info("database connected", "driver", cfg.Driver)
	}
	return db, nil
}

// Connect opens a plain sqlx connection, used where gorm is not needed.
func Connect(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driver, err := SQLDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	source := cfg.Source
	if cfg.Driver == internal.DriverSQLite {
		source = sqliteDSN(source)
	}

	dbConn, err := sqlx.Connect(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}
	configurePool(dbConn.DB, cfg)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbConn, nil
}

// SQLX shares gorm's connection pool with sqlx for hand-written read queries.
func SQLX(db *gorm.DB, driver string) (*sqlx.DB, error) {
	name, err := SQLDriverName(driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	return sqlx.NewDb(sqlDB, name), nil
}

// SQLDriverName maps a configured driver to its database/sql registration.
func SQLDriverName(driver string) (string, error) {
	switch driver {
	case internal.DriverPostgres:
		return "pgx", nil
	case internal.DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate applies the embedded goose migrations for driver. With rollback set it
// steps down a single version instead.
func Migrate(ctx context.Context, db *sql.DB, driver string, rollback bool) error {
	dialect, dir, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(migrationsTable)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose: %w", err)
	}

	if rollback {
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		return nil
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrationFiles lists the embedded migrations for driver.
func MigrationFiles(driver string) ([]string, error) {
	_, dir, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	return fs.Glob(migrations.FS, dir+"/*.sql")
}

// SetQuiet silences goose's stdout logging.
func SetQuiet(quiet bool) {
	if quiet {
		goose.SetLogger(goose.NopLogger())
		return
	}
	goose.SetLogger(log.New(os.Stdout, "", log.LstdFlags))
}

func gooseDialect(driver string) (dialect, dir string, err error) {
	switch driver {
	case internal.DriverPostgres:
		return "postgres", "postgres", nil
	case internal.DriverSQLite:
		return "sqlite3", "sqlite", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func configurePool(sqlDB *sql.DB, cfg internal.DatabaseConfig) {
	if cfg.Driver == internal.DriverSQLite {
		// one writer; an in-memory database also lives only as long as its connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

func sqliteDSN(source string) string {
	if strings.Contains(source, "_foreign_keys") || strings.Contains(source, "_fk=") {
		return source
	}
	sep := "?"
	if strings.Contains(source, "?") {
		sep = "&"
	}
	return source + sep + "_foreign_keys=1"
}
