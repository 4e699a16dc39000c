package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finops/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database owns the gorm handle shared by repositories and read engines.
type Database struct {
	DB *gorm.DB
}

// DatabaseOption configures NewDatabase and OpenSQLite.
type DatabaseOption func(*gorm.Config)

// WithGormLogger replaces the silent default statement logger.
func WithGormLogger(l gormlogger.Interface) DatabaseOption {
	return func(c *gorm.Config) {
		c.Logger = l
	}
}

// Repositories wrap every multi-statement write in an explicit transaction,
// so gorm's implicit one per statement is turned off.
func newGormConfig(opts []DatabaseOption) *gorm.Config {
	c := &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDatabase connects to PostgreSQL, applies the pool settings and pings.
func NewDatabase(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	gcfg := newGormConfig(opts)
	gcfg.PrepareStmt = true

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	d := &Database{DB: db}
	pool, err := d.SQL()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

// OpenSQLite opens a SQLite file, or ":memory:", for the CLI and tests.
// SQLite serialises writers, so the pool holds a single connection.
func OpenSQLite(path string, opts ...DatabaseOption) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), newGormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	d := &Database{DB: db}
	pool, err := d.SQL()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(1)
	return d, nil
}

// SQL returns the connection pool, e.g. for pool metrics.
func (d *Database) SQL() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	return pool, nil
}

// Ping checks the connection. Used by the health endpoint and the CLI.
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Close closes the pool.
func (d *Database) Close() error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.Close()
}
