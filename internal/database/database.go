// Package database provides the shared GORM-backed persistence layer.
package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database abstracts a connected relational database.
type Database interface {
	// GORM returns the root GORM handle.
	GORM() *gorm.DB
	// Session returns a context-scoped GORM session.
	Session(ctx context.Context) *gorm.DB
	// IsPostgres reports whether the underlying driver is PostgreSQL.
	IsPostgres() bool
	// Close releases the underlying connection pool.
	Close() error
}

type gormDatabase struct {
	db       *gorm.DB
	postgres bool
}

// New opens a database connection from a DSN. PostgreSQL URLs
// (postgres:// or postgresql://) use the postgres driver; everything
// else is treated as a SQLite path (including :memory:).
func New(ctx context.Context, dsn string) (Database, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database DSN")
	}

	cfg := &gorm.Config{Logger: slogGormLogger{}}

	var (
		db  *gorm.DB
		err error
		pg  bool
	)
	if isPostgresDSN(dsn) {
		pg = true
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &gormDatabase{db: db, postgres: pg}, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func (d *gormDatabase) GORM() *gorm.DB {
	return d.db
}

func (d *gormDatabase) Session(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

func (d *gormDatabase) IsPostgres() bool {
	return d.postgres
}

func (d *gormDatabase) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("access connection pool: %w", err)
	}
	return sqlDB.Close()
}
