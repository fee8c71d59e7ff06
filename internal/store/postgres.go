package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/vytor/profilehub/internal/config"
)

// PostgresDialer opens a fresh connection per operation, authenticated with
// whatever credential is active at that moment.
type PostgresDialer struct {
	base *pgx.ConnConfig
}

// NewPostgresDialer parses dsn once; user and password in it are overridden
// by the active credential on every dial.
func NewPostgresDialer(dsn string) (*PostgresDialer, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	return &PostgresDialer{base: cfg}, nil
}

func (d *PostgresDialer) Name() string { return config.DriverPostgres }

func (d *PostgresDialer) Placeholder() squirrel.PlaceholderFormat { return squirrel.Dollar }

func (d *PostgresDialer) Dial(ctx context.Context, cred config.Credential) (*sql.DB, func() error, error) {
	cfg := d.connConfig(cred)
	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, db.Close, nil
}

func (d *PostgresDialer) connConfig(cred config.Credential) *pgx.ConnConfig {
	cfg := d.base.Copy()
	if cred.User != "" {
		cfg.User = cred.User
		cfg.Password = cred.Password
	}
	return cfg
}

// Close is a no-op: connections never outlive a single operation.
func (d *PostgresDialer) Close() error { return nil }
