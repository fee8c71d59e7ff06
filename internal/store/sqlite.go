package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/profilehub/internal/config"
	"github.com/vytor/profilehub/internal/logger"
)

// SQLiteDialer hands out one shared handle. SQLite has no users, so the
// active credential is ignored.
type SQLiteDialer struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteDialer, error) {
	log := logger.Default().WithPrefix("store")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
	log.Info("opening sqlite database: %s", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	// Single writer; also keeps ":memory:" databases alive on one connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		log.Error("failed to apply schema: %v", err)
		_ = db.Close()
		return nil, err
	}

	log.Info("database ready")
	return &SQLiteDialer{db: db}, nil
}

func (d *SQLiteDialer) Name() string { return config.DriverSQLite }

func (d *SQLiteDialer) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }

func (d *SQLiteDialer) Dial(_ context.Context, _ config.Credential) (*sql.DB, func() error, error) {
	return d.db, func() error { return nil }, nil
}

func (d *SQLiteDialer) Close() error {
	return d.db.Close()
}
