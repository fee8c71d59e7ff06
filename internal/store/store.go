// Package store persists profile snapshots to a relational database. The
// same SQL runs against SQLite and PostgreSQL; a Dialer hides how a
// connection is obtained for the currently active credential.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/profilehub/internal/config"
	"github.com/vytor/profilehub/internal/logger"
	"github.com/vytor/profilehub/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// DurableStore is the persistence contract the profile repository and the
// services depend on.
type DurableStore interface {
	LoadAll(ctx context.Context) ([]models.Profile, error)
	SaveAll(ctx context.Context, profiles []models.Profile) error
	UpsertAge(ctx context.Context, username string, age int) (bool, error)
	DeleteByUsername(ctx context.Context, username string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*models.Profile, error)
	Ping(ctx context.Context) error
}

// CredentialSource yields the credential for the next connection attempt.
type CredentialSource interface {
	Active() config.Credential
}

// Dialer obtains a database handle for one store operation. release is
// called when the operation is done with the handle.
type Dialer interface {
	Name() string
	Placeholder() squirrel.PlaceholderFormat
	Dial(ctx context.Context, cred config.Credential) (db *sql.DB, release func() error, err error)
	Close() error
}

// SQLStore implements DurableStore on top of database/sql.
type SQLStore struct {
	dialer  Dialer
	creds   CredentialSource
	builder squirrel.StatementBuilderType
}

var _ DurableStore = (*SQLStore)(nil)

// New creates a store. creds may be nil when the backend ignores credentials.
func New(dialer Dialer, creds CredentialSource) *SQLStore {
	return &SQLStore{
		dialer:  dialer,
		creds:   creds,
		builder: squirrel.StatementBuilder.PlaceholderFormat(dialer.Placeholder()),
	}
}

// Driver returns the dialer name ("sqlite" or "postgres").
func (s *SQLStore) Driver() string {
	return s.dialer.Name()
}

// Close releases the dialer's long-lived resources.
func (s *SQLStore) Close() error {
	return s.dialer.Close()
}

// EnsureSchema creates the profile tables when they do not exist yet.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("store")
	log.Debug("ensuring schema on %s", s.dialer.Name())

	return s.withConn(ctx, "ensure schema", func(db *sql.DB) error {
		return applySchema(ctx, db)
	})
}

func applySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) credential() config.Credential {
	if s.creds == nil {
		return config.Credential{}
	}
	return s.creds.Active()
}
