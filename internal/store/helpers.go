package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	apperrors "github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/logger"
)

// insertBatchSize keeps multi-row inserts well under SQLite's bound
// parameter limit.
const insertBatchSize = 200

// withConn dials with the active credential, runs fn and classifies its
// failure. Dial failures are transient: the store may come back.
func (s *SQLStore) withConn(ctx context.Context, op string, fn func(*sql.DB) error) error {
	log := logger.FromContext(ctx).WithPrefix("store")

	db, release, err := s.dialer.Dial(ctx, s.credential())
	if err != nil {
		log.Warn("%s: connection to %s failed: %v", op, s.dialer.Name(), err)
		return apperrors.NewTransientError(op, err)
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("%s: releasing connection: %v", op, err)
		}
	}()

	if err := fn(db); err != nil {
		log.Error("%s failed: %v", op, err)
		return classify(op, err)
	}
	return nil
}

func classify(op string, err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return apperrors.NewTransientError(op, err)
	default:
		return apperrors.NewPersistenceError(op, err)
	}
}

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("store")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
