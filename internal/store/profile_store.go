package store

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/profilehub/internal/logger"
	"github.com/vytor/profilehub/internal/models"
)

type preferenceRow struct {
	profilePosition int
	position        int
	pref            models.MatchPreference
}

// storedProfile is a profile together with its row position. Positions are
// the collection order of the last snapshot and key the preferences, so
// profiles sharing a username still round-trip.
type storedProfile struct {
	position int
	profile  models.Profile
}

// LoadAll reads every profile with its preferences inside one transaction.
// Any row-level failure fails the whole load.
func (s *SQLStore) LoadAll(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("store")
	log.Debug("loading all profiles")

	var profiles []models.Profile
	err := s.withConn(ctx, "load profiles", func(db *sql.DB) error {
		return tx(ctx, db, func(tx *sql.Tx) error {
			rows, err := s.queryProfiles(ctx, tx, nil)
			if err != nil {
				return err
			}
			prefs, err := s.queryPreferences(ctx, tx, nil)
			if err != nil {
				return err
			}
			loaded := make([]models.Profile, 0, len(rows))
			for _, row := range rows {
				row.profile.Preferences = prefs[row.position]
				loaded = append(loaded, row.profile)
			}
			profiles = loaded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Debug("loaded %d profiles", len(profiles))
	return profiles, nil
}

// SaveAll replaces the stored collection with profiles in one transaction.
func (s *SQLStore) SaveAll(ctx context.Context, profiles []models.Profile) error {
	log := logger.FromContext(ctx).WithPrefix("store")
	log.Debug("saving snapshot of %d profiles", len(profiles))

	var prefRows []preferenceRow
	for i, p := range profiles {
		for j, pref := range p.Preferences {
			prefRows = append(prefRows, preferenceRow{profilePosition: i, position: j, pref: pref})
		}
	}

	err := s.withConn(ctx, "save profiles", func(db *sql.DB) error {
		return tx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `DELETE FROM match_preferences`); err != nil {
				log.Error("failed to clear preferences: %v", err)
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM profiles`); err != nil {
				log.Error("failed to clear profiles: %v", err)
				return err
			}

			offset := 0
			for _, batch := range chunks(profiles, insertBatchSize) {
				q := s.builder.Insert("profiles").Columns("position", "username", "age", "primary_interest")
				for i, p := range batch {
					q = q.Values(offset+i, p.Username, p.Age, p.PrimaryInterest.Name)
				}
				offset += len(batch)
				if err := execBuilt(ctx, tx, q); err != nil {
					log.Error("failed to insert profiles: %v", err)
					return err
				}
			}

			for _, batch := range chunks(prefRows, insertBatchSize) {
				q := s.builder.Insert("match_preferences").Columns("profile_position", "position", "min_age", "max_age")
				for _, r := range batch {
					q = q.Values(r.profilePosition, r.position, r.pref.MinAge, r.pref.MaxAge)
				}
				if err := execBuilt(ctx, tx, q); err != nil {
					log.Error("failed to insert preferences: %v", err)
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	log.Debug("snapshot saved: %d profiles, %d preferences", len(profiles), len(prefRows))
	return nil
}

// firstExact selects the position of the first stored row named exactly
// username.
func firstExact(username string) squirrel.Sqlizer {
	return squirrel.Expr("position = (SELECT MIN(position) FROM profiles WHERE username = ?)", username)
}

// UpsertAge updates the stored age of the first profile named exactly
// username and reports whether a row was affected. Callers pass the name as
// held in memory.
func (s *SQLStore) UpsertAge(ctx context.Context, username string, age int) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("store")
	log.Debug("updating stored age: username=%s age=%d", username, age)

	var affected int64
	err := s.withConn(ctx, "update age", func(db *sql.DB) error {
		query, args, err := s.builder.Update("profiles").
			Set("age", age).
			Where(firstExact(username)).
			ToSql()
		if err != nil {
			return err
		}
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected > 0, err
}

// DeleteByUsername removes the first stored profile named exactly username
// together with its preferences.
func (s *SQLStore) DeleteByUsername(ctx context.Context, username string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("store")
	log.Debug("deleting stored profile: username=%s", username)

	var affected int64
	err := s.withConn(ctx, "delete profile", func(db *sql.DB) error {
		return tx(ctx, db, func(tx *sql.Tx) error {
			query, args, err := s.builder.Select("MIN(position)").
				From("profiles").
				Where(squirrel.Eq{"username": username}).
				ToSql()
			if err != nil {
				return err
			}
			var position sql.NullInt64
			if err := tx.QueryRowContext(ctx, query, args...).Scan(&position); err != nil {
				return err
			}
			if !position.Valid {
				return nil
			}

			q := s.builder.Delete("match_preferences").Where(squirrel.Eq{"profile_position": position.Int64})
			if err := execBuilt(ctx, tx, q); err != nil {
				return err
			}
			query, args, err = s.builder.Delete("profiles").Where(squirrel.Eq{"position": position.Int64}).ToSql()
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			affected, err = res.RowsAffected()
			return err
		})
	})
	return affected > 0, err
}

// FindByUsername reads one profile straight from the store, bypassing the
// in-memory repository. Names compare ignoring case and the first stored
// match wins. It returns nil, nil when no row matches.
func (s *SQLStore) FindByUsername(ctx context.Context, username string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("store")
	log.Debug("searching store: username=%s", username)

	var found *models.Profile
	err := s.withConn(ctx, "search profile", func(db *sql.DB) error {
		where := squirrel.Expr("LOWER(username) = LOWER(?)", username)
		rows, err := s.queryProfiles(ctx, db, where)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		row := rows[0]
		prefs, err := s.queryPreferences(ctx, db, squirrel.Eq{"profile_position": row.position})
		if err != nil {
			return err
		}
		row.profile.Preferences = prefs[row.position]
		found = &row.profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		log.Debug("no stored profile for username=%s", username)
	}
	return found, nil
}

// Ping checks that a connection can be established with the active credential.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.withConn(ctx, "ping", func(db *sql.DB) error {
		return db.PingContext(ctx)
	})
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execBuilt(ctx context.Context, ex execer, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLStore) queryProfiles(ctx context.Context, q queryer, where squirrel.Sqlizer) ([]storedProfile, error) {
	sb := s.builder.Select("position", "username", "age", "primary_interest").
		From("profiles").
		OrderBy("position ASC")
	if where != nil {
		sb = sb.Where(where)
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []storedProfile
	for rows.Next() {
		var (
			row      storedProfile
			interest string
		)
		if err := rows.Scan(&row.position, &row.profile.Username, &row.profile.Age, &interest); err != nil {
			return nil, err
		}
		row.profile.PrimaryInterest = models.Interest{Name: interest}
		if canonical, ok := models.LookupInterest(interest); ok {
			row.profile.PrimaryInterest = canonical
		}
		profiles = append(profiles, row)
	}
	return profiles, rows.Err()
}

func (s *SQLStore) queryPreferences(ctx context.Context, q queryer, where squirrel.Sqlizer) (map[int][]models.MatchPreference, error) {
	sb := s.builder.Select("profile_position", "min_age", "max_age").
		From("match_preferences").
		OrderBy("profile_position ASC", "position ASC")
	if where != nil {
		sb = sb.Where(where)
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int][]models.MatchPreference{}
	for rows.Next() {
		var (
			position int
			pref     models.MatchPreference
		)
		if err := rows.Scan(&position, &pref.MinAge, &pref.MaxAge); err != nil {
			return nil, err
		}
		out[position] = append(out[position], pref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
