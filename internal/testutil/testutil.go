package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/profilehub/internal/models"
	"github.com/vytor/profilehub/internal/store"
)

// NewTestStore creates a store backed by an in-memory SQLite database with
// the schema applied. It is closed when the test ends.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	dialer, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)

	st := store.New(dialer, nil)
	t.Cleanup(func() { MustClose(t, st) })
	return st
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Profile builds a profile with a canonical interest; name must be in the catalog.
func Profile(username string, age int, interest string, prefs ...models.MatchPreference) models.Profile {
	in, ok := models.LookupInterest(interest)
	if !ok {
		in = models.Interest{Name: interest}
	}
	p := models.Profile{Username: username, Age: age, PrimaryInterest: in}
	if len(prefs) > 0 {
		p.Preferences = prefs
	}
	return p
}
