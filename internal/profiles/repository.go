// Package profiles holds the authoritative in-memory profile collection.
//
// Every operation runs inside a single critical section. Store I/O never
// happens under that lock: Save copies the collection, releases the lock and
// then writes the copy.
package profiles

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/logger"
	"github.com/vytor/profilehub/internal/match"
	"github.com/vytor/profilehub/internal/models"
	"github.com/vytor/profilehub/internal/store"
)

// Repository is the in-memory profile collection backed by a durable store.
type Repository struct {
	mu       sync.Mutex
	profiles []models.Profile

	// saveMu orders snapshot writes so they reach the store in the order
	// they were taken.
	saveMu sync.Mutex
	store  store.DurableStore
	log    *logger.Logger
}

// NewRepository creates an empty repository persisting to st.
func NewRepository(st store.DurableStore) *Repository {
	return &Repository{
		store: st,
		log:   logger.Default().WithPrefix("repo"),
	}
}

// Create validates and appends a new profile. The stored copy owns prefs.
func (r *Repository) Create(username string, age int, interest string, prefs []models.MatchPreference) (models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Profile{}, apperrors.NewInvalidInputError("username", "must not be empty")
	}
	in, ok := models.LookupInterest(interest)
	if !ok {
		return models.Profile{}, apperrors.NewInvalidInputError("interest", "unknown interest "+strings.TrimSpace(interest))
	}
	if !models.ValidAge(age) {
		return models.Profile{}, apperrors.NewInvalidAgeError(age)
	}

	p := models.Profile{Username: username, Age: age, PrimaryInterest: in}
	if len(prefs) > 0 {
		p.Preferences = append([]models.MatchPreference(nil), prefs...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(username) >= 0 {
		r.log.Debug("duplicate profile rejected: username=%s", username)
		return models.Profile{}, apperrors.NewDuplicateProfileError(username)
	}
	r.profiles = append(r.profiles, p)
	r.log.Info("profile created: username=%s age=%d interest=%s", p.Username, p.Age, p.PrimaryInterest)
	return p.Clone(), nil
}

// Rename changes the username of the first profile matching oldName.
// The new name is not checked against existing usernames.
func (r *Repository) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperrors.NewInvalidInputError("newName", "must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(oldName)
	if i < 0 {
		return apperrors.NewNotFoundError("profile", oldName)
	}
	r.log.Info("profile renamed: %s -> %s", r.profiles[i].Username, newName)
	r.profiles[i].Username = newName
	return nil
}

// UpdateAge sets the age of the first profile matching username and then
// writes it to that profile's stored row, addressed by its exact name. The
// row write waits for snapshot saves already in flight. stored reports
// whether a row was updated; a store error leaves the in-memory age set.
func (r *Repository) UpdateAge(ctx context.Context, username string, age int) (stored bool, err error) {
	log := logger.FromContext(ctx).WithPrefix("repo")
	if !models.ValidAge(age) {
		return false, apperrors.NewInvalidAgeError(age)
	}

	r.mu.Lock()
	i := r.indexOf(username)
	if i < 0 {
		r.mu.Unlock()
		return false, apperrors.NewNotFoundError("profile", username)
	}
	r.profiles[i].Age = age
	name := r.profiles[i].Username
	r.mu.Unlock()
	log.Info("profile age updated: username=%s age=%d", name, age)

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	stored, err = r.store.UpsertAge(ctx, name, age)
	if err != nil {
		log.WithError(err).Error("failed to update stored age of %s", name)
		return false, err
	}
	return stored, nil
}

// Delete removes the first profile matching username. When a profile was
// removed the whole collection is saved before returning; a failed save is
// reported alongside removed == true.
func (r *Repository) Delete(ctx context.Context, username string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("repo")

	r.mu.Lock()
	i := r.indexOf(username)
	if i >= 0 {
		r.profiles = append(r.profiles[:i], r.profiles[i+1:]...)
	}
	r.mu.Unlock()

	if i < 0 {
		log.Debug("delete: no profile named %s", username)
		return false, nil
	}
	log.Info("profile deleted: username=%s", username)

	if err := r.Save(ctx); err != nil {
		log.Error("write-through save after delete failed: %v", err)
		return true, err
	}
	return true, nil
}

// List returns a point-in-time deep copy of the collection.
func (r *Repository) List() []models.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.CloneProfiles(r.profiles)
}

// FindByUsername looks a profile up ignoring case.
func (r *Repository) FindByUsername(username string) (models.Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(username)
	if i < 0 {
		return models.Profile{}, false
	}
	return r.profiles[i].Clone(), true
}

// FindMatches checks the age policy for the seeker, records the accepted
// range as the seeker's first preference and returns the matching profiles.
// A rejected range leaves the seeker untouched.
func (r *Repository) FindMatches(username string, minAge, maxAge int) ([]models.Profile, error) {
	r.mu.Lock()
	i := r.indexOf(username)
	if i < 0 {
		r.mu.Unlock()
		return nil, apperrors.NewNotFoundError("profile", username)
	}
	if err := match.CheckAgePolicy(r.profiles[i].Age, minAge, maxAge); err != nil {
		r.mu.Unlock()
		r.log.Debug("match range rejected for %s: %v", username, err)
		return nil, err
	}

	pref := models.MatchPreference{MinAge: minAge, MaxAge: maxAge}
	if len(r.profiles[i].Preferences) == 0 {
		r.profiles[i].Preferences = []models.MatchPreference{pref}
	} else {
		r.profiles[i].Preferences[0] = pref
	}
	seeker := r.profiles[i].Clone()
	snapshot := models.CloneProfiles(r.profiles)
	r.mu.Unlock()

	return match.FindMatches(seeker, minAge, maxAge, snapshot)
}

// Load replaces the collection with the stored snapshot. On failure the
// repository is left empty.
func (r *Repository) Load(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("repo")

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	loaded, err := r.store.LoadAll(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.profiles = nil
		log.Error("failed to load profiles, starting empty: %v", err)
		return err
	}
	r.profiles = loaded
	log.Info("loaded %d profiles", len(loaded))
	return nil
}

// Save writes a snapshot of the whole collection to the store.
func (r *Repository) Save(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("repo")

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.Lock()
	snapshot := models.CloneProfiles(r.profiles)
	r.mu.Unlock()

	if err := r.store.SaveAll(ctx, snapshot); err != nil {
		log.WithError(err).Error("failed to save %d profiles", len(snapshot))
		return err
	}
	log.Debug("saved %d profiles", len(snapshot))
	return nil
}

// Len reports the number of profiles held.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

// indexOf must be called with mu held.
func (r *Repository) indexOf(username string) int {
	for i := range r.profiles {
		if r.profiles[i].HasUsername(username) {
			return i
		}
	}
	return -1
}
