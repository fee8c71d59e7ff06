package services

import (
	"context"
	"strings"

	"github.com/vytor/profilehub/internal/config"
	"github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/logger"
	"github.com/vytor/profilehub/internal/match"
	"github.com/vytor/profilehub/internal/models"
	"github.com/vytor/profilehub/internal/profiles"
	"github.com/vytor/profilehub/internal/store"
)

// SortKey selects the ordering of SortedProfiles.
type SortKey string

const (
	SortByUsername SortKey = "username"
	SortByAge      SortKey = "age"
)

// CreateProfileInput carries the fields of a new profile. Interest is
// resolved against the catalog ignoring case.
type CreateProfileInput struct {
	Username    string
	Age         int
	Interest    string
	Preferences []models.MatchPreference
}

// RoleSwitcher changes the credential used for future store connections.
type RoleSwitcher interface {
	Switch(role config.Role) config.Credential
}

// ProfileService handles profile-related business logic
type ProfileService interface {
	ListProfiles(ctx context.Context) []models.Profile
	CreateProfile(ctx context.Context, in CreateProfileInput) (*models.Profile, error)
	GetProfile(ctx context.Context, username string) (*models.Profile, error)
	RenameProfile(ctx context.Context, currentName, newName string) error
	UpdateAge(ctx context.Context, username string, age int) error
	DeleteProfile(ctx context.Context, username string) error
	SearchStored(ctx context.Context, username string) (*models.Profile, error)
	SortedProfiles(ctx context.Context, by SortKey) ([]models.Profile, error)
	GroupByInterest(ctx context.Context, interest string) models.ProfileGroup
	FindMatches(ctx context.Context, username string, minAge, maxAge int) ([]models.Profile, error)
	SwitchRole(ctx context.Context, role string) config.Role
	Interests() []string
	Save(ctx context.Context) error
	Ready(ctx context.Context) error
}

type profileService struct {
	repo  *profiles.Repository
	store store.DurableStore
	roles RoleSwitcher
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo *profiles.Repository, st store.DurableStore, roles RoleSwitcher) ProfileService {
	return &profileService{repo: repo, store: st, roles: roles}
}

func (s *profileService) ListProfiles(ctx context.Context) []models.Profile {
	log := logger.FromContext(ctx)
	log.Debug("listing profiles")
	return s.repo.List()
}

func (s *profileService) CreateProfile(ctx context.Context, in CreateProfileInput) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating profile: username=%s age=%d interest=%s", in.Username, in.Age, in.Interest)

	prefs := in.Preferences
	if len(prefs) == 0 {
		prefs = []models.MatchPreference{models.DefaultPreference}
	}
	p, err := s.repo.Create(in.Username, in.Age, in.Interest, prefs)
	if err != nil {
		log.Debug("profile rejected: %v", err)
		return nil, err
	}
	return &p, nil
}

func (s *profileService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting profile: username=%s", username)

	p, ok := s.repo.FindByUsername(username)
	if !ok {
		return nil, errors.NewNotFoundError("profile", username)
	}
	return &p, nil
}

// RenameProfile renames in memory and then attempts a full save. A failed
// save is logged; the next autosave retries it.
func (s *profileService) RenameProfile(ctx context.Context, currentName, newName string) error {
	log := logger.FromContext(ctx)
	log.Debug("renaming profile: %s -> %s", currentName, newName)

	if err := s.repo.Rename(currentName, newName); err != nil {
		return err
	}
	if err := s.repo.Save(ctx); err != nil {
		log.Warn("save after rename failed, autosave will retry: %v", err)
	}
	return nil
}

// UpdateAge changes the in-memory age and then updates the stored row. The
// in-memory value stays authoritative when the store update fails.
func (s *profileService) UpdateAge(ctx context.Context, username string, age int) error {
	log := logger.FromContext(ctx)
	log.Debug("updating age: username=%s age=%d", username, age)

	updated, err := s.repo.UpdateAge(ctx, username, age)
	if err != nil {
		return err
	}
	if !updated {
		log.Debug("profile %s not stored yet, next save will persist the age", username)
	}
	return nil
}

func (s *profileService) DeleteProfile(ctx context.Context, username string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting profile: username=%s", username)

	removed, err := s.repo.Delete(ctx, username)
	if !removed {
		return errors.NewNotFoundError("profile", username)
	}
	if err != nil {
		log.Error("profile removed but save failed: %v", err)
		return err
	}
	return nil
}

// SearchStored reads a profile straight from the durable store.
func (s *profileService) SearchStored(ctx context.Context, username string) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("searching store: username=%s", username)

	if strings.TrimSpace(username) == "" {
		return nil, errors.NewInvalidInputError("username", "must not be empty")
	}
	p, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFoundError("stored profile", username)
	}
	return p, nil
}

func (s *profileService) SortedProfiles(ctx context.Context, by SortKey) ([]models.Profile, error) {
	logger.FromContext(ctx).Debug("sorting profiles by %s", by)

	switch SortKey(strings.ToLower(string(by))) {
	case SortByUsername:
		return match.SortByUsername(s.repo.List()), nil
	case SortByAge:
		return match.SortByAge(s.repo.List()), nil
	default:
		return nil, errors.NewInvalidInputError("by", "must be username or age")
	}
}

func (s *profileService) GroupByInterest(ctx context.Context, interest string) models.ProfileGroup {
	logger.FromContext(ctx).Debug("grouping profiles by interest %s", interest)
	return match.GroupByInterest(s.repo.List(), interest)
}

func (s *profileService) FindMatches(ctx context.Context, username string, minAge, maxAge int) ([]models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("finding matches: username=%s range=[%d-%d]", username, minAge, maxAge)

	matches, err := s.repo.FindMatches(username, minAge, maxAge)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d matches for %s", len(matches), username)
	return matches, nil
}

func (s *profileService) SwitchRole(ctx context.Context, role string) config.Role {
	r := config.ParseRole(role)
	cred := s.roles.Switch(r)
	logger.FromContext(ctx).Info("store role switched: role=%s user=%s", r, cred.User)
	return r
}

func (s *profileService) Interests() []string {
	return models.InterestNames()
}

func (s *profileService) Save(ctx context.Context) error {
	return s.repo.Save(ctx)
}

func (s *profileService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
