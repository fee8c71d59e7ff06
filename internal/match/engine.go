// Package match sorts, groups and matches profile snapshots. Every function
// returns fresh slices and leaves its input untouched.
package match

import (
	"sort"
	"strings"

	apperrors "github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/models"
)

// AdultAge is the age from which the adult matching policy applies.
const AdultAge = 18

// SortByUsername orders profiles by username, byte-wise ascending.
func SortByUsername(snapshot []models.Profile) []models.Profile {
	out := models.CloneProfiles(snapshot)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Username < out[j].Username
	})
	return out
}

// SortByAge orders profiles by age; equal ages keep their relative order.
func SortByAge(snapshot []models.Profile) []models.Profile {
	out := models.CloneProfiles(snapshot)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Age < out[j].Age
	})
	return out
}

// GroupByInterest collects the profiles whose primary interest equals
// interest, ignoring case. The group is empty when nothing matches.
func GroupByInterest(snapshot []models.Profile, interest string) models.ProfileGroup {
	interest = strings.TrimSpace(interest)
	group := models.ProfileGroup{
		Name:     interest + " Group",
		Profiles: []models.Profile{},
	}
	if canonical, ok := models.LookupInterest(interest); ok {
		group.Name = canonical.Name + " Group"
	}
	for _, p := range snapshot {
		if strings.EqualFold(p.PrimaryInterest.Name, interest) {
			group.Profiles = append(group.Profiles, p.Clone())
		}
	}
	return group
}

// CheckAgePolicy validates a requested range for a seeker. Adults may only
// ask for ranges whose bounds are both adult ages.
func CheckAgePolicy(seekerAge, minAge, maxAge int) error {
	if !models.ValidAge(minAge) || !models.ValidAge(maxAge) {
		return apperrors.NewInvalidInputError("age range", "bounds must lie within 0-150")
	}
	if minAge > maxAge {
		return apperrors.NewInvalidInputError("age range", "minimum age exceeds maximum age")
	}
	if seekerAge >= AdultAge && (minAge < AdultAge || maxAge < AdultAge) {
		return apperrors.NewAgeRestrictionError(seekerAge, minAge, maxAge)
	}
	return nil
}

// FindMatches returns every profile other than the seeker whose age lies in
// [minAge, maxAge]. It does not touch the seeker's stored preferences; the
// repository does that under its lock.
func FindMatches(seeker models.Profile, minAge, maxAge int, all []models.Profile) ([]models.Profile, error) {
	if err := CheckAgePolicy(seeker.Age, minAge, maxAge); err != nil {
		return nil, err
	}
	matches := []models.Profile{}
	for _, p := range all {
		if p.HasUsername(seeker.Username) {
			continue
		}
		if p.Age >= minAge && p.Age <= maxAge {
			matches = append(matches, p.Clone())
		}
	}
	return matches, nil
}
