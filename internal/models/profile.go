package models

import (
	"fmt"
	"strings"
)

const (
	MinAge = 0
	MaxAge = 150
)

// DefaultPreference is attached to profiles created without explicit preferences.
var DefaultPreference = MatchPreference{MinAge: 20, MaxAge: 35}

// MatchPreference is an inclusive age range used by the matching workflow.
type MatchPreference struct {
	MinAge int `json:"min_age"`
	MaxAge int `json:"max_age"`
}

func (p MatchPreference) String() string {
	return fmt.Sprintf("[%d-%d]", p.MinAge, p.MaxAge)
}

// Profile is a managed user record. Usernames compare case-insensitively.
type Profile struct {
	Username        string            `json:"username"`
	Age             int               `json:"age"`
	PrimaryInterest Interest          `json:"interest"`
	Preferences     []MatchPreference `json:"preferences"`
}

// Clone returns a deep copy so callers never share the preferences slice.
func (p Profile) Clone() Profile {
	out := p
	if p.Preferences != nil {
		out.Preferences = make([]MatchPreference, len(p.Preferences))
		copy(out.Preferences, p.Preferences)
	}
	return out
}

// HasUsername reports whether name matches the profile's username, ignoring case.
func (p Profile) HasUsername(name string) bool {
	return strings.EqualFold(p.Username, name)
}

// ActivePreference returns the preference used for matching, if any.
func (p Profile) ActivePreference() (MatchPreference, bool) {
	if len(p.Preferences) == 0 {
		return MatchPreference{}, false
	}
	return p.Preferences[0], true
}

func (p Profile) String() string {
	return fmt.Sprintf("%-15s (Age: %d) | Primary: %s", p.Username, p.Age, p.PrimaryInterest.Name)
}

// ValidAge reports whether age lies in the accepted range.
func ValidAge(age int) bool {
	return age >= MinAge && age <= MaxAge
}

// CloneProfiles deep-copies a slice of profiles.
func CloneProfiles(in []Profile) []Profile {
	out := make([]Profile, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// ProfileGroup is a transient, labelled view over a set of profiles.
type ProfileGroup struct {
	Name     string    `json:"name"`
	Profiles []Profile `json:"profiles"`
}

func (g ProfileGroup) Empty() bool {
	return len(g.Profiles) == 0
}
