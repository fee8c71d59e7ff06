package models

import (
	"encoding/json"
	"strings"
)

// Interest is a named hobby drawn from a fixed catalog.
type Interest struct {
	Name string
}

var interestCatalog = []Interest{
	{Name: "Hiking"},
	{Name: "Gaming"},
	{Name: "Reading"},
	{Name: "Cooking"},
	{Name: "Fitness"},
}

// Interests returns a copy of the catalog in display order.
func Interests() []Interest {
	out := make([]Interest, len(interestCatalog))
	copy(out, interestCatalog)
	return out
}

// InterestNames returns the catalog names in display order.
func InterestNames() []string {
	names := make([]string, len(interestCatalog))
	for i, in := range interestCatalog {
		names[i] = in.Name
	}
	return names
}

// LookupInterest resolves name against the catalog, ignoring case, and
// returns the canonical spelling.
func LookupInterest(name string) (Interest, bool) {
	name = strings.TrimSpace(name)
	for _, in := range interestCatalog {
		if strings.EqualFold(in.Name, name) {
			return in, true
		}
	}
	return Interest{}, false
}

// Equal compares interests by name, ignoring case.
func (i Interest) Equal(other Interest) bool {
	return strings.EqualFold(i.Name, other.Name)
}

func (i Interest) String() string {
	return i.Name
}

// Interests are serialized as their bare name.
func (i Interest) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Name)
}

func (i *Interest) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &i.Name)
}
