package model

import (
	"fmt"
	"time"
)

// TargetKind says which catalogue a favourite points into.
type TargetKind string

const (
	KindPerson TargetKind = "people"
	KindPlanet TargetKind = "planet"
)

// Valid reports whether k is one of the known kinds.
func (k TargetKind) Valid() bool {
	return k == KindPerson || k == KindPlanet
}

// Target is exactly one catalogue entry: a person or a planet, never both and
// never neither. Name is filled in on reads.
type Target struct {
	Kind TargetKind
	ID   int64
	Name string
}

// PersonTarget returns a Target pointing at the person with the given id.
func PersonTarget(id int64) Target {
	return Target{Kind: KindPerson, ID: id}
}

// PlanetTarget returns a Target pointing at the planet with the given id.
func PlanetTarget(id int64) Target {
	return Target{Kind: KindPlanet, ID: id}
}

func (t Target) String() string {
	return fmt.Sprintf("%s/%d", t.Kind, t.ID)
}

// Favourite records that a user bookmarked one catalogue entry.
type Favourite struct {
	ID        int64
	User      UserRef
	Target    Target
	CreatedAt time.Time
}
