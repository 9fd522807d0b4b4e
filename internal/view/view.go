// Package view turns model rows into the JSON shapes the API returns.
//
// Every entity has two shapes:
//
//   - a full view with all scalar attributes plus its direct relations, and
//   - a condensed ref ({id, name} or {id, email}).
//
// A full view only ever embeds refs, never another full view. Refs have no
// relation fields at all, so nesting is at most one level deep and
// serialization always terminates regardless of how the rows point at each
// other.
package view

import "time"

// UserRef is the condensed user.
type UserRef struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// PersonRef is the condensed person.
type PersonRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PlanetRef is the condensed planet.
type PlanetRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FavouriteRef is a favourite as listed inside its owner's UserView.
// The owner is implied, so only the target is shown.
type FavouriteRef struct {
	ID      int64      `json:"id"`
	Kind    string     `json:"kind"`
	People  *PersonRef `json:"people"`
	Planets *PlanetRef `json:"planets"`
}

// UserView is the full user. The password hash is deliberately absent.
type UserView struct {
	ID         int64          `json:"id"`
	Email      string         `json:"email"`
	CreatedAt  time.Time      `json:"created_at"`
	Favourites []FavouriteRef `json:"favourites"`
}

// PersonView is the full person.
type PersonView struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	BirthYear *int64     `json:"birth_year"`
	EyeColor  *string    `json:"eye_color"`
	Gender    *string    `json:"gender"`
	HairColor *string    `json:"hair_color"`
	Height    *string    `json:"height"`
	Weight    *string    `json:"weight"`
	SkinColor *string    `json:"skin_color"`
	Species   *string    `json:"species"`
	Starships *string    `json:"starships"`
	Vehicles  *string    `json:"vehicles"`
	Master    *string    `json:"master"`
	Disciple  *string    `json:"disciple"`
	Image     *string    `json:"image"`
	Films     *string    `json:"films"`
	Homeworld *PlanetRef `json:"homeworld"`
}

// PlanetView is the full planet. Residents is null when nobody lives there.
type PlanetView struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Diameter       *string     `json:"diameter"`
	RotationPeriod *string     `json:"rotation_period"`
	OrbitalPeriod  *string     `json:"orbital_period"`
	Gravity        *float64    `json:"gravity"`
	Population     *int64      `json:"population"`
	Climate        *string     `json:"climate"`
	Terrain        *string     `json:"terrain"`
	SurfaceWater   *string     `json:"surface_water"`
	Image          *string     `json:"image"`
	Species        *string     `json:"species"`
	Films          *string     `json:"films"`
	Residents      []PersonRef `json:"residents"`
}

// FavouriteView is the full favourite. Exactly one of People and Planets is
// non-null, matching Kind.
type FavouriteView struct {
	ID        int64      `json:"id"`
	Kind      string     `json:"kind"`
	User      UserRef    `json:"user"`
	People    *PersonRef `json:"people"`
	Planets   *PlanetRef `json:"planets"`
	CreatedAt time.Time  `json:"created_at"`
}
