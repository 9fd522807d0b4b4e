// Package model defines the rows the repositories read and write, plus the
// condensed references used to express relationships between them.
//
// Relationships are never modelled as mutually recursive pointers. A Person
// knows its homeworld only as a PlanetRef, a Planet knows its residents only as
// PersonRefs, and so on. That keeps every value finite and makes the
// serialization layer (internal/view) total by construction.
package model

import "time"

// User is a registered account.
//
// Email is stored trimmed and lower-cased; the database column is also
// COLLATE NOCASE so uniqueness is case-insensitive even for rows written by
// other tools. PasswordHash is a bcrypt hash and never leaves the process.
type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`

	// Favourites is populated by the repository on reads.
	Favourites []Favourite `db:"-"`
}

// UserRef is the condensed form of a User.
type UserRef struct {
	ID    int64
	Email string
}

// Ref returns the condensed form of u.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email}
}
