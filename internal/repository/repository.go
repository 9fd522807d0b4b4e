// Package repository declares the storage contracts the service layer depends on.
//
// Implementations translate storage outcomes into apperror values:
//   - a missing row is apperror.ErrNotFound
//   - a uniqueness violation is apperror.ErrConflict
//   - anything else is an opaque wrapped error (an internal failure)
package repository

import (
	"context"

	"github.com/sakif/starwars-api/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// Create inserts user and sets its ID and CreatedAt. A duplicate email
	// (case-insensitive) is a Conflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	// Delete removes the user and, by cascade, their favourites.
	Delete(ctx context.Context, id int64) error
}

type PeopleRepository interface {
	// Create inserts person. A duplicate name is a Conflict and an unknown
	// HomeworldID is NotFound.
	Create(ctx context.Context, person *model.Person) error
	GetByID(ctx context.Context, id int64) (*model.Person, error)
	List(ctx context.Context, opts ListOptions) ([]model.Person, error)
}

type PlanetRepository interface {
	// Create inserts planet and makes it the homeworld of every person in
	// residentIDs, atomically. Any unknown resident id is NotFound.
	Create(ctx context.Context, planet *model.Planet, residentIDs []int64) error
	GetByID(ctx context.Context, id int64) (*model.Planet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Planet, error)
}

type FavouriteRepository interface {
	// Create inserts fav. A second favourite for the same (user, target) is a
	// Conflict; an unknown target is NotFound.
	Create(ctx context.Context, fav *model.Favourite) error
	ListByUser(ctx context.Context, userID int64) ([]model.Favourite, error)
	// Delete removes favourite id only if it belongs to userID.
	Delete(ctx context.Context, userID, id int64) error
	// DeleteByTarget removes userID's favourite pointing at target.
	DeleteByTarget(ctx context.Context, userID int64, target model.Target) error
}
