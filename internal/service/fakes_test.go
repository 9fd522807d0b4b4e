package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/repository"
)

// The fakes below are in-memory implementations of the repository
// interfaces. They mirror the SQLite stores' observable behaviour (conflicts,
// not-founds, ownership) closely enough to test the services in isolation.
// Set err to simulate a storage failure.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
	err    error
	// lastList records the options the service passed to List.
	lastList repository.ListOptions
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("email", "email already registered")
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	user.Favourites = []model.Favourite{}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFoundMessage("user not found with email " + email)
}

func (f *fakeUserRepo) List(_ context.Context, opts repository.ListOptions) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = opts
	if f.err != nil {
		return nil, f.err
	}
	out := []model.User{}
	for id := int64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	delete(f.users, id)
	return nil
}

type fakePeopleRepo struct {
	people   []model.Person
	planets  map[int64]string
	err      error
	lastList repository.ListOptions
}

var _ repository.PeopleRepository = (*fakePeopleRepo)(nil)

func (f *fakePeopleRepo) Create(_ context.Context, person *model.Person) error {
	if f.err != nil {
		return f.err
	}
	for _, p := range f.people {
		if strings.EqualFold(p.Name, person.Name) {
			return apperror.Conflict("name", "duplicate")
		}
	}
	if person.HomeworldID != nil {
		name, ok := f.planets[*person.HomeworldID]
		if !ok {
			return apperror.NotFound("planet", strconv.FormatInt(*person.HomeworldID, 10))
		}
		person.Homeworld = &model.PlanetRef{ID: *person.HomeworldID, Name: name}
	}
	person.ID = int64(len(f.people) + 1)
	f.people = append(f.people, *person)
	return nil
}

func (f *fakePeopleRepo) GetByID(_ context.Context, id int64) (*model.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.people {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperror.NotFound("person", strconv.FormatInt(id, 10))
}

func (f *fakePeopleRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Person, error) {
	f.lastList = opts
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Person{}, f.people...), nil
}

type fakePlanetRepo struct {
	planets       []model.Planet
	people        map[int64]string
	err           error
	lastResidents []int64
}

var _ repository.PlanetRepository = (*fakePlanetRepo)(nil)

func (f *fakePlanetRepo) Create(_ context.Context, planet *model.Planet, residentIDs []int64) error {
	f.lastResidents = residentIDs
	if f.err != nil {
		return f.err
	}
	for _, p := range f.planets {
		if strings.EqualFold(p.Name, planet.Name) {
			return apperror.Conflict("name", "duplicate")
		}
	}
	var residents []model.PersonRef
	for _, id := range residentIDs {
		name, ok := f.people[id]
		if !ok {
			return apperror.NotFound("person", strconv.FormatInt(id, 10))
		}
		residents = append(residents, model.PersonRef{ID: id, Name: name})
	}
	planet.ID = int64(len(f.planets) + 1)
	planet.Residents = residents
	f.planets = append(f.planets, *planet)
	return nil
}

func (f *fakePlanetRepo) GetByID(_ context.Context, id int64) (*model.Planet, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.planets {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperror.NotFound("planet", strconv.FormatInt(id, 10))
}

func (f *fakePlanetRepo) List(_ context.Context, _ repository.ListOptions) ([]model.Planet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Planet{}, f.planets...), nil
}

type fakeFavouriteRepo struct {
	favs    []model.Favourite
	targets map[model.Target]string // target (without name) → name
	err     error
}

var _ repository.FavouriteRepository = (*fakeFavouriteRepo)(nil)

func newFakeFavouriteRepo() *fakeFavouriteRepo {
	return &fakeFavouriteRepo{targets: make(map[model.Target]string)}
}

func (f *fakeFavouriteRepo) Create(_ context.Context, fav *model.Favourite) error {
	if f.err != nil {
		return f.err
	}
	name, ok := f.targets[fav.Target]
	if !ok {
		return apperror.NotFound(string(fav.Target.Kind), strconv.FormatInt(fav.Target.ID, 10))
	}
	for _, existing := range f.favs {
		if existing.User.ID == fav.User.ID && existing.Target.Kind == fav.Target.Kind && existing.Target.ID == fav.Target.ID {
			return apperror.Conflict("target", "already a favourite")
		}
	}
	fav.ID = int64(len(f.favs) + 1)
	fav.Target.Name = name
	fav.CreatedAt = time.Now().UTC()
	f.favs = append(f.favs, *fav)
	return nil
}

func (f *fakeFavouriteRepo) ListByUser(_ context.Context, userID int64) ([]model.Favourite, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Favourite{}
	for _, fav := range f.favs {
		if fav.User.ID == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

func (f *fakeFavouriteRepo) Delete(_ context.Context, userID, id int64) error {
	if f.err != nil {
		return f.err
	}
	for i, fav := range f.favs {
		if fav.ID == id && fav.User.ID == userID {
			f.favs = append(f.favs[:i], f.favs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("favourite", strconv.FormatInt(id, 10))
}

func (f *fakeFavouriteRepo) DeleteByTarget(_ context.Context, userID int64, target model.Target) error {
	if f.err != nil {
		return f.err
	}
	for i, fav := range f.favs {
		if fav.User.ID == userID && fav.Target.Kind == target.Kind && fav.Target.ID == target.ID {
			f.favs = append(f.favs[:i], f.favs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFoundMessage("no such favourite")
}
