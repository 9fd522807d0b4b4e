package view

import "github.com/sakif/starwars-api/internal/model"

func NewUserRef(r model.UserRef) UserRef {
	return UserRef{ID: r.ID, Email: r.Email}
}

func NewPersonRef(r model.PersonRef) PersonRef {
	return PersonRef{ID: r.ID, Name: r.Name}
}

func NewPlanetRef(r model.PlanetRef) PlanetRef {
	return PlanetRef{ID: r.ID, Name: r.Name}
}

// targetRefs splits a favourite target into the two nullable JSON slots.
func targetRefs(t model.Target) (*PersonRef, *PlanetRef) {
	switch t.Kind {
	case model.KindPerson:
		return &PersonRef{ID: t.ID, Name: t.Name}, nil
	case model.KindPlanet:
		return nil, &PlanetRef{ID: t.ID, Name: t.Name}
	}
	return nil, nil
}

// NewUser builds the full view of u. Favourites are always rendered as a
// list, empty when the user has none.
func NewUser(u *model.User) UserView {
	favs := make([]FavouriteRef, 0, len(u.Favourites))
	for _, f := range u.Favourites {
		people, planets := targetRefs(f.Target)
		favs = append(favs, FavouriteRef{
			ID:      f.ID,
			Kind:    string(f.Target.Kind),
			People:  people,
			Planets: planets,
		})
	}
	return UserView{
		ID:         u.ID,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
		Favourites: favs,
	}
}

func NewUsers(users []model.User) []UserView {
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, NewUser(&users[i]))
	}
	return out
}

// NewPerson builds the full view of p. The homeworld appears as a ref only.
func NewPerson(p *model.Person) PersonView {
	v := PersonView{
		ID:        p.ID,
		Name:      p.Name,
		BirthYear: p.BirthYear,
		EyeColor:  p.EyeColor,
		Gender:    p.Gender,
		HairColor: p.HairColor,
		Height:    p.Height,
		Weight:    p.Weight,
		SkinColor: p.SkinColor,
		Species:   p.Species,
		Starships: p.Starships,
		Vehicles:  p.Vehicles,
		Master:    p.Master,
		Disciple:  p.Disciple,
		Image:     p.Image,
		Films:     p.Films,
	}
	if p.Homeworld != nil {
		ref := NewPlanetRef(*p.Homeworld)
		v.Homeworld = &ref
	}
	return v
}

func NewPeople(people []model.Person) []PersonView {
	out := make([]PersonView, 0, len(people))
	for i := range people {
		out = append(out, NewPerson(&people[i]))
	}
	return out
}

// NewPlanet builds the full view of p. Residents appear as refs only and the
// list is null, not empty, when there are none.
func NewPlanet(p *model.Planet) PlanetView {
	v := PlanetView{
		ID:             p.ID,
		Name:           p.Name,
		Diameter:       p.Diameter,
		RotationPeriod: p.RotationPeriod,
		OrbitalPeriod:  p.OrbitalPeriod,
		Gravity:        p.Gravity,
		Population:     p.Population,
		Climate:        p.Climate,
		Terrain:        p.Terrain,
		SurfaceWater:   p.SurfaceWater,
		Image:          p.Image,
		Species:        p.Species,
		Films:          p.Films,
	}
	if len(p.Residents) > 0 {
		v.Residents = make([]PersonRef, 0, len(p.Residents))
		for _, r := range p.Residents {
			v.Residents = append(v.Residents, NewPersonRef(r))
		}
	}
	return v
}

func NewPlanets(planets []model.Planet) []PlanetView {
	out := make([]PlanetView, 0, len(planets))
	for i := range planets {
		out = append(out, NewPlanet(&planets[i]))
	}
	return out
}

func NewFavourite(f *model.Favourite) FavouriteView {
	people, planets := targetRefs(f.Target)
	return FavouriteView{
		ID:        f.ID,
		Kind:      string(f.Target.Kind),
		User:      NewUserRef(f.User),
		People:    people,
		Planets:   planets,
		CreatedAt: f.CreatedAt,
	}
}

func NewFavourites(favs []model.Favourite) []FavouriteView {
	out := make([]FavouriteView, 0, len(favs))
	for i := range favs {
		out = append(out, NewFavourite(&favs[i]))
	}
	return out
}
