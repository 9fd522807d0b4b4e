package model

// Person is a character. Every descriptive attribute is optional, so they are
// pointers: nil is stored as NULL and rendered as JSON null.
type Person struct {
	ID          int64
	Name        string
	BirthYear   *int64
	EyeColor    *string
	Gender      *string
	HairColor   *string
	Height      *string
	Weight      *string
	SkinColor   *string
	Species     *string
	Starships   *string
	Vehicles    *string
	Master      *string
	Disciple    *string
	Image       *string
	Films       *string
	HomeworldID *int64

	// Homeworld is populated on reads when HomeworldID is set.
	Homeworld *PlanetRef
}

// PersonRef is the condensed form of a Person.
type PersonRef struct {
	ID   int64
	Name string
}

// Ref returns the condensed form of p.
func (p *Person) Ref() PersonRef {
	return PersonRef{ID: p.ID, Name: p.Name}
}
