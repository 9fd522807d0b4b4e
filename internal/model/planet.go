package model

// Planet is a world people can call home.
type Planet struct {
	ID             int64
	Name           string
	Diameter       *string
	RotationPeriod *string
	OrbitalPeriod  *string
	Gravity        *float64
	Population     *int64
	Climate        *string
	Terrain        *string
	SurfaceWater   *string
	Image          *string
	Species        *string
	Films          *string

	// Residents is the back-relation of Person.HomeworldID, populated on reads.
	// It stays nil when nobody lives here.
	Residents []PersonRef
}

// PlanetRef is the condensed form of a Planet.
type PlanetRef struct {
	ID   int64
	Name string
}

// Ref returns the condensed form of p.
func (p *Planet) Ref() PlanetRef {
	return PlanetRef{ID: p.ID, Name: p.Name}
}
