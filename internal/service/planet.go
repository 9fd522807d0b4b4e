package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/repository"
	"github.com/sakif/starwars-api/internal/validation"
)

// PlanetInput is the writable part of a Planet. ResidentIDs lists people who
// should call the new planet home; any previous homeworld they had is
// replaced.
type PlanetInput struct {
	Name           string   `json:"name" validate:"required,max=250"`
	Diameter       *string  `json:"diameter"`
	RotationPeriod *string  `json:"rotation_period"`
	OrbitalPeriod  *string  `json:"orbital_period"`
	Gravity        *float64 `json:"gravity"`
	Population     *int64   `json:"population" validate:"omitempty,gte=0"`
	Climate        *string  `json:"climate"`
	Terrain        *string  `json:"terrain"`
	SurfaceWater   *string  `json:"surface_water"`
	Image          *string  `json:"image"`
	Species        *string  `json:"species"`
	Films          *string  `json:"films"`
	ResidentIDs    []int64  `json:"residents_id" validate:"dive,gt=0"`
}

type PlanetService struct {
	planets repository.PlanetRepository
	logger  *slog.Logger
}

func NewPlanetService(planets repository.PlanetRepository, logger *slog.Logger) *PlanetService {
	return &PlanetService{planets: planets, logger: logger}
}

// Create adds a planet and links its residents in one step. If any resident
// id is unknown the whole request fails with NotFound and nothing changes.
func (s *PlanetService) Create(ctx context.Context, in PlanetInput) (*model.Planet, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	planet := &model.Planet{
		Name:           in.Name,
		Diameter:       in.Diameter,
		RotationPeriod: in.RotationPeriod,
		OrbitalPeriod:  in.OrbitalPeriod,
		Gravity:        in.Gravity,
		Population:     in.Population,
		Climate:        in.Climate,
		Terrain:        in.Terrain,
		SurfaceWater:   in.SurfaceWater,
		Image:          in.Image,
		Species:        in.Species,
		Films:          in.Films,
	}
	if err := s.planets.Create(ctx, planet, in.ResidentIDs); err != nil {
		logUnexpected(s.logger, "failed to create planet", err, slog.String("name", in.Name))
		return nil, err
	}

	s.logger.Info("planet created",
		slog.Int64("id", planet.ID),
		slog.String("name", planet.Name),
		slog.Int("residents", len(planet.Residents)),
	)
	return planet, nil
}

func (s *PlanetService) GetByID(ctx context.Context, id int64) (*model.Planet, error) {
	planet, err := s.planets.GetByID(ctx, id)
	if err != nil {
		logUnexpected(s.logger, "failed to get planet", err, slog.Int64("id", id))
		return nil, err
	}
	return planet, nil
}

func (s *PlanetService) List(ctx context.Context, limit, offset int) ([]model.Planet, error) {
	planets, err := s.planets.List(ctx, listOptions(limit, offset))
	if err != nil {
		s.logger.Error("failed to list planets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing planets: %w", err)
	}
	return planets, nil
}
