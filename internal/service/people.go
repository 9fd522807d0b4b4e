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

// PersonInput is the writable part of a Person. Only Name is required.
type PersonInput struct {
	Name        string  `json:"name" validate:"required,max=250"`
	BirthYear   *int64  `json:"birth_year"`
	EyeColor    *string `json:"eye_color"`
	Gender      *string `json:"gender"`
	HairColor   *string `json:"hair_color"`
	Height      *string `json:"height"`
	Weight      *string `json:"weight"`
	SkinColor   *string `json:"skin_color"`
	Species     *string `json:"species"`
	Starships   *string `json:"starships"`
	Vehicles    *string `json:"vehicles"`
	Master      *string `json:"master"`
	Disciple    *string `json:"disciple"`
	Image       *string `json:"image"`
	Films       *string `json:"films"`
	HomeworldID *int64  `json:"homeworld_id" validate:"omitempty,gt=0"`
}

type PeopleService struct {
	people repository.PeopleRepository
	logger *slog.Logger
}

func NewPeopleService(people repository.PeopleRepository, logger *slog.Logger) *PeopleService {
	return &PeopleService{people: people, logger: logger}
}

// Create adds a person. An unknown homeworld is NotFound; a name already in
// use (ignoring case) is a Conflict.
func (s *PeopleService) Create(ctx context.Context, in PersonInput) (*model.Person, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	person := &model.Person{
		Name:        in.Name,
		BirthYear:   in.BirthYear,
		EyeColor:    in.EyeColor,
		Gender:      in.Gender,
		HairColor:   in.HairColor,
		Height:      in.Height,
		Weight:      in.Weight,
		SkinColor:   in.SkinColor,
		Species:     in.Species,
		Starships:   in.Starships,
		Vehicles:    in.Vehicles,
		Master:      in.Master,
		Disciple:    in.Disciple,
		Image:       in.Image,
		Films:       in.Films,
		HomeworldID: in.HomeworldID,
	}
	if err := s.people.Create(ctx, person); err != nil {
		logUnexpected(s.logger, "failed to create person", err, slog.String("name", in.Name))
		return nil, err
	}

	s.logger.Info("person created",
		slog.Int64("id", person.ID),
		slog.String("name", person.Name),
	)
	return person, nil
}

func (s *PeopleService) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	person, err := s.people.GetByID(ctx, id)
	if err != nil {
		logUnexpected(s.logger, "failed to get person", err, slog.Int64("id", id))
		return nil, err
	}
	return person, nil
}

func (s *PeopleService) List(ctx context.Context, limit, offset int) ([]model.Person, error) {
	people, err := s.people.List(ctx, listOptions(limit, offset))
	if err != nil {
		s.logger.Error("failed to list people", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing people: %w", err)
	}
	return people, nil
}
