package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func TestPeopleCreate(t *testing.T) {
	repo := &fakePeopleRepo{planets: map[int64]string{1: "Tatooine"}}
	svc := NewPeopleService(repo, discardLogger())

	person, err := svc.Create(context.Background(), PersonInput{
		Name:        "  Luke Skywalker ",
		BirthYear:   ptr(int64(19)),
		HomeworldID: ptr(int64(1)),
	})
	require.NoError(t, err)

	assert.Equal(t, "Luke Skywalker", person.Name)
	require.NotNil(t, person.Homeworld)
	assert.Equal(t, "Tatooine", person.Homeworld.Name)
}

func TestPeopleCreate_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   PersonInput
		want error
	}{
		{name: "missing name", in: PersonInput{}, want: apperror.ErrValidation},
		{name: "blank name", in: PersonInput{Name: "   "}, want: apperror.ErrValidation},
		{name: "bad homeworld id", in: PersonInput{Name: "Rey", HomeworldID: ptr(int64(0))}, want: apperror.ErrValidation},
		{name: "unknown homeworld", in: PersonInput{Name: "Rey", HomeworldID: ptr(int64(9))}, want: apperror.ErrNotFound},
		{name: "duplicate name", in: PersonInput{Name: "YODA"}, want: apperror.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePeopleRepo{planets: map[int64]string{1: "Tatooine"}}
			svc := NewPeopleService(repo, discardLogger())
			_, err := svc.Create(context.Background(), PersonInput{Name: "Yoda"})
			require.NoError(t, err)

			_, err = svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPeopleListAndGet(t *testing.T) {
	repo := &fakePeopleRepo{}
	svc := NewPeopleService(repo, discardLogger())
	ctx := context.Background()

	people, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, people)
	assert.Equal(t, repository.ListOptions{Limit: DefaultListLimit}, repo.lastList)

	created, err := svc.Create(ctx, PersonInput{Name: "Chewbacca"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chewbacca", got.Name)

	_, err = svc.GetByID(ctx, 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPlanetCreate(t *testing.T) {
	repo := &fakePlanetRepo{people: map[int64]string{1: "Luke Skywalker", 2: "Owen Lars"}}
	svc := NewPlanetService(repo, discardLogger())

	planet, err := svc.Create(context.Background(), PlanetInput{
		Name:        " Tatooine ",
		Gravity:     ptr(1.0),
		ResidentIDs: []int64{1, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tatooine", planet.Name)
	assert.Equal(t, []int64{1, 2}, repo.lastResidents)
	require.Len(t, planet.Residents, 2)
	assert.Equal(t, "Owen Lars", planet.Residents[1].Name)
}

func TestPlanetCreate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		in        PlanetInput
		want      error
		wantField string
	}{
		{name: "missing name", in: PlanetInput{}, want: apperror.ErrValidation, wantField: "name"},
		{name: "negative population", in: PlanetInput{Name: "Hoth", Population: ptr(int64(-1))}, want: apperror.ErrValidation, wantField: "population"},
		{name: "non-positive resident id", in: PlanetInput{Name: "Hoth", ResidentIDs: []int64{1, 0}}, want: apperror.ErrValidation, wantField: "residents_id[1]"},
		{name: "unknown resident", in: PlanetInput{Name: "Hoth", ResidentIDs: []int64{1, 7}}, want: apperror.ErrNotFound},
		{name: "duplicate name", in: PlanetInput{Name: "alderaan"}, want: apperror.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePlanetRepo{people: map[int64]string{1: "Luke Skywalker"}}
			svc := NewPlanetService(repo, discardLogger())
			_, err := svc.Create(context.Background(), PlanetInput{Name: "Alderaan"})
			require.NoError(t, err)

			_, err = svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			if tt.wantField != "" {
				var appErr *apperror.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.wantField, appErr.Field)
			}
		})
	}
}

func TestPlanetList_StorageFailure(t *testing.T) {
	repo := &fakePlanetRepo{err: errors.New("locked")}
	_, err := NewPlanetService(repo, discardLogger()).List(context.Background(), 0, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrNotFound)
}
