package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/repository"
)

func TestPersonCreate(t *testing.T) {
	db := newTestDB(t)
	tatooine := createTestPlanet(t, db, "Tatooine")

	person := &model.Person{
		Name:        "Luke Skywalker",
		BirthYear:   ptr(int64(19)),
		EyeColor:    ptr("blue"),
		HomeworldID: ptr(tatooine.ID),
	}
	if err := db.People().Create(context.Background(), person); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if person.ID == 0 {
		t.Error("Create() did not set person.ID")
	}
	if person.Homeworld == nil || person.Homeworld.Name != "Tatooine" {
		t.Errorf("Homeworld = %+v, want Tatooine", person.Homeworld)
	}

	got, err := db.People().GetByID(context.Background(), person.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.BirthYear == nil || *got.BirthYear != 19 {
		t.Errorf("BirthYear = %v, want 19", got.BirthYear)
	}
	if got.EyeColor == nil || *got.EyeColor != "blue" {
		t.Errorf("EyeColor = %v, want blue", got.EyeColor)
	}
	if got.Gender != nil {
		t.Errorf("Gender = %v, want nil", *got.Gender)
	}
	if got.Homeworld == nil || got.Homeworld.ID != tatooine.ID {
		t.Errorf("Homeworld = %+v, want ref to planet %d", got.Homeworld, tatooine.ID)
	}
}

func TestPersonCreate_NoHomeworld(t *testing.T) {
	db := newTestDB(t)
	person := createTestPerson(t, db, "Yoda", nil)

	got, err := db.People().GetByID(context.Background(), person.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.HomeworldID != nil || got.Homeworld != nil {
		t.Errorf("homeworld = %v / %+v, want nil", got.HomeworldID, got.Homeworld)
	}
}

func TestPersonCreate_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	createTestPerson(t, db, "Luke Skywalker", nil)

	err := db.People().Create(context.Background(), &model.Person{Name: "luke skywalker"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestPersonCreate_UnknownHomeworld(t *testing.T) {
	db := newTestDB(t)

	err := db.People().Create(context.Background(), &model.Person{Name: "Rey", HomeworldID: ptr(int64(99))})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Create() error = %v, want ErrNotFound", err)
	}

	people, err := db.People().List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(people) != 0 {
		t.Errorf("List() = %+v, want nothing written", people)
	}
}

func TestPersonGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.People().GetByID(context.Background(), 7)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestPersonList(t *testing.T) {
	db := newTestDB(t)
	naboo := createTestPlanet(t, db, "Naboo")
	createTestPerson(t, db, "Padme Amidala", ptr(naboo.ID))
	createTestPerson(t, db, "Chewbacca", nil)

	people, err := db.People().List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("List() returned %d people, want 2", len(people))
	}
	if people[0].Name != "Padme Amidala" || people[0].Homeworld == nil || people[0].Homeworld.Name != "Naboo" {
		t.Errorf("people[0] = %+v, want Padme from Naboo", people[0])
	}
	if people[1].Homeworld != nil {
		t.Errorf("people[1].Homeworld = %+v, want nil", people[1].Homeworld)
	}
}
