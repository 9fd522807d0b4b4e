package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/starwars-api/internal/service"
	"github.com/sakif/starwars-api/internal/view"
)

type PeopleHandler struct {
	people *service.PeopleService
	logger *slog.Logger
}

func NewPeopleHandler(people *service.PeopleService, logger *slog.Logger) *PeopleHandler {
	return &PeopleHandler{people: people, logger: logger}
}

// HTTP: GET /people?limit=&offset=
func (h *PeopleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	people, err := h.people.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, "people", view.NewPeople(people), len(people))
}

// HTTP: GET /people/{id}
func (h *PeopleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	person, err := h.people.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeItem(w, view.NewPerson(person))
}

// HandleCreate adds a person.
//
// HTTP: POST /people
// REQUEST BODY: {"name": "Luke Skywalker", "birth_year": 19, "homeworld_id": 1, ...}
func (h *PeopleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.PersonInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	person, err := h.people.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewPerson(person))
}
