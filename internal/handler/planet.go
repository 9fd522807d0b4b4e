package handler

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/service"
	"github.com/sakif/starwars-api/internal/view"
)

type PlanetHandler struct {
	planets *service.PlanetService
	logger  *slog.Logger
}

func NewPlanetHandler(planets *service.PlanetService, logger *slog.Logger) *PlanetHandler {
	return &PlanetHandler{planets: planets, logger: logger}
}

// HTTP: GET /planets?limit=&offset=
func (h *PlanetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	planets, err := h.planets.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, "planets", view.NewPlanets(planets), len(planets))
}

// HTTP: GET /planets/{id}
func (h *PlanetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	planet, err := h.planets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeItem(w, view.NewPlanet(planet))
}

// HandleCreate adds a planet and moves the listed people onto it.
//
// HTTP: POST /planets
// REQUEST BODY: {"name": "Tatooine", "gravity": 1, "residents_id": [1, 2]}
//
// residents_id is checked on its own first, so a scalar or an object there
// gets a message about residents_id rather than a generic decode error.
func (h *PlanetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	var probe struct {
		ResidentsID json.RawMessage `json:"residents_id"`
	}
	if err := unmarshal(body, &probe); err != nil {
		writeError(w, err)
		return
	}
	if err := checkIDList(probe.ResidentsID); err != nil {
		writeError(w, err)
		return
	}

	var in service.PlanetInput
	if err := unmarshal(body, &in); err != nil {
		writeError(w, err)
		return
	}

	planet, err := h.planets.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewPlanet(planet))
}

// checkIDList accepts an absent or null value, or a JSON array of integers.
func checkIDList(raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return apperror.ValidationFailed("residents_id", "residents_id must be a list of ids")
	}
	return nil
}
