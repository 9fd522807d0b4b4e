package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/service"
	"github.com/sakif/starwars-api/internal/view"
)

// FavouriteHandler serves the caller's bookmarks. All routes require a bearer
// token; the acting user always comes from the token. A user_id in the body
// is ignored.
type FavouriteHandler struct {
	favourites *service.FavouriteService
	auth       *service.AuthService
	logger     *slog.Logger
}

func NewFavouriteHandler(favourites *service.FavouriteService, auth *service.AuthService, logger *slog.Logger) *FavouriteHandler {
	return &FavouriteHandler{favourites: favourites, auth: auth, logger: logger}
}

// HTTP: GET /user/favorites
func (h *FavouriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.auth)
	if err != nil {
		writeError(w, err)
		return
	}

	favs, err := h.favourites.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, "favourites", view.NewFavourites(favs), len(favs))
}

// HTTP: DELETE /user/favorites/{id}
func (h *FavouriteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.auth)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.favourites.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, fmt.Sprintf("favourite %d deleted", id))
}

// HandleAdd returns the handler for POST /favorite/{kind}/{param}.
//
//	POST /favorite/planet/{planet_id}
//	POST /favorite/people/{people_id}
func (h *FavouriteHandler) HandleAdd(kind model.TargetKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r.Context(), h.auth)
		if err != nil {
			writeError(w, err)
			return
		}
		id, err := pathID(r, param)
		if err != nil {
			writeError(w, err)
			return
		}

		fav, err := h.favourites.Add(r.Context(), user, model.Target{Kind: kind, ID: id})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view.NewFavourite(fav))
	}
}

// HandleRemove returns the handler for DELETE /favorite/{kind}/{param}.
func (h *FavouriteHandler) HandleRemove(kind model.TargetKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r.Context(), h.auth)
		if err != nil {
			writeError(w, err)
			return
		}
		id, err := pathID(r, param)
		if err != nil {
			writeError(w, err)
			return
		}

		target := model.Target{Kind: kind, ID: id}
		if err := h.favourites.Remove(r.Context(), user.ID, target); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, fmt.Sprintf("favourite %s deleted", target))
	}
}
