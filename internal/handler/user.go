package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/starwars-api/internal/service"
	"github.com/sakif/starwars-api/internal/view"
)

type UserHandler struct {
	users  *service.UserService
	auth   *service.AuthService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, auth *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, logger: logger}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleList returns every user with their favourites.
//
// HTTP: GET /users?limit=&offset=
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, "users", view.NewUsers(users), len(users))
}

// HTTP: GET /users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeItem(w, view.NewUser(user))
}

// HandleSignup registers an account.
//
// HTTP: POST /signup
// REQUEST BODY: {"email": "luke@rebellion.org", "password": "..."}
func (h *UserHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewUser(user))
}

// HandleMe returns the caller's own profile.
//
// HTTP: GET /user
// Auth: Required
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.auth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeItem(w, view.NewUser(user))
}

// HandleDeleteMe closes the caller's account. Their favourites go with it;
// outstanding tokens stop working because the user no longer resolves.
//
// HTTP: DELETE /user
// Auth: Required
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.auth)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "user deleted")
}
