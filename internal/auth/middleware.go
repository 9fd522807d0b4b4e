package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// contextKey is unexported so no other package can read or shadow our values.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth guards protected routes. It reads "Authorization: Bearer <jwt>",
// accepts only access tokens, and stores the token's Identity in the request
// context. Anything else is answered with 401 and the chain stops.
//
// A valid token only proves who the caller was when it was issued. Handlers
// that need the user row still look it up, and treat a missing user as 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeUnauthenticated(w, err.Error())
				return
			}

			id, err := tokens.Validate(raw, TypeAccess)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, ErrTokenExpired) {
					msg = "token expired"
				}
				writeUnauthenticated(w, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// IdentityFromContext returns the authenticated identity, or false on a
// route that RequireAuth did not guard.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Email != ""
}

// WithIdentity returns a copy of ctx carrying id as the authenticated caller.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errors.New("missing authorization header")
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("authorization header must be Bearer <token>")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("authorization header must be Bearer <token>")
	}
	return token, nil
}

// writeUnauthenticated mirrors the handler package's error body so clients see
// one shape regardless of which layer refused them.
func writeUnauthenticated(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
		"code":  "unauthenticated",
	})
}
