package handler

// Every error response has the same shape:
//
//	{"error": "person not found with id 7", "code": "not_found"}
//
// "error" is safe to show to a user; "code" is stable and meant for programs.
// Validation errors also name the offending request field.

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/sakif/starwars-api/internal/apperror"
)

// maxBodyBytes caps request bodies. Catalogue entries are small.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// MessageResponse is the body of successful deletes.
type MessageResponse struct {
	Message string `json:"message"`
}

type listResponse struct {
	Results any    `json:"results"`
	Message string `json:"message,omitempty"`
}

type itemResponse struct {
	Result any `json:"result"`
}

// writeJSON sets headers, then status, then the body; headers written after
// the first body byte are silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeList writes {"results": items}. An empty page additionally carries a
// human-readable message, e.g. "there aren't any planets in the database".
func writeList(w http.ResponseWriter, resource string, items any, n int) {
	resp := listResponse{Results: items}
	if n == 0 {
		resp.Message = fmt.Sprintf("there aren't any %s in the database", resource)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeItem(w http.ResponseWriter, item any) {
	writeJSON(w, http.StatusOK, itemResponse{Result: item})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// statusFor maps a domain error onto an HTTP status and a stable code.
// Conflicts are 400, not 409: a duplicate is reported the same way as any
// other rejected input.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest, "conflict"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError is the single place domain errors become HTTP responses.
// Anything that is not an *apperror.AppError is a 500 with a generic message;
// the real error is logged, never sent.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "an internal error occurred",
			Code:  "internal_error",
		})
		return
	}

	status, code := statusFor(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	writeJSON(w, status, ErrorResponse{
		Error: appErr.Message,
		Code:  code,
		Field: appErr.Field,
	})
}

// readBody returns the raw request body, or a validation error if it is
// empty or too large.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, apperror.ValidationFailed("body", fmt.Sprintf("request body must be %d bytes or fewer", maxBodyBytes))
		}
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if len(body) == 0 {
		return nil, apperror.ValidationFailed("body", "request body is required")
	}
	return body, nil
}

// unmarshal decodes body into dst, turning codec errors into 400s that name
// the field at fault where possible.
func unmarshal(body []byte, dst any) error {
	err := json.Unmarshal(body, dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.ValidationFailed(typeErr.Field,
			fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String()))
	}
	return apperror.ValidationFailed("body", "request body must be a valid JSON object")
}

// decodeJSON reads and decodes the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	return unmarshal(body, dst)
}

// pathID parses the chi URL parameter name as a positive integer id.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a positive integer, got %q", name, raw))
	}
	return id, nil
}

// pageParams reads the optional ?limit= and ?offset= query parameters.
// Absent values are 0; the service applies defaults and bounds.
func pageParams(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(q.Get("offset"), "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return n, nil
}
