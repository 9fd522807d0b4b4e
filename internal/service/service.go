// Package service holds the business rules of the catalogue API.
//
//	Handler (HTTP) → Service (rules) → Repository (SQL)
//
// Services accept plain Go values, never *http.Request, and return apperror
// values for every outcome a client should see. They normalise input (trim
// names, lower-case emails) and validate it before touching storage.
//
// Uniqueness is NOT checked here. There is no "look up, then insert": the
// repositories rely on UNIQUE constraints and report violations as
// apperror.ErrConflict, so two concurrent requests cannot both succeed.
package service

import (
	"errors"
	"log/slog"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/repository"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// listOptions clamps client paging input to a sane range.
func listOptions(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}

// isExpected reports whether err is a domain outcome (not found, conflict,
// ...) rather than a storage failure. Only the latter is logged as an error.
func isExpected(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}

func logUnexpected(logger *slog.Logger, msg string, err error, attrs ...any) {
	if isExpected(err) {
		return
	}
	logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
}
