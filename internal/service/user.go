package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/auth"
	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/repository"
	"github.com/sakif/starwars-api/internal/validation"
)

// credentials is what signup checks before creating an account.
type credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// normaliseEmail is applied everywhere an email enters the system, so that
// " Luke@Example.com" and "luke@example.com" are the same account.
func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Signup registers a new account. The password is stored only as a bcrypt
// hash. A second signup with the same email, in any letter case, is a
// Conflict.
func (s *UserService) Signup(ctx context.Context, email, password string) (*model.User, error) {
	in := credentials{Email: normaliseEmail(email), Password: password}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password",
				fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
		}
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		logUnexpected(s.logger, "failed to create user", err, slog.String("email", in.Email))
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		logUnexpected(s.logger, "failed to get user", err, slog.Int64("id", id))
		return nil, err
	}
	return user, nil
}

// List returns a page of users with their favourites. See listOptions for
// how limit and offset are clamped.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	users, err := s.users.List(ctx, listOptions(limit, offset))
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Delete removes the account and, with it, all of its favourites.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		logUnexpected(s.logger, "failed to delete user", err, slog.Int64("id", id))
		return err
	}
	s.logger.Info("user deleted", slog.Int64("id", id))
	return nil
}
