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
)

// AuthService turns credentials into tokens and tokens back into users.
//
//	AuthHandler → AuthService → UserRepository
//	                          ↘ TokenService, PasswordService
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Login checks email and password and issues a token pair bound to the
// account. Only presence is checked up front; an address that is not
// registered, well-formed or not, is NotFound.
//
//	missing field   → ErrValidation
//	unknown email   → ErrNotFound
//	wrong password  → ErrUnauthorized
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.Pair, error) {
	in := credentials{Email: normaliseEmail(email), Password: password}
	if in.Email == "" || in.Password == "" {
		return auth.Pair{}, apperror.ValidationFailed("email", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		logUnexpected(s.logger, "failed to look up user for login", err, slog.String("email", in.Email))
		return auth.Pair{}, err
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.String("email", in.Email))
			return auth.Pair{}, apperror.Unauthorized("invalid password")
		}
		return auth.Pair{}, fmt.Errorf("verifying password: %w", err)
	}

	pair, err := s.tokens.IssuePair(identityOf(user))
	if err != nil {
		return auth.Pair{}, fmt.Errorf("issuing tokens for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.Int64("id", user.ID))
	return pair, nil
}

// Refresh trades a refresh token for a new pair. The subject must still be a
// registered user, so tokens of a deleted account stop working here too.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.Pair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return auth.Pair{}, apperror.ValidationFailed("refresh_token", "refresh_token is required")
	}

	id, err := s.tokens.Validate(refreshToken, auth.TypeRefresh)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return auth.Pair{}, apperror.Unauthenticated("refresh token expired")
		}
		return auth.Pair{}, apperror.Unauthenticated("invalid refresh token")
	}

	user, err := s.CurrentUser(ctx, id)
	if err != nil {
		return auth.Pair{}, err
	}

	pair, err := s.tokens.IssuePair(identityOf(user))
	if err != nil {
		return auth.Pair{}, fmt.Errorf("issuing tokens for user %d: %w", user.ID, err)
	}
	return pair, nil
}

// CurrentUser resolves the identity from a verified token to the live user
// row. A user deleted since the token was issued is Unauthenticated, not
// NotFound: from the client's point of view the credential has stopped
// working. That holds even when the email has since been registered again,
// because the new row has a different id.
func (s *AuthService) CurrentUser(ctx context.Context, id auth.Identity) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, normaliseEmail(id.Email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("user no longer exists")
		}
		s.logger.Error("failed to resolve current user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	if user.ID != id.UserID {
		s.logger.Info("token rejected for re-registered email",
			slog.Int64("token_user_id", id.UserID),
			slog.Int64("user_id", user.ID),
		)
		return nil, apperror.Unauthenticated("user no longer exists")
	}
	return user, nil
}

func identityOf(user *model.User) auth.Identity {
	return auth.Identity{UserID: user.ID, Email: user.Email}
}
