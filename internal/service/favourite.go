package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/repository"
)

// FavouriteService manages a user's bookmarks. Every method takes the acting
// user explicitly; callers obtain it from the verified token, never from the
// request body.
type FavouriteService struct {
	favourites repository.FavouriteRepository
	logger     *slog.Logger
}

func NewFavouriteService(favourites repository.FavouriteRepository, logger *slog.Logger) *FavouriteService {
	return &FavouriteService{favourites: favourites, logger: logger}
}

func checkTarget(target model.Target) error {
	if !target.Kind.Valid() {
		return apperror.ValidationFailed("kind", fmt.Sprintf("unknown favourite kind %q", target.Kind))
	}
	if target.ID <= 0 {
		return apperror.ValidationFailed("id", "id must be a positive integer")
	}
	return nil
}

// Add bookmarks target for user. Adding the same target twice is a Conflict.
func (s *FavouriteService) Add(ctx context.Context, user *model.User, target model.Target) (*model.Favourite, error) {
	if user == nil {
		return nil, apperror.Unauthenticated("authentication required")
	}
	if err := checkTarget(target); err != nil {
		return nil, err
	}

	fav := &model.Favourite{User: user.Ref(), Target: target}
	if err := s.favourites.Create(ctx, fav); err != nil {
		logUnexpected(s.logger, "failed to add favourite", err,
			slog.Int64("user_id", user.ID),
			slog.String("target", target.String()),
		)
		return nil, err
	}

	s.logger.Info("favourite added",
		slog.Int64("id", fav.ID),
		slog.Int64("user_id", user.ID),
		slog.String("target", target.String()),
	)
	return fav, nil
}

func (s *FavouriteService) ListForUser(ctx context.Context, userID int64) ([]model.Favourite, error) {
	favs, err := s.favourites.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list favourites",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing favourites: %w", err)
	}
	return favs, nil
}

// Delete removes favourite id. A favourite owned by someone else is reported
// as NotFound, so ids of other users' bookmarks are not disclosed.
func (s *FavouriteService) Delete(ctx context.Context, userID, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "id must be a positive integer")
	}
	if err := s.favourites.Delete(ctx, userID, id); err != nil {
		logUnexpected(s.logger, "failed to delete favourite", err, slog.Int64("id", id))
		return err
	}
	s.logger.Info("favourite deleted", slog.Int64("id", id), slog.Int64("user_id", userID))
	return nil
}

// Remove deletes userID's favourite pointing at target.
func (s *FavouriteService) Remove(ctx context.Context, userID int64, target model.Target) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	if err := s.favourites.DeleteByTarget(ctx, userID, target); err != nil {
		logUnexpected(s.logger, "failed to remove favourite", err, slog.String("target", target.String()))
		return err
	}
	s.logger.Info("favourite removed", slog.Int64("user_id", userID), slog.String("target", target.String()))
	return nil
}
