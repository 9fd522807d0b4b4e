package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/repository"
)

var _ repository.FavouriteRepository = (*FavouriteStore)(nil)

// FavouriteStore stores the user → person/planet bookmarks.
//
// The Go side works with model.Target; on disk a target is encoded as exactly
// one of people_id / planet_id being non-NULL, enforced by a CHECK constraint.
type FavouriteStore struct {
	conn *sql.DB
}

// targetColumn returns the column that encodes t, and the table it points into.
func targetColumn(t model.Target) (column, table string, err error) {
	switch t.Kind {
	case model.KindPerson:
		return "people_id", "people", nil
	case model.KindPlanet:
		return "planet_id", "planets", nil
	}
	return "", "", apperror.ValidationFailed("kind", fmt.Sprintf("unknown favourite kind %q", t.Kind))
}

func targetResource(k model.TargetKind) string {
	if k == model.KindPerson {
		return "person"
	}
	return "planet"
}

// favouriteSelect is the base query for reading favourites together with the
// names needed for their condensed views.
func favouriteSelect() sq.SelectBuilder {
	return psql.Select(
		"f.id", "f.user_id", "u.email",
		"f.people_id", "p.name",
		"f.planet_id", "pl.name",
		"f.created_at",
	).
		From("favourites f").
		Join("users u ON u.id = f.user_id").
		LeftJoin("people p ON p.id = f.people_id").
		LeftJoin("planets pl ON pl.id = f.planet_id").
		OrderBy("f.id ASC")
}

func scanFavourite(row scanner) (model.Favourite, error) {
	var (
		f                      model.Favourite
		peopleID, planetID     sql.NullInt64
		peopleName, planetName sql.NullString
	)
	if err := row.Scan(
		&f.ID, &f.User.ID, &f.User.Email,
		&peopleID, &peopleName,
		&planetID, &planetName,
		&f.CreatedAt,
	); err != nil {
		return model.Favourite{}, err
	}

	switch {
	case peopleID.Valid:
		f.Target = model.Target{Kind: model.KindPerson, ID: peopleID.Int64, Name: peopleName.String}
	case planetID.Valid:
		f.Target = model.Target{Kind: model.KindPlanet, ID: planetID.Int64, Name: planetName.String}
	default:
		return model.Favourite{}, fmt.Errorf("favourite %d has no target", f.ID)
	}
	return f, nil
}

// queryFavourites runs a favouriteSelect narrowed by where.
func queryFavourites(ctx context.Context, q querier, where sq.Sqlizer) ([]model.Favourite, error) {
	sqlStr, args, err := favouriteSelect().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building favourites query: %w", err)
	}

	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favourites: %w", err)
	}
	defer rows.Close()

	favs := []model.Favourite{}
	for rows.Next() {
		f, err := scanFavourite(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning favourite row: %w", err)
		}
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favourites: %w", err)
	}
	return favs, nil
}

// Create inserts fav. The target must exist; a second favourite for the same
// (user, target) pair fails on the UNIQUE constraint and comes back as a
// Conflict, so concurrent duplicates cannot both succeed.
func (s *FavouriteStore) Create(ctx context.Context, fav *model.Favourite) error {
	column, table, err := targetColumn(fav.Target)
	if err != nil {
		return err
	}

	// Resolve the target name for the returned view. A missing row here is the
	// clean not-found path; the foreign key below only covers a delete racing us.
	var name string
	sqlStr, args, err := psql.Select("name").From(table).Where(sq.Eq{"id": fav.Target.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building target lookup: %w", err)
	}
	err = s.conn.QueryRowContext(ctx, sqlStr, args...).Scan(&name)
	if err == sql.ErrNoRows {
		return apperror.NotFound(targetResource(fav.Target.Kind), strconv.FormatInt(fav.Target.ID, 10))
	}
	if err != nil {
		return fmt.Errorf("sqlite: looking up %s %d: %w", table, fav.Target.ID, err)
	}

	now := time.Now().UTC()
	sqlStr, args, err = psql.Insert("favourites").
		Columns("user_id", column, "created_at").
		Values(fav.User.ID, fav.Target.ID, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building favourite insert: %w", err)
	}

	res, err := s.conn.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperror.Conflict(column, fmt.Sprintf("%s %d is already a favourite", targetResource(fav.Target.Kind), fav.Target.ID))
		case isForeignKeyViolation(err):
			return apperror.NotFoundMessage(fmt.Sprintf("user %d or %s %d not found", fav.User.ID, targetResource(fav.Target.Kind), fav.Target.ID))
		}
		return fmt.Errorf("sqlite: inserting favourite: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading favourite id: %w", err)
	}

	fav.ID = id
	fav.Target.Name = name
	fav.CreatedAt = now
	return nil
}

func (s *FavouriteStore) ListByUser(ctx context.Context, userID int64) ([]model.Favourite, error) {
	return queryFavourites(ctx, s.conn, sq.Eq{"f.user_id": userID})
}

// Delete removes favourite id if, and only if, it belongs to userID. Someone
// else's favourite is reported exactly like a missing one.
func (s *FavouriteStore) Delete(ctx context.Context, userID, id int64) error {
	sqlStr, args, err := psql.Delete("favourites").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building favourite delete: %w", err)
	}
	return execExpectingRow(ctx, s.conn, sqlStr, args, func() error {
		return apperror.NotFound("favourite", strconv.FormatInt(id, 10))
	})
}

func (s *FavouriteStore) DeleteByTarget(ctx context.Context, userID int64, target model.Target) error {
	column, _, err := targetColumn(target)
	if err != nil {
		return err
	}
	sqlStr, args, err := psql.Delete("favourites").
		Where(sq.Eq{"user_id": userID, column: target.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building favourite delete: %w", err)
	}
	return execExpectingRow(ctx, s.conn, sqlStr, args, func() error {
		return apperror.NotFoundMessage(fmt.Sprintf("no favourite for %s %d", targetResource(target.Kind), target.ID))
	})
}

// execExpectingRow runs a write and returns notFound() if it touched no rows.
func execExpectingRow(ctx context.Context, q querier, sqlStr string, args []any, notFound func() error) error {
	res, err := q.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("sqlite: executing %q: %w", firstWord(sqlStr), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound()
	}
	return nil
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' {
			return s[:i]
		}
	}
	return s
}
