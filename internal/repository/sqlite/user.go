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

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

type UserStore struct {
	conn *sql.DB
}

func userSelect() sq.SelectBuilder {
	return psql.Select("id", "email", "password_hash", "created_at").From("users")
}

func scanUser(row scanner, u *model.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
}

// Create inserts user. The email column is UNIQUE COLLATE NOCASE, so
// "Luke@X.com" and "luke@x.com" collide and the second insert is a Conflict.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	sqlStr, args, err := psql.Insert("users").
		Columns("email", "password_hash", "created_at").
		Values(user.Email, user.PasswordHash, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building user insert: %w", err)
	}

	res, err := s.conn.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "email already registered")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.Favourites = []model.Favourite{}
	return nil
}

// GetByID returns the user with their favourites loaded.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getOne(ctx, sq.Eq{"id": id}, func() error {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	})
}

// GetByEmail looks the user up case-insensitively.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getOne(ctx, sq.Eq{"email": email}, func() error {
		return apperror.NotFoundMessage(fmt.Sprintf("user not found with email %s", email))
	})
}

func (s *UserStore) getOne(ctx context.Context, where sq.Sqlizer, notFound func() error) (*model.User, error) {
	sqlStr, args, err := userSelect().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building user query: %w", err)
	}

	var u model.User
	err = scanUser(s.conn.QueryRowContext(ctx, sqlStr, args...), &u)
	if err == sql.ErrNoRows {
		return nil, notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.Favourites, err = queryFavourites(ctx, s.conn, sq.Eq{"f.user_id": u.ID})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns users ordered by id, each with their favourites. Favourites
// for the whole page are fetched in one query.
func (s *UserStore) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	sqlStr, args, err := applyList(userSelect().OrderBy("id ASC"), opts.Limit, opts.Offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building users query: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		u.Favourites = []model.Favourite{}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	// Release the connection before the next query; in-memory databases
	// run with a single pooled connection.
	rows.Close()

	if len(users) == 0 {
		return users, nil
	}

	ids := make([]int64, len(users))
	index := make(map[int64]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		index[u.ID] = i
	}

	favs, err := queryFavourites(ctx, s.conn, sq.Eq{"f.user_id": ids})
	if err != nil {
		return nil, err
	}
	for _, f := range favs {
		i := index[f.User.ID]
		users[i].Favourites = append(users[i].Favourites, f)
	}

	return users, nil
}

// Delete removes the user. favourites.user_id is ON DELETE CASCADE, so the
// user's favourites go with them.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := psql.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building user delete: %w", err)
	}
	return execExpectingRow(ctx, s.conn, sqlStr, args, func() error {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	})
}
