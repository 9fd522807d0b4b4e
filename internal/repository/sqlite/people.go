package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/repository"
)

var _ repository.PeopleRepository = (*PeopleStore)(nil)

type PeopleStore struct {
	conn *sql.DB
}

var peopleColumns = []string{
	"name", "birth_year", "eye_color", "gender", "hair_color", "height", "weight",
	"skin_color", "species", "starships", "vehicles", "master", "disciple",
	"image", "films", "homeworld_id",
}

func peopleValues(p *model.Person) []any {
	return []any{
		p.Name, p.BirthYear, p.EyeColor, p.Gender, p.HairColor, p.Height, p.Weight,
		p.SkinColor, p.Species, p.Starships, p.Vehicles, p.Master, p.Disciple,
		p.Image, p.Films, p.HomeworldID,
	}
}

// personSelect joins the homeworld so the condensed ref comes back in the
// same row.
func personSelect() sq.SelectBuilder {
	cols := make([]string, 0, len(peopleColumns)+2)
	cols = append(cols, "p.id")
	for _, c := range peopleColumns {
		cols = append(cols, "p."+c)
	}
	cols = append(cols, "hw.name")
	return psql.Select(cols...).
		From("people p").
		LeftJoin("planets hw ON hw.id = p.homeworld_id")
}

func scanPerson(row scanner) (model.Person, error) {
	var (
		p      model.Person
		hwName sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.BirthYear, &p.EyeColor, &p.Gender, &p.HairColor,
		&p.Height, &p.Weight, &p.SkinColor, &p.Species, &p.Starships, &p.Vehicles,
		&p.Master, &p.Disciple, &p.Image, &p.Films, &p.HomeworldID,
		&hwName,
	)
	if err != nil {
		return model.Person{}, err
	}
	if p.HomeworldID != nil && hwName.Valid {
		p.Homeworld = &model.PlanetRef{ID: *p.HomeworldID, Name: hwName.String}
	}
	return p, nil
}

// Create inserts person inside a transaction that first resolves the
// homeworld, so an unknown homeworld_id is a clean NotFound rather than a
// constraint error. The UNIQUE name column makes duplicates a Conflict.
func (s *PeopleStore) Create(ctx context.Context, person *model.Person) error {
	return withTx(ctx, s.conn, func(tx *sql.Tx) error {
		var homeworld *model.PlanetRef
		if person.HomeworldID != nil {
			ref, err := planetRef(ctx, tx, *person.HomeworldID)
			if err != nil {
				return err
			}
			homeworld = ref
		}

		sqlStr, args, err := psql.Insert("people").
			Columns(peopleColumns...).
			Values(peopleValues(person)...).
			ToSql()
		if err != nil {
			return fmt.Errorf("sqlite: building person insert: %w", err)
		}

		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return apperror.Conflict("name", fmt.Sprintf("a person named %q already exists", person.Name))
			case isForeignKeyViolation(err):
				return apperror.NotFound("planet", strconv.FormatInt(*person.HomeworldID, 10))
			}
			return fmt.Errorf("sqlite: inserting person: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading person id: %w", err)
		}
		person.ID = id
		person.Homeworld = homeworld
		return nil
	})
}

// planetRef resolves a planet id to its condensed ref.
func planetRef(ctx context.Context, q querier, id int64) (*model.PlanetRef, error) {
	sqlStr, args, err := psql.Select("id", "name").From("planets").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building planet lookup: %w", err)
	}
	var ref model.PlanetRef
	err = q.QueryRowContext(ctx, sqlStr, args...).Scan(&ref.ID, &ref.Name)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("planet", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: looking up planet %d: %w", id, err)
	}
	return &ref, nil
}

func (s *PeopleStore) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	sqlStr, args, err := personSelect().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building person query: %w", err)
	}

	p, err := scanPerson(s.conn.QueryRowContext(ctx, sqlStr, args...))
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("person", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting person %d: %w", id, err)
	}
	return &p, nil
}

func (s *PeopleStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Person, error) {
	sqlStr, args, err := applyList(personSelect().OrderBy("p.id ASC"), opts.Limit, opts.Offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building people query: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing people: %w", err)
	}
	defer rows.Close()

	people := []model.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning person row: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating people: %w", err)
	}
	return people, nil
}
