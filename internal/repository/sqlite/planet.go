package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/starwars-api/internal/apperror"
	"github.com/sakif/starwars-api/internal/model"
	"github.com/sakif/starwars-api/internal/repository"
)

var _ repository.PlanetRepository = (*PlanetStore)(nil)

type PlanetStore struct {
	conn *sql.DB
}

var planetColumns = []string{
	"name", "diameter", "rotation_period", "orbital_period", "gravity", "population",
	"climate", "terrain", "surface_water", "image", "species", "films",
}

func planetValues(p *model.Planet) []any {
	return []any{
		p.Name, p.Diameter, p.RotationPeriod, p.OrbitalPeriod, p.Gravity, p.Population,
		p.Climate, p.Terrain, p.SurfaceWater, p.Image, p.Species, p.Films,
	}
}

func planetSelect() sq.SelectBuilder {
	return psql.Select(append([]string{"id"}, planetColumns...)...).From("planets")
}

func scanPlanet(row scanner) (model.Planet, error) {
	var p model.Planet
	err := row.Scan(
		&p.ID, &p.Name, &p.Diameter, &p.RotationPeriod, &p.OrbitalPeriod, &p.Gravity,
		&p.Population, &p.Climate, &p.Terrain, &p.SurfaceWater, &p.Image, &p.Species,
		&p.Films,
	)
	return p, err
}

// Create inserts planet and re-points every listed resident's homeworld at it,
// all in one transaction. If any resident id is unknown nothing is written.
func (s *PlanetStore) Create(ctx context.Context, planet *model.Planet, residentIDs []int64) error {
	ids := slices.Clone(residentIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	return withTx(ctx, s.conn, func(tx *sql.Tx) error {
		residents, err := peopleRefs(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := residents[id]; !ok {
				return apperror.NotFound("person", strconv.FormatInt(id, 10))
			}
		}

		sqlStr, args, err := psql.Insert("planets").
			Columns(planetColumns...).
			Values(planetValues(planet)...).
			ToSql()
		if err != nil {
			return fmt.Errorf("sqlite: building planet insert: %w", err)
		}

		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("name", fmt.Sprintf("a planet named %q already exists", planet.Name))
			}
			return fmt.Errorf("sqlite: inserting planet: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading planet id: %w", err)
		}

		planet.ID = id
		planet.Residents = nil
		if len(ids) == 0 {
			return nil
		}

		sqlStr, args, err = psql.Update("people").
			Set("homeworld_id", id).
			Where(sq.Eq{"id": ids}).
			ToSql()
		if err != nil {
			return fmt.Errorf("sqlite: building residents update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("sqlite: linking residents to planet %d: %w", id, err)
		}

		planet.Residents = make([]model.PersonRef, 0, len(ids))
		for _, rid := range ids {
			planet.Residents = append(planet.Residents, residents[rid])
		}
		return nil
	})
}

// peopleRefs returns condensed refs for the given people ids, keyed by id.
// Unknown ids are simply absent from the map.
func peopleRefs(ctx context.Context, q querier, ids []int64) (map[int64]model.PersonRef, error) {
	refs := make(map[int64]model.PersonRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	sqlStr, args, err := psql.Select("id", "name").From("people").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building people lookup: %w", err)
	}
	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: looking up people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.PersonRef
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning person ref: %w", err)
		}
		refs[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating people refs: %w", err)
	}
	return refs, nil
}

// residentsOf returns the residents of each planet in planetIDs, ordered by
// person id. Planets with no residents are absent from the map.
func residentsOf(ctx context.Context, q querier, planetIDs []int64) (map[int64][]model.PersonRef, error) {
	out := make(map[int64][]model.PersonRef, len(planetIDs))
	if len(planetIDs) == 0 {
		return out, nil
	}

	sqlStr, args, err := psql.Select("id", "name", "homeworld_id").
		From("people").
		Where(sq.Eq{"homeworld_id": planetIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building residents query: %w", err)
	}
	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing residents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r        model.PersonRef
			planetID int64
		)
		if err := rows.Scan(&r.ID, &r.Name, &planetID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning resident row: %w", err)
		}
		out[planetID] = append(out[planetID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating residents: %w", err)
	}
	return out, nil
}

func (s *PlanetStore) GetByID(ctx context.Context, id int64) (*model.Planet, error) {
	sqlStr, args, err := planetSelect().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building planet query: %w", err)
	}

	p, err := scanPlanet(s.conn.QueryRowContext(ctx, sqlStr, args...))
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("planet", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting planet %d: %w", id, err)
	}

	residents, err := residentsOf(ctx, s.conn, []int64{p.ID})
	if err != nil {
		return nil, err
	}
	p.Residents = residents[p.ID]
	return &p, nil
}

func (s *PlanetStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Planet, error) {
	sqlStr, args, err := applyList(planetSelect().OrderBy("id ASC"), opts.Limit, opts.Offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building planets query: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing planets: %w", err)
	}
	defer rows.Close()

	planets := []model.Planet{}
	for rows.Next() {
		p, err := scanPlanet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning planet row: %w", err)
		}
		planets = append(planets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating planets: %w", err)
	}
	rows.Close()

	ids := make([]int64, len(planets))
	for i, p := range planets {
		ids[i] = p.ID
	}
	residents, err := residentsOf(ctx, s.conn, ids)
	if err != nil {
		return nil, err
	}
	for i := range planets {
		planets[i].Residents = residents[planets[i].ID]
	}
	return planets, nil
}
