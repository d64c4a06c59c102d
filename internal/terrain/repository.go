package terrain

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, t *Terrain) error
	GetByID(ctx context.Context, id string) (*Terrain, error)
	GetByName(ctx context.Context, name string) (*Terrain, error)
	List(ctx context.Context, filter Filter) ([]*Terrain, int, error)
	Update(ctx context.Context, t *Terrain) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const terrainColumns = `id, name, location, price_per_slot, description, image, created_at`

func scanTerrain(row pgx.Row) (*Terrain, error) {
	var t Terrain
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Location,
		&t.PricePerSlot,
		&t.Description,
		&t.Image,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgxRepository) Create(ctx context.Context, t *Terrain) error {
	const query = `
		INSERT INTO public.terrains (name, location, price_per_slot, description, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, t.Name, t.Location, t.PricePerSlot, t.Description, t.Image).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateName
		}
		return fmt.Errorf("create terrain failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Terrain, error) {
	const query = `SELECT ` + terrainColumns + ` FROM public.terrains WHERE id = $1`

	t, err := scanTerrain(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get terrain failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) GetByName(ctx context.Context, name string) (*Terrain, error) {
	// Chatbot lookups arrive with user-typed casing.
	const query = `SELECT ` + terrainColumns + ` FROM public.terrains WHERE lower(name) = lower($1)`

	t, err := scanTerrain(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get terrain by name failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Terrain, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	builder := r.sb.
		Select("id", "name", "location", "price_per_slot", "description", "image", "created_at",
			"count(*) OVER() AS total_count").
		From("public.terrains").
		OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	if filter.Name != "" {
		builder = builder.Where(sq.ILike{"name": "%" + filter.Name + "%"})
	}
	if filter.Location != "" {
		builder = builder.Where(sq.ILike{"location": "%" + filter.Location + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list terrains query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list terrains failed: %w", err)
	}
	defer rows.Close()

	var result []*Terrain
	var total int

	for rows.Next() {
		var t Terrain
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Location, &t.PricePerSlot, &t.Description, &t.Image, &t.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan terrain failed: %w", err)
		}
		result = append(result, &t)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, t *Terrain) error {
	const query = `
		UPDATE public.terrains
		SET name = $1, location = $2, price_per_slot = $3, description = $4, image = $5
		WHERE id = $6
	`
	ct, err := r.pool.Exec(ctx, query, t.Name, t.Location, t.PricePerSlot, t.Description, t.Image, t.ID)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateName
		}
		return fmt.Errorf("update terrain failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM public.terrains WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete terrain failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
