package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Create inserts the reservation inside a transaction. The overlap
	// check and the insert run atomically; the partial unique index on
	// (terrain_id, reservation_date, start_time) backstops concurrent
	// inserts that both pass the check.
	Create(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)
	ListByTerrainDate(ctx context.Context, terrainID string, date time.Time) ([]*Reservation, error)
	FindByUserDateStart(ctx context.Context, userID string, date time.Time, start string) (*Reservation, error)
	FindSingleByUserDate(ctx context.Context, userID string, date time.Time) (*Reservation, error)
	UpdateTimes(ctx context.Context, id, start, end string) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Cancel(ctx context.Context, id string) error

	// HasOverlap checks for a conflicting active reservation on the
	// terrain for the given date and wall-clock interval.
	HasOverlap(ctx context.Context, terrainID string, date time.Time, start, end string, excludeID string) (bool, error)

	// AvailableTerrainNames returns terrains with no active reservation
	// conflicting with the interval on the given date.
	AvailableTerrainNames(ctx context.Context, date time.Time, start, end string) ([]string, error)

	// StatusCounts aggregates reservations by status.
	StatusCounts(ctx context.Context) (*Stats, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
	sb   squirrel.StatementBuilderType
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// reservationSelect joins terrains and users so responses carry names.
// start_time/end_time are TIME columns rendered as "HH24:MI" strings.
func (r *pgxRepository) reservationSelect(extra ...string) squirrel.SelectBuilder {
	cols := []string{
		"res.id", "res.terrain_id", "t.name", "res.user_id", "u.name",
		"res.reservation_date",
		"to_char(res.start_time, 'HH24:MI')",
		"to_char(res.end_time, 'HH24:MI')",
		"res.status", "res.amount", "res.created_at",
	}
	cols = append(cols, extra...)
	return r.sb.Select(cols...).
		From("public.reservations res").
		Join("public.terrains t ON res.terrain_id = t.id").
		Join("public.users u ON res.user_id = u.id")
}

func scanReservation(row pgx.Row, extra ...any) (*Reservation, error) {
	var res Reservation
	dest := []any{
		&res.ID, &res.TerrainID, &res.TerrainName, &res.UserID, &res.UserName,
		&res.Date, &res.Start, &res.End, &res.Status, &res.Amount, &res.CreatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &res, nil
}

// overlapPred builds the three-way overlap test used throughout:
// an existing interval conflicts when it straddles, starts inside,
// or ends inside the requested one.
func overlapPred(start, end string) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.And{
			squirrel.Expr("res.start_time < ?::time", end),
			squirrel.Expr("res.end_time > ?::time", start),
		},
		squirrel.And{
			squirrel.Expr("res.start_time >= ?::time", start),
			squirrel.Expr("res.start_time < ?::time", end),
		},
		squirrel.And{
			squirrel.Expr("res.end_time > ?::time", start),
			squirrel.Expr("res.end_time <= ?::time", end),
		},
	}
}

func (r *pgxRepository) Create(ctx context.Context, res *Reservation) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		overlapSQL, args, err := r.sb.Select("1").
			From("public.reservations res").
			Where(squirrel.Eq{"res.terrain_id": res.TerrainID}).
			Where(squirrel.Eq{"res.reservation_date": res.Date}).
			Where(squirrel.NotEq{"res.status": StatusCancelled}).
			Where(overlapPred(res.Start, res.End)).
			Prefix("SELECT EXISTS (").Suffix(")").
			ToSql()
		if err != nil {
			return fmt.Errorf("build overlap query failed: %w", err)
		}

		var exists bool
		if err := tx.QueryRow(ctx, overlapSQL, args...).Scan(&exists); err != nil {
			return fmt.Errorf("check overlap failed: %w", err)
		}
		if exists {
			return ErrTimeConflict
		}

		insertSQL, args, err := r.sb.Insert("public.reservations").
			Columns("terrain_id", "user_id", "reservation_date", "start_time", "end_time", "status", "amount").
			Values(res.TerrainID, res.UserID, res.Date, res.Start, res.End, res.Status, res.Amount).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create reservation query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, insertSQL, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
			var e *pgconn.PgError
			if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
				return ErrTimeConflict
			}
			return fmt.Errorf("create reservation failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	query, args, err := r.reservationSelect().Where(squirrel.Eq{"res.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	res, err := scanReservation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	query := r.reservationSelect("count(*) OVER() as total_count")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"res.user_id": filter.UserID})
	}
	if filter.TerrainID != "" {
		query = query.Where(squirrel.Eq{"res.terrain_id": filter.TerrainID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"res.status": filter.Status})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"res.reservation_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"res.reservation_date": *filter.DateTo})
	}

	query = query.OrderBy("res.reservation_date ASC", "res.start_time ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var result []*Reservation
	var total int

	for rows.Next() {
		res, err := scanReservation(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reservation failed: %w", err)
		}
		result = append(result, res)
	}

	return result, total, nil
}

func (r *pgxRepository) ListByTerrainDate(ctx context.Context, terrainID string, date time.Time) ([]*Reservation, error) {
	query, args, err := r.reservationSelect().
		Where(squirrel.Eq{"res.terrain_id": terrainID}).
		Where(squirrel.Eq{"res.reservation_date": date}).
		Where(squirrel.NotEq{"res.status": StatusCancelled}).
		OrderBy("res.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list by terrain/date query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by terrain/date failed: %w", err)
	}
	defer rows.Close()

	var result []*Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		result = append(result, res)
	}
	return result, nil
}

func (r *pgxRepository) FindByUserDateStart(ctx context.Context, userID string, date time.Time, start string) (*Reservation, error) {
	query, args, err := r.reservationSelect().
		Where(squirrel.Eq{"res.user_id": userID}).
		Where(squirrel.Eq{"res.reservation_date": date}).
		Where(squirrel.Expr("res.start_time = ?::time", start)).
		Where(squirrel.NotEq{"res.status": StatusCancelled}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find reservation query failed: %w", err)
	}

	res, err := scanReservation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find reservation failed: %w", err)
	}
	return res, nil
}

// FindSingleByUserDate returns the user's reservation on a day, failing
// with ErrAmbiguousDay when the day holds more than one.
func (r *pgxRepository) FindSingleByUserDate(ctx context.Context, userID string, date time.Time) (*Reservation, error) {
	query, args, err := r.reservationSelect().
		Where(squirrel.Eq{"res.user_id": userID}).
		Where(squirrel.Eq{"res.reservation_date": date}).
		Where(squirrel.NotEq{"res.status": StatusCancelled}).
		OrderBy("res.start_time ASC").
		Limit(2).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find by day query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find by day failed: %w", err)
	}
	defer rows.Close()

	var found []*Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		found = append(found, res)
	}

	switch len(found) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return nil, ErrAmbiguousDay
	}
}

func (r *pgxRepository) UpdateTimes(ctx context.Context, id, start, end string) error {
	query, args, err := r.sb.Update("public.reservations").
		Set("start_time", squirrel.Expr("?::time", start)).
		Set("end_time", squirrel.Expr("?::time", end)).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update times query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrTimeConflict
		}
		return fmt.Errorf("update reservation times failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query, args, err := r.sb.Update("public.reservations").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update reservation status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel is a soft delete: the row stays for history, the slot frees up.
// Cancelling an already cancelled reservation reports ErrNotFound.
func (r *pgxRepository) Cancel(ctx context.Context, id string) error {
	query, args, err := r.sb.Update("public.reservations").
		Set("status", StatusCancelled).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cancel query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("cancel reservation failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasOverlap(ctx context.Context, terrainID string, date time.Time, start, end string, excludeID string) (bool, error) {
	subQuery := r.sb.Select("1").
		From("public.reservations res").
		Where(squirrel.Eq{"res.terrain_id": terrainID}).
		Where(squirrel.Eq{"res.reservation_date": date}).
		Where(squirrel.NotEq{"res.status": StatusCancelled}).
		Where(overlapPred(start, end))

	if excludeID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"res.id": excludeID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) AvailableTerrainNames(ctx context.Context, date time.Time, start, end string) ([]string, error) {
	// Anti-join: exclude terrains with a conflicting active reservation.
	busySQL, busyArgs, err := r.sb.Select("res.terrain_id").
		From("public.reservations res").
		Where(squirrel.Eq{"res.reservation_date": date}).
		Where(squirrel.NotEq{"res.status": StatusCancelled}).
		Where(overlapPred(start, end)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build busy terrains query failed: %w", err)
	}

	query, args, err := r.sb.Select("t.name").
		From("public.terrains t").
		Where("t.id NOT IN ("+busySQL+")", busyArgs...).
		OrderBy("t.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build available terrains query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("available terrains failed: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan terrain name failed: %w", err)
		}
		names = append(names, name)
	}
	return names, nil
}

const statusCountsSQL = `
SELECT
	count(*),
	count(*) FILTER (WHERE status = 'pending'),
	count(*) FILTER (WHERE status = 'confirmed'),
	count(*) FILTER (WHERE status = 'cancelled')
FROM public.reservations`

func (r *pgxRepository) StatusCounts(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, statusCountsSQL).
		Scan(&s.Total, &s.Pending, &s.Confirmed, &s.Cancelled)
	if err != nil {
		return nil, fmt.Errorf("query reservation stats failed: %w", err)
	}
	return &s, nil
}
