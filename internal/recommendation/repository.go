package recommendation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregation queries behind each recommendation.
type Repository interface {
	Popular(ctx context.Context, limit int) ([]TerrainRec, error)
	Global(ctx context.Context, limit int) ([]TerrainRec, error)
	FrequentForUser(ctx context.Context, userID string, limit int) ([]TerrainRec, error)
	SimilarForUser(ctx context.Context, userID string, limit int) ([]TerrainRec, error)
	SimilarToTerrain(ctx context.Context, terrainID string, limit int) ([]TerrainRec, error)
	PopularTimesForUser(ctx context.Context, userID string, limit int) ([]TimeCount, error)
	FreeTerrainsAt(ctx context.Context, date time.Time, start, end string) ([]string, error)
	AvgAmountForUser(ctx context.Context, userID string) (float64, error)
	TerrainsInPriceBand(ctx context.Context, low, high float64, limit int) ([]TerrainRec, error)
	FriendsTerrains(ctx context.Context, userID string, limit int) ([]TerrainRec, error)
	TopRated(ctx context.Context, minScore float64, limit int) ([]RatedTerrain, error)
	ActivePromotions(ctx context.Context, day time.Time) ([]Promo, error)
	TerrainsByCovered(ctx context.Context, covered bool, limit int) ([]TerrainRec, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func collectTerrainRecs(rows pgx.Rows, withCount bool) ([]TerrainRec, error) {
	defer rows.Close()

	recs := make([]TerrainRec, 0)
	for rows.Next() {
		var r TerrainRec
		dest := []any{&r.ID, &r.Name, &r.Location, &r.PricePerSlot, &r.Description}
		if withCount {
			dest = append(dest, &r.ReservationCount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan terrain recommendation failed: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Popular ranks terrains by total non-cancelled reservations.
func (r *pgxRepository) Popular(ctx context.Context, limit int) ([]TerrainRec, error) {
	const query = `
		SELECT t.id, t.name, t.location, t.price_per_slot, t.description,
		       count(res.id) AS reservation_count
		FROM public.terrains t
		LEFT JOIN public.reservations res
		       ON res.terrain_id = t.id AND res.status <> 'cancelled'
		GROUP BY t.id
		ORDER BY reservation_count DESC, t.name ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("popular terrains failed: %w", err)
	}
	return collectTerrainRecs(rows, true)
}

// Global ranks terrains by confirmed reservations only.
func (r *pgxRepository) Global(ctx context.Context, limit int) ([]TerrainRec, error) {
	const query = `
		SELECT t.id, t.name, t.location, t.price_per_slot, t.description,
		       count(res.id) AS reservation_count
		FROM public.terrains t
		LEFT JOIN public.reservations res
		       ON res.terrain_id = t.id AND res.status = 'confirmed'
		GROUP BY t.id
		ORDER BY reservation_count DESC, t.name ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("global recommendations failed: %w", err)
	}
	return collectTerrainRecs(rows, true)
}

// FrequentForUser ranks the terrains the user books most.
func (r *pgxRepository) FrequentForUser(ctx context.Context, userID string, limit int) ([]TerrainRec, error) {
	const query = `
		SELECT t.id, t.name, t.location, t.price_per_slot, t.description,
		       count(res.id) AS reservation_count
		FROM public.reservations res
		JOIN public.terrains t ON res.terrain_id = t.id
		WHERE res.user_id = $1 AND res.status <> 'cancelled'
		GROUP BY t.id
		ORDER BY reservation_count DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("frequent terrains failed: %w", err)
	}
	return collectTerrainRecs(rows, true)
}

// SimilarForUser finds terrains sharing a location with the user's
// booked terrains, excluding terrains already booked.
func (r *pgxRepository) SimilarForUser(ctx context.Context, userID string, limit int) ([]TerrainRec, error) {
	const query = `
		SELECT DISTINCT t.id, t.name, t.location, t.price_per_slot, t.description
		FROM public.terrains t
		WHERE t.location IN (
			SELECT DISTINCT t2.location
			FROM public.reservations res
			JOIN public.terrains t2 ON res.terrain_id = t2.id
			WHERE res.user_id = $1
		)
		AND t.id NOT IN (
			SELECT res.terrain_id FROM public.reservations res WHERE res.user_id = $1
		)
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("similar terrains failed: %w", err)
	}
	return collectTerrainRecs(rows, false)
}

// SimilarToTerrain finds terrains at the same location as the given one.
func (r *pgxRepository) SimilarToTerrain(ctx context.Context, terrainID string, limit int) ([]TerrainRec, error) {
	const query = `
		SELECT t.id, t.name, t.location, t.price_per_slot, t.description
		FROM public.terrains t
		WHERE t.location = (SELECT location FROM public.terrains WHERE id = $1)
		  AND t.id <> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, terrainID, limit)
	if err != nil {
		return nil, fmt.Errorf("similar to terrain failed: %w", err)
	}
	return collectTerrainRecs(rows, false)
}

// PopularTimesForUser ranks the user's habitual start times.
func (r *pgxRepository) PopularTimesForUser(ctx context.Context, userID string, limit int) ([]TimeCount, error) {
	const query = `
		SELECT to_char(start_time, 'HH24:MI') AS start, count(*) AS cnt
		FROM public.reservations
		WHERE user_id = $1 AND status <> 'cancelled'
		GROUP BY start_time
		ORDER BY cnt DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("popular times failed: %w", err)
	}
	defer rows.Close()

	times := make([]TimeCount, 0)
	for rows.Next() {
		var tc TimeCount
		if err := rows.Scan(&tc.Start, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan popular time failed: %w", err)
		}
		times = append(times, tc)
	}
	return times, rows.Err()
}

// FreeTerrainsAt lists terrain names with no active reservation
// overlapping the interval on the given day.
func (r *pgxRepository) FreeTerrainsAt(ctx context.Context, date time.Time, start, end string) ([]string, error) {
	const query = `
		SELECT t.name
		FROM public.terrains t
		WHERE t.id NOT IN (
			SELECT res.terrain_id
			FROM public.reservations res
			WHERE res.reservation_date = $1
			  AND res.status <> 'cancelled'
			  AND res.start_time < $3::time
			  AND res.end_time > $2::time
		)
		ORDER BY t.name
	`
	rows, err := r.pool.Query(ctx, query, date, start, end)
	if err != nil {
		return nil, fmt.Errorf("free terrains failed: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan terrain name failed: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AvgAmountForUser returns the average amount of the user's reservations.
func (r *pgxRepository) AvgAmountForUser(ctx context.Context, userID string) (float64, error) {
	const query = `
		SELECT COALESCE(avg(amount), 0)
		FROM public.reservations
		WHERE user_id = $1 AND status <> 'cancelled'
	`
	var avg float64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("avg amount failed: %w", err)
	}
	return avg, nil
}

func (r *pgxRepository) TerrainsInPriceBand(ctx context.Context, low, high float64, limit int) ([]TerrainRec, error) {
	const query = `
		SELECT t.id, t.name, t.location, t.price_per_slot, t.description
		FROM public.terrains t
		WHERE t.price_per_slot BETWEEN $1 AND $2
		ORDER BY t.price_per_slot ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, low, high, limit)
	if err != nil {
		return nil, fmt.Errorf("terrains in price band failed: %w", err)
	}
	return collectTerrainRecs(rows, false)
}

// FriendsTerrains lists terrains the user's friends have booked.
func (r *pgxRepository) FriendsTerrains(ctx context.Context, userID string, limit int) ([]TerrainRec, error) {
	const query = `
		SELECT DISTINCT t.id, t.name, t.location, t.price_per_slot, t.description
		FROM public.friends f
		JOIN public.reservations res ON res.user_id = f.friend_id
		JOIN public.terrains t ON res.terrain_id = t.id
		WHERE f.user_id = $1 AND res.status <> 'cancelled'
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("friends terrains failed: %w", err)
	}
	return collectTerrainRecs(rows, false)
}

// TopRated lists terrains whose average rating reaches minScore.
func (r *pgxRepository) TopRated(ctx context.Context, minScore float64, limit int) ([]RatedTerrain, error) {
	const query = `
		SELECT t.id, t.name, t.location, avg(ra.score) AS avg_score
		FROM public.terrains t
		JOIN public.ratings ra ON ra.terrain_id = t.id
		GROUP BY t.id
		HAVING avg(ra.score) >= $1
		ORDER BY avg_score DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("top rated terrains failed: %w", err)
	}
	defer rows.Close()

	rated := make([]RatedTerrain, 0)
	for rows.Next() {
		var rt RatedTerrain
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Location, &rt.AvgScore); err != nil {
			return nil, fmt.Errorf("scan rated terrain failed: %w", err)
		}
		rated = append(rated, rt)
	}
	return rated, rows.Err()
}

// ActivePromotions lists promotions covering the given day, with the
// discounted price computed in SQL.
func (r *pgxRepository) ActivePromotions(ctx context.Context, day time.Time) ([]Promo, error) {
	const query = `
		SELECT t.id, t.name, t.location, t.price_per_slot,
		       p.discount,
		       round(t.price_per_slot * (1 - p.discount / 100.0), 2) AS promo_price,
		       to_char(p.start_date, 'YYYY-MM-DD'),
		       to_char(p.end_date, 'YYYY-MM-DD')
		FROM public.promotions p
		JOIN public.terrains t ON p.terrain_id = t.id
		WHERE $1 BETWEEN p.start_date AND p.end_date
		ORDER BY p.discount DESC
	`
	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("active promotions failed: %w", err)
	}
	defer rows.Close()

	promos := make([]Promo, 0)
	for rows.Next() {
		var p Promo
		if err := rows.Scan(
			&p.TerrainID, &p.TerrainName, &p.Location, &p.PricePerSlot,
			&p.Discount, &p.PromoPrice, &p.StartDate, &p.EndDate,
		); err != nil {
			return nil, fmt.Errorf("scan promotion failed: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// TerrainsByCovered selects covered or open-air terrains based on the
// description text, mirroring how listings mark covered pitches.
func (r *pgxRepository) TerrainsByCovered(ctx context.Context, covered bool, limit int) ([]TerrainRec, error) {
	var query string
	if covered {
		query = `
			SELECT t.id, t.name, t.location, t.price_per_slot, t.description
			FROM public.terrains t
			WHERE t.description ILIKE '%couvert%'
			LIMIT $1
		`
	} else {
		query = `
			SELECT t.id, t.name, t.location, t.price_per_slot, t.description
			FROM public.terrains t
			WHERE t.description NOT ILIKE '%couvert%'
			LIMIT $1
		`
	}

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("terrains by coverage failed: %w", err)
	}
	return collectTerrainRecs(rows, false)
}
