package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/terrabook/pitch-booking-backend/internal/reservation"
)

// Limits mirrored across the recommendation queries.
const (
	popularLimit  = 6
	defaultLimit  = 5
	hourlyTopN    = 3
	ratingsFloor  = 9.0
	priceBandHalf = 5.0
)

type Service interface {
	Popular(ctx context.Context) ([]TerrainRec, error)
	Global(ctx context.Context) ([]TerrainRec, error)
	Personalized(ctx context.Context, userID string) (*Personalized, error)
	SimilarToTerrain(ctx context.Context, terrainID string) ([]TerrainRec, error)
	Hourly(ctx context.Context, userID string) ([]HourlyRec, error)
	PopularTimes(ctx context.Context, userID string) ([]TimeCount, error)
	PriceBand(ctx context.Context, userID string) (*PriceAdvice, error)
	Friends(ctx context.Context, userID string) ([]TerrainRec, error)
	TopRated(ctx context.Context) ([]RatedTerrain, error)
	Promotions(ctx context.Context) ([]Promo, error)
	Weather(ctx context.Context) (*WeatherAdvice, error)
	ML(ctx context.Context, userID string) (json.RawMessage, error)
}

type service struct {
	repo    Repository
	cache   *Cache
	weather *WeatherClient
	ml      *MLClient
	tz      *time.Location
	log     *zap.Logger
}

func NewService(
	repo Repository,
	cache *Cache,
	weather *WeatherClient,
	ml *MLClient,
	tz *time.Location,
	log *zap.Logger,
) Service {
	return &service{
		repo:    repo,
		cache:   cache,
		weather: weather,
		ml:      ml,
		tz:      tz,
		log:     log,
	}
}

func (s *service) today() time.Time {
	now := time.Now().In(s.tz)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) Popular(ctx context.Context) ([]TerrainRec, error) {
	var cached []TerrainRec
	if s.cache.GetJSON(ctx, "rec:popular", &cached) {
		return cached, nil
	}

	recs, err := s.repo.Popular(ctx, popularLimit)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, "rec:popular", recs)
	return recs, nil
}

func (s *service) Global(ctx context.Context) ([]TerrainRec, error) {
	var cached []TerrainRec
	if s.cache.GetJSON(ctx, "rec:global", &cached) {
		return cached, nil
	}

	recs, err := s.repo.Global(ctx, defaultLimit)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, "rec:global", recs)
	return recs, nil
}

func (s *service) Personalized(ctx context.Context, userID string) (*Personalized, error) {
	frequent, err := s.repo.FrequentForUser(ctx, userID, defaultLimit)
	if err != nil {
		return nil, err
	}

	similar, err := s.repo.SimilarForUser(ctx, userID, defaultLimit)
	if err != nil {
		return nil, err
	}

	return &Personalized{Frequent: frequent, Similar: similar}, nil
}

func (s *service) SimilarToTerrain(ctx context.Context, terrainID string) ([]TerrainRec, error) {
	return s.repo.SimilarToTerrain(ctx, terrainID, defaultLimit)
}

// Hourly crosses the user's habitual start times with the terrains
// free today at those times.
func (s *service) Hourly(ctx context.Context, userID string) ([]HourlyRec, error) {
	times, err := s.repo.PopularTimesForUser(ctx, userID, hourlyTopN)
	if err != nil {
		return nil, err
	}

	today := s.today()
	recs := make([]HourlyRec, 0, len(times))

	for _, tc := range times {
		end, err := reservation.SlotEnd(tc.Start)
		if err != nil {
			continue
		}
		free, err := s.repo.FreeTerrainsAt(ctx, today, tc.Start, end)
		if err != nil {
			return nil, err
		}
		recs = append(recs, HourlyRec{Start: tc.Start, Terrains: free})
	}
	return recs, nil
}

func (s *service) PopularTimes(ctx context.Context, userID string) ([]TimeCount, error) {
	return s.repo.PopularTimesForUser(ctx, userID, defaultLimit)
}

// PriceBand recommends terrains priced within ±5 of the user's average spend.
func (s *service) PriceBand(ctx context.Context, userID string) (*PriceAdvice, error) {
	avg, err := s.repo.AvgAmountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	low := avg - priceBandHalf
	if low < 0 {
		low = 0
	}

	terrains, err := s.repo.TerrainsInPriceBand(ctx, low, avg+priceBandHalf, defaultLimit)
	if err != nil {
		return nil, err
	}

	return &PriceAdvice{AvgAmount: avg, Terrains: terrains}, nil
}

func (s *service) Friends(ctx context.Context, userID string) ([]TerrainRec, error) {
	return s.repo.FriendsTerrains(ctx, userID, defaultLimit)
}

func (s *service) TopRated(ctx context.Context) ([]RatedTerrain, error) {
	var cached []RatedTerrain
	if s.cache.GetJSON(ctx, "rec:top-rated", &cached) {
		return cached, nil
	}

	rated, err := s.repo.TopRated(ctx, ratingsFloor, defaultLimit)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, "rec:top-rated", rated)
	return rated, nil
}

func (s *service) Promotions(ctx context.Context) ([]Promo, error) {
	return s.repo.ActivePromotions(ctx, s.today())
}

// Weather recommends covered terrains in bad weather, open-air otherwise.
func (s *service) Weather(ctx context.Context) (*WeatherAdvice, error) {
	if s.weather == nil {
		return nil, fmt.Errorf("weather recommendations are not configured")
	}

	cw, err := s.weather.Current(ctx)
	if err != nil {
		return nil, err
	}

	covered := cw.WantsCovered()
	terrains, err := s.repo.TerrainsByCovered(ctx, covered, defaultLimit)
	if err != nil {
		return nil, err
	}

	title := "Le temps est idéal pour jouer en plein air !"
	if covered {
		title = "Il pleut, voici des terrains couverts :"
	}

	return &WeatherAdvice{
		City:        s.weather.city,
		Description: cw.Description,
		TempC:       cw.TempC,
		Covered:     covered,
		Title:       title,
		Terrains:    terrains,
	}, nil
}

func (s *service) ML(ctx context.Context, userID string) (json.RawMessage, error) {
	raw, err := s.ml.Recommend(ctx, userID)
	if err != nil {
		s.log.Warn("ML recommender call failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return raw, nil
}
