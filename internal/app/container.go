package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/terrabook/pitch-booking-backend/internal/api"
	"github.com/terrabook/pitch-booking-backend/internal/auth"
	"github.com/terrabook/pitch-booking-backend/internal/chatbot"
	"github.com/terrabook/pitch-booking-backend/internal/config"
	"github.com/terrabook/pitch-booking-backend/internal/email"
	"github.com/terrabook/pitch-booking-backend/internal/pkg/storage"
	"github.com/terrabook/pitch-booking-backend/internal/recommendation"
	"github.com/terrabook/pitch-booking-backend/internal/reservation"
	"github.com/terrabook/pitch-booking-backend/internal/terrain"
	"github.com/terrabook/pitch-booking-backend/internal/user"
)

// recommendation cache entries go stale quickly once bookings land.
const recCacheTTL = 5 * time.Minute

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Redis      *redis.Client
}

// NewContainer wires every module: repositories on the pool, services
// on top, HTTP handlers and the chatbot engine on top of those.
// Optional integrations (Redis, SES, weather, ML) are skipped when
// their configuration is absent.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)

	tz, err := time.LoadLocation(cfg.BookingTZ)
	if err != nil {
		return nil, fmt.Errorf("load booking timezone: %w", err)
	}

	// User module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher)

	// Terrain module, with local image storage
	files, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}
	terrainRepo := terrain.NewPgxRepository(pool)
	terrainService := terrain.NewService(terrainRepo, files)

	// Confirmation e-mails are optional: without SES credentials the
	// reservation flow simply skips sending.
	var mailer reservation.ConfirmationMailer
	if cfg.EmailFrom != "" && cfg.AWSRegion != "" {
		ses, err := email.NewSESSender(ctx, email.Config{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			From:            cfg.EmailFrom,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("init SES sender: %w", err)
		}
		mailer = ses
	}
	tokens := reservation.NewConfirmTokenManager(cfg.EmailConfirmSecret)

	// Reservation module
	reservationRepo := reservation.NewPgxRepository(pool)
	reservationService := reservation.NewService(
		reservationRepo, terrainService, userService,
		mailer, tokens, cfg.EmailConfirmBase, log,
	)

	// Recommendation module, with optional Redis cache, weather and ML
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}
	cache := recommendation.NewCache(rdb, recCacheTTL, log)

	var weather *recommendation.WeatherClient
	if cfg.WeatherAPIKey != "" {
		weather = recommendation.NewWeatherClient(cfg.WeatherAPIKey, cfg.WeatherCity, cfg.OutboundTimeout)
	}
	ml := recommendation.NewMLClient(cfg.MLRecommenderURL, cfg.OutboundTimeout)

	recRepo := recommendation.NewPgxRepository(pool)
	recService := recommendation.NewService(recRepo, cache, weather, ml, tz, log)

	// Chatbot module
	sessions := chatbot.NewSessionStore()
	resolver := chatbot.NewDateTimeResolver(tz)
	recClient := chatbot.NewRecClient(cfg.SelfBaseURL, cfg.OutboundTimeout)
	nluClient := chatbot.NewNLUClient(cfg.NLUAgentURL, cfg.OutboundTimeout)
	engine := chatbot.NewEngine(resolver, reservationService, terrainService, recClient, sessions, log)

	router := api.NewRouter(api.Config{
		IsProduction:          cfg.IsProduction,
		ProdOrigins:           cfg.ProdOrigins,
		UserService:           userService,
		TerrainService:        terrainService,
		ReservationService:    reservationService,
		RecommendationService: recService,
		ChatEngine:            engine,
		ChatSessions:          sessions,
		ChatNLU:               nluClient,
		JWTManager:            jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Redis:      rdb,
	}, nil
}
