package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// Timezone in which reservation dates and hours are interpreted.
	BookingTZ string

	// Base URL of this service, used by the chatbot to call the
	// recommendation endpoints over HTTP.
	SelfBaseURL string
	// Timeout applied to all outbound HTTP calls (weather, ML, self).
	OutboundTimeout time.Duration

	// Local image storage directory for terrain photos.
	UploadDir string

	// Redis cache for recommendation queries. Empty disables caching.
	RedisAddr     string
	RedisPassword string

	// OpenWeatherMap credentials for the weather recommendation.
	WeatherAPIKey string
	WeatherCity   string

	// External ML recommender endpoint. Empty disables the proxy.
	MLRecommenderURL string

	// External NLU agent endpoint for the chat message proxy. Empty
	// disables the proxy route.
	NLUAgentURL string

	// SES email settings for reservation confirmation emails.
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	EmailFrom          string
	EmailConfirmSecret string
	EmailConfirmBase   string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttlStr := getEnv("JWT_ACCESS_TOKEN_TTL", "15m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Reservation timezone (default: Africa/Tunis)
	cfg.BookingTZ = getEnv("BOOKING_TZ", "Africa/Tunis")
	if _, err := time.LoadLocation(cfg.BookingTZ); err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TZ: %w", err)
	}

	cfg.SelfBaseURL = getEnv("SELF_BASE_URL", "http://localhost:8080")

	outboundStr := getEnv("OUTBOUND_TIMEOUT", "5s")
	cfg.OutboundTimeout, err = time.ParseDuration(outboundStr)
	if err != nil {
		return nil, fmt.Errorf("invalid OUTBOUND_TIMEOUT: %w", err)
	}

	cfg.UploadDir = getEnv("UPLOAD_DIR", "uploads")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")

	cfg.WeatherAPIKey = getEnv("WEATHER_API_KEY", "")
	cfg.WeatherCity = getEnv("WEATHER_CITY", "Tunis")

	cfg.MLRecommenderURL = getEnv("REC_ML_URL", "")

	cfg.NLUAgentURL = getEnv("NLU_AGENT_URL", "")

	cfg.AWSRegion = getEnv("AWS_REGION", "eu-west-1")
	cfg.AWSAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.EmailFrom = getEnv("EMAIL_FROM", "")
	cfg.EmailConfirmSecret = getEnv("EMAIL_CONFIRM_SECRET", "")
	cfg.EmailConfirmBase = getEnv("EMAIL_CONFIRM_BASE", cfg.SelfBaseURL)

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}
