package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/terrabook/pitch-booking-backend/internal/auth"
	"github.com/terrabook/pitch-booking-backend/internal/chatbot"
	chatbotHttp "github.com/terrabook/pitch-booking-backend/internal/chatbot/http"
	"github.com/terrabook/pitch-booking-backend/internal/recommendation"
	recHttp "github.com/terrabook/pitch-booking-backend/internal/recommendation/http"
	"github.com/terrabook/pitch-booking-backend/internal/reservation"
	reservationHttp "github.com/terrabook/pitch-booking-backend/internal/reservation/http"
	"github.com/terrabook/pitch-booking-backend/internal/terrain"
	terrainHttp "github.com/terrabook/pitch-booking-backend/internal/terrain/http"
	"github.com/terrabook/pitch-booking-backend/internal/user"
	userHttp "github.com/terrabook/pitch-booking-backend/internal/user/http"
)

// Config carries everything the router needs to assemble middleware
// and register module routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService           user.Service
	TerrainService        terrain.Service
	ReservationService    reservation.Service
	RecommendationService recommendation.Service
	ChatEngine            *chatbot.Engine
	ChatSessions          *chatbot.SessionStore
	ChatNLU               *chatbot.NLUClient

	JWTManager *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // Web frontend
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// Role gates layered on top of authMiddleware.
	managerMiddleware := RequireRole(user.RoleManager, user.RoleAdmin)
	adminMiddleware := RequireRole(user.RoleAdmin)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	terrainHandler := terrainHttp.NewHandler(cfg.TerrainService)
	reservationHandler := reservationHttp.NewHandler(cfg.ReservationService)
	recHandler := recHttp.NewHandler(cfg.RecommendationService)
	chatHandler := chatbotHttp.NewHandler(cfg.ChatEngine, cfg.ChatSessions, cfg.ChatNLU)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		terrainHttp.RegisterRoutes(v1, terrainHandler, authMiddleware, managerMiddleware, adminMiddleware)
		reservationHttp.RegisterRoutes(v1, reservationHandler, authMiddleware, managerMiddleware)
		recHttp.RegisterRoutes(v1, recHandler)
		chatbotHttp.RegisterRoutes(v1, chatHandler)
	}

	return r
}
