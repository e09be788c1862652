package router

import (
	"net/http"
	"time"

	_ "github.com/franciscosanchezn/gin-coins-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-coins-api/internal/auth"
	"github.com/franciscosanchezn/gin-coins-api/internal/config"
	"github.com/franciscosanchezn/gin-coins-api/internal/controllers"
	"github.com/franciscosanchezn/gin-coins-api/internal/middleware"
	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/franciscosanchezn/gin-coins-api/internal/services"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

// SetupRouter wires services, controllers and middleware on a new gin engine
func SetupRouter(conf *config.Config, db *gorm.DB) *gin.Engine {
	coinService := services.NewCoinService(db, conf.QueryTimeout)
	sessions := auth.NewSessionManager(auth.SessionConfig{
		Secret:            conf.JWTSecret,
		ExpiresIn:         conf.JWTExpiresIn,
		AdminEmail:        conf.AdminEmail,
		AdminPassword:     conf.AdminPassword,
		AdminPasswordHash: conf.AdminPasswordHash,
	})

	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Recovery(), middleware.CORS(conf.CORSAllowedOrigins))

	setupRoutes(router, conf, routeHandlers{
		coins:      controllers.NewCoinController(coinService, conf.LookupMode, conf.NotFoundMessage),
		auth:       controllers.NewAuthController(sessions),
		adminCoins: controllers.NewAdminCoinController(coinService),
		sessions:   sessions,
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: models.MsgRouteNotFound})
	})

	return router
}

type routeHandlers struct {
	coins      *controllers.CoinController
	auth       *controllers.AuthController
	adminCoins controllers.AdminCoinController
	sessions   middleware.SessionVerifier
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, conf *config.Config, h routeHandlers) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiKey := middleware.APIKey(conf.APIKey)

	// Public balance lookup, shared key only
	router.POST("/coins", middleware.Chain(apiKey), h.coins.GetBalance)

	admin := router.Group("/admin")
	{
		admin.POST("/login", middleware.Chain(apiKey), h.auth.Login)

		// Session routes (requires the shared key and a valid admin token)
		sessionApi := admin.Group("")
		sessionApi.Use(middleware.Chain(apiKey, middleware.AdminSession(h.sessions)))
		{
			sessionApi.GET("/me", h.auth.Me)

			coinsApi := sessionApi.Group("/coins")
			coinsApi.Use(middleware.RequireRole(auth.RoleAdmin))
			{
				coinsApi.GET("", h.adminCoins.ListCoins)
				coinsApi.POST("", h.adminCoins.CreateCoin)
				coinsApi.PATCH("", h.adminCoins.UpdateCoin)
				coinsApi.DELETE("", h.adminCoins.DeleteCoin)
			}
		}
	}
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
