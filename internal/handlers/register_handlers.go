package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/cmd/docs"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	portssvc "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/services"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/middleware"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	dbPool *pgxpool.Pool,
) {
	registerRootRoute(r)
	registerHealthRoutes(r, dbPool)
	registerAuthRoutes(r, services)
	registerAdminRoutes(r, services)
	setupSwaggerRoutes(r, cfg)
}

// registerRootRoute serves the service banner.
func registerRootRoute(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Authentication Microservice is running"})
	})
}

// registerHealthRoutes exposes the health probes used by the orchestrator.
func registerHealthRoutes(r *gin.Engine, dbPool *pgxpool.Pool) {
	h := NewHealthHandler(dbPool)
	r.GET("/health", h.Health)
	r.GET("/health/detailed", h.DetailedHealth)
	r.GET("/health/ready", h.Ready)
	r.GET("/health/live", h.Live)
}

// registerAuthRoutes sets up the authentication routes. Login and signup are
// rate limited per client IP.
func registerAuthRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services.Auth)

	// 5 requests per minute per IP on the credential endpoints.
	rate, _ := limiter.NewRateFromFormatted("5-M")
	ipLimiter := limiter.New(memory.NewStore(), rate)
	limitMiddleware := middleware.RateLimit(ipLimiter)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/signup", limitMiddleware, h.Signup)
		auth.POST("/login", limitMiddleware, h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", middleware.AuthMiddleware(services.Token, services.User), h.Logout)
		auth.GET("/me", middleware.AuthMiddleware(services.Token, services.User), h.Me)
	}
}

// registerAdminRoutes sets up the admin surface behind the exact-match admin
// role gate.
func registerAdminRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	h := NewAdminHandler(services.User)

	admin := r.Group("/api/v1/admin",
		middleware.AuthMiddleware(services.Token, services.User),
		middleware.RequireRole(domain.RoleAdmin),
	)
	{
		admin.GET("/dashboard", h.GetDashboard)
		admin.GET("/users", h.ListUsers)
	}
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
