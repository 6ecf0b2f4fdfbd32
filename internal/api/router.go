package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feedr/routing-api/internal/api/handler"
	"github.com/feedr/routing-api/internal/api/middleware"
	"github.com/feedr/routing-api/internal/core/domain"
	"github.com/feedr/routing-api/internal/core/service"
	mongodb "github.com/feedr/routing-api/internal/infrastructure/db/mongo"
	redisdb "github.com/feedr/routing-api/internal/infrastructure/db/redis"
	"github.com/feedr/routing-api/internal/infrastructure/directions"
	"github.com/feedr/routing-api/internal/infrastructure/queue"
)

// Config carries the settings the router needs beyond its datastore handles.
type Config struct {
	JWTSecret string
	Mapbox    directions.Config
	Workers   int
}

// NewRouter builds the Echo instance with all routes registered, plus the
// ETA refresh dispatcher. The caller starts the dispatcher with the process
// lifetime context before serving.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg Config, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("routing"))

	// --- Dependencies ---
	orderRepo := mongodb.NewOrderRepository(db)
	restaurantRepo := mongodb.NewRestaurantRepository(db)
	driverRepo := mongodb.NewDriverRepository(db)
	locationStore := redisdb.NewDriverLocationStore(rdb)
	provider := directions.NewMapboxClient(cfg.Mapbox)

	routingService := service.NewRoutingService(provider, orderRepo, restaurantRepo, driverRepo, locationStore, log)
	dispatcher := queue.NewDispatcher(cfg.Workers, routingService, log)

	authRepo := mongodb.NewAuthRepository(db)
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, 24*time.Hour)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	routingHandler := handler.NewRoutingHandler(routingService)
	driverHandler := handler.NewDriverHandler(routingService, driverRepo, orderRepo, locationStore, dispatcher, log)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Routing API ---
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleDispatcher, domain.RoleDriver)
	staffOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleDispatcher)

	v1 := e.Group("/v1", authMiddleware)
	v1.POST("/routes", routingHandler.CalculateRoute, anyRole)
	v1.POST("/routes/multi-stop", routingHandler.CalculateMultiStopRoute, staffOnly)
	v1.GET("/orders/:id/eta", routingHandler.OrderETA, anyRole)
	v1.GET("/drivers/:id/route", driverHandler.OptimizedRoute, anyRole)
	v1.PUT("/drivers/:id/location", driverHandler.UpdateLocation, anyRole)

	return e, dispatcher
}
