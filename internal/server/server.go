package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"coffee-catalog/internal/config"
	custommiddleware "coffee-catalog/internal/middleware"
	"coffee-catalog/internal/repository"
	"coffee-catalog/internal/service"
	"coffee-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Rate limiting backed by Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit",
	}, logger))

	// Health check endpoint with DB pool stats
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := db.Stats()
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":           "ok",
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		})
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	packageRepo := repository.NewPackageRepository(db)

	// Initialize services
	packageService := service.NewPackageService(packageRepo, productRepo)
	productService := service.NewProductService(productRepo, packageService)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, logger)
	packageHandler := transport.NewPackageHandler(packageService, logger)

	// Create auth middleware; tokens are issued by the identity service and
	// only validated here
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Register routes
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	packageHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
