package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/config"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/gateway"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/handler"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/healthcheck"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/middleware"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/provider"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/repository"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/service"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/storage"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/usage"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/validator"
)

type Server struct {
	router          *gin.Engine
	config          *config.Config
	redis           *storage.RedisClient
	postgres        *storage.Postgres
	gateway         *gateway.Gateway
	analyzeHandler  *handler.AnalyzeHandler
	adminHandler    *handler.AdminHandler
	analyticsH      *handler.AnalyticsHandler
	authService     *service.AuthService
	requestLogger   *middleware.RequestLogger
	providerChecker *healthcheck.Checker
	httpServer      *http.Server
}

// New wires the gateway. redis and postgres may be nil when the
// corresponding backends are not configured.
func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres, describer provider.Describer) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	resolver := identity.NewResolver(cfg.Quota.PremiumIdentities)
	v := validator.New(cfg.Upload.AllowedTypes, cfg.Upload.MaxBytes)
	store := newUsageStore(cfg, redis, postgres)

	gw := gateway.New(resolver, v, store, describer, gateway.Config{
		FreeLimit:       cfg.Quota.FreeLimit,
		Prompt:          cfg.Provider.Prompt,
		ProviderTimeout: cfg.Provider.Timeout(),
	})

	checker := healthcheck.NewChecker(describer, healthcheck.Config{})

	s := &Server{
		router:          router,
		config:          cfg,
		redis:           redis,
		postgres:        postgres,
		gateway:         gw,
		analyzeHandler:  handler.NewAnalyzeHandler(gw),
		providerChecker: checker,
	}

	if postgres != nil {
		adminRepo := repository.NewAdminRepository(postgres)
		logRepo := repository.NewRequestLogRepository(postgres)

		s.authService = service.NewAuthService(adminRepo, cfg.Admin.JWTSecret, cfg.Admin.ExpiryHours)
		s.adminHandler = handler.NewAdminHandler(s.authService, gw)
		s.analyticsH = handler.NewAnalyticsHandler(service.NewAnalyticsService(logRepo))
		s.requestLogger = middleware.NewRequestLogger(postgres, 1000)
	}

	s.setupMiddleware(resolver)
	s.setupRoutes()

	return s
}

func newUsageStore(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) usage.Store {
	switch cfg.Quota.Backend {
	case "redis":
		log.Println("Using redis usage store")
		return usage.NewRedis(redis)
	case "postgres":
		log.Println("Using postgres usage store")
		return usage.NewPostgres(postgres)
	default:
		log.Println("Using in-memory usage store")
		return usage.NewMemory()
	}
}

func (s *Server) setupMiddleware(resolver *identity.Resolver) {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.IdentityTag(resolver))

	if s.requestLogger != nil {
		s.router.Use(s.requestLogger.Handler())
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/analyze", s.analyzeHandler.Analyze)
		api.GET("/usage", s.analyzeHandler.Usage)
	}

	// Admin surface needs postgres for accounts and logs
	if s.adminHandler == nil {
		return
	}

	admin := s.router.Group("/admin")
	{
		admin.POST("/register", s.adminHandler.Register)
		admin.POST("/login", s.adminHandler.Login)

		protected := admin.Group("", middleware.RequireAdmin(s.authService))
		{
			protected.POST("/usage/:identity/reset", s.adminHandler.ResetUsage)
			protected.GET("/analytics", s.analyticsH.GetSummary)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if s.redis != nil {
		redisHealthy := true
		if err := s.redis.Ping(c.Request.Context()); err != nil {
			redisHealthy = false
			healthy = false
			log.Printf("Redis health check failed: %v", err)
		}
		checks["redis"] = redisHealthy
	}

	if s.postgres != nil {
		dbHealthy := true
		if err := s.postgres.Ping(c.Request.Context()); err != nil {
			dbHealthy = false
			healthy = false
			log.Printf("Database health check failed: %v", err)
		}
		checks["database"] = dbHealthy
	}

	providerStatus := s.providerChecker.Status()
	checks["provider"] = providerStatus
	checks["provider_circuit"] = s.gateway.BreakerState().String()
	if !providerStatus.IsHealthy {
		healthy = false
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "ai-vision-analyzer",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(startTime).Seconds(),
		"checks":    checks,
	})
}

func (s *Server) Run(addr string) error {
	// Background provider probing only makes sense once the server is
	// actually serving; tests that just exercise the router never
	// start it.
	s.providerChecker.Start()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting vision gateway on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	// Drain in-flight requests first: they still log through the
	// request logger until the listener is fully down.
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.providerChecker.Stop()

	if s.requestLogger != nil {
		s.requestLogger.Close()
	}

	return err
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

var startTime = time.Now()
