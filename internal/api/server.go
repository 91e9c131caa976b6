// Package api exposes the recommendation engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fisioflow/recommendation-engine/internal/cache"
	"github.com/fisioflow/recommendation-engine/internal/domain"
	"github.com/fisioflow/recommendation-engine/internal/feedback"
	"github.com/fisioflow/recommendation-engine/internal/middleware"
	"github.com/fisioflow/recommendation-engine/pkg/external"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	engine        domain.RecommendationEngine
	store         domain.RecommendationStore
	recCache      *cache.RecommendationCache
	feedbackStore feedback.Store
	mediaClient   *external.MediaCatalogClient
	log           *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	rateLimiter   *middleware.RateLimiter
}

// Dependencies carries everything the server needs. Store, cache, feedback
// store and media client are optional; routes depending on an absent
// component answer 503.
type Dependencies struct {
	ConfigManager domain.ConfigManager
	Engine        domain.RecommendationEngine
	Store         domain.RecommendationStore
	Cache         *cache.RecommendationCache
	FeedbackStore feedback.Store
	MediaClient   *external.MediaCatalogClient
	Logger        *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(deps Dependencies) *Server {
	cfg := deps.ConfigManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)

	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(rateLimiter.Middleware())

	server := &Server{
		configManager: deps.ConfigManager,
		engine:        deps.Engine,
		store:         deps.Store,
		recCache:      deps.Cache,
		feedbackStore: deps.FeedbackStore,
		mediaClient:   deps.MediaClient,
		log:           deps.Logger,
		router:        router,
		rateLimiter:   rateLimiter,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.log.WithField("addr", addr).Info("HTTP server started")

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.rateLimiter.Stop()
	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the configured router for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/recommendations", s.handleGenerateRecommendation)
		v1.GET("/recommendations/:id", s.handleGetRecommendation)
		v1.POST("/recommendations/:id/progress", s.handleUpdateProgress)
		v1.POST("/recommendations/:id/feedback", s.handleSaveFeedback)
		v1.GET("/recommendations/:id/feedback", s.handleListFeedback)
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
