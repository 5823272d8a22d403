// Package http serves the Study Hub JSON API over gin.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/alem-hub/studyhub/internal/application"
	"github.com/alem-hub/studyhub/internal/infrastructure/metrics"
	"github.com/alem-hub/studyhub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// Per client IP. RateLimit <= 0 disables limiting.
	RateLimit float64
	RateBurst int

	// ServiceName names the otelgin server spans.
	ServiceName string

	// EnableMetrics exposes /metrics and records request metrics.
	EnableMetrics bool

	// Debug switches gin out of release mode.
	Debug bool
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
		RateLimit:      20,
		RateBurst:      40,
		ServiceName:    "studyhub",
		EnableMetrics:  true,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the API server.
type Server struct {
	config     Config
	app        *application.App
	health     *HealthChecker
	logger     *logger.Logger
	engine     *gin.Engine
	httpServer *http.Server

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer builds the router and the underlying http.Server. health may be
// nil, in which case readiness always succeeds.
func NewServer(config Config, app *application.App, health *HealthChecker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	if health == nil {
		health = NewHealthChecker("")
	}
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidators()

	s := &Server{
		config: config,
		app:    app,
		health: health,
		logger: log.Named("http"),
	}
	s.engine = s.newRouter()
	s.httpServer = &http.Server{
		Addr:           config.Addr,
		Handler:        s.engine,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}
	return s
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		respondError(c, http.StatusMethodNotAllowed, CodeInvalidInput, "method not allowed")
	})

	r.Use(RequestID(s.logger), Recovery(), RequestLogger())
	if s.config.ServiceName != "" {
		r.Use(otelgin.Middleware(s.config.ServiceName))
	}
	if s.config.EnableMetrics {
		r.Use(Metrics())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	r.GET("/health", s.handleHealth)
	r.GET("/live", s.handleLive)
	r.GET("/ready", s.handleReady)

	api := r.Group("/api/v1", RateLimit(s.config.RateLimit, s.config.RateBurst))

	users := api.Group("/users")
	users.POST("", s.registerUser)
	users.PUT("/me", s.updateProfile)
	users.GET("/:id", s.getProfile)
	users.GET("/:id/tokens", s.getTokens)
	users.GET("/:id/achievements", s.getAchievements)
	users.GET("/:id/stats", s.getUserStats)
	users.GET("/:id/groups", s.getUserGroups)
	users.GET("/:id/matches", s.findMatches)
	users.POST("/:id/streak", s.updateStreak)

	groups := api.Group("/groups")
	groups.POST("", s.createGroup)
	groups.GET("", s.listGroups)
	groups.GET("/:id", s.getGroup)
	groups.POST("/:id/join", s.joinGroup)
	groups.POST("/:id/sessions", s.createSession)

	sessions := api.Group("/sessions")
	sessions.GET("/:id", s.getSession)
	sessions.POST("/:id/join", s.joinSession)
	sessions.POST("/:id/complete", s.completeSession)

	resources := api.Group("/resources")
	resources.POST("", s.uploadResource)
	resources.GET("", s.listResources)
	resources.POST("/:id/download", s.downloadResource)

	api.POST("/tokens/transfer", s.transferTokens)
	api.GET("/stats", s.platformStats)

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("HTTP server starting", logger.String("addr", s.config.Addr))

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(c *gin.Context) {
	status := s.health.Check(c.Request.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func (s *Server) handleReady(c *gin.Context) {
	status := s.health.Check(c.Request.Context())
	if !status.Healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": status.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleLive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
