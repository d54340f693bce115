// Package api provides a local HTTP REST API over a MessageU client session
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/messageu-client/pkg/client"
)

// Server exposes one client session over HTTP
type Server struct {
	session    *client.Session
	router     *gin.Engine
	listenAddr string
	httpServer *http.Server
	limiter    *RateLimiter
}

// Config holds server configuration
type Config struct {
	ListenAddr   string
	EnableCORS   bool
	RateLimit    int // Requests per minute, 0 disables
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:   "127.0.0.1:8088",
		EnableCORS:   false,
		RateLimit:    120,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}

// NewServer creates a new HTTP API server
func NewServer(session *client.Session, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		session:    session,
		router:     gin.New(),
		listenAddr: config.ListenAddr,
	}

	server.setupMiddleware(config)
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         config.ListenAddr,
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(config *Config) {
	// CORS middleware
	if config.EnableCORS {
		s.router.Use(CORSMiddleware())
	}

	// Rate limiting
	if config.RateLimit > 0 {
		s.limiter = NewRateLimiter(config.RateLimit)
		s.router.Use(RateLimitMiddleware(s.limiter))
	}

	// Request logging
	s.router.Use(LoggingMiddleware())

	// Error recovery
	s.router.Use(gin.Recovery())
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/register", s.handleRegister)

		clients := v1.Group("/clients")
		{
			clients.GET("", s.handleListClients)
			clients.GET("/:name/publickey", s.handlePublicKey)
		}

		keys := v1.Group("/keys")
		{
			keys.POST("/:name", s.handleSendKey)
			keys.POST("/:name/request", s.handleRequestKey)
		}

		messages := v1.Group("/messages")
		{
			messages.GET("", s.handleFetchMessages)
			messages.POST("/:name", s.handleSendMessage)
		}

		history := v1.Group("/history")
		{
			history.GET("", s.handleConversations)
			history.GET("/:name", s.handleHistory)
			history.DELETE("/:name", s.handleClearHistory)
		}
	}

	// Health check endpoint (outside versioning)
	s.router.GET("/health", s.handleHealth)
}

// Handler returns the HTTP handler, for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		log.Printf("🌐 HTTP API listening on %s", s.listenAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down HTTP API server...")
	return s.Stop()
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.limiter != nil {
		s.limiter.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
