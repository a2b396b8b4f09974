// HTTP processing backend
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pixel-filter-engine/internal/config"
	"pixel-filter-engine/internal/core"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg       config.ServerConfig
	processor *core.Processor
	logger    logrus.FieldLogger
	engine    *gin.Engine
}

func New(cfg config.ServerConfig, processor *core.Processor, logger logrus.FieldLogger) *Server {
	gin.SetMode(cfg.Mode)

	s := &Server{
		cfg:       cfg,
		processor: processor,
		logger:    logger,
		engine:    gin.New(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	server := s.engine
	server.Use(gin.Recovery())
	server.Use(requestID())
	server.Use(accessLog(s.logger))
	server.Use(cors.New(corsConfig(s.cfg.AllowedOrigins)))
	if s.cfg.RateLimit > 0 {
		server.Use(tokenBucketPerIP(s.cfg.RateLimit))
	}
	server.MaxMultipartMemory = s.cfg.MaxUploadBytes()

	api := server.Group("/api")
	api.GET("/", s.health)
	api.GET("/filters", s.listFilters)
	api.GET("/stats", s.stats)
	api.POST("/process-image", limitBody(s.cfg.MaxUploadBytes()), s.processImage)

	server.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			respondError(ctx, http.StatusNotFound, "API endpoint not found")
			return
		}
		respondError(ctx, http.StatusNotFound, fmt.Sprintf("%s %s does not exist", ctx.Request.Method, ctx.Request.URL))
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.cfg.Port).Info("Server starting")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
