// Package api exposes a read-only HTTP view of the detection pipeline:
// recent pattern events, current candle windows, and runtime stats.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"candlescan/internal/engine"
	"candlescan/internal/feed"
)

// Config holds API server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
}

// Server serves the read-only API. It never mutates engine state.
type Server struct {
	engine *engine.Engine
	subs   *feed.SubscriptionManager
	stream *feed.Stream
	logger zerolog.Logger
	http   *http.Server
}

// NewServer creates the API server around a running engine and feed.
func NewServer(cfg Config, eng *engine.Engine, subs *feed.SubscriptionManager, stream *feed.Stream, logger zerolog.Logger) *Server {
	s := &Server{
		engine: eng,
		subs:   subs,
		stream: stream,
		logger: logger.With().Str("component", "api").Logger(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/patterns", s.handlePatterns)
		v1.GET("/candles", s.handleCandles)
		v1.GET("/series", s.handleSeries)
		v1.GET("/stats", s.handleStats)
	}

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("api server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("api server stopped")
		}
	}()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
