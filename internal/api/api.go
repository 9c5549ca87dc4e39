package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glefebvre/cinevo/internal/catalog"
	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/database"
	"github.com/glefebvre/cinevo/internal/links"
	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/subtitle"
)

// SubtitleLoader loads a subtitle track for a title
type SubtitleLoader interface {
	Load(ctx context.Context, externalID, title, lang string) (*subtitle.Track, error)
}

// Deps are the services the API serves. Subtitles and Prober are optional.
type Deps struct {
	Catalog   *catalog.Service
	Links     *links.Builder
	Subtitles SubtitleLoader
	Prober    *links.Prober
	Health    func() error
}

// Server represents the API server
type Server struct {
	router     *gin.Engine
	mu         sync.Mutex
	httpServer *http.Server
	cfg        *config.Config
	catalog    *catalog.Service
	links      *links.Builder
	subtitles  SubtitleLoader
	prober     *links.Prober
	health     func() error
	logger     *logger.Logger
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, deps Deps) *Server {
	router := gin.New()

	s := &Server{
		router:    router,
		cfg:       cfg,
		catalog:   deps.Catalog,
		links:     deps.Links,
		subtitles: deps.Subtitles,
		prober:    deps.Prober,
		health:    deps.Health,
		logger:    logger.AppLogger(),
	}
	if s.links == nil {
		s.links = links.NewBuilder(cfg.EnabledSources())
	}
	if s.health == nil {
		s.health = database.HealthCheck
	}

	router.Use(errorHandlerMiddleware(s.logger))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(s.logger))
	router.Use(cors.New(corsConfig(cfg.API.CORSOrigins)))

	s.setupRoutes()

	return s
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the API server on the specified port and blocks until it stops
func (s *Server) Run(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.WithFields(map[string]interface{}{"port": port}).Info("starting API server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		// Catalog
		v1.GET("/home", s.home)
		v1.GET("/movies", s.movies)
		v1.GET("/tv", s.tv)
		v1.GET("/trending", s.trending)
		v1.GET("/search", s.search)
		v1.GET("/details/:kind/:id", s.details)

		// Favorites
		v1.GET("/favorites", s.listFavorites)
		v1.POST("/favorites/toggle", s.toggleFavorite)

		// Watch history
		v1.GET("/history", s.listHistory)
		v1.POST("/history", s.recordHistory)
		v1.DELETE("/history", s.clearHistory)

		// Subtitles
		v1.GET("/subtitles/languages", s.subtitleLanguages)
		v1.GET("/subtitles/:externalId", s.subtitleTrack)
		v1.GET("/subtitles/:externalId/download", s.downloadSubtitle)

		// Streaming links
		v1.GET("/links/:externalId", s.streamingLinks)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-Request-ID")
	cfg.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	return cfg
}
