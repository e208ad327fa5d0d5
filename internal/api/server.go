package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
	"github.com/nickjlamb/biomarkerfinder/internal/middleware"
	"github.com/nickjlamb/biomarkerfinder/internal/service"
)

// Server represents the HTTP server.
type Server struct {
	logger     *logrus.Logger
	serverCfg  domain.ServerConfig
	biomarkers *service.BiomarkerService
	resolver   *service.RelationshipResolver
	crossref   *service.CrossReferencer
	platform   domain.PlatformAPI
	router     *gin.Engine
	server     *http.Server
}

// NewServer creates a new HTTP server instance.
func NewServer(
	logger *logrus.Logger,
	cfg domain.ServerConfig,
	biomarkers *service.BiomarkerService,
	resolver *service.RelationshipResolver,
	crossref *service.CrossReferencer,
	platform domain.PlatformAPI,
) *Server {
	if logger.GetLevel() != logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	s := &Server{
		logger:     logger,
		serverCfg:  cfg,
		biomarkers: biomarkers,
		resolver:   resolver,
		crossref:   crossref,
		platform:   platform,
		router:     router,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/getBiomarkers", s.handleGetBiomarkers)
	s.router.POST("/knownDrugs", s.handleKnownDrugs)
	s.router.POST("/siblings", s.handleSiblings)
	s.router.POST("/actionability", s.handleActionability)
	s.router.POST("/drugWarning", s.handleDrugWarning)
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.serverCfg.Host, s.serverCfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.serverCfg.ReadTimeout,
		WriteTimeout: s.serverCfg.WriteTimeout,
		IdleTimeout:  s.serverCfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}
