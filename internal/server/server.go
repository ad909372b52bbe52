package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vjc2026/EmissionSense/internal/catalog"
	"github.com/vjc2026/EmissionSense/internal/lifecycle"
	"github.com/vjc2026/EmissionSense/internal/models"
	"github.com/vjc2026/EmissionSense/internal/storage/sqlite"
)

// Server provides HTTP handlers for the emission tracking backend.
type Server struct {
	engine   *gin.Engine
	store    *sqlite.Store
	manager  *lifecycle.Manager
	resolver *catalog.Resolver
	logger   *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, manager *lifecycle.Manager, resolver *catalog.Resolver, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:   router,
		store:    store,
		manager:  manager,
		resolver: resolver,
		logger:   logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		api.POST("/users", s.handleCreateUser)

		authed := api.Group("", s.requireUser)
		{
			authed.GET("/users/me/device", s.handleDeviceProfile)

			projects := authed.Group("/projects")
			{
				projects.GET("", s.handleListProjects)
				projects.GET("/history", s.handleProjectHistory)
				projects.POST("", s.handleCreateProject)
				projects.GET("/find", s.handleFindProject)
				projects.GET("/check-name", s.handleCheckName)
				projects.POST(":id/complete", s.handleAdvanceStage)
				projects.DELETE(":id", s.handleDeleteProject)
			}

			sessions := authed.Group("/sessions")
			{
				sessions.POST("/start", s.handleStartSession)
				sessions.POST("/stop", s.handleStopSession)
				sessions.POST("/emissions", s.handleCalculateEmissions)
			}

			authed.GET("/organizations/:name/projects", s.handleOrganizationProjects)
		}

		catalog := api.Group("/catalog")
		{
			catalog.GET("/desktop/cpus", s.handleDesktopCPUs)
			catalog.GET("/desktop/gpus", s.handleDesktopGPUs)
			catalog.GET("/mobile/cpus", s.handleMobileCPUs)
			catalog.GET("/mobile/gpus", s.handleMobileGPUs)
			catalog.GET("/ram", s.handleRAMOptions)
			catalog.GET("/watts", s.handleWattsLookup)
		}
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const userIDKey = "userID"

// requireUser resolves the calling user from the X-User-ID header. Token
// verification happens upstream; by the time a request reaches this service
// the header carries a trusted identifier.
func (s *Server) requireUser(c *gin.Context) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid X-User-ID header"})
		return
	}
	c.Set(userIDKey, uint(id))
	c.Next()
}

// currentUser returns the user id installed by requireUser.
func currentUser(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

// parseID converts a path parameter to uint with error handling.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return uint(id), true
}

// respondError logs the error and returns a JSON payload with a status
// derived from the error's kind.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrNoMatchingProject),
		errors.Is(err, models.ErrComponentNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondBadRequest returns a 400 with the given error.
func (s *Server) respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
