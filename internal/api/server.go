package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printfarm/dashboard-server/internal/broker"
	"github.com/printfarm/dashboard-server/internal/config"
	"github.com/printfarm/dashboard-server/internal/printer"
)

// Server serves the dashboard: the JSON API, the browser push socket and
// the embedded UI page.
type Server struct {
	cfg      *config.Config
	registry *printer.Registry
	manager  *broker.Manager
	hub      *Hub
	activity *ActivityBuffer
	engine   *gin.Engine
}

// NewServer creates the HTTP server and wires its routes.
func NewServer(cfg *config.Config, reg *printer.Registry, mgr *broker.Manager, hub *Hub, activity *ActivityBuffer) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		registry: reg,
		manager:  mgr,
		hub:      hub,
		activity: activity,
		engine:   gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(RequestIDMiddleware())
	s.engine.Use(CORSMiddleware(&cfg.CORS))

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)

	s.engine.GET("/api/printers", s.handleListPrinters)
	s.engine.POST("/api/printers/:id/status", s.handleOverride)
	s.engine.POST("/api/update", s.handleUpdate)
	s.engine.GET("/api/activity", s.handleActivity)

	s.engine.GET("/ws", s.handleDashboardSocket)
	s.engine.GET("/", s.handleUI)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	return s.engine.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleListPrinters returns the full ordered fleet with derived counts
// and the current broker connectivity.
func (s *Server) handleListPrinters(c *gin.Context) {
	snap := s.registry.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"printers":      snap.Printers,
		"active_count":  snap.ActiveCount,
		"stopped_count": snap.StoppedCount,
		"connection":    s.manager.Status(),
	})
}

// OverrideRequest is the manual override body: a status and/or distance
// injected directly, e.g. from an operator console.
type OverrideRequest struct {
	Status   string   `json:"status"`
	Distance *float64 `json:"distance"`
}

// handleOverride applies a manual reading through the same normalization
// pipeline as broker data.
func (s *Server) handleOverride(c *gin.Context) {
	id := c.Param("id")

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	fields := map[string]any{}
	if req.Status != "" {
		fields["status"] = req.Status
	}
	if req.Distance != nil {
		fields["distance"] = *req.Distance
	}

	if !s.registry.Upsert(id, printer.NormalizeValue(fields)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown printer: " + id})
		return
	}

	s.activity.Add(id, "manual override applied")

	p, _ := s.registry.Get(id)
	c.JSON(http.StatusOK, p)
}

// UpdateEnvelope is the cross-context update message: the same body
// shape the polling endpoint returns, wrapped with a type tag.
type UpdateEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handleUpdate accepts a pushed printer-update envelope and routes it
// through the polling-response handler.
func (s *Server) handleUpdate(c *gin.Context) {
	var env UpdateEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if env.Type != "printer-update" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported message type: " + env.Type})
		return
	}

	updated := broker.ApplySnapshot(env.Data, s.registry)
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (s *Server) handleActivity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": s.activity.Entries()})
}

func (s *Server) handleDashboardSocket(c *gin.Context) {
	s.hub.Serve(c.Writer, c.Request)
}

// handleUI serves the embedded dashboard page
func (s *Server) handleUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardUI))
}
