// Package http provides HTTP handlers for the PromptDeck backend API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/backend/internal/api/ws"
	"github.com/promptdeck/promptdeck/backend/internal/git"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/monitoring"
	"github.com/promptdeck/promptdeck/backend/internal/mcp"
	"github.com/promptdeck/promptdeck/backend/internal/tasks"
	"github.com/promptdeck/promptdeck/backend/internal/terminal"
)

// Handlers holds references to all subsystems the API exposes.
type Handlers struct {
	mux      *terminal.Multiplexer
	git      *git.Service
	store    *tasks.Store
	launcher *mcp.Launcher
	hub      *ws.Hub
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// NewHandlers creates handlers wired to the backend subsystems.
func NewHandlers(
	mux *terminal.Multiplexer,
	gitSvc *git.Service,
	store *tasks.Store,
	launcher *mcp.Launcher,
	hub *ws.Hub,
	metrics *monitoring.Metrics,
	log *logging.Logger,
) *Handlers {
	return &Handlers{
		mux:      mux,
		git:      gitSvc,
		store:    store,
		launcher: launcher,
		hub:      hub,
		metrics:  metrics,
		log:      log,
	}
}

// Root handles the root endpoint
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "PromptDeck Backend",
		"version": "0.1.0",
	})
}

// Health handles health check requests
func (h *Handlers) Health(c *gin.Context) {
	snap := h.metrics.GetSnapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": h.mux.Count(),
		"clients":  h.hub.ClientCount(),
		"mcp": gin.H{
			"running": h.launcher.Status().Running,
		},
		"stats": gin.H{
			"totalRequests":     snap.TotalRequests,
			"totalErrors":       snap.TotalErrors,
			"avgRequestSeconds": h.metrics.AverageDuration(),
		},
	})
}
