// Package api provides HTTP handlers for the ledger agent service.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerfoundry/ledgergate/directory"
	"github.com/ledgerfoundry/ledgergate/plugin"
)

// Handler handles HTTP requests.
type Handler struct {
	dir     *directory.Directory
	plugins *plugin.Registry
}

// NewHandler creates a new handler.
func NewHandler(dir *directory.Directory, plugins *plugin.Registry) *Handler {
	return &Handler{
		dir:     dir,
		plugins: plugins,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Agent directory API
	e.POST("/ledger-agents", h.CreateAgent)
	e.GET("/ledger-agents", h.ListAgents)
	e.GET("/ledger-agents/:agent_id", h.GetAgent)
	e.DELETE("/ledger-agents/:agent_id", h.RemoveAgent)

	// Per-agent ledger node endpoints
	e.GET("/ledger-agents/:agent_id/config", h.GetLedgerConfig)
	e.POST("/ledger-agents/:agent_id/operations", h.SubmitOperation)
	e.GET("/ledger-agents/:agent_id/events/:event_id", h.GetEvent)
	e.GET("/ledger-agents/:agent_id/blocks/:block_id", h.GetBlock)
	e.GET("/ledger-agents/:agent_id/query", h.QueryRecords)

	// Plugin-contributed endpoints
	e.Any("/ledger-agents/:agent_id/plugins/:plugin", h.DispatchPlugin)
	e.Any("/ledger-agents/:agent_id/plugins/:plugin/*", h.DispatchPlugin)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
