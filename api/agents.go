package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ledgerfoundry/ledgergate/directory"
	"github.com/ledgerfoundry/ledgergate/domain"
)

// CreateAgentRequest is the request to create a ledger agent.
type CreateAgentRequest struct {
	LedgerNodeID        string          `json:"ledger_node_id,omitempty"`
	LedgerConfiguration json.RawMessage `json:"ledger_configuration,omitempty"`
	Owner               string          `json:"owner"`
	Public              bool            `json:"public"`
	Plugins             []string        `json:"plugins,omitempty"`
	Name                string          `json:"name,omitempty"`
	Description         string          `json:"description,omitempty"`
}

// CreateAgent creates a new ledger agent.
// POST /ledger-agents
func (h *Handler) CreateAgent(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateAgentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	view, err := h.dir.Create(ctx, actor(c), directory.CreateOptions{
		LedgerNodeID: req.LedgerNodeID,
		LedgerConfig: req.LedgerConfiguration,
		Owner:        req.Owner,
		Public:       req.Public,
		Plugins:      req.Plugins,
		Name:         req.Name,
		Description:  req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, view)
}

// GetAgent returns the agent view, including its service map.
// GET /ledger-agents/:agent_id
func (h *Handler) GetAgent(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.dir.Get(ctx, actor(c), c.Param("agent_id"), getOptions(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

// RemoveAgent logically deletes an agent.
// DELETE /ledger-agents/:agent_id?owner=...
func (h *Handler) RemoveAgent(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.dir.Remove(ctx, actor(c), c.Param("agent_id"), c.QueryParam("owner")); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListAgents enumerates agents matching the owner/public filter. The
// enumeration re-authorizes every item; the first denied or missing
// item fails the whole request.
// GET /ledger-agents?owner=...&public=...
func (h *Handler) ListAgents(c echo.Context) error {
	ctx := c.Request().Context()

	filter := directory.Filter{
		Owners: c.QueryParams()["owner"],
	}
	if raw := c.QueryParam("public"); raw != "" {
		public, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "public must be a boolean"})
		}
		filter.Public = &public
	}

	views := []*domain.AgentView{}
	it := h.dir.Enumerate(actor(c), filter)
	for it.Next(ctx) {
		views = append(views, it.View())
	}
	if err := it.Err(); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ledger_agents": views,
	})
}

func getOptions(c echo.Context) directory.GetOptions {
	opts := directory.GetOptions{Owner: c.QueryParam("owner")}
	if raw := c.QueryParam("public"); raw != "" {
		if public, err := strconv.ParseBool(raw); err == nil {
			opts.Public = &public
		}
	}
	return opts
}
