package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerfoundry/ledgergate/directory"
	"github.com/ledgerfoundry/ledgergate/domain"
	"github.com/ledgerfoundry/ledgergate/ledger"
	"github.com/ledgerfoundry/ledgergate/plugin"
)

// resolve authorizes access to the agent and returns its live node
// handle. All per-agent endpoints go through this, so every access runs
// the ownership/visibility check.
func (h *Handler) resolve(c echo.Context) (*domain.AgentView, ledger.NodeHandle, error) {
	return h.dir.Resolve(c.Request().Context(), actor(c), c.Param("agent_id"), directory.GetOptions{})
}

// GetLedgerConfig returns the ledger configuration of the agent's node.
// GET /ledger-agents/:agent_id/config
func (h *Handler) GetLedgerConfig(c echo.Context) error {
	_, node, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	config, err := node.Config(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSONBlob(http.StatusOK, config)
}

// SubmitOperation submits an operation to the agent's node.
// POST /ledger-agents/:agent_id/operations
func (h *Handler) SubmitOperation(c echo.Context) error {
	_, node, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	op, err := io.ReadAll(c.Request().Body)
	if err != nil || len(op) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "operation body is required"})
	}

	eventID, err := node.SubmitOperation(c.Request().Context(), op)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"event_id": eventID})
}

// GetEvent retrieves a ledger event.
// GET /ledger-agents/:agent_id/events/:event_id
func (h *Handler) GetEvent(c echo.Context) error {
	_, node, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	event, err := node.Event(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSONBlob(http.StatusOK, event)
}

// GetBlock retrieves a ledger block.
// GET /ledger-agents/:agent_id/blocks/:block_id
func (h *Handler) GetBlock(c echo.Context) error {
	_, node, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	block, err := node.Block(c.Request().Context(), c.Param("block_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSONBlob(http.StatusOK, block)
}

// QueryRecords queries current record state by type.
// GET /ledger-agents/:agent_id/query?type=...
func (h *Handler) QueryRecords(c echo.Context) error {
	recordType := c.QueryParam("type")
	if recordType == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type is required"})
	}

	_, node, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	records, err := node.QueryRecords(c.Request().Context(), recordType)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": records,
	})
}

// DispatchPlugin routes the request into the plugin's own router,
// rewritten to the path below the plugin mount. The plugin must be one
// associated with the agent at creation time.
// ANY /ledger-agents/:agent_id/plugins/:plugin/*
func (h *Handler) DispatchPlugin(c echo.Context) error {
	view, _, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	normalized := c.Param("plugin")
	var name string
	for _, pn := range view.Plugins {
		if plugin.NormalizeName(pn) == normalized {
			name = pn
			break
		}
	}
	if name == "" {
		return writeError(c, &domain.NotFoundError{Resource: "plugin", ID: normalized})
	}

	p, err := h.plugins.Resolve(name)
	if err != nil {
		return writeError(c, err)
	}

	req := c.Request().Clone(c.Request().Context())
	req.URL.Path = "/" + c.Param("*")
	req.URL.RawPath = ""
	p.Router().ServeHTTP(c.Response(), req)
	return nil
}
