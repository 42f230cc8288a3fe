package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerfoundry/ledgergate/domain"
)

// actor extracts the calling principal. Authentication middleware is
// expected to populate the header; an empty value is anonymous.
func actor(c echo.Context) string {
	return c.Request().Header.Get("X-Actor")
}

// writeError maps a directory error to a transport status code.
func writeError(c echo.Context, err error) error {
	var (
		denied   *domain.PermissionDeniedError
		notFound *domain.NotFoundError
		badPlug  *domain.InvalidPluginError
		dup      *domain.DuplicateAgentError
	)

	switch {
	case errors.Is(err, domain.ErrMissingOwner), errors.Is(err, domain.ErrNodeReference):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &badPlug):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":  err.Error(),
			"plugin": badPlug.Name,
		})
	case errors.As(err, &denied):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &dup):
		resp := map[string]string{"error": err.Error()}
		if dup.LedgerNodeID != "" {
			resp["ledger_node_id"] = dup.LedgerNodeID
		}
		return c.JSON(http.StatusConflict, resp)
	}

	log.Printf("ERROR: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
