package reconcile

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/requesterr/requesterr/internal/requests"
)

// Handlers provides HTTP handlers for sync operations.
type Handlers struct {
	engine *Engine
}

// NewHandlers creates new sync handlers.
func NewHandlers(engine *Engine) *Handlers {
	return &Handlers{engine: engine}
}

// RegisterRoutes registers the sync routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/sync", h.TriggerSync)
	g.GET("/sync/status", h.SyncStatus)
	g.POST("/requests/:id/sync", h.SyncRequest)
}

// TriggerSync runs one pass immediately.
// POST /api/v1/sync
func (h *Handlers) TriggerSync(c echo.Context) error {
	summary, err := h.engine.RunPass(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if summary.Skipped {
		return c.JSON(http.StatusConflict, summary)
	}
	return c.JSON(http.StatusOK, summary)
}

// SyncStatusResponse reports the most recent pass.
type SyncStatusResponse struct {
	LastPass    *PassSummary `json:"lastPass,omitempty"`
	LastPassAt  *time.Time   `json:"lastPassAt,omitempty"`
}

// SyncStatus returns the last completed pass summary.
// GET /api/v1/sync/status
func (h *Handlers) SyncStatus(c echo.Context) error {
	summary, at := h.engine.LastPass()
	resp := SyncStatusResponse{LastPass: summary}
	if !at.IsZero() {
		resp.LastPassAt = &at
	}
	return c.JSON(http.StatusOK, resp)
}

// SyncRequest reconciles a single request now.
// POST /api/v1/requests/:id/sync
func (h *Handlers) SyncRequest(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request id")
	}
	summary, err := h.engine.SyncRequest(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, requests.ErrRequestNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "request not found")
		case errors.Is(err, ErrPassInProgress):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, summary)
}
