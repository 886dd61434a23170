package indexer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/requesterr/requesterr/internal/services"
)

// Handlers provides HTTP handlers for manual indexer searches.
type Handlers struct {
	service *Service
}

// NewHandlers creates new indexer handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the indexer routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("", h.ListIndexers)
}

// Search runs a manual search.
// GET /api/v1/indexers/search?query=...&type=movie&limit=50
func (h *Handlers) Search(c echo.Context) error {
	input := SearchInput{
		Query:     c.QueryParam("query"),
		MediaType: c.QueryParam("type"),
	}
	if input.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		input.Limit = limit
	}

	releases, err := h.service.Search(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrNotConfigured) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "no indexer aggregator configured")
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, releases)
}

// ListIndexers returns the indexers configured on the aggregator.
// GET /api/v1/indexers
func (h *Handlers) ListIndexers(c echo.Context) error {
	indexers, err := h.service.ListIndexers(c.Request().Context())
	if err != nil {
		if errors.Is(err, services.ErrNotConfigured) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "no indexer aggregator configured")
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, indexers)
}
