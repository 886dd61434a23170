package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ConnectionTester performs a live reachability check against an instance
// using its decrypted credential.
type ConnectionTester func(ctx context.Context, instance *Instance) error

// Handlers provides HTTP handlers for service instance administration.
type Handlers struct {
	directory *Directory
	tester    ConnectionTester
}

// NewHandlers creates new service instance handlers.
func NewHandlers(directory *Directory, tester ConnectionTester) *Handlers {
	return &Handlers{directory: directory, tester: tester}
}

// RegisterRoutes registers the service instance routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/test", h.Test)
}

// instanceResponse is the JSON shape for a service instance. API keys are
// never returned.
type instanceResponse struct {
	ID        int64    `json:"id"`
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	BaseURL   string   `json:"baseUrl"`
	Settings  Settings `json:"settings"`
	IsDefault bool     `json:"isDefault"`
}

func toResponse(inst *Instance) instanceResponse {
	return instanceResponse{
		ID:        inst.ID,
		Type:      inst.Type,
		Name:      inst.Name,
		BaseURL:   inst.BaseURL,
		Settings:  inst.Settings,
		IsDefault: inst.IsDefault,
	}
}

// List returns all configured service instances.
// GET /api/v1/services
func (h *Handlers) List(c echo.Context) error {
	instances, err := h.directory.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]instanceResponse, 0, len(instances))
	for _, inst := range instances {
		out = append(out, toResponse(inst))
	}
	return c.JSON(http.StatusOK, out)
}

// Create registers a new service instance.
// POST /api/v1/services
func (h *Handlers) Create(c echo.Context) error {
	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if input.BaseURL == "" || input.APIKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "baseUrl and apiKey are required")
	}

	inst, err := h.directory.Create(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown service type")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toResponse(inst))
}

// Update replaces an instance's configuration.
// PUT /api/v1/services/:id
func (h *Handlers) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	inst, err := h.directory.Update(c.Request().Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrInstanceMissing):
			return echo.NewHTTPError(http.StatusNotFound, "service instance not found")
		case errors.Is(err, ErrUnknownType):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown service type")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, toResponse(inst))
}

// testResponse reports the outcome of a connection test.
type testResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Test checks that an instance is reachable with its stored credential.
// POST /api/v1/services/:id/test
func (h *Handlers) Test(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	if h.tester == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "connection testing is not available")
	}

	inst, err := h.directory.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrInstanceMissing) {
			return echo.NewHTTPError(http.StatusNotFound, "service instance not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.tester(c.Request().Context(), inst); err != nil {
		return c.JSON(http.StatusOK, testResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, testResponse{Success: true})
}

// Delete removes a service instance.
// DELETE /api/v1/services/:id
func (h *Handlers) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	if err := h.directory.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrInstanceMissing) {
			return echo.NewHTTPError(http.StatusNotFound, "service instance not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
