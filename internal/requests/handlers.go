package requests

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for request operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new request handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the request routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/deny", h.Deny)
}

// CreateRequestBody is the JSON body for creating a request.
type CreateRequestBody struct {
	RequestType     string `json:"requestType"`
	ExternalMediaID int64  `json:"externalMediaId"`
	Title           string `json:"title"`
	RequestedBy     int64  `json:"requestedBy"`
	Items           []struct {
		Provider string `json:"provider"`
		Season   *int64 `json:"season,omitempty"`
		Episode  *int64 `json:"episode,omitempty"`
	} `json:"items"`
}

// List returns requests, optionally filtered by status or user.
// GET /api/v1/requests?status=pending&user=3
func (h *Handlers) List(c echo.Context) error {
	var status *string
	if v := c.QueryParam("status"); v != "" {
		if !IsValidStatus(v) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
		}
		status = &v
	}
	var userID *int64
	if v := c.QueryParam("user"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
		}
		userID = &id
	}

	list, err := h.service.List(c.Request().Context(), status, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// Create stores a new request.
// POST /api/v1/requests
func (h *Handlers) Create(c echo.Context) error {
	var body CreateRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if body.ExternalMediaID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "externalMediaId is required")
	}

	input := &CreateInput{
		RequestType:     body.RequestType,
		ExternalMediaID: body.ExternalMediaID,
		Title:           body.Title,
	}
	for _, item := range body.Items {
		input.Items = append(input.Items, ItemInput{
			Provider: item.Provider,
			Season:   item.Season,
			Episode:  item.Episode,
		})
	}

	req, err := h.service.Create(c.Request().Context(), body.RequestedBy, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRequested):
			return echo.NewHTTPError(http.StatusConflict, "already requested")
		case errors.Is(err, ErrInvalidType), errors.Is(err, ErrNoItems), errors.Is(err, ErrInvalidStatus):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, req)
}

// Get returns a single request with its items.
// GET /api/v1/requests/:id
func (h *Handlers) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

// Approve moves a pending request to submitted.
// POST /api/v1/requests/:id/approve
func (h *Handlers) Approve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Approve(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

// DenyBody is the JSON body for denying a request.
type DenyBody struct {
	Reason *string `json:"reason,omitempty"`
}

// Deny marks a request denied.
// POST /api/v1/requests/:id/deny
func (h *Handlers) Deny(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body DenyBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req, err := h.service.Deny(c.Request().Context(), id, body.Reason)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

// Delete removes a request and its items.
// DELETE /api/v1/requests/:id
func (h *Handlers) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid request id")
	}
	return id, nil
}
