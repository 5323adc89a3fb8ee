package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// APIRootHandler serves the discovery document listing every collection.
type APIRootHandler struct {
	// PublicBaseURL is the configured public address without a trailing
	// slash. When empty the address is derived from each request.
	PublicBaseURL string
	// Prefix is the path the collections are mounted under, e.g. "/api".
	Prefix string
}

func NewAPIRootHandler(publicBaseURL, prefix string) *APIRootHandler {
	return &APIRootHandler{PublicBaseURL: strings.TrimRight(publicBaseURL, "/"), Prefix: prefix}
}

// Root handles GET /api.
func (h *APIRootHandler) Root(c echo.Context) error {
	base := h.PublicBaseURL
	if base == "" {
		base = c.Scheme() + "://" + c.Request().Host
	}
	base += h.Prefix + "/"
	return c.JSON(http.StatusOK, echo.Map{
		"users":       base + "users/",
		"teams":       base + "teams/",
		"activities":  base + "activities/",
		"leaderboard": base + "leaderboard/",
		"workouts":    base + "workouts/",
	})
}
