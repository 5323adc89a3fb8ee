package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-tracker/internal/repository"
)

// TeamHandler exposes /api/teams. Requests name members through the
// write-only member_ids list; responses carry the expanded members.
type TeamHandler struct {
	Teams *repository.TeamRepo
}

func NewTeamHandler(teams *repository.TeamRepo) *TeamHandler {
	if teams == nil {
		panic("nil repository passed to NewTeamHandler")
	}
	return &TeamHandler{Teams: teams}
}

func (h *TeamHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	teams, err := h.Teams.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.Teams.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Create handles POST /api/teams. Unknown member ids are dropped silently.
func (h *TeamHandler) Create(c echo.Context) error {
	var req repository.TeamInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.Teams.Create(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT and PATCH /api/teams/:id. Sending member_ids, even as
// an empty list, replaces the whole membership; omitting it keeps it.
func (h *TeamHandler) Update(c echo.Context) error {
	var req repository.TeamPatch
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.Teams.Update(ctx, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TeamHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Teams.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
