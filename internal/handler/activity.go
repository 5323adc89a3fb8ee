package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-tracker/internal/model"
	"github.com/iliyamo/fitness-tracker/internal/repository"
)

// ActivityHandler exposes /api/activities.
type ActivityHandler struct {
	Activities *repository.ActivityRepo
}

func NewActivityHandler(activities *repository.ActivityRepo) *ActivityHandler {
	if activities == nil {
		panic("nil repository passed to NewActivityHandler")
	}
	return &ActivityHandler{Activities: activities}
}

// List handles GET /api/activities, optionally narrowed by ?user_id=.
func (h *ActivityHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var (
		items []model.Activity
		err   error
	)
	if uid := c.QueryParam("user_id"); uid != "" {
		items, err = h.Activities.ListByUser(ctx, uid)
	} else {
		items, err = h.Activities.List(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ActivityHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.Activities.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Create handles POST /api/activities. user_id must name an existing user.
func (h *ActivityHandler) Create(c echo.Context) error {
	var req repository.ActivityInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.Activities.Create(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// Update handles PUT and PATCH /api/activities/:id. The owning user is
// fixed at creation; a user_id in the body is ignored.
func (h *ActivityHandler) Update(c echo.Context) error {
	var req repository.ActivityPatch
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.Activities.Update(ctx, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ActivityHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Activities.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
