package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-tracker/internal/repository"
)

// WorkoutHandler exposes /api/workouts.
type WorkoutHandler struct {
	Workouts *repository.WorkoutRepo
}

func NewWorkoutHandler(workouts *repository.WorkoutRepo) *WorkoutHandler {
	if workouts == nil {
		panic("nil repository passed to NewWorkoutHandler")
	}
	return &WorkoutHandler{Workouts: workouts}
}

func (h *WorkoutHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.Workouts.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *WorkoutHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Workouts.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) Create(c echo.Context) error {
	var req repository.WorkoutInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Workouts.Create(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *WorkoutHandler) Update(c echo.Context) error {
	var req repository.WorkoutPatch
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Workouts.Update(ctx, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Workouts.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
