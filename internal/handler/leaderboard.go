package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-tracker/internal/model"
	"github.com/iliyamo/fitness-tracker/internal/repository"
)

// LeaderboardHandler exposes /api/leaderboard.
type LeaderboardHandler struct {
	Leaderboard *repository.LeaderboardRepo
}

func NewLeaderboardHandler(lb *repository.LeaderboardRepo) *LeaderboardHandler {
	if lb == nil {
		panic("nil repository passed to NewLeaderboardHandler")
	}
	return &LeaderboardHandler{Leaderboard: lb}
}

// List handles GET /api/leaderboard, optionally narrowed by ?user_id=.
func (h *LeaderboardHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var (
		items []model.Leaderboard
		err   error
	)
	if uid := c.QueryParam("user_id"); uid != "" {
		items, err = h.Leaderboard.ListByUser(ctx, uid)
	} else {
		items, err = h.Leaderboard.List(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *LeaderboardHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	e, err := h.Leaderboard.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *LeaderboardHandler) Create(c echo.Context) error {
	var req repository.LeaderboardInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	e, err := h.Leaderboard.Create(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *LeaderboardHandler) Update(c echo.Context) error {
	var req repository.LeaderboardPatch
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	e, err := h.Leaderboard.Update(ctx, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *LeaderboardHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Leaderboard.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
