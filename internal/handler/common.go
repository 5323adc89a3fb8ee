package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-tracker/internal/repository"
)

// requestTimeout bounds every store round trip a handler makes.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// respondError translates repository failures into status codes and a JSON
// body of the form {"error": "..."}. Storage failures are logged and hidden
// behind a generic message.
func respondError(c echo.Context, err error) error {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		body := echo.Map{"error": verr.Reason}
		if verr.Field != "" {
			body["error"] = verr.Field + " " + verr.Reason
			body["field"] = verr.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicateEmail):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out"})
	}
	log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// invalidBody is the response for payloads that do not decode, including
// values of the wrong JSON type.
func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
}
