package routes

import (
	"errors"
	"net/http"

	"github.com/vocal-lineage/backend/internal/queue"
	"github.com/vocal-lineage/backend/internal/server/middleware"
	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// bind decodes and validates the request body into data.
func bind(c echo.Context, data any) error {
	if err := c.Bind(data); err != nil {
		return err
	}
	return c.Validate(data)
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
}

// fail translates a domain error into a JSON error response. Store
// failures are reported generically since they are worth retrying.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrStore):
		logger.Error("[HTTP] Graph store failure", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Graph store unavailable, please retry"})
	case errors.Is(err, common.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		logger.Error("[HTTP] Request failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

func app(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

// audit records the action of the current user. Publishing failures never
// fail the request.
func audit(c echo.Context, action string, attrs map[string]string) {
	a := app(c)
	if a.Audit == nil {
		return
	}
	actor, role := "", ""
	if user := middleware.CurrentUser(c); user != nil {
		actor, role = user.UserID, user.Role
	}
	event := queue.NewEvent(actor, role, action, attrs)
	if err := a.Audit.Publish(c.Request().Context(), event); err != nil {
		logger.Warn("[Audit] Failed to publish event", "action", action, "err", err)
	}
}
