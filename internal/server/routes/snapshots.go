package routes

import (
	"encoding/json"
	"net/http"

	"github.com/vocal-lineage/backend/internal/server/middleware"
	"github.com/vocal-lineage/backend/pkg/snapshot"

	"github.com/labstack/echo/v4"
)

// CreateSnapshotHandler stores a canvas for the current user.
func CreateSnapshotHandler(c echo.Context) error {
	type createSnapshotBody struct {
		Name    string          `json:"name" validate:"required,max=200"`
		Payload json.RawMessage `json:"payload" validate:"required"`
	}

	type createSnapshotResponse struct {
		ID string `json:"id"`
	}

	data := new(createSnapshotBody)
	if err := bind(c, data); err != nil {
		return invalidBody(c)
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	snap, err := snapshot.New(user.UserID, data.Name, data.Payload)
	if err != nil {
		return fail(c, err)
	}
	if err := app(c).Snapshots.Save(c.Request().Context(), snap); err != nil {
		return fail(c, err)
	}

	audit(c, "snapshot.create", map[string]string{"id": snap.ID, "name": snap.Name})
	return c.JSON(http.StatusOK, createSnapshotResponse{ID: snap.ID})
}

// GetSnapshotHandler returns one snapshot of the current user.
func GetSnapshotHandler(c echo.Context) error {
	type getSnapshotParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(getSnapshotParams)
	if err := bind(c, params); err != nil {
		return invalidBody(c)
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	snap, err := app(c).Snapshots.Get(c.Request().Context(), user.UserID, params.ID)
	if err != nil {
		return fail(c, err)
	}

	audit(c, "snapshot.view", map[string]string{"id": snap.ID})
	return c.JSON(http.StatusOK, snap)
}
