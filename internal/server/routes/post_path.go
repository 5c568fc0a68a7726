package routes

import (
	"net/http"
	"strconv"

	"github.com/vocal-lineage/backend/pkg/pathfind"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// FindPathHandler returns the shortest lineage path between two people.
func FindPathHandler(c echo.Context) error {
	type findPathBody struct {
		From    string `json:"from" validate:"required"`
		To      string `json:"to" validate:"required"`
		MaxHops *int   `json:"maxHops" validate:"omitempty,min=1,max=12"`
	}

	data := new(findPathBody)
	if err := bind(c, data); err != nil {
		return invalidBody(c)
	}

	hops := pathfind.DefaultMaxHops
	if data.MaxHops != nil {
		hops = *data.MaxHops
	}

	payload, err := app(c).Resolver.FindPathPayload(c.Request().Context(), data.From, data.To, hops)
	audit(c, "path", map[string]string{"from": data.From, "to": data.To, "hops": strconv.Itoa(hops)})
	if err != nil {
		return fail(c, err)
	}

	return c.JSONBlob(http.StatusOK, payload)
}
