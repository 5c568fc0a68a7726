package routes

import (
	"net/http"

	"github.com/vocal-lineage/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

// RetractHandler removes a node from a client graph.
func RetractHandler(c echo.Context) error {
	type retractBody struct {
		Graph  graph.Graph `json:"graph"`
		NodeID string      `json:"nodeId" validate:"required"`
		Mode   string      `json:"mode" validate:"required,oneof=isolate detach"`
	}

	data := new(retractBody)
	if err := bind(c, data); err != nil {
		return invalidBody(c)
	}

	mode, err := graph.ParseRetractMode(data.Mode)
	if err != nil {
		return fail(c, err)
	}
	g, err := graph.Retract(data.Graph, data.NodeID, mode)
	if err != nil {
		return fail(c, err)
	}

	audit(c, "retract", map[string]string{"node": data.NodeID, "mode": data.Mode})
	return c.JSON(http.StatusOK, g)
}
