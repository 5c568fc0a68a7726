package routes

import (
	"fmt"
	"net/http"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/counts"

	"github.com/labstack/echo/v4"
)

// CountsHandler returns the relationship counts of one node.
func CountsHandler(c echo.Context) error {
	type countsBody struct {
		NodeType string `json:"nodeType" validate:"required"`
		NodeName string `json:"nodeName" validate:"required"`
	}

	type countsResponse struct {
		Node   common.Entity  `json:"node"`
		Counts *counts.Counts `json:"counts"`
	}

	data := new(countsBody)
	if err := bind(c, data); err != nil {
		return invalidBody(c)
	}

	kind, ok := common.ParseEntityKind(data.NodeType)
	if !ok {
		return fail(c, fmt.Errorf("unknown node type %q: %w", data.NodeType, common.ErrInvalidInput))
	}

	audit(c, "counts", map[string]string{"type": string(kind), "name": data.NodeName})
	node, result, err := counts.Count(c.Request().Context(), app(c).Store, kind, data.NodeName)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, countsResponse{Node: node, Counts: result})
}
