package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/graph"
	"github.com/vocal-lineage/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// parseDomain reads the kind of the subject. Blank means person.
func parseDomain(s string) (common.EntityKind, error) {
	if strings.TrimSpace(s) == "" {
		return common.KindPerson, nil
	}
	kind, ok := common.ParseEntityKind(s)
	if !ok {
		return "", fmt.Errorf("unknown domain %q: %w", s, common.ErrInvalidInput)
	}
	return kind, nil
}

// NeighborhoodHandler returns everything directly related to a subject
// together with the assembled graph of it.
func NeighborhoodHandler(c echo.Context) error {
	type neighborhoodBody struct {
		SubjectName string `json:"subjectName" validate:"required"`
		Depth       int    `json:"depth" validate:"omitempty,oneof=1 2"`
		Domain      string `json:"domain"`
	}

	type neighborhoodResponse struct {
		*common.Neighborhood
		Graph graph.Graph `json:"graph"`
	}

	data := new(neighborhoodBody)
	if err := bind(c, data); err != nil {
		return invalidBody(c)
	}
	if data.Depth == 0 {
		data.Depth = 1
	}

	kind, err := parseDomain(data.Domain)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	s := app(c).Store
	audit(c, "neighborhood", map[string]string{
		"subject": data.SubjectName,
		"domain":  string(kind),
		"depth":   strconv.Itoa(data.Depth),
	})

	center, err := store.Lookup(ctx, s, kind, data.SubjectName)
	if err != nil {
		return fail(c, err)
	}
	n, err := s.Neighborhood(ctx, center, data.Depth)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, neighborhoodResponse{
		Neighborhood: n,
		Graph:        graph.Assemble(n, center.Name, kind),
	})
}

// ExpandNeighborhoodHandler merges the neighborhood of a subject into a
// graph the client already holds and returns only what is new.
func ExpandNeighborhoodHandler(c echo.Context) error {
	type expandBody struct {
		Graph        graph.Graph `json:"graph"`
		SubjectName  string      `json:"subjectName" validate:"required"`
		Domain       string      `json:"domain"`
		Relationship string      `json:"relationship"`
	}

	data := new(expandBody)
	if err := bind(c, data); err != nil {
		return invalidBody(c)
	}

	kind, err := parseDomain(data.Domain)
	if err != nil {
		return fail(c, err)
	}
	filter, err := graph.ParseFilter(data.Relationship)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	s := app(c).Store
	audit(c, "expand", map[string]string{
		"subject":      data.SubjectName,
		"domain":       string(kind),
		"relationship": data.Relationship,
	})

	subject, err := store.Lookup(ctx, s, kind, data.SubjectName)
	if err != nil {
		return fail(c, err)
	}
	n, err := s.Neighborhood(ctx, subject, 1)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, graph.Merge(data.Graph, n, subject, filter))
}
