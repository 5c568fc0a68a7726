package routes

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/names"

	"github.com/labstack/echo/v4"
)

const (
	minQueryLength     = 2
	defaultSearchLimit = 25
)

var searchKinds = []common.EntityKind{common.KindPerson, common.KindOpera, common.KindBook}

// SearchHandler ranks the entities matching a free-text query.
func SearchHandler(c echo.Context) error {
	type searchBody struct {
		Query    string `json:"query" validate:"required"`
		NodeType string `json:"nodeType"`
		Limit    int    `json:"limit" validate:"omitempty,min=1,max=100"`
	}

	type searchResponse struct {
		Results []common.Entity `json:"results"`
	}

	data := new(searchBody)
	if err := bind(c, data); err != nil {
		return invalidBody(c)
	}
	if data.Limit == 0 {
		data.Limit = defaultSearchLimit
	}

	if utf8.RuneCountInString(names.Normalize(data.Query)) < minQueryLength {
		return fail(c, fmt.Errorf("query must have at least %d characters: %w", minQueryLength, common.ErrInvalidInput))
	}

	kinds := searchKinds
	if strings.TrimSpace(data.NodeType) != "" {
		kind, ok := common.ParseEntityKind(data.NodeType)
		if !ok {
			return fail(c, fmt.Errorf("unknown node type %q: %w", data.NodeType, common.ErrInvalidInput))
		}
		kinds = []common.EntityKind{kind}
	}

	ctx := c.Request().Context()
	s := app(c).Store
	audit(c, "search", map[string]string{"query": data.Query, "type": data.NodeType})

	var candidates []common.Entity
	for _, kind := range kinds {
		found, err := s.Candidates(ctx, kind, data.Query)
		if err != nil {
			return fail(c, err)
		}
		candidates = append(candidates, found...)
	}

	matches := names.Rank(data.Query, candidates)
	results := make([]common.Entity, 0, min(len(matches), data.Limit))
	for _, m := range matches {
		if len(results) == data.Limit {
			break
		}
		results = append(results, m.Entity)
	}

	return c.JSON(http.StatusOK, searchResponse{Results: results})
}
