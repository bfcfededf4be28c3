package routes

import (
	"errors"
	"net/http"
	"strings"

	"meridian/internal/server/middleware"
	"meridian/pkg/knowledge"
	"meridian/pkg/logger"
	"meridian/pkg/store"

	"github.com/labstack/echo/v4"
)

// SearchEntitiesHandler matches entities by name or description substring.
func SearchEntitiesHandler(c echo.Context) error {
	type searchParams struct {
		Query string `query:"q" validate:"required"`
		Types string `query:"types"`
		Limit int    `query:"limit"`
	}

	type searchResponse struct {
		Message  string             `json:"message"`
		Entities []knowledge.Entity `json:"entities"`
	}

	params := new(searchParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, searchResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, searchResponse{
			Message: "Invalid request",
		})
	}
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}

	var types []knowledge.EntityType
	for _, raw := range strings.Split(params.Types, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t := knowledge.EntityType(raw)
		if !knowledge.ValidEntityType(t) {
			return c.JSON(http.StatusBadRequest, searchResponse{
				Message: "Unknown entity type: " + raw,
			})
		}
		types = append(types, t)
	}

	app := c.(*middleware.AppContext).App
	entities, err := app.Graph.SearchEntities(c.Request().Context(), params.Query, types, params.Limit)
	if err != nil {
		logger.Error("Entity search failed", "err", err)
		return c.JSON(http.StatusInternalServerError, searchResponse{
			Message: "Internal server error",
		})
	}
	if entities == nil {
		entities = []knowledge.Entity{}
	}

	return c.JSON(http.StatusOK, searchResponse{
		Message:  "OK",
		Entities: entities,
	})
}

// GetEntityHandler returns a single entity by ID.
func GetEntityHandler(c echo.Context) error {
	type entityParams struct {
		ID string `param:"id" validate:"required"`
	}

	type entityResponse struct {
		Message string            `json:"message"`
		Entity  *knowledge.Entity `json:"entity,omitempty"`
	}

	params := new(entityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, entityResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, entityResponse{
			Message: "Invalid request",
		})
	}

	app := c.(*middleware.AppContext).App
	entity, err := app.Graph.GetEntity(c.Request().Context(), params.ID)
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, entityResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Entity lookup failed", "err", err)
		return c.JSON(http.StatusInternalServerError, entityResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, entityResponse{
		Message: "OK",
		Entity:  &entity,
	})
}

// GetEntityRelationshipsHandler returns all edges touching an entity,
// highest confidence first.
func GetEntityRelationshipsHandler(c echo.Context) error {
	type relationshipParams struct {
		ID    string `param:"id" validate:"required"`
		Types string `query:"types"`
	}

	type relationshipResponse struct {
		Message       string                   `json:"message"`
		Relationships []knowledge.Relationship `json:"relationships"`
	}

	params := new(relationshipParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, relationshipResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, relationshipResponse{
			Message: "Invalid request",
		})
	}

	var types []knowledge.RelationshipType
	for _, raw := range strings.Split(params.Types, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t := knowledge.RelationshipType(raw)
		if !knowledge.ValidRelationshipType(t) {
			return c.JSON(http.StatusBadRequest, relationshipResponse{
				Message: "Unknown relationship type: " + raw,
			})
		}
		types = append(types, t)
	}

	app := c.(*middleware.AppContext).App
	relationships, err := app.Graph.GetRelationships(c.Request().Context(), params.ID, types)
	if err != nil {
		logger.Error("Relationship lookup failed", "err", err)
		return c.JSON(http.StatusInternalServerError, relationshipResponse{
			Message: "Internal server error",
		})
	}
	if relationships == nil {
		relationships = []knowledge.Relationship{}
	}

	return c.JSON(http.StatusOK, relationshipResponse{
		Message:       "OK",
		Relationships: relationships,
	})
}

// GetPathsHandler finds undirected paths between two entities.
func GetPathsHandler(c echo.Context) error {
	type pathParams struct {
		SourceID  string `query:"source" validate:"required"`
		TargetID  string `query:"target" validate:"required"`
		MaxLength int    `query:"max_length"`
	}

	type pathResponse struct {
		Message string           `json:"message"`
		Paths   []knowledge.Path `json:"paths"`
	}

	params := new(pathParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, pathResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, pathResponse{
			Message: "Invalid request",
		})
	}

	app := c.(*middleware.AppContext).App
	paths, err := app.Engine.FindPaths(c.Request().Context(), params.SourceID, params.TargetID, params.MaxLength)
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, pathResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Path search failed", "err", err)
		return c.JSON(http.StatusInternalServerError, pathResponse{
			Message: "Internal server error",
		})
	}
	if paths == nil {
		paths = []knowledge.Path{}
	}

	return c.JSON(http.StatusOK, pathResponse{
		Message: "OK",
		Paths:   paths,
	})
}

// GetStatisticsHandler reports graph totals and per-type counts.
func GetStatisticsHandler(c echo.Context) error {
	type statisticsResponse struct {
		Message    string                     `json:"message"`
		Statistics *knowledge.GraphStatistics `json:"statistics,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	stats, err := app.Graph.Statistics(c.Request().Context())
	if err != nil {
		logger.Error("Statistics query failed", "err", err)
		return c.JSON(http.StatusInternalServerError, statisticsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, statisticsResponse{
		Message:    "OK",
		Statistics: &stats,
	})
}
