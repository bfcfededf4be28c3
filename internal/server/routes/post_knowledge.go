package routes

import (
	"errors"
	"net/http"

	"meridian/internal/server/middleware"
	"meridian/pkg/knowledge"
	"meridian/pkg/logger"
	"meridian/pkg/store"

	"github.com/labstack/echo/v4"
)

// CreateEntityHandler upserts an entity. Posting an existing ID merges into
// the stored entity.
func CreateEntityHandler(c echo.Context) error {
	type createEntityBody struct {
		ID              string            `json:"id"`
		Name            string            `json:"name" validate:"required"`
		Type            string            `json:"entity_type" validate:"required"`
		Description     string            `json:"description"`
		Attributes      map[string]string `json:"attributes"`
		Confidence      float64           `json:"confidence_score"`
		SourceDocuments []string          `json:"source_documents"`
		Aliases         []string          `json:"aliases"`
		Tags            []string          `json:"tags"`
	}

	type createEntityResponse struct {
		Message string            `json:"message"`
		Entity  *knowledge.Entity `json:"entity,omitempty"`
	}

	data := new(createEntityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}
	if !knowledge.ValidEntityType(knowledge.EntityType(data.Type)) {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Unknown entity type: " + data.Type,
		})
	}

	confidence := data.Confidence
	if confidence <= 0 {
		confidence = 1.0
	}

	app := c.(*middleware.AppContext).App
	entity, err := app.Graph.UpsertEntity(c.Request().Context(), knowledge.Entity{
		ID:              data.ID,
		Name:            data.Name,
		Type:            knowledge.EntityType(data.Type),
		Description:     data.Description,
		Attributes:      data.Attributes,
		Confidence:      confidence,
		SourceDocuments: data.SourceDocuments,
		Aliases:         data.Aliases,
		Tags:            data.Tags,
	})
	if err != nil {
		logger.Error("Entity upsert failed", "err", err)
		return c.JSON(http.StatusInternalServerError, createEntityResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, createEntityResponse{
		Message: "Entity stored",
		Entity:  &entity,
	})
}

// DeleteEntityHandler removes an entity and every edge touching it.
func DeleteEntityHandler(c echo.Context) error {
	type deleteEntityParams struct {
		ID string `param:"id" validate:"required"`
	}

	type deleteEntityResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteEntityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteEntityResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteEntityResponse{
			Message: "Invalid request",
		})
	}

	app := c.(*middleware.AppContext).App
	if err := app.Graph.DeleteEntity(c.Request().Context(), params.ID); err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, deleteEntityResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Entity deletion failed", "err", err)
		return c.JSON(http.StatusInternalServerError, deleteEntityResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteEntityResponse{
		Message: "Entity deleted",
	})
}

// CreateRelationshipHandler upserts an edge between two existing entities.
func CreateRelationshipHandler(c echo.Context) error {
	type createRelationshipBody struct {
		ID              string            `json:"id"`
		SourceEntityID  string            `json:"source_entity_id" validate:"required"`
		TargetEntityID  string            `json:"target_entity_id" validate:"required"`
		Type            string            `json:"relationship_type" validate:"required"`
		Properties      map[string]string `json:"properties"`
		Confidence      float64           `json:"confidence_score"`
		SourceDocuments []string          `json:"source_documents"`
	}

	type createRelationshipResponse struct {
		Message      string                  `json:"message"`
		Relationship *knowledge.Relationship `json:"relationship,omitempty"`
	}

	data := new(createRelationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if !knowledge.ValidRelationshipType(knowledge.RelationshipType(data.Type)) {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Unknown relationship type: " + data.Type,
		})
	}

	confidence := data.Confidence
	if confidence <= 0 {
		confidence = 1.0
	}

	app := c.(*middleware.AppContext).App
	relationship, err := app.Graph.UpsertRelationship(c.Request().Context(), knowledge.Relationship{
		ID:              data.ID,
		SourceEntityID:  data.SourceEntityID,
		TargetEntityID:  data.TargetEntityID,
		Type:            knowledge.RelationshipType(data.Type),
		Properties:      data.Properties,
		Confidence:      confidence,
		SourceDocuments: data.SourceDocuments,
	})
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, createRelationshipResponse{
				Message: "Source or target entity not found",
			})
		}
		logger.Error("Relationship upsert failed", "err", err)
		return c.JSON(http.StatusInternalServerError, createRelationshipResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, createRelationshipResponse{
		Message:      "Relationship stored",
		Relationship: &relationship,
	})
}
