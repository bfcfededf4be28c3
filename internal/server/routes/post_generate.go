package routes

import (
	"fmt"
	"net/http"
	"strings"

	"meridian/internal/server/middleware"
	"meridian/pkg/ai"
	"meridian/pkg/knowledge"
	"meridian/pkg/logger"

	"github.com/labstack/echo/v4"
)

const generatePromptTemplate = `# Task Context
You answer questions and write content grounded in the knowledge context below. Do not invent facts that are not supported by the context.

# Background Data
%s

## rules
- Base the answer on the background data where it is relevant.
- Say so when the context does not cover the question.

%s`

// GenerateHandler builds knowledge context for the query and generates a
// grounded completion from it.
func GenerateHandler(c echo.Context) error {
	type generateBody struct {
		Query    string `json:"query" validate:"required"`
		TaskType string `json:"task_type"`
	}

	type generateResponse struct {
		Message string             `json:"message"`
		Answer  string             `json:"answer,omitempty"`
		Context *knowledge.Context `json:"context,omitempty"`
		Metrics *ai.ModelMetrics   `json:"metrics,omitempty"`
	}

	data := new(generateBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, generateResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, generateResponse{
			Message: "Invalid request body",
		})
	}
	if data.TaskType == "" {
		data.TaskType = "general"
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	result := app.Engine.BuildContext(ctx, data.Query, data.TaskType)
	prompt := fmt.Sprintf(generatePromptTemplate, renderContext(result), data.Query)

	answer, err := app.AiClient.GenerateCompletion(ctx, prompt)
	if err != nil {
		logger.Error("Grounded generation failed", "err", err)
		return c.JSON(http.StatusInternalServerError, generateResponse{
			Message: "Internal server error",
		})
	}

	metrics := app.AiClient.GetMetrics()
	return c.JSON(http.StatusOK, generateResponse{
		Message: "OK",
		Answer:  answer,
		Context: &result,
		Metrics: &metrics,
	})
}

// renderContext flattens a context into prompt text: entities with type and
// description, relationships as triples, then the retrieved chunks.
func renderContext(result knowledge.Context) string {
	if result.Empty() {
		return "No relevant knowledge found."
	}

	var b strings.Builder

	if len(result.Entities) > 0 {
		b.WriteString("Entities:\n")
		for _, entity := range result.Entities {
			fmt.Fprintf(&b, "- %s (%s)", entity.Name, entity.Type)
			if entity.Description != "" {
				fmt.Fprintf(&b, ": %s", entity.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(result.Relationships) > 0 {
		names := make(map[string]string, len(result.Entities))
		for _, entity := range result.Entities {
			names[entity.ID] = entity.Name
		}
		name := func(id string) string {
			if n, ok := names[id]; ok {
				return n
			}
			return id
		}

		b.WriteString("\nRelationships:\n")
		for _, rel := range result.Relationships {
			fmt.Fprintf(&b, "- %s %s %s\n",
				name(rel.SourceEntityID), rel.Type, name(rel.TargetEntityID))
		}
	}

	if len(result.Chunks) > 0 {
		b.WriteString("\nDocument excerpts:\n")
		for _, chunk := range result.Chunks {
			fmt.Fprintf(&b, "---\n%s\n", chunk.Content)
		}
	}

	return b.String()
}
