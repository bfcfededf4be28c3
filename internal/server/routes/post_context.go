package routes

import (
	"net/http"

	"meridian/internal/server/middleware"
	"meridian/pkg/knowledge"

	"github.com/labstack/echo/v4"
)

// BuildContextHandler assembles knowledge context for a free-form query.
func BuildContextHandler(c echo.Context) error {
	type buildContextBody struct {
		Query    string `json:"query" validate:"required"`
		TaskType string `json:"task_type"`
	}

	type buildContextResponse struct {
		Message string             `json:"message"`
		Context *knowledge.Context `json:"context,omitempty"`
	}

	data := new(buildContextBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, buildContextResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, buildContextResponse{
			Message: "Invalid request body",
		})
	}
	if data.TaskType == "" {
		data.TaskType = "general"
	}

	app := c.(*middleware.AppContext).App
	result := app.Engine.BuildContext(c.Request().Context(), data.Query, data.TaskType)

	return c.JSON(http.StatusOK, buildContextResponse{
		Message: "OK",
		Context: &result,
	})
}

// BuildContentContextHandler assembles context for a content generation
// task described by content type, topic and optional audience.
func BuildContentContextHandler(c echo.Context) error {
	type contentContextBody struct {
		ContentType    string `json:"content_type" validate:"required"`
		Topic          string `json:"topic" validate:"required"`
		TargetAudience string `json:"target_audience"`
	}

	type contentContextResponse struct {
		Message string             `json:"message"`
		Context *knowledge.Context `json:"context,omitempty"`
	}

	data := new(contentContextBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, contentContextResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, contentContextResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	result := app.Engine.BuildContentContext(
		c.Request().Context(), data.ContentType, data.Topic, data.TargetAudience)

	return c.JSON(http.StatusOK, contentContextResponse{
		Message: "OK",
		Context: &result,
	})
}

// BuildAnalysisContextHandler assembles a wider context for strategic
// analysis questions.
func BuildAnalysisContextHandler(c echo.Context) error {
	type analysisContextBody struct {
		Question string `json:"question" validate:"required"`
	}

	type analysisContextResponse struct {
		Message string             `json:"message"`
		Context *knowledge.Context `json:"context,omitempty"`
	}

	data := new(analysisContextBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, analysisContextResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, analysisContextResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	result := app.Engine.BuildAnalysisContext(c.Request().Context(), data.Question)

	return c.JSON(http.StatusOK, analysisContextResponse{
		Message: "OK",
		Context: &result,
	})
}
