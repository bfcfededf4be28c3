package routes

import (
	"encoding/json"
	"net/http"

	"meridian/internal/queue"
	"meridian/internal/server/middleware"
	"meridian/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DeleteDocumentHandler queues removal of a document from the index, the
// graph and object storage.
func DeleteDocumentHandler(c echo.Context) error {
	type deleteParams struct {
		DocumentID string `param:"id" validate:"required"`
	}

	type deleteResponse struct {
		Message    string `json:"message"`
		DocumentID string `json:"document_id,omitempty"`
	}

	params := new(deleteParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	msg := queue.DeleteDocumentMsg{
		Message:    "Document deletion requested",
		DocumentID: params.DocumentID,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, deleteResponse{
			Message: "Internal server error",
		})
	}
	if err := queue.PublishFIFO(app.Queue, "delete_queue", msgBytes); err != nil {
		logger.Error("Failed to publish to delete_queue", "err", err)
		return c.JSON(http.StatusInternalServerError, deleteResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteResponse{
		Message:    "Document queued for deletion",
		DocumentID: params.DocumentID,
	})
}
