package routes

import (
	"encoding/json"
	"net/http"

	"meridian/internal/queue"
	"meridian/internal/server/middleware"
	"meridian/internal/storage"
	"meridian/internal/util"
	"meridian/pkg/loader"
	"meridian/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadDocumentsHandler stores uploaded files in object storage and queues
// each one for ingestion (multipart/form-data, field "files").
func UploadDocumentsHandler(c echo.Context) error {
	type uploadedDocument struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		FileKey string `json:"file_key"`
	}

	type uploadResponse struct {
		Message   string             `json:"message"`
		Documents []uploadedDocument `json:"documents,omitempty"`
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Invalid request body",
		})
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "No files provided",
		})
	}

	for _, file := range uploads {
		if _, err := loader.DetectType(file.Filename); err != nil {
			return c.JSON(http.StatusBadRequest, uploadResponse{
				Message: "Unsupported file format: " + file.Filename,
			})
		}
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	documents := make([]uploadedDocument, 0, len(uploads))
	for _, file := range uploads {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, uploadResponse{
				Message: "Could not open file",
			})
		}
		defer src.Close()

		documentID, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		key, err := storage.PutFile(ctx, app.S3, documentID, file.Filename, src)
		if err != nil {
			logger.Error("Failed to upload file", "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		documents = append(documents, uploadedDocument{
			ID:      documentID,
			Name:    file.Filename,
			FileKey: key,
		})
	}

	for _, document := range documents {
		msg := queue.IngestDocumentMsg{
			Message:    "Document uploaded",
			DocumentID: document.ID,
			FileKey:    document.FileKey,
			FileName:   document.Name,
		}
		msgBytes, err := json.Marshal(msg)
		if err != nil {
			logger.Error("Failed to marshal ingest message", "err", err)
			continue
		}
		err = util.RetryErr(3, func() error {
			return queue.PublishFIFO(app.Queue, "ingest_queue", msgBytes)
		})
		if err != nil {
			logger.Error("Failed to publish to ingest_queue", "err", err)
		}
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Message:   "Documents queued for processing",
		Documents: documents,
	})
}
