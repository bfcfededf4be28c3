package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"meridian/internal/storage"
	"meridian/pkg/ai"
	"meridian/pkg/logger"
	storepgx "meridian/pkg/store/pgx"
	vectorpgx "meridian/pkg/vector/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessDeleteMessage removes a document from the vector index, the graph
// and object storage. Entities and relationships sourced only from the
// document disappear with it.
func ProcessDeleteMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.GenerationClient,
	conn *pgxpool.Pool,
	body string,
) error {
	var msg DeleteDocumentMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("invalid delete message: %w", err)
	}
	if msg.DocumentID == "" {
		return fmt.Errorf("delete message missing document_id")
	}

	index := vectorpgx.NewVectorIndex(conn, aiClient)
	if err := index.DeleteDocument(ctx, msg.DocumentID); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}

	graph := storepgx.NewGraphDBStore(conn)
	if err := graph.DeleteDocument(ctx, msg.DocumentID); err != nil {
		return fmt.Errorf("failed to delete document from graph: %w", err)
	}

	if err := storage.DeleteFolder(ctx, s3Client, "documents/"+msg.DocumentID); err != nil {
		return err
	}

	logger.Info("[Delete] Document removed", "document_id", msg.DocumentID)
	return nil
}
