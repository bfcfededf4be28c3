package contextengine

import (
	"context"

	"meridian/pkg/knowledge"
	"meridian/pkg/logger"
)

// relevantChunks retrieves the most similar chunks across all documents. A
// failing vector index degrades to no chunks.
func (e *Engine) relevantChunks(ctx context.Context, query string, maxChunks int) []knowledge.SemanticChunk {
	chunks, err := e.index.Query(ctx, query, maxChunks, e.opts.SemanticThreshold, nil)
	if err != nil {
		logger.Error("semantic chunk search failed", "query", query, "error", err)
		return nil
	}
	return chunks
}
