// Package vector defines the semantic chunk index interface.
package vector

import (
	"context"

	"meridian/pkg/knowledge"
)

// Index stores embedded document chunks and retrieves them by semantic
// similarity. Chunks are keyed by document ID and chunk index, so
// re-indexing a document overwrites its previous chunks.
type Index interface {
	// IndexChunks embeds and stores the given chunks.
	IndexChunks(ctx context.Context, chunks []knowledge.DocumentChunk) error

	// Query returns up to limit chunks whose similarity to the query text
	// meets the threshold, most similar first. A non-empty documentIDs
	// slice restricts results to those documents.
	Query(ctx context.Context, query string, limit int, threshold float64, documentIDs []string) ([]knowledge.SemanticChunk, error)

	// DeleteDocument removes all chunks belonging to the document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Count reports the number of indexed chunks.
	Count(ctx context.Context) (int64, error)
}
