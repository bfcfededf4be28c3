// Package pgx implements the vector index on PostgreSQL with pgvector.
package pgx

import (
	"context"
	"fmt"

	"meridian/pkg/ai"
	"meridian/pkg/knowledge"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// VectorIndex stores document chunks with pgvector embeddings and serves
// cosine similarity queries. Embeddings come from the configured AI client.
type VectorIndex struct {
	conn     pgxIConn
	aiClient ai.GenerationClient
}

// NewVectorIndex creates a vector index backed by the given pool and
// embedding client.
func NewVectorIndex(pool *pgxpool.Pool, aiClient ai.GenerationClient) *VectorIndex {
	return &VectorIndex{conn: pool, aiClient: aiClient}
}

// NewVectorIndexWithConnection creates a vector index using an existing
// connection.
func NewVectorIndexWithConnection(conn pgxIConn, aiClient ai.GenerationClient) *VectorIndex {
	return &VectorIndex{conn: conn, aiClient: aiClient}
}

const upsertChunkSQL = `
INSERT INTO chunks (chunk_key, document_id, chunk_index, content, start_position, end_position, metadata, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (chunk_key) DO UPDATE SET
    content        = EXCLUDED.content,
    start_position = EXCLUDED.start_position,
    end_position   = EXCLUDED.end_position,
    metadata       = EXCLUDED.metadata,
    embedding      = EXCLUDED.embedding`

// IndexChunks embeds the chunk contents in one batch and upserts each chunk
// under its document and index key.
func (v *VectorIndex) IndexChunks(ctx context.Context, chunks []knowledge.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	inputs := make([][]byte, len(chunks))
	for i, c := range chunks {
		inputs[i] = []byte(c.Content)
	}
	embeddings, err := v.aiClient.GenerateEmbeddings(ctx, inputs)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d want %d", len(embeddings), len(chunks))
	}

	tx, err := v.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, c := range chunks {
		metadata := c.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		if _, err := tx.Exec(ctx, upsertChunkSQL,
			c.Key(),
			c.DocumentID,
			c.Index,
			c.Content,
			c.Start,
			c.End,
			metadata,
			pgvector.NewVector(embeddings[i]),
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const queryChunksSQL = `
SELECT content, 1 - (embedding <=> $1) AS similarity, document_id, chunk_index, metadata
FROM chunks
WHERE (cardinality($2::text[]) = 0 OR document_id = ANY($2))
  AND 1 - (embedding <=> $1) >= $3
ORDER BY embedding <=> $1
LIMIT $4`

// Query embeds the query text and returns the most similar chunks above the
// threshold. Similarity is 1 minus cosine distance.
func (v *VectorIndex) Query(ctx context.Context, query string, limit int, threshold float64, documentIDs []string) ([]knowledge.SemanticChunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	embedding, err := v.aiClient.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if documentIDs == nil {
		documentIDs = []string{}
	}

	rows, err := v.conn.Query(ctx, queryChunksSQL,
		pgvector.NewVector(embedding), documentIDs, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []knowledge.SemanticChunk
	for rows.Next() {
		var c knowledge.SemanticChunk
		if err := rows.Scan(
			&c.Content,
			&c.Similarity,
			&c.DocumentID,
			&c.ChunkIndex,
			&c.Metadata,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteDocument removes all chunks belonging to the document.
func (v *VectorIndex) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := v.conn.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	return err
}

// Count reports the number of indexed chunks.
func (v *VectorIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	err := v.conn.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&count)
	return count, err
}
