package pgx

import "context"

// Relationships sourced only by the document are removed outright; the
// entity pass then drops entities whose provenance became empty, cascading
// whatever edges still touch them. Entities that never referenced the
// document (for example ones created directly via the API) are untouched.
const deleteDocumentRelationshipsSQL = `
WITH affected AS (
    UPDATE relationships
    SET source_documents = array_remove(source_documents, $1),
        updated_at       = now()
    WHERE $1 = ANY(source_documents)
    RETURNING id, source_documents
)
DELETE FROM relationships
WHERE id IN (SELECT id FROM affected WHERE cardinality(source_documents) = 0)`

const deleteDocumentEntitiesSQL = `
WITH affected AS (
    UPDATE entities
    SET source_documents = array_remove(source_documents, $1),
        updated_at       = now()
    WHERE $1 = ANY(source_documents)
    RETURNING id, source_documents
)
DELETE FROM entities
WHERE id IN (SELECT id FROM affected WHERE cardinality(source_documents) = 0)`

// DeleteDocument removes the document from all provenance lists and deletes
// entities and relationships that were sourced only from it.
func (s *GraphDBStore) DeleteDocument(ctx context.Context, documentID string) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, deleteDocumentRelationshipsSQL, documentID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteDocumentEntitiesSQL, documentID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
