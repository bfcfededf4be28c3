package pgx

import (
	"context"
	"errors"
	"fmt"

	"meridian/pkg/knowledge"
	"meridian/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func normalizeRelationship(r knowledge.Relationship) (knowledge.Relationship, error) {
	if r.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return r, fmt.Errorf("failed to generate relationship ID: %w", err)
		}
		r.ID = id
	}
	if r.SourceEntityID == "" || r.TargetEntityID == "" {
		return r, fmt.Errorf("relationship endpoints are required")
	}
	if r.SourceEntityID == r.TargetEntityID {
		return r, fmt.Errorf("relationship endpoints must differ")
	}
	if !knowledge.ValidRelationshipType(r.Type) {
		return r, fmt.Errorf("invalid relationship type %q", r.Type)
	}
	if r.Properties == nil {
		r.Properties = map[string]string{}
	}
	if r.SourceDocuments == nil {
		r.SourceDocuments = []string{}
	}
	return r, nil
}

const upsertRelationshipSQL = `
INSERT INTO relationships (public_id, source_id, target_id, type, properties, confidence, source_documents)
SELECT $1, s.id, t.id, $4, $5, $6, $7
FROM entities s, entities t
WHERE s.public_id = $2 AND t.public_id = $3
ON CONFLICT (source_id, target_id) DO UPDATE SET
    type             = EXCLUDED.type,
    properties       = relationships.properties || EXCLUDED.properties,
    confidence       = EXCLUDED.confidence,
    source_documents = ARRAY(SELECT DISTINCT d FROM unnest(relationships.source_documents || EXCLUDED.source_documents) AS d),
    updated_at       = now()
RETURNING public_id,
    (SELECT public_id FROM entities WHERE id = relationships.source_id),
    (SELECT public_id FROM entities WHERE id = relationships.target_id),
    type, properties, confidence, source_documents`

// UpsertRelationship inserts the edge or merges it into the existing edge
// between the same two entities. Returns store.ErrEntityNotFound if either
// endpoint does not exist.
func (s *GraphDBStore) UpsertRelationship(ctx context.Context, rel knowledge.Relationship) (knowledge.Relationship, error) {
	rel, err := normalizeRelationship(rel)
	if err != nil {
		return knowledge.Relationship{}, err
	}

	row := s.conn.QueryRow(ctx, upsertRelationshipSQL,
		rel.ID,
		rel.SourceEntityID,
		rel.TargetEntityID,
		rel.Type,
		rel.Properties,
		rel.Confidence,
		rel.SourceDocuments,
	)

	var out knowledge.Relationship
	err = row.Scan(
		&out.ID,
		&out.SourceEntityID,
		&out.TargetEntityID,
		&out.Type,
		&out.Properties,
		&out.Confidence,
		&out.SourceDocuments,
	)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return knowledge.Relationship{}, store.ErrEntityNotFound
	}
	return out, err
}

const getRelationshipsSQL = `
SELECT r.public_id, se.public_id, te.public_id, r.type, r.properties, r.confidence, r.source_documents
FROM relationships r
JOIN entities se ON se.id = r.source_id
JOIN entities te ON te.id = r.target_id
WHERE se.public_id = $1
  AND (cardinality($2::text[]) = 0 OR r.type = ANY($2))
ORDER BY r.confidence DESC`

// GetRelationships returns the edges where the entity is the source,
// ordered by confidence descending. A non-empty types slice restricts the
// result to those relationship types.
func (s *GraphDBStore) GetRelationships(ctx context.Context, entityID string, types []knowledge.RelationshipType) ([]knowledge.Relationship, error) {
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	rows, err := s.conn.Query(ctx, getRelationshipsSQL, entityID, typeNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []knowledge.Relationship
	for rows.Next() {
		var r knowledge.Relationship
		if err := rows.Scan(
			&r.ID,
			&r.SourceEntityID,
			&r.TargetEntityID,
			&r.Type,
			&r.Properties,
			&r.Confidence,
			&r.SourceDocuments,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
