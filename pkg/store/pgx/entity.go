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

const entityColumns = `public_id, name, type, description, attributes, confidence, source_documents, aliases, tags`

func scanEntity(row pgxv5.Row) (knowledge.Entity, error) {
	var e knowledge.Entity
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Type,
		&e.Description,
		&e.Attributes,
		&e.Confidence,
		&e.SourceDocuments,
		&e.Aliases,
		&e.Tags,
	)
	return e, err
}

// normalizeEntity fills defaults so that array and jsonb columns never
// receive NULL.
func normalizeEntity(e knowledge.Entity) (knowledge.Entity, error) {
	if e.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return e, fmt.Errorf("failed to generate entity ID: %w", err)
		}
		e.ID = id
	}
	if e.Name == "" {
		return e, fmt.Errorf("entity name is empty")
	}
	if !knowledge.ValidEntityType(e.Type) {
		return e, fmt.Errorf("invalid entity type %q", e.Type)
	}
	if e.Attributes == nil {
		e.Attributes = map[string]string{}
	}
	if e.SourceDocuments == nil {
		e.SourceDocuments = []string{}
	}
	if e.Aliases == nil {
		e.Aliases = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

const upsertEntitySQL = `
INSERT INTO entities (public_id, name, type, description, attributes, confidence, source_documents, aliases, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (public_id) DO UPDATE SET
    name             = EXCLUDED.name,
    type             = EXCLUDED.type,
    description      = CASE WHEN EXCLUDED.description <> '' THEN EXCLUDED.description ELSE entities.description END,
    attributes       = entities.attributes || EXCLUDED.attributes,
    confidence       = EXCLUDED.confidence,
    source_documents = ARRAY(SELECT DISTINCT d FROM unnest(entities.source_documents || EXCLUDED.source_documents) AS d),
    aliases          = ARRAY(SELECT DISTINCT a FROM unnest(entities.aliases || EXCLUDED.aliases) AS a),
    tags             = ARRAY(SELECT DISTINCT t FROM unnest(entities.tags || EXCLUDED.tags) AS t),
    updated_at       = now()
RETURNING ` + entityColumns

// UpsertEntity inserts the entity or merges it into the existing row with
// the same ID. Scalar fields take the new value, source documents and
// aliases accumulate. An empty ID gets a generated one.
func (s *GraphDBStore) UpsertEntity(ctx context.Context, entity knowledge.Entity) (knowledge.Entity, error) {
	entity, err := normalizeEntity(entity)
	if err != nil {
		return knowledge.Entity{}, err
	}

	row := s.conn.QueryRow(ctx, upsertEntitySQL,
		entity.ID,
		entity.Name,
		entity.Type,
		entity.Description,
		entity.Attributes,
		entity.Confidence,
		entity.SourceDocuments,
		entity.Aliases,
		entity.Tags,
	)
	return scanEntity(row)
}

// GetEntity retrieves a single entity by ID.
func (s *GraphDBStore) GetEntity(ctx context.Context, id string) (knowledge.Entity, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE public_id = $1`, id)
	e, err := scanEntity(row)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return knowledge.Entity{}, store.ErrEntityNotFound
	}
	return e, err
}

// DeleteEntity removes an entity and, via foreign keys, all relationships
// touching it.
func (s *GraphDBStore) DeleteEntity(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM entities WHERE public_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrEntityNotFound
	}
	return nil
}

const searchEntitiesSQL = `
SELECT ` + entityColumns + `
FROM entities
WHERE (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
  AND (cardinality($2::text[]) = 0 OR type = ANY($2))
ORDER BY confidence DESC, name ASC
LIMIT $3`

// SearchEntities matches query as a case-insensitive substring of entity
// names and descriptions, ordered by confidence descending. A non-empty
// types slice restricts the result to those entity types.
func (s *GraphDBStore) SearchEntities(ctx context.Context, query string, types []knowledge.EntityType, limit int) ([]knowledge.Entity, error) {
	if limit <= 0 {
		return nil, nil
	}

	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	rows, err := s.conn.Query(ctx, searchEntitiesSQL, query, typeNames, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []knowledge.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
