package pgx

import (
	"context"
	"errors"
	"fmt"

	"meridian/pkg/knowledge"
	"meridian/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// findPathsSQL enumerates simple undirected paths between two nodes.
// Visited nodes are tracked in an array to keep paths acyclic; shorter
// paths sort first.
const findPathsSQL = `
WITH RECURSIVE walk AS (
    SELECT
        CASE WHEN r.source_id = $1 THEN r.target_id ELSE r.source_id END AS node_id,
        ARRAY[$1::bigint, CASE WHEN r.source_id = $1 THEN r.target_id ELSE r.source_id END] AS nodes,
        ARRAY[r.id] AS rels
    FROM relationships r
    WHERE r.source_id = $1 OR r.target_id = $1
    UNION ALL
    SELECT
        CASE WHEN r.source_id = w.node_id THEN r.target_id ELSE r.source_id END,
        w.nodes || CASE WHEN r.source_id = w.node_id THEN r.target_id ELSE r.source_id END,
        w.rels || r.id
    FROM relationships r
    JOIN walk w ON r.source_id = w.node_id OR r.target_id = w.node_id
    WHERE w.node_id <> $2
      AND cardinality(w.rels) < $3
      AND NOT (CASE WHEN r.source_id = w.node_id THEN r.target_id ELSE r.source_id END = ANY(w.nodes))
)
SELECT nodes, rels
FROM walk
WHERE node_id = $2
ORDER BY cardinality(rels), rels
LIMIT $4`

// FindPaths returns simple undirected paths between two entities with 1 to
// maxLength relationship hops, at most maxPaths of them, shortest first.
func (s *GraphDBStore) FindPaths(ctx context.Context, sourceID, targetID string, maxLength, maxPaths int) ([]knowledge.Path, error) {
	if maxLength <= 0 || maxPaths <= 0 || sourceID == targetID {
		return nil, nil
	}

	srcID, err := s.resolveInternalID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	dstID, err := s.resolveInternalID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.Query(ctx, findPathsSQL, srcID, dstID, maxLength, maxPaths)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type rawPath struct {
		nodes []int64
		rels  []int64
	}
	var raw []rawPath
	for rows.Next() {
		var p rawPath
		if err := rows.Scan(&p.nodes, &p.rels); err != nil {
			return nil, err
		}
		raw = append(raw, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	nodeIDs := make(map[int64]struct{})
	relIDs := make(map[int64]struct{})
	for _, p := range raw {
		for _, n := range p.nodes {
			nodeIDs[n] = struct{}{}
		}
		for _, r := range p.rels {
			relIDs[r] = struct{}{}
		}
	}

	entities, err := s.entitiesByInternalIDs(ctx, keys(nodeIDs))
	if err != nil {
		return nil, err
	}
	relationships, err := s.relationshipsByInternalIDs(ctx, keys(relIDs))
	if err != nil {
		return nil, err
	}

	paths := make([]knowledge.Path, 0, len(raw))
	for _, p := range raw {
		path := make(knowledge.Path, 0, len(p.nodes)+len(p.rels))
		for i, n := range p.nodes {
			if i > 0 {
				rel, ok := relationships[p.rels[i-1]]
				if !ok {
					return nil, fmt.Errorf("path references unknown relationship %d", p.rels[i-1])
				}
				path = append(path, knowledge.PathStep{
					Kind:         knowledge.PathStepRelationship,
					Relationship: &rel,
				})
			}
			ent, ok := entities[n]
			if !ok {
				return nil, fmt.Errorf("path references unknown entity %d", n)
			}
			path = append(path, knowledge.PathStep{
				Kind:   knowledge.PathStepEntity,
				Entity: &ent,
			})
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *GraphDBStore) resolveInternalID(ctx context.Context, publicID string) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx, `SELECT id FROM entities WHERE public_id = $1`, publicID).Scan(&id)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return 0, store.ErrEntityNotFound
	}
	return id, err
}

func (s *GraphDBStore) entitiesByInternalIDs(ctx context.Context, ids []int64) (map[int64]knowledge.Entity, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, `+entityColumns+` FROM entities WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]knowledge.Entity, len(ids))
	for rows.Next() {
		var id int64
		var e knowledge.Entity
		if err := rows.Scan(
			&id,
			&e.ID,
			&e.Name,
			&e.Type,
			&e.Description,
			&e.Attributes,
			&e.Confidence,
			&e.SourceDocuments,
			&e.Aliases,
			&e.Tags,
		); err != nil {
			return nil, err
		}
		out[id] = e
	}
	return out, rows.Err()
}

func (s *GraphDBStore) relationshipsByInternalIDs(ctx context.Context, ids []int64) (map[int64]knowledge.Relationship, error) {
	rows, err := s.conn.Query(ctx, `
SELECT r.id, r.public_id, se.public_id, te.public_id, r.type, r.properties, r.confidence, r.source_documents
FROM relationships r
JOIN entities se ON se.id = r.source_id
JOIN entities te ON te.id = r.target_id
WHERE r.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]knowledge.Relationship, len(ids))
	for rows.Next() {
		var id int64
		var r knowledge.Relationship
		if err := rows.Scan(
			&id,
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
		out[id] = r
	}
	return out, rows.Err()
}

func keys(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
