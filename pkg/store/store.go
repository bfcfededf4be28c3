// Package store defines the persistence interface for the knowledge graph.
package store

import (
	"context"
	"errors"

	"meridian/pkg/knowledge"
)

var (
	// ErrEntityNotFound is returned when an operation references an entity
	// that does not exist in the graph.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrRelationshipNotFound is returned when a relationship lookup finds
	// no matching edge.
	ErrRelationshipNotFound = errors.New("relationship not found")
)

// GraphStore persists and queries knowledge graph entities and
// relationships. Entities merge by ID on repeated upserts; relationships
// merge by their (source, target) pair. Source document lists accumulate
// across upserts.
type GraphStore interface {
	UpsertEntity(ctx context.Context, entity knowledge.Entity) (knowledge.Entity, error)
	GetEntity(ctx context.Context, id string) (knowledge.Entity, error)
	DeleteEntity(ctx context.Context, id string) error

	// SearchEntities matches the query as a case-insensitive substring of
	// entity names and descriptions, ordered by confidence descending. A
	// non-empty types slice restricts results to those entity types.
	SearchEntities(ctx context.Context, query string, types []knowledge.EntityType, limit int) ([]knowledge.Entity, error)

	// UpsertRelationship stores an edge between two existing entities.
	// Returns ErrEntityNotFound if either endpoint is missing.
	UpsertRelationship(ctx context.Context, rel knowledge.Relationship) (knowledge.Relationship, error)

	// GetRelationships returns the edges where the entity is the source,
	// ordered by confidence descending. A non-empty types slice restricts
	// results to those relationship types.
	GetRelationships(ctx context.Context, entityID string, types []knowledge.RelationshipType) ([]knowledge.Relationship, error)

	// FindPaths returns simple undirected paths between two entities with
	// 1 to maxLength relationship hops, at most maxPaths of them, shortest
	// first.
	FindPaths(ctx context.Context, sourceID, targetID string, maxLength, maxPaths int) ([]knowledge.Path, error)

	// DeleteDocument removes the document from all provenance lists and
	// deletes entities and relationships that were sourced only from it.
	DeleteDocument(ctx context.Context, documentID string) error

	Statistics(ctx context.Context) (knowledge.GraphStatistics, error)
}
