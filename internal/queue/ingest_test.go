package queue

import (
	"context"
	"errors"
	"testing"

	"meridian/pkg/knowledge"
)

type fakeGraph struct {
	entities      []knowledge.Entity
	relationships []knowledge.Relationship
	entityErr     error
}

func (f *fakeGraph) UpsertEntity(ctx context.Context, entity knowledge.Entity) (knowledge.Entity, error) {
	if f.entityErr != nil {
		return knowledge.Entity{}, f.entityErr
	}
	// Stored entities get a new ID, like the real store does for merges.
	stored := entity
	stored.ID = "db-" + entity.ID
	f.entities = append(f.entities, stored)
	return stored, nil
}

func (f *fakeGraph) GetEntity(ctx context.Context, id string) (knowledge.Entity, error) {
	return knowledge.Entity{}, errors.New("not implemented")
}

func (f *fakeGraph) DeleteEntity(ctx context.Context, id string) error { return nil }

func (f *fakeGraph) SearchEntities(ctx context.Context, query string, types []knowledge.EntityType, limit int) ([]knowledge.Entity, error) {
	return nil, nil
}

func (f *fakeGraph) UpsertRelationship(ctx context.Context, rel knowledge.Relationship) (knowledge.Relationship, error) {
	f.relationships = append(f.relationships, rel)
	return rel, nil
}

func (f *fakeGraph) GetRelationships(ctx context.Context, entityID string, types []knowledge.RelationshipType) ([]knowledge.Relationship, error) {
	return nil, nil
}

func (f *fakeGraph) FindPaths(ctx context.Context, sourceID, targetID string, maxLength, maxPaths int) ([]knowledge.Path, error) {
	return nil, nil
}

func (f *fakeGraph) DeleteDocument(ctx context.Context, documentID string) error { return nil }

func (f *fakeGraph) Statistics(ctx context.Context) (knowledge.GraphStatistics, error) {
	return knowledge.GraphStatistics{}, nil
}

func TestUpsertExtractionRemapsEndpoints(t *testing.T) {
	graph := &fakeGraph{}

	entities := []knowledge.Entity{
		{ID: "a", Name: "Acme", Type: knowledge.EntityTypeCompany},
		{ID: "b", Name: "Globex", Type: knowledge.EntityTypeCompany},
	}
	relationships := []knowledge.Relationship{
		{SourceEntityID: "a", TargetEntityID: "b", Type: knowledge.RelationshipCompetesWith},
		{SourceEntityID: "a", TargetEntityID: "missing", Type: knowledge.RelationshipUses},
	}

	stored, err := upsertExtraction(context.Background(), graph, entities, relationships)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != 1 {
		t.Fatalf("expected 1 stored relationship, got %d", stored)
	}
	if len(graph.entities) != 2 {
		t.Fatalf("expected 2 stored entities, got %d", len(graph.entities))
	}

	rel := graph.relationships[0]
	if rel.SourceEntityID != "db-a" || rel.TargetEntityID != "db-b" {
		t.Fatalf("endpoints not remapped to stored IDs: %+v", rel)
	}
}

func TestUpsertExtractionEntityError(t *testing.T) {
	graph := &fakeGraph{entityErr: errors.New("db down")}

	_, err := upsertExtraction(context.Background(), graph,
		[]knowledge.Entity{{ID: "a", Name: "Acme", Type: knowledge.EntityTypeCompany}}, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestIngestMessageValidation(t *testing.T) {
	err := ProcessIngestMessage(context.Background(), nil, nil, nil, `{"document_id":""}`)
	if err == nil {
		t.Fatal("expected an error for missing document_id")
	}

	err = ProcessIngestMessage(context.Background(), nil, nil, nil, `not json`)
	if err == nil {
		t.Fatal("expected an error for malformed message")
	}
}
