package pgx

import (
	"testing"

	"meridian/pkg/knowledge"
)

func TestNormalizeEntity(t *testing.T) {
	e, err := normalizeEntity(knowledge.Entity{
		Name: "Acme Corp",
		Type: knowledge.EntityTypeCompany,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected a generated ID")
	}
	if e.Attributes == nil || e.SourceDocuments == nil || e.Aliases == nil || e.Tags == nil {
		t.Fatal("expected non-nil defaults for collection fields")
	}

	if _, err := normalizeEntity(knowledge.Entity{Type: knowledge.EntityTypeCompany}); err == nil {
		t.Fatal("expected an error for empty name")
	}
	if _, err := normalizeEntity(knowledge.Entity{Name: "x", Type: "conglomerate"}); err == nil {
		t.Fatal("expected an error for invalid type")
	}
}

func TestNormalizeRelationship(t *testing.T) {
	r, err := normalizeRelationship(knowledge.Relationship{
		SourceEntityID: "a",
		TargetEntityID: "b",
		Type:           knowledge.RelationshipPartnersWith,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID == "" {
		t.Fatal("expected a generated ID")
	}
	if r.Properties == nil || r.SourceDocuments == nil {
		t.Fatal("expected non-nil defaults for collection fields")
	}

	tests := []struct {
		name string
		rel  knowledge.Relationship
	}{
		{
			name: "missing source",
			rel:  knowledge.Relationship{TargetEntityID: "b", Type: knowledge.RelationshipUses},
		},
		{
			name: "self loop",
			rel:  knowledge.Relationship{SourceEntityID: "a", TargetEntityID: "a", Type: knowledge.RelationshipUses},
		},
		{
			name: "invalid type",
			rel:  knowledge.Relationship{SourceEntityID: "a", TargetEntityID: "b", Type: "owns"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := normalizeRelationship(tt.rel); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
