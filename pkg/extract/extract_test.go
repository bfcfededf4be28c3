package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"meridian/pkg/ai"
	"meridian/pkg/knowledge"
)

type fakeClient struct {
	response extractResponse
	err      error
}

func (f *fakeClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	if f.err != nil {
		return f.err
	}
	*out.(*extractResponse) = f.response
	return nil
}

func (f *fakeClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) ResetMetrics() {}

func (f *fakeClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func TestExtract(t *testing.T) {
	client := &fakeClient{response: extractResponse{
		Entities: []extractEntity{
			{Name: "Acme Corp", Type: "company", Description: "A manufacturer.", Confidence: 0.9},
			{Name: "Jordan Lee", Type: "PERSON", Description: "CEO of Acme.", Confidence: 0.8},
			{Name: "Mystery", Type: "unknown_type", Confidence: 0.9},
			{Name: "", Type: "company"},
		},
		Relationships: []extractRelationship{
			{SourceEntity: "ACME CORP", TargetEntity: "jordan lee", Type: "employs", Confidence: 0.7},
			{SourceEntity: "Acme Corp", TargetEntity: "Mystery", Type: "uses", Confidence: 0.9},
			{SourceEntity: "Acme Corp", TargetEntity: "Jordan Lee", Type: "owns", Confidence: 0.9},
		},
	}}

	entities, relationships, err := NewExtractor(client).Extract(context.Background(), "some text", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0].Name != "Acme Corp" || entities[0].Type != knowledge.EntityTypeCompany {
		t.Fatalf("unexpected first entity %+v", entities[0])
	}
	if entities[1].Type != knowledge.EntityTypePerson {
		t.Fatalf("entity type not normalized: %+v", entities[1])
	}
	for _, e := range entities {
		if e.ID == "" {
			t.Fatal("entity missing generated ID")
		}
		if len(e.SourceDocuments) != 1 || e.SourceDocuments[0] != "doc-1" {
			t.Fatalf("unexpected source documents %v", e.SourceDocuments)
		}
	}

	// Only the employs edge survives: "uses" has a dropped endpoint and
	// "owns" is not a valid relationship type.
	if len(relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(relationships))
	}
	rel := relationships[0]
	if rel.Type != knowledge.RelationshipEmploys {
		t.Fatalf("unexpected relationship type %q", rel.Type)
	}
	if rel.SourceEntityID != entities[0].ID || rel.TargetEntityID != entities[1].ID {
		t.Fatalf("relationship endpoints not resolved: %+v", rel)
	}
}

func TestExtractEmptyText(t *testing.T) {
	client := &fakeClient{err: errors.New("must not be called")}

	entities, relationships, err := NewExtractor(client).Extract(context.Background(), "   ", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 0 || len(relationships) != 0 {
		t.Fatal("expected no results for blank text")
	}
}

func TestExtractPropagatesClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("model unavailable")}

	if _, _, err := NewExtractor(client).Extract(context.Background(), "text", "doc-1"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestExtractDegradesOnMalformedResponse(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("%w: unmarshal failed after repair", ai.ErrMalformedResponse)}

	entities, relationships, err := NewExtractor(client).Extract(context.Background(), "text", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 0 || len(relationships) != 0 {
		t.Fatal("expected an empty extraction for an unparseable response")
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0.7, want: 0.7},
		{in: 0, want: 0.5},
		{in: -1, want: 0.5},
		{in: 1.5, want: 1},
	}
	for _, tt := range tests {
		if got := clampConfidence(tt.in); got != tt.want {
			t.Fatalf("clampConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
