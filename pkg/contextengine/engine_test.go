package contextengine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"meridian/pkg/ai"
	"meridian/pkg/knowledge"
)

type fakeGraph struct {
	searchResults map[string][]knowledge.Entity
	searchCalls   []string
	searchLimits  []int
	searchErr     error

	relationships map[string][]knowledge.Relationship
	relationErr   error

	paths    []knowledge.Path
	pathArgs []any
}

func (f *fakeGraph) UpsertEntity(ctx context.Context, entity knowledge.Entity) (knowledge.Entity, error) {
	return entity, nil
}

func (f *fakeGraph) GetEntity(ctx context.Context, id string) (knowledge.Entity, error) {
	return knowledge.Entity{}, errors.New("not implemented")
}

func (f *fakeGraph) DeleteEntity(ctx context.Context, id string) error { return nil }

func (f *fakeGraph) SearchEntities(ctx context.Context, query string, types []knowledge.EntityType, limit int) ([]knowledge.Entity, error) {
	f.searchCalls = append(f.searchCalls, query)
	f.searchLimits = append(f.searchLimits, limit)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults[query], nil
}

func (f *fakeGraph) UpsertRelationship(ctx context.Context, rel knowledge.Relationship) (knowledge.Relationship, error) {
	return rel, nil
}

func (f *fakeGraph) GetRelationships(ctx context.Context, entityID string, types []knowledge.RelationshipType) ([]knowledge.Relationship, error) {
	if f.relationErr != nil {
		return nil, f.relationErr
	}
	return f.relationships[entityID], nil
}

func (f *fakeGraph) FindPaths(ctx context.Context, sourceID, targetID string, maxLength, maxPaths int) ([]knowledge.Path, error) {
	f.pathArgs = []any{sourceID, targetID, maxLength, maxPaths}
	return f.paths, nil
}

func (f *fakeGraph) DeleteDocument(ctx context.Context, documentID string) error { return nil }

func (f *fakeGraph) Statistics(ctx context.Context) (knowledge.GraphStatistics, error) {
	return knowledge.GraphStatistics{}, nil
}

type fakeIndex struct {
	chunks    []knowledge.SemanticChunk
	err       error
	limit     int
	threshold float64
}

func (f *fakeIndex) IndexChunks(ctx context.Context, chunks []knowledge.DocumentChunk) error {
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, query string, limit int, threshold float64, documentIDs []string) ([]knowledge.SemanticChunk, error) {
	f.limit = limit
	f.threshold = threshold
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

func (f *fakeIndex) DeleteDocument(ctx context.Context, documentID string) error { return nil }

func (f *fakeIndex) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakeAI struct {
	completion string
	err        error
	prompts    []string
}

func (f *fakeAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func (f *fakeAI) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return errors.New("not implemented")
}

func (f *fakeAI) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAI) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAI) ResetMetrics() {}

func (f *fakeAI) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func entityN(id string) knowledge.Entity {
	return knowledge.Entity{
		ID:              id,
		Name:            "entity " + id,
		Type:            knowledge.EntityTypeCompany,
		SourceDocuments: []string{"doc-" + id},
	}
}

func TestBuildContextDirectMatches(t *testing.T) {
	graph := &fakeGraph{
		searchResults: map[string][]knowledge.Entity{
			"acme products": {entityN("1"), entityN("2"), entityN("3"), entityN("4"), entityN("5")},
		},
		relationships: map[string][]knowledge.Relationship{
			"1": {{ID: "r1", SourceEntityID: "1", TargetEntityID: "2", Type: knowledge.RelationshipProvides, SourceDocuments: []string{"doc-rel"}}},
		},
	}
	index := &fakeIndex{chunks: []knowledge.SemanticChunk{
		{Content: "chunk text", Similarity: 0.9, DocumentID: "doc-chunk", ChunkIndex: 0},
	}}
	client := &fakeAI{completion: "A short summary."}

	engine := NewEngine(graph, index, client, Options{})
	result := engine.BuildContext(context.Background(), "acme products", "general")

	if len(result.Entities) != 5 {
		t.Fatalf("expected 5 entities, got %d", len(result.Entities))
	}
	// Five direct matches meet half the default budget of 10, so no
	// broadened term searches should run.
	if len(graph.searchCalls) != 1 {
		t.Fatalf("expected a single search call, got %v", graph.searchCalls)
	}
	if len(result.Relationships) != 1 || result.Relationships[0].ID != "r1" {
		t.Fatalf("unexpected relationships: %+v", result.Relationships)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(result.Chunks))
	}
	if result.Summary != "A short summary." {
		t.Fatalf("unexpected summary: %q", result.Summary)
	}

	wantDocs := map[string]bool{
		"doc-1": true, "doc-2": true, "doc-3": true, "doc-4": true,
		"doc-5": true, "doc-rel": true, "doc-chunk": true,
	}
	if len(result.Documents) != len(wantDocs) {
		t.Fatalf("unexpected documents: %v", result.Documents)
	}
	for _, id := range result.Documents {
		if !wantDocs[id] {
			t.Fatalf("unexpected document ID %q", id)
		}
	}
}

func TestBuildContextBroadensSparseResults(t *testing.T) {
	graph := &fakeGraph{
		searchResults: map[string][]knowledge.Entity{
			"quantum computing startups": {entityN("1")},
			"quantum":                    {entityN("1"), entityN("2")},
			"computing":                  {entityN("3")},
			"startups":                   nil,
		},
	}
	engine := NewEngine(graph, &fakeIndex{}, &fakeAI{completion: "s"}, Options{})

	result := engine.BuildContext(context.Background(), "quantum computing startups", "general")

	want := []string{"quantum computing startups", "quantum", "computing", "startups"}
	if len(graph.searchCalls) != len(want) {
		t.Fatalf("search calls = %v, want %v", graph.searchCalls, want)
	}
	for i, q := range want {
		if graph.searchCalls[i] != q {
			t.Fatalf("search call %d = %q, want %q", i, graph.searchCalls[i], q)
		}
	}
	if graph.searchLimits[1] != 5 {
		t.Fatalf("broadened search limit = %d, want 5", graph.searchLimits[1])
	}

	ids := make([]string, len(result.Entities))
	for i, entity := range result.Entities {
		ids[i] = entity.ID
	}
	if len(ids) != 3 || ids[0] != "1" || ids[1] != "2" || ids[2] != "3" {
		t.Fatalf("unexpected entity IDs: %v", ids)
	}
}

func TestBuildContextStopsBroadeningAtTermLimit(t *testing.T) {
	graph := &fakeGraph{searchResults: map[string][]knowledge.Entity{}}
	engine := NewEngine(graph, &fakeIndex{}, &fakeAI{completion: "s"}, Options{})

	engine.BuildContext(context.Background(), "alpha beta gamma delta epsilon zeta", "general")

	// The full query plus the first three key terms.
	if len(graph.searchCalls) != 4 {
		t.Fatalf("expected 4 search calls, got %v", graph.searchCalls)
	}
}

func TestBuildContextTruncatesEntities(t *testing.T) {
	var many []knowledge.Entity
	for i := range 15 {
		many = append(many, entityN(fmt.Sprintf("%d", i)))
	}
	graph := &fakeGraph{searchResults: map[string][]knowledge.Entity{"query": many}}
	engine := NewEngine(graph, &fakeIndex{}, &fakeAI{completion: "s"}, Options{})

	result := engine.BuildContext(context.Background(), "query", "general")
	if len(result.Entities) != 10 {
		t.Fatalf("expected 10 entities, got %d", len(result.Entities))
	}
}

func TestBuildContextRelationshipBounds(t *testing.T) {
	graph := &fakeGraph{
		searchResults: map[string][]knowledge.Entity{"query": {
			entityN("1"), entityN("2"), entityN("3"), entityN("4"),
			entityN("5"), entityN("6"), entityN("7"),
		}},
		relationships: map[string][]knowledge.Relationship{},
	}
	for i := 1; i <= 7; i++ {
		id := fmt.Sprintf("%d", i)
		var rels []knowledge.Relationship
		for j := range 6 {
			rels = append(rels, knowledge.Relationship{
				ID:             fmt.Sprintf("r%s-%d", id, j),
				SourceEntityID: id,
				TargetEntityID: "x",
				Type:           knowledge.RelationshipUses,
			})
		}
		graph.relationships[id] = rels
	}

	engine := NewEngine(graph, &fakeIndex{}, &fakeAI{completion: "s"}, Options{})
	result := engine.BuildContext(context.Background(), "query", "general")

	if len(result.Relationships) != 20 {
		t.Fatalf("expected 20 relationships, got %d", len(result.Relationships))
	}
	// Only the first five entities are expanded, so nothing from entity 6
	// or 7 should appear.
	for _, rel := range result.Relationships {
		if rel.SourceEntityID == "6" || rel.SourceEntityID == "7" {
			t.Fatalf("relationship from unexpanded entity: %+v", rel)
		}
	}
}

func TestBuildContextDegradesOnFailures(t *testing.T) {
	graph := &fakeGraph{searchErr: errors.New("graph down")}
	index := &fakeIndex{err: errors.New("index down")}
	client := &fakeAI{err: errors.New("model down")}

	engine := NewEngine(graph, index, client, Options{})
	result := engine.BuildContext(context.Background(), "anything", "general")

	if len(result.Entities) != 0 || len(result.Relationships) != 0 || len(result.Chunks) != 0 {
		t.Fatalf("expected empty context, got %+v", result)
	}
	if result.Summary != "Context assembled with 0 entities, 0 relationships, and 0 document chunks." {
		t.Fatalf("unexpected fallback summary: %q", result.Summary)
	}
}

func TestBuildContextSummaryFallsBackOnBlankCompletion(t *testing.T) {
	graph := &fakeGraph{searchResults: map[string][]knowledge.Entity{}}
	engine := NewEngine(graph, &fakeIndex{}, &fakeAI{completion: "  \n"}, Options{})

	result := engine.BuildContext(context.Background(), "query", "general")
	if !strings.HasPrefix(result.Summary, "Context assembled with") {
		t.Fatalf("expected fallback summary, got %q", result.Summary)
	}
}

func TestBuildContextSemanticThreshold(t *testing.T) {
	index := &fakeIndex{}
	engine := NewEngine(&fakeGraph{}, index, &fakeAI{completion: "s"}, Options{SemanticThreshold: 0.8})

	engine.BuildContext(context.Background(), "query", "general")
	if index.threshold != 0.8 {
		t.Fatalf("threshold = %v, want 0.8", index.threshold)
	}
	if index.limit != 5 {
		t.Fatalf("limit = %d, want 5", index.limit)
	}
}

func TestBuildAnalysisContextWidensBudgets(t *testing.T) {
	graph := &fakeGraph{searchResults: map[string][]knowledge.Entity{}}
	index := &fakeIndex{}
	engine := NewEngine(graph, index, &fakeAI{completion: "s"}, Options{})

	engine.BuildAnalysisContext(context.Background(), "market position")
	if graph.searchLimits[0] != 20 {
		t.Fatalf("entity limit = %d, want 20", graph.searchLimits[0])
	}
	if index.limit != 10 {
		t.Fatalf("chunk limit = %d, want 10", index.limit)
	}
}

func TestBuildContentContextQuery(t *testing.T) {
	graph := &fakeGraph{searchResults: map[string][]knowledge.Entity{}}
	engine := NewEngine(graph, &fakeIndex{}, &fakeAI{completion: "s"}, Options{})

	engine.BuildContentContext(context.Background(), "blog post", "edge computing", "engineers")
	if graph.searchCalls[0] != "blog post about edge computing for engineers" {
		t.Fatalf("unexpected query: %q", graph.searchCalls[0])
	}

	graph.searchCalls = nil
	engine.BuildContentContext(context.Background(), "blog post", "edge computing", "")
	if graph.searchCalls[0] != "blog post about edge computing" {
		t.Fatalf("unexpected query without audience: %q", graph.searchCalls[0])
	}
}

func TestFindPathsDefaults(t *testing.T) {
	graph := &fakeGraph{}
	engine := NewEngine(graph, &fakeIndex{}, &fakeAI{}, Options{})

	if _, err := engine.FindPaths(context.Background(), "a", "b", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{"a", "b", 3, 10}
	for i, v := range want {
		if graph.pathArgs[i] != v {
			t.Fatalf("path arg %d = %v, want %v", i, graph.pathArgs[i], v)
		}
	}

	if _, err := engine.FindPaths(context.Background(), "a", "b", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if graph.pathArgs[2] != 2 {
		t.Fatalf("maxLength = %v, want 2", graph.pathArgs[2])
	}
}

func TestKeyTerms(t *testing.T) {
	terms := keyTerms("What is the market position of Acme in cloud computing today", 5)
	want := []string{"market", "position", "acme", "cloud", "computing"}
	if len(terms) != len(want) {
		t.Fatalf("terms = %v, want %v", terms, want)
	}
	for i, term := range want {
		if terms[i] != term {
			t.Fatalf("term %d = %q, want %q", i, terms[i], term)
		}
	}

	if got := keyTerms("is of to", 5); got != nil {
		t.Fatalf("expected no terms, got %v", got)
	}

	if got := keyTerms("alpha beta gamma delta", 2); len(got) != 2 {
		t.Fatalf("expected 2 terms, got %v", got)
	}
}
