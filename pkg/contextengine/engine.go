// Package contextengine assembles knowledge context for a query by combining
// graph retrieval, semantic chunk search and a generated summary.
package contextengine

import (
	"context"
	"fmt"
	"time"

	"meridian/pkg/ai"
	"meridian/pkg/knowledge"
	"meridian/pkg/logger"
	"meridian/pkg/store"
	"meridian/pkg/vector"

	"golang.org/x/sync/errgroup"
)

// Options bound the size and shape of assembled contexts.
type Options struct {
	// MaxEntities caps the entities included in a context.
	MaxEntities int
	// MaxChunks caps the semantic chunks included in a context.
	MaxChunks int
	// ExpandEntityLimit is how many of the top entities get their
	// relationships expanded.
	ExpandEntityLimit int
	// MaxRelationships caps the relationships included in a context.
	MaxRelationships int
	// MaxPaths caps the paths returned by FindPaths.
	MaxPaths int
	// PathMaxLength is the default maximum hop count for FindPaths.
	PathMaxLength int
	// SemanticThreshold is the minimum similarity for chunk retrieval.
	SemanticThreshold float64
	// KeyTermLimit is how many key terms the broadened entity search tries.
	KeyTermLimit int
	// CallTimeout bounds each assembly when set.
	CallTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxEntities <= 0 {
		o.MaxEntities = 10
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = 5
	}
	if o.ExpandEntityLimit <= 0 {
		o.ExpandEntityLimit = 5
	}
	if o.MaxRelationships <= 0 {
		o.MaxRelationships = 20
	}
	if o.MaxPaths <= 0 {
		o.MaxPaths = 10
	}
	if o.PathMaxLength <= 0 {
		o.PathMaxLength = 3
	}
	if o.SemanticThreshold <= 0 {
		o.SemanticThreshold = 0.6
	}
	if o.KeyTermLimit <= 0 {
		o.KeyTermLimit = 3
	}
	return o
}

// Engine assembles contexts from a graph store, a vector index and an AI
// client for summaries.
type Engine struct {
	graph  store.GraphStore
	index  vector.Index
	client ai.GenerationClient
	opts   Options
}

func NewEngine(graph store.GraphStore, index vector.Index, client ai.GenerationClient, opts Options) *Engine {
	return &Engine{
		graph:  graph,
		index:  index,
		client: client,
		opts:   opts.withDefaults(),
	}
}

// BuildContext assembles context for the query. Retrieval failures degrade
// to an emptier context instead of failing the call, so the result is always
// usable.
func (e *Engine) BuildContext(ctx context.Context, query, taskType string) knowledge.Context {
	return e.buildContext(ctx, query, taskType, e.opts.MaxEntities, e.opts.MaxChunks)
}

// BuildContentContext assembles context for generating contentType content
// about topic, optionally targeted at an audience.
func (e *Engine) BuildContentContext(ctx context.Context, contentType, topic, targetAudience string) knowledge.Context {
	query := fmt.Sprintf("%s about %s", contentType, topic)
	if targetAudience != "" {
		query += fmt.Sprintf(" for %s", targetAudience)
	}
	return e.buildContext(ctx, query, "content_generation", e.opts.MaxEntities, e.opts.MaxChunks)
}

// BuildAnalysisContext assembles a wider context for strategic analysis
// questions, doubling the entity and chunk budgets.
func (e *Engine) BuildAnalysisContext(ctx context.Context, question string) knowledge.Context {
	return e.buildContext(ctx, question, "strategic_analysis", 2*e.opts.MaxEntities, 2*e.opts.MaxChunks)
}

func (e *Engine) buildContext(ctx context.Context, query, taskType string, maxEntities, maxChunks int) knowledge.Context {
	if e.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.CallTimeout)
		defer cancel()
	}

	logger.Info("building context", "query", query, "taskType", taskType)

	// Graph and vector retrieval are independent; relationship expansion
	// needs the entities first.
	var result knowledge.Context
	var g errgroup.Group
	g.Go(func() error {
		result.Entities = e.relevantEntities(ctx, query, maxEntities)
		result.Relationships = e.relevantRelationships(ctx, result.Entities)
		return nil
	})
	g.Go(func() error {
		result.Chunks = e.relevantChunks(ctx, query, maxChunks)
		return nil
	})
	_ = g.Wait()

	result.Documents = collectDocumentIDs(result.Entities, result.Relationships, result.Chunks)
	result.Summary = e.summarize(ctx, query, taskType, result)

	logger.Info("context built",
		"entities", len(result.Entities),
		"relationships", len(result.Relationships),
		"chunks", len(result.Chunks))

	return result
}

// FindPaths returns up to MaxPaths undirected paths between the two
// entities. A maxLength of zero or less falls back to the default.
func (e *Engine) FindPaths(ctx context.Context, sourceID, targetID string, maxLength int) ([]knowledge.Path, error) {
	if maxLength <= 0 {
		maxLength = e.opts.PathMaxLength
	}
	return e.graph.FindPaths(ctx, sourceID, targetID, maxLength, e.opts.MaxPaths)
}

// collectDocumentIDs gathers the distinct source documents of all context
// components, preserving first-seen order.
func collectDocumentIDs(entities []knowledge.Entity, relationships []knowledge.Relationship, chunks []knowledge.SemanticChunk) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	for _, entity := range entities {
		for _, id := range entity.SourceDocuments {
			add(id)
		}
	}
	for _, rel := range relationships {
		for _, id := range rel.SourceDocuments {
			add(id)
		}
	}
	for _, chunk := range chunks {
		add(chunk.DocumentID)
	}
	return out
}
