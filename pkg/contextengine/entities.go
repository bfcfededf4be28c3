package contextengine

import (
	"context"

	"meridian/pkg/knowledge"
	"meridian/pkg/logger"
)

// relevantEntities searches the graph for the full query first. When that
// yields fewer than half the budget it broadens the search with individual
// key terms, deduplicating by entity ID with the direct matches kept first.
func (e *Engine) relevantEntities(ctx context.Context, query string, maxEntities int) []knowledge.Entity {
	entities, err := e.graph.SearchEntities(ctx, query, nil, maxEntities)
	if err != nil {
		logger.Error("entity search failed", "query", query, "error", err)
		return nil
	}

	if len(entities) < maxEntities/2 {
		seen := make(map[string]bool, len(entities))
		for _, entity := range entities {
			seen[entity.ID] = true
		}

		for _, term := range keyTerms(query, e.opts.KeyTermLimit) {
			broader, err := e.graph.SearchEntities(ctx, term, nil, maxEntities/2)
			if err != nil {
				logger.Error("broadened entity search failed", "term", term, "error", err)
				continue
			}
			for _, entity := range broader {
				if seen[entity.ID] {
					continue
				}
				seen[entity.ID] = true
				entities = append(entities, entity)
			}
		}
	}

	if len(entities) > maxEntities {
		entities = entities[:maxEntities]
	}
	return entities
}
