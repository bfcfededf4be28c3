package contextengine

import (
	"context"

	"meridian/pkg/knowledge"
	"meridian/pkg/logger"
)

// relevantRelationships expands the top entities into their relationships,
// deduplicating by relationship ID and capping the total.
func (e *Engine) relevantRelationships(ctx context.Context, entities []knowledge.Entity) []knowledge.Relationship {
	expand := entities
	if len(expand) > e.opts.ExpandEntityLimit {
		expand = expand[:e.opts.ExpandEntityLimit]
	}

	seen := make(map[string]bool)
	var relationships []knowledge.Relationship
	for _, entity := range expand {
		related, err := e.graph.GetRelationships(ctx, entity.ID, nil)
		if err != nil {
			logger.Error("relationship lookup failed", "entityID", entity.ID, "error", err)
			continue
		}
		for _, rel := range related {
			if seen[rel.ID] {
				continue
			}
			seen[rel.ID] = true
			relationships = append(relationships, rel)
			if len(relationships) == e.opts.MaxRelationships {
				return relationships
			}
		}
	}
	return relationships
}
