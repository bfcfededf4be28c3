// Package extract turns document text into knowledge graph entities and
// relationships using structured LLM output.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meridian/pkg/ai"
	"meridian/pkg/knowledge"
	"meridian/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type extractEntity struct {
	Name        string  `json:"name" jsonschema_description:"Name of the entity as it appears in the text"`
	Type        string  `json:"entity_type" jsonschema_description:"One of the provided entity types"`
	Description string  `json:"description" jsonschema_description:"Comprehensive description of the entity's attributes, activities and information provided by the text"`
	Confidence  float64 `json:"confidence_score" jsonschema_description:"Confidence in this extraction between 0.0 and 1.0"`
}

type extractRelationship struct {
	SourceEntity string  `json:"source_entity" jsonschema_description:"Name of the source entity, exactly as listed in the entities"`
	TargetEntity string  `json:"target_entity" jsonschema_description:"Name of the target entity, exactly as listed in the entities"`
	Type         string  `json:"relationship_type" jsonschema_description:"One of the provided relationship types"`
	Confidence   float64 `json:"confidence_score" jsonschema_description:"Confidence in this relationship between 0.0 and 1.0"`
}

type extractResponse struct {
	Entities      []extractEntity       `json:"entities" jsonschema_description:"Entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships between the identified entities"`
}

// Extractor extracts typed entities and relationships from text chunks.
type Extractor struct {
	client ai.GenerationClient
}

// NewExtractor creates an Extractor backed by the given AI client.
func NewExtractor(client ai.GenerationClient) *Extractor {
	return &Extractor{client: client}
}

// Extract runs structured extraction over the given text. Items carrying an
// unknown entity or relationship type are dropped, as are relationships
// whose endpoints do not resolve to an extracted entity. Entity name
// matching is case-insensitive.
//
// A model response that cannot be parsed yields an empty extraction rather
// than an error, so one bad completion does not fail a whole document.
// Transport and backend errors still propagate.
func (e *Extractor) Extract(
	ctx context.Context,
	text string,
	documentID string,
) ([]knowledge.Entity, []knowledge.Relationship, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, nil
	}

	var res extractResponse
	err := e.client.GenerateCompletionWithFormat(
		ctx,
		"extract_entities_and_relationships",
		"Extract typed entities and relationships from a document excerpt.",
		text,
		&res,
		ai.WithSystemPrompts(extractSystemPrompt()),
	)
	if err != nil {
		if errors.Is(err, ai.ErrMalformedResponse) {
			logger.Warn("Discarding unparseable extraction response", "document_id", documentID, "err", err)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("extraction failed: %w", err)
	}

	entities := make([]knowledge.Entity, 0, len(res.Entities))
	byName := make(map[string]string, len(res.Entities))
	for _, raw := range res.Entities {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			continue
		}
		entityType := knowledge.EntityType(strings.ToLower(strings.TrimSpace(raw.Type)))
		if !knowledge.ValidEntityType(entityType) {
			continue
		}
		nameKey := strings.ToLower(name)
		if _, exists := byName[nameKey]; exists {
			continue
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate entity ID: %w", err)
		}
		entities = append(entities, knowledge.Entity{
			ID:              id,
			Name:            name,
			Type:            entityType,
			Description:     strings.TrimSpace(raw.Description),
			Confidence:      clampConfidence(raw.Confidence),
			SourceDocuments: []string{documentID},
		})
		byName[nameKey] = id
	}

	relationships := make([]knowledge.Relationship, 0, len(res.Relationships))
	for _, raw := range res.Relationships {
		relType := knowledge.RelationshipType(strings.ToLower(strings.TrimSpace(raw.Type)))
		if !knowledge.ValidRelationshipType(relType) {
			continue
		}
		sourceID, ok := byName[strings.ToLower(strings.TrimSpace(raw.SourceEntity))]
		if !ok {
			continue
		}
		targetID, ok := byName[strings.ToLower(strings.TrimSpace(raw.TargetEntity))]
		if !ok || sourceID == targetID {
			continue
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate relationship ID: %w", err)
		}
		relationships = append(relationships, knowledge.Relationship{
			ID:              id,
			SourceEntityID:  sourceID,
			TargetEntityID:  targetID,
			Type:            relType,
			Confidence:      clampConfidence(raw.Confidence),
			SourceDocuments: []string{documentID},
		})
	}

	return entities, relationships, nil
}

func clampConfidence(c float64) float64 {
	if c <= 0 {
		return 0.5
	}
	if c > 1 {
		return 1
	}
	return c
}
