package extract

import (
	"fmt"
	"strings"

	"meridian/pkg/knowledge"
)

const extractPromptTemplate = `# Task Context
You are tasked with extracting **structured entity and relationship information** from the provided text. Capture all details explicitly present in the text, without omission or invention.

# Background Data
- **Entity_types:** [%s]
- **Relationship_types:** [%s]

# Detailed Task Description & Rules

## Entity Extraction
1. Identify all entities of the specified types. Use only the provided entity types; skip anything that does not fit one of them.
2. For each entity, extract:
   - **name:** the name of the entity as written in the text.
   - **entity_type:** one of the provided types, exactly as listed.
   - **description:** a comprehensive description of all attributes, roles, activities, and other explicit details in the text.
   - **confidence_score:** a value between 0.0 and 1.0 reflecting how clearly the text supports the extraction.

## Relationship Extraction
1. From the identified entities, determine all clear relationships between pairs of entities.
2. For each relationship, extract:
   - **source_entity** and **target_entity:** names matching entities from the entity list exactly.
   - **relationship_type:** one of the provided types, exactly as listed.
   - **confidence_score:** a value between 0.0 and 1.0.
3. Only report relationships explicitly supported by the text. If no relationships are present, return an empty array.

Output must be valid JSON only (no commentary, no extra text).`

func extractSystemPrompt() string {
	entityTypes := make([]string, 0, len(knowledge.EntityTypes))
	for _, t := range knowledge.EntityTypes {
		entityTypes = append(entityTypes, string(t))
	}
	relTypes := make([]string, 0, len(knowledge.RelationshipTypes))
	for _, t := range knowledge.RelationshipTypes {
		relTypes = append(relTypes, string(t))
	}
	return fmt.Sprintf(
		extractPromptTemplate,
		strings.Join(entityTypes, ", "),
		strings.Join(relTypes, ", "),
	)
}
