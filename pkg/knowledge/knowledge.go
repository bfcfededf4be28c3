package knowledge

import "fmt"

// EntityType classifies an entity in the knowledge graph. The set is closed:
// extraction output carrying any other value is discarded.
type EntityType string

const (
	EntityTypeCompany      EntityType = "company"
	EntityTypePerson       EntityType = "person"
	EntityTypeProduct      EntityType = "product"
	EntityTypeService      EntityType = "service"
	EntityTypeLocation     EntityType = "location"
	EntityTypeIndustry     EntityType = "industry"
	EntityTypeTechnology   EntityType = "technology"
	EntityTypeConcept      EntityType = "concept"
	EntityTypeEvent        EntityType = "event"
	EntityTypeOrganization EntityType = "organization"
)

// EntityTypes lists all valid entity types in declaration order.
var EntityTypes = []EntityType{
	EntityTypeCompany,
	EntityTypePerson,
	EntityTypeProduct,
	EntityTypeService,
	EntityTypeLocation,
	EntityTypeIndustry,
	EntityTypeTechnology,
	EntityTypeConcept,
	EntityTypeEvent,
	EntityTypeOrganization,
}

// ValidEntityType reports whether t is a member of the closed entity type set.
func ValidEntityType(t EntityType) bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RelationshipType classifies a directed edge between two entities.
// The set is closed, mirroring EntityType.
type RelationshipType string

const (
	RelationshipCompetesWith RelationshipType = "competes_with"
	RelationshipPartnersWith RelationshipType = "partners_with"
	RelationshipAcquires     RelationshipType = "acquires"
	RelationshipInvestsIn    RelationshipType = "invests_in"
	RelationshipEmploys      RelationshipType = "employs"
	RelationshipFounded      RelationshipType = "founded"
	RelationshipLocatedIn    RelationshipType = "located_in"
	RelationshipOperatesIn   RelationshipType = "operates_in"
	RelationshipProvides     RelationshipType = "provides"
	RelationshipUses         RelationshipType = "uses"
	RelationshipSimilarTo    RelationshipType = "similar_to"
	RelationshipParentOf     RelationshipType = "parent_of"
	RelationshipSubsidiaryOf RelationshipType = "subsidiary_of"
)

// RelationshipTypes lists all valid relationship types in declaration order.
var RelationshipTypes = []RelationshipType{
	RelationshipCompetesWith,
	RelationshipPartnersWith,
	RelationshipAcquires,
	RelationshipInvestsIn,
	RelationshipEmploys,
	RelationshipFounded,
	RelationshipLocatedIn,
	RelationshipOperatesIn,
	RelationshipProvides,
	RelationshipUses,
	RelationshipSimilarTo,
	RelationshipParentOf,
	RelationshipSubsidiaryOf,
}

// ValidRelationshipType reports whether t is a member of the closed relationship type set.
func ValidRelationshipType(t RelationshipType) bool {
	for _, known := range RelationshipTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Entity represents a node in the knowledge graph: a named real-world object
// or concept extracted from documents or created directly via the API.
//
// Entities merge by ID on repeated upserts. SourceDocuments records which
// documents contributed information to the entity.
type Entity struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Type            EntityType        `json:"entity_type"`
	Description     string            `json:"description,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	Confidence      float64           `json:"confidence_score"`
	SourceDocuments []string          `json:"source_documents,omitempty"`
	Aliases         []string          `json:"aliases,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
}

// Relationship represents a directed, typed edge between two entities.
// Both endpoints must reference existing entities; the graph store upserts
// relationships keyed on the (source, target) pair.
type Relationship struct {
	ID              string            `json:"id"`
	SourceEntityID  string            `json:"source_entity_id"`
	TargetEntityID  string            `json:"target_entity_id"`
	Type            RelationshipType  `json:"relationship_type"`
	Properties      map[string]string `json:"properties,omitempty"`
	Confidence      float64           `json:"confidence_score"`
	SourceDocuments []string          `json:"source_documents,omitempty"`
}

// DocumentChunk is a contiguous, overlapping segment of a document's
// normalized text. Offsets are character positions into the normalized
// text and are non-decreasing across increasing chunk index.
type DocumentChunk struct {
	DocumentID string            `json:"document_id"`
	Index      int               `json:"chunk_index"`
	Content    string            `json:"content"`
	Start      int               `json:"start_position"`
	End        int               `json:"end_position"`
	Embedding  []float32         `json:"embedding,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Key returns the vector index key for the chunk.
func (c DocumentChunk) Key() string {
	return ChunkKey(c.DocumentID, c.Index)
}

// ChunkKey builds the canonical vector index key for a document chunk.
func ChunkKey(documentID string, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}

// SemanticChunk is a retrieval result from the vector index: chunk content
// together with its similarity to the query and its provenance.
type SemanticChunk struct {
	Content    string            `json:"content"`
	Similarity float64           `json:"similarity_score"`
	DocumentID string            `json:"document_id"`
	ChunkIndex int               `json:"chunk_index"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// PathStepKind discriminates the elements of a graph path.
type PathStepKind string

const (
	PathStepEntity       PathStepKind = "entity"
	PathStepRelationship PathStepKind = "relationship"
)

// PathStep is one element of a path: either an entity or a relationship.
// Exactly one of Entity and Relationship is set, matching Kind.
type PathStep struct {
	Kind         PathStepKind  `json:"type"`
	Entity       *Entity       `json:"entity,omitempty"`
	Relationship *Relationship `json:"relationship,omitempty"`
}

// Path is an alternating entity/relationship sequence connecting two
// entities, starting and ending with an entity.
type Path []PathStep

// Context is the per-query bundle of knowledge used to ground a generation
// request. It is transient: constructed per request, never persisted, and
// holds only copies of store data.
type Context struct {
	Entities      []Entity        `json:"entities"`
	Relationships []Relationship  `json:"relationships"`
	Documents     []string        `json:"documents"`
	Chunks        []SemanticChunk `json:"semantic_chunks"`
	Summary       string          `json:"context_summary"`
}

// Empty reports whether the context carries no retrieved knowledge.
func (c Context) Empty() bool {
	return len(c.Entities) == 0 && len(c.Relationships) == 0 && len(c.Chunks) == 0
}

// GraphStatistics summarizes the contents of the graph store.
type GraphStatistics struct {
	TotalEntities      int64                      `json:"total_entities"`
	TotalRelationships int64                      `json:"total_relationships"`
	EntityTypes        map[EntityType]int64       `json:"entity_types"`
	RelationshipTypes  map[RelationshipType]int64 `json:"relationship_types"`
}
