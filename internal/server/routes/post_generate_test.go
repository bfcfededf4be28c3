package routes

import (
	"strings"
	"testing"

	"meridian/pkg/knowledge"
)

func TestRenderContext(t *testing.T) {
	result := knowledge.Context{
		Entities: []knowledge.Entity{
			{ID: "e1", Name: "Acme", Type: knowledge.EntityTypeCompany, Description: "Widget maker"},
			{ID: "e2", Name: "Globex", Type: knowledge.EntityTypeCompany},
		},
		Relationships: []knowledge.Relationship{
			{SourceEntityID: "e1", TargetEntityID: "e2", Type: knowledge.RelationshipCompetesWith},
			{SourceEntityID: "e1", TargetEntityID: "unknown", Type: knowledge.RelationshipUses},
		},
		Chunks: []knowledge.SemanticChunk{
			{Content: "Acme released a new widget."},
		},
	}

	text := renderContext(result)

	for _, want := range []string{
		"- Acme (company): Widget maker",
		"- Globex (company)\n",
		"- Acme competes_with Globex",
		"- Acme uses unknown",
		"Acme released a new widget.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered context missing %q:\n%s", want, text)
		}
	}
}

func TestRenderContextEmpty(t *testing.T) {
	if got := renderContext(knowledge.Context{}); got != "No relevant knowledge found." {
		t.Fatalf("unexpected empty rendering: %q", got)
	}
}
