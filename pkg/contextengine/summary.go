package contextengine

import (
	"context"
	"fmt"
	"strings"

	"meridian/pkg/knowledge"
	"meridian/pkg/logger"
)

const summaryPromptTemplate = `# Task Context
You summarize the knowledge context assembled for a query so a downstream task knows what material is available.

# Background Data
Query: %s
Task type: %s

Relevant entities: %d found
Relevant relationships: %d found
Relevant document chunks: %d found

## rules
- Write 2 to 3 sentences.
- Describe what context is available and how it relates to the query.
- Output plain text only, no markdown.`

// summarize asks the AI client for a short description of the assembled
// context. When generation fails or no client is configured, a deterministic
// count-based summary is returned instead.
func (e *Engine) summarize(ctx context.Context, query, taskType string, result knowledge.Context) string {
	fallback := fmt.Sprintf("Context assembled with %d entities, %d relationships, and %d document chunks.",
		len(result.Entities), len(result.Relationships), len(result.Chunks))

	if e.client == nil {
		return fallback
	}

	prompt := fmt.Sprintf(summaryPromptTemplate,
		query, taskType, len(result.Entities), len(result.Relationships), len(result.Chunks))

	summary, err := e.client.GenerateCompletion(ctx, prompt)
	if err != nil {
		logger.Error("context summary generation failed", "error", err)
		return fallback
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return fallback
	}
	return summary
}
