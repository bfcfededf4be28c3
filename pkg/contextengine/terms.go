package contextengine

import "strings"

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true, "might": true,
	"can": true, "what": true, "when": true, "where": true, "why": true,
	"how": true, "who": true, "which": true, "that": true, "this": true,
	"these": true, "those": true,
}

// keyTerms extracts up to limit search terms from a query by dropping stop
// words and anything shorter than three characters.
func keyTerms(query string, limit int) []string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if stopWords[word] || len(word) <= 2 {
			continue
		}
		terms = append(terms, word)
		if len(terms) == limit {
			break
		}
	}
	return terms
}
