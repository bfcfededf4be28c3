// Package chunker splits normalized document text into overlapping,
// size-bounded chunks suitable for embedding and extraction.
package chunker

import (
	"meridian/internal/util"
	"meridian/pkg/knowledge"
)

const (
	DefaultChunkSize    = 1000
	DefaultOverlapChars = 200
	DefaultAvgWordLen   = 10
)

// Options controls chunk sizing. ChunkSize is the maximum chunk length in
// characters. OverlapChars is the target overlap between consecutive chunks,
// converted to a word count via AvgWordLen.
type Options struct {
	ChunkSize    int
	OverlapChars int
	AvgWordLen   int
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.OverlapChars < 0 {
		o.OverlapChars = DefaultOverlapChars
	}
	if o.AvgWordLen <= 0 {
		o.AvgWordLen = DefaultAvgWordLen
	}
	return o
}

// Chunker splits text on word boundaries. Words are never broken, so a
// chunk may exceed ChunkSize only when a single word does.
type Chunker struct {
	opts Options
}

func New(opts Options) *Chunker {
	return &Chunker{opts: opts.withDefaults()}
}

// wordSpan is the half-open character range [start, end) of one word in
// the normalized text.
type wordSpan struct {
	start int
	end   int
}

// Split normalizes text and cuts it into overlapping chunks. Each chunk is a
// contiguous slice of the normalized text; Start and End are character
// offsets into it. Consecutive chunks share the trailing overlap words of
// the previous chunk. Empty or whitespace-only input yields no chunks.
func (c *Chunker) Split(documentID, text string) []knowledge.DocumentChunk {
	normalized := util.NormalizeText(text)
	if normalized == "" {
		return nil
	}

	words := scanWords(normalized)
	overlap := c.opts.OverlapChars / c.opts.AvgWordLen

	var chunks []knowledge.DocumentChunk
	first := 0
	for i := 0; i < len(words); i++ {
		if i == first {
			continue
		}
		// Length of the chunk if word i were included, spaces included.
		if words[i].end-words[first].start <= c.opts.ChunkSize {
			continue
		}

		chunks = append(chunks, makeChunk(documentID, len(chunks), normalized, words[first], words[i-1]))

		next := i - overlap
		if next <= first {
			next = first + 1
		}
		first = next
	}

	chunks = append(chunks, makeChunk(documentID, len(chunks), normalized, words[first], words[len(words)-1]))
	return chunks
}

func makeChunk(documentID string, index int, text string, firstWord, lastWord wordSpan) knowledge.DocumentChunk {
	return knowledge.DocumentChunk{
		DocumentID: documentID,
		Index:      index,
		Content:    text[firstWord.start:lastWord.end],
		Start:      firstWord.start,
		End:        lastWord.end,
	}
}

// scanWords returns the character spans of all space-separated words in
// normalized text. The input is assumed to contain single spaces only.
func scanWords(text string) []wordSpan {
	var words []wordSpan
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			if start >= 0 {
				words = append(words, wordSpan{start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, wordSpan{start: start, end: len(text)})
	}
	return words
}
