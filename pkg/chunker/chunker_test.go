package chunker

import (
	"strings"
	"testing"
)

// uniformText builds count space-separated words of wordLen characters each.
func uniformText(count, wordLen int) string {
	words := make([]string, count)
	for i := range words {
		words[i] = strings.Repeat(string(rune('a'+i%26)), wordLen)
	}
	return strings.Join(words, " ")
}

func TestSplitOverlappingChunks(t *testing.T) {
	// 250 words of 9 characters: 10 chars per word including the
	// separating space, so 100 words fill a 1000 character chunk and
	// a 200 character overlap carries 20 words forward.
	text := uniformText(250, 9)
	c := New(Options{ChunkSize: 1000, OverlapChars: 200, AvgWordLen: 10})

	chunks := c.Split("doc-1", text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.DocumentID != "doc-1" {
			t.Fatalf("chunk %d: unexpected document id %q", i, chunk.DocumentID)
		}
		if chunk.Index != i {
			t.Fatalf("chunk %d: unexpected index %d", i, chunk.Index)
		}
		if len(chunk.Content) > 1000 {
			t.Fatalf("chunk %d: length %d exceeds chunk size", i, len(chunk.Content))
		}
		if chunk.End-chunk.Start != len(chunk.Content) {
			t.Fatalf("chunk %d: offsets [%d,%d) do not match content length %d",
				i, chunk.Start, chunk.End, len(chunk.Content))
		}
		if text[chunk.Start:chunk.End] != chunk.Content {
			t.Fatalf("chunk %d: content does not match source slice", i)
		}
	}

	// Consecutive chunks share exactly 20 words.
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Content)
		tail := strings.Join(prev[len(prev)-20:], " ")
		if !strings.HasPrefix(chunks[i].Content, tail) {
			t.Fatalf("chunk %d does not start with the previous chunk's last 20 words", i)
		}
	}

	// The final chunk reaches the end of the text.
	last := chunks[len(chunks)-1]
	if last.End != len(text) {
		t.Fatalf("final chunk ends at %d, want %d", last.End, len(text))
	}
	if !strings.HasSuffix(last.Content, strings.Fields(text)[249]) {
		t.Fatal("final chunk is missing the last word")
	}
}

func TestSplitShortText(t *testing.T) {
	c := New(Options{})

	chunks := c.Split("doc-1", "a short document that fits in one chunk")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "a short document that fits in one chunk" {
		t.Fatalf("unexpected content %q", chunks[0].Content)
	}
	if chunks[0].Start != 0 || chunks[0].End != len(chunks[0].Content) {
		t.Fatalf("unexpected offsets [%d,%d)", chunks[0].Start, chunks[0].End)
	}
}

func TestSplitEmptyText(t *testing.T) {
	c := New(Options{})

	if got := c.Split("doc-1", ""); got != nil {
		t.Fatalf("expected no chunks for empty text, got %d", len(got))
	}
	if got := c.Split("doc-1", "   \n\t  "); got != nil {
		t.Fatalf("expected no chunks for whitespace text, got %d", len(got))
	}
}

func TestSplitNormalizesWhitespace(t *testing.T) {
	c := New(Options{})

	chunks := c.Split("doc-1", "line one\r\nline   two\n\nline three")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "line one line two line three" {
		t.Fatalf("unexpected content %q", chunks[0].Content)
	}
}

func TestSplitOversizedWord(t *testing.T) {
	// A single word longer than the chunk size is never broken.
	word := strings.Repeat("x", 50)
	c := New(Options{ChunkSize: 20, OverlapChars: 4, AvgWordLen: 2})

	chunks := c.Split("doc-1", "start "+word+" end")
	for i, chunk := range chunks {
		if strings.Contains(chunk.Content, word[:25]) && !strings.Contains(chunk.Content, word) {
			t.Fatalf("chunk %d broke a word", i)
		}
	}

	var joined []string
	for _, chunk := range chunks {
		joined = append(joined, chunk.Content)
	}
	if !strings.Contains(strings.Join(joined, " "), word) {
		t.Fatal("oversized word missing from output")
	}
}

func TestSplitAlwaysAdvances(t *testing.T) {
	// Overlap larger than a whole chunk must not stall the scan.
	text := uniformText(40, 4)
	c := New(Options{ChunkSize: 10, OverlapChars: 100, AvgWordLen: 1})

	chunks := c.Split("doc-1", text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start <= chunks[i-1].Start {
			t.Fatalf("chunk %d start %d did not advance past %d", i, chunks[i].Start, chunks[i-1].Start)
		}
	}
	if chunks[len(chunks)-1].End != len(text) {
		t.Fatal("final chunk does not reach end of text")
	}
}
