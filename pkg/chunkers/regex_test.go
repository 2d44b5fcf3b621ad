package chunkers

import (
	"context"
	"strings"
	"testing"
)

func TestRegexParagraphSplitter(t *testing.T) {
	splitter, err := NewRegexParagraphSplitter(nil)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "First paragraph of the document.\n\nSecond paragraph of the document.\n\nThird paragraph of the document."
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	chunks := CollectChunks(stream)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 paragraphs, got %d: %v", len(chunks), chunks)
	}
	for i, prefix := range []string{"First", "Second", "Third"} {
		if !strings.HasPrefix(chunks[i], prefix) {
			t.Errorf("Paragraph %d = %q, want prefix %q", i, chunks[i], prefix)
		}
	}
}

func TestRegexSentenceSplitter(t *testing.T) {
	splitter, err := NewRegexSentenceSplitter(nil)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "The first sentence ends here. The second sentence asks a question? The third one shouts!"
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	chunks := CollectChunks(stream)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 sentences, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "The first sentence ends here." {
		t.Errorf("First sentence = %q", chunks[0])
	}
	if chunks[1] != "The second sentence asks a question?" {
		t.Errorf("Second sentence = %q", chunks[1])
	}
	if chunks[2] != "The third one shouts!" {
		t.Errorf("Third sentence = %q", chunks[2])
	}
}

func TestRegexSentenceFallbackYieldsUntokenizedBlock(t *testing.T) {
	splitter, err := NewRegexSentenceSplitter(nil)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	// No terminal punctuation anywhere, so tokenization finds no boundary
	input := "a heading without any punctuation or sentence structure at all"
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	chunks := CollectChunks(stream)
	if len(chunks) != 1 {
		t.Fatalf("Expected the untokenized block to pass through, got %d chunks: %v", len(chunks), chunks)
	}
	if chunks[0] != input {
		t.Errorf("Block was altered: %q", chunks[0])
	}
}

func TestRegexChunksAreTrimmedAndNonEmpty(t *testing.T) {
	splitter, err := NewRegexSentenceSplitter(nil)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "  Leading spaces here.   \n\n\n   Trailing spaces there.  \n\n  \t \n"
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	for _, chunk := range CollectChunks(stream) {
		if strings.TrimSpace(chunk) == "" {
			t.Error("Emitted an empty chunk")
		}
		if chunk != strings.TrimSpace(chunk) {
			t.Errorf("Chunk not trimmed: %q", chunk)
		}
	}
}

func TestRegexOrderPreservation(t *testing.T) {
	splitter, err := NewRegexSentenceSplitter(nil)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "Alpha comes first. Bravo comes second.\n\nCharlie comes third. Delta comes fourth."
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	pos := 0
	for _, chunk := range CollectChunks(stream) {
		idx := strings.Index(input[pos:], chunk)
		if idx < 0 {
			t.Fatalf("Chunk %q appears out of order or altered", chunk)
		}
		pos += idx + len(chunk)
	}
}

func TestChunkStreamIsSinglePass(t *testing.T) {
	splitter, err := NewRegexParagraphSplitter(nil)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	stream, err := splitter.Chunk(context.Background(), "One paragraph only.")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if got := len(CollectChunks(stream)); got != 1 {
		t.Fatalf("Expected 1 chunk on first pass, got %d", got)
	}
	if got := len(CollectChunks(stream)); got != 0 {
		t.Errorf("Expected an exhausted stream on second pass, got %d chunks", got)
	}
}

func TestChunkIsIdempotent(t *testing.T) {
	splitter, err := NewRegexSentenceSplitter(nil)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "Same input every time. Same output every time."

	first, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	second, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	a := CollectChunks(first)
	b := CollectChunks(second)
	if len(a) != len(b) {
		t.Fatalf("Re-invocation produced different chunk counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Chunk %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestRegexSplitterConfigCopy(t *testing.T) {
	config := DefaultChunkerConfig()
	splitter, err := NewRegexSentenceSplitter(config)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	got := splitter.GetConfig()
	got.Lang = "de"
	if splitter.GetConfig().Lang != "en" {
		t.Error("GetConfig returned a shared config instead of a copy")
	}

	if err := splitter.SetConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}
