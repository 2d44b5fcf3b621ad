package chunkers

import (
	"context"
	"strings"
	"testing"

	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/metrics"
)

func TestRecursiveSplitterHonorsBudget(t *testing.T) {
	config := DefaultChunkerConfig()
	config.MaxChunkChars = 60
	config.ChunkOverlap = 0
	splitter, err := NewRecursiveParagraphSplitter(config, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "The archive holds decades of correspondence between the observatories.\n\nEach letter was catalogued by hand before the digitization effort began.\n\nScans are now available to researchers through the public portal."
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	chunks := CollectChunks(stream)
	if len(chunks) < 3 {
		t.Fatalf("Expected the text to be split, got %d chunks", len(chunks))
	}
	for _, chunk := range chunks {
		if len(chunk) > config.MaxChunkChars {
			t.Errorf("Chunk exceeds budget (%d chars): %q", len(chunk), chunk)
		}
		if strings.TrimSpace(chunk) == "" {
			t.Error("Emitted an empty chunk")
		}
	}
}

func TestRecursiveSplitterPrefersParagraphBoundaries(t *testing.T) {
	config := DefaultChunkerConfig()
	config.MaxChunkChars = 80
	config.ChunkOverlap = 0
	splitter, err := NewRecursiveParagraphSplitter(config, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "Short first paragraph fits whole.\n\nShort second paragraph fits whole."
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	chunks := CollectChunks(stream)
	for _, chunk := range chunks {
		if strings.Contains(chunk, "\n\n") {
			t.Errorf("Chunk spans a paragraph boundary: %q", chunk)
		}
	}
}

func TestRecursiveSplitterOrderPreservation(t *testing.T) {
	config := DefaultChunkerConfig()
	config.MaxChunkChars = 40
	config.ChunkOverlap = 0
	splitter, err := NewRecursiveParagraphSplitter(config, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november"
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	pos := 0
	for _, chunk := range CollectChunks(stream) {
		idx := strings.Index(input[pos:], chunk)
		if idx < 0 {
			t.Fatalf("Chunk %q appears out of order", chunk)
		}
		pos += idx
	}
}

func TestRecursiveSplitterRejectsBadBudgets(t *testing.T) {
	config := DefaultChunkerConfig()
	config.ChunkOverlap = -1
	if _, err := NewRecursiveParagraphSplitter(config, logger.NewNopLogger(), metrics.NewNoOpMetrics()); err == nil {
		t.Error("Expected error for negative overlap")
	}

	config = DefaultChunkerConfig()
	config.MaxChunkChars = 100
	config.ChunkOverlap = 100
	if _, err := NewRecursiveParagraphSplitter(config, logger.NewNopLogger(), metrics.NewNoOpMetrics()); err == nil {
		t.Error("Expected error for overlap matching the budget")
	}
}
