package chunkers

import (
	"context"
	"fmt"
	"testing"

	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/metrics"
	"github.com/docchunk/docchunk/pkg/types"
)

// stubBackend returns canned segmentation results for splitter tests
type stubBackend struct {
	result       *types.SegmentResult
	err          error
	calls        int
	lastParaFlag bool
	closed       bool
}

func (s *stubBackend) Segment(ctx context.Context, text string, doParagraphSegmentation bool) (*types.SegmentResult, error) {
	s.calls++
	s.lastParaFlag = doParagraphSegmentation
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubBackend) Model() string { return "stub-model" }

func (s *stubBackend) Close() error {
	s.closed = true
	return nil
}

func TestBackendSentenceSplitterFlatSpans(t *testing.T) {
	backend := &stubBackend{result: &types.SegmentResult{
		Spans: []string{"First span.", "Second span.", "Third span."},
	}}

	splitter, err := NewSaTSentenceSplitterWithBackend(nil, backend, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	stream, err := splitter.Chunk(context.Background(), "First span. Second span. Third span.")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	chunks := CollectChunks(stream)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if backend.lastParaFlag {
		t.Error("Sentence splitter requested paragraph segmentation")
	}
}

func TestBackendSentenceSplitterFlattensNestedResults(t *testing.T) {
	backend := &stubBackend{result: &types.SegmentResult{
		Groups: [][]string{
			{"One.", "Two."},
			{"Three."},
			{"Four.", "Five."},
		},
	}}

	splitter, err := NewWtPSentenceSplitterWithBackend(nil, backend, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	stream, err := splitter.Chunk(context.Background(), "irrelevant")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	chunks := CollectChunks(stream)
	want := []string{"One.", "Two.", "Three.", "Four.", "Five."}
	if len(chunks) != len(want) {
		t.Fatalf("Expected %d flat chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("Chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestBackendParagraphSplitterJoinsGroups(t *testing.T) {
	backend := &stubBackend{result: &types.SegmentResult{
		Groups: [][]string{
			{"First sentence.", "Second sentence."},
			{"Third sentence."},
		},
	}}

	splitter, err := NewSaTParagraphSplitterWithBackend(nil, backend, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	stream, err := splitter.Chunk(context.Background(), "irrelevant")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	chunks := CollectChunks(stream)
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "First sentence. Second sentence." {
		t.Errorf("Paragraph 0 = %q", chunks[0])
	}
	if chunks[1] != "Third sentence." {
		t.Errorf("Paragraph 1 = %q", chunks[1])
	}
	if !backend.lastParaFlag {
		t.Error("Paragraph splitter must request paragraph segmentation")
	}
}

func TestBackendSplitterDegradesOnInferenceFailure(t *testing.T) {
	backend := &stubBackend{err: fmt.Errorf("model exploded")}
	recorder := metrics.NewTestMetrics()

	splitter, err := NewSaTSentenceSplitterWithBackend(nil, backend, logger.NewNopLogger(), recorder)
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	input := "  the block that could not be segmented  "
	stream, err := splitter.Chunk(context.Background(), input)
	if err != nil {
		t.Fatalf("Chunk must not propagate inference failures, got: %v", err)
	}

	chunks := CollectChunks(stream)
	if len(chunks) != 1 {
		t.Fatalf("Expected the whole block to pass through, got %d chunks: %v", len(chunks), chunks)
	}
	if chunks[0] != "the block that could not be segmented" {
		t.Errorf("Degraded chunk = %q", chunks[0])
	}
	if recorder.CounterValue("chunkers.tokenization_degraded") != 1 {
		t.Error("Degradation was not recorded")
	}
}

func TestBackendParagraphSplitterSharesBackendHandle(t *testing.T) {
	backend := &stubBackend{result: &types.SegmentResult{Spans: []string{"x"}}}

	sentences, err := NewSaTSentenceSplitterWithBackend(nil, backend, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create sentence splitter: %v", err)
	}

	paragraphs, err := NewSaTParagraphSplitterWithBackend(sentences.GetConfig(), sentences.Backend(), logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create paragraph splitter: %v", err)
	}

	if paragraphs.Backend() != sentences.Backend() {
		t.Error("Paragraph splitter did not reuse the sentence splitter's backend handle")
	}
}

func TestBackendSplitterModelFixedAfterConstruction(t *testing.T) {
	backend := &stubBackend{result: &types.SegmentResult{}}

	splitter, err := NewWtPSentenceSplitterWithBackend(nil, backend, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	config := DefaultChunkerConfig()
	config.Model = "wtp-bert-tiny"
	if err := splitter.SetConfig(config); err == nil {
		t.Error("Expected error when changing the model after construction")
	}
}

func TestBackendSplitterClose(t *testing.T) {
	backend := &stubBackend{result: &types.SegmentResult{}}

	splitter, err := NewSaTSentenceSplitterWithBackend(nil, backend, logger.NewNopLogger(), metrics.NewNoOpMetrics())
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}
	if err := splitter.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !backend.closed {
		t.Error("Close did not release the backend")
	}
}

func TestSegmentResultFlattenIsTotal(t *testing.T) {
	nested := &types.SegmentResult{Groups: [][]string{{"a", "b"}, {}, {"c"}}}
	flat := nested.Flatten()
	if len(flat) != 3 {
		t.Fatalf("Expected 3 spans, got %d", len(flat))
	}

	plain := &types.SegmentResult{Spans: []string{"a", "b"}}
	if got := plain.Flatten(); len(got) != 2 {
		t.Fatalf("Expected 2 spans, got %d", len(got))
	}
}

func TestSaTModelValidation(t *testing.T) {
	if !IsValidSaTModel(DefaultSaTModel) {
		t.Error("Default model must be valid")
	}
	if IsValidSaTModel("sat-99l") {
		t.Error("Unknown model accepted")
	}
	if !IsValidWtPModel(DefaultWtPModel) {
		t.Error("Default model must be valid")
	}
	if IsValidWtPModel("wtp-unknown") {
		t.Error("Unknown model accepted")
	}
}
