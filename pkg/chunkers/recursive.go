package chunkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/metrics"
)

// Ensure the recursive splitter implements the Chunker interface
var _ Chunker = (*RecursiveParagraphSplitter)(nil)

// RecursiveParagraphSplitter re-splits text to a character budget,
// preferring paragraph boundaries, then line boundaries, then word
// boundaries. It exists for consumers with a hard chunk size limit;
// it yields paragraph granularity only.
type RecursiveParagraphSplitter struct {
	config   *ChunkerConfig
	splitter textsplitter.RecursiveCharacter
	logger   interfaces.Logger
	metrics  interfaces.Metrics
}

// NewRecursiveParagraphSplitter creates a budgeted paragraph splitter
func NewRecursiveParagraphSplitter(config *ChunkerConfig, log interfaces.Logger, m interfaces.Metrics) (*RecursiveParagraphSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}
	if log == nil {
		log = logger.NewLogger()
	}
	if m == nil {
		m = metrics.NewNoOpMetrics()
	}

	if config.MaxChunkChars < 0 {
		return nil, fmt.Errorf("max_chunk_chars must be positive, got: %d", config.MaxChunkChars)
	}
	if config.ChunkOverlap < 0 {
		return nil, fmt.Errorf("chunk_overlap must be non-negative, got: %d", config.ChunkOverlap)
	}

	maxChars := config.MaxChunkChars
	if maxChars == 0 {
		maxChars = DefaultChunkerConfig().MaxChunkChars
	}
	overlap := config.ChunkOverlap
	if overlap >= maxChars {
		return nil, fmt.Errorf("chunk_overlap must be smaller than max_chunk_chars, got: %d >= %d", overlap, maxChars)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		textsplitter.WithChunkSize(maxChars),
		textsplitter.WithChunkOverlap(overlap),
	)

	return &RecursiveParagraphSplitter{
		config:   config,
		splitter: splitter,
		logger:   log,
		metrics:  m,
	}, nil
}

// Chunk splits data into a lazy stream of budget-sized paragraphs. A
// text the splitter cannot break passes through whole.
func (rp *RecursiveParagraphSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	return newChunkStream(func(yield func(string) bool) {
		pieces, err := rp.splitter.SplitText(data)
		if err != nil {
			rp.logger.Warn("recursive split failed, passing text through", map[string]interface{}{
				"error": err.Error(),
			})
			rp.metrics.Counter("chunkers.tokenization_degraded", 1, map[string]string{
				"family": string(FamilyRecursive),
				"stage":  "paragraph",
			})
			if block := strings.TrimSpace(data); block != "" {
				yield(block)
			}
			return
		}

		count := 0
		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			count++
			if !yield(piece) {
				return
			}
		}
		rp.metrics.Counter("chunkers.chunks_emitted", float64(count), map[string]string{
			"family":      string(FamilyRecursive),
			"granularity": string(GranularityParagraph),
		})
	}), nil
}

// Family returns the splitter family of this chunker
func (rp *RecursiveParagraphSplitter) Family() SplitterFamily {
	return FamilyRecursive
}

// Granularity returns the kind of spans the stream yields
func (rp *RecursiveParagraphSplitter) Granularity() Granularity {
	return GranularityParagraph
}

// GetConfig returns the current chunker configuration
func (rp *RecursiveParagraphSplitter) GetConfig() *ChunkerConfig {
	config := *rp.config
	return &config
}

// SetConfig updates the chunker configuration and rebuilds the
// underlying splitter with the new budget
func (rp *RecursiveParagraphSplitter) SetConfig(config *ChunkerConfig) error {
	rebuilt, err := NewRecursiveParagraphSplitter(config, rp.logger, rp.metrics)
	if err != nil {
		return err
	}
	rp.config = rebuilt.config
	rp.splitter = rebuilt.splitter
	return nil
}
