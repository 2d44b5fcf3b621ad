package chunkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/metrics"
)

// Ensure the model-backed splitters implement the Chunker interface
var (
	_ Chunker = (*SaTSentenceSplitter)(nil)
	_ Chunker = (*SaTParagraphSplitter)(nil)
	_ Chunker = (*WtPSentenceSplitter)(nil)
	_ Chunker = (*WtPParagraphSplitter)(nil)
)

// backendSplitter carries the behavior shared by model-backed splitters:
// segmentation through a backend handle, degrading to the raw block when
// inference fails
type backendSplitter struct {
	config  *ChunkerConfig
	backend interfaces.SegmentationBackend
	logger  interfaces.Logger
	metrics interfaces.Metrics
	family  SplitterFamily
}

// segmentStream runs the backend lazily on first advance of the stream
func (bs *backendSplitter) segmentStream(ctx context.Context, data string, doParagraphSegmentation bool) ChunkStream {
	return newChunkStream(func(yield func(string) bool) {
		result, err := bs.backend.Segment(ctx, data, doParagraphSegmentation)
		if err != nil {
			bs.degrade(data, err, doParagraphSegmentation, yield)
			return
		}

		if doParagraphSegmentation && result.IsGrouped() {
			// One paragraph per span group
			for _, group := range result.Groups {
				paragraph := strings.TrimSpace(strings.Join(group, " "))
				if paragraph == "" {
					continue
				}
				if !yield(paragraph) {
					return
				}
			}
			return
		}

		for _, span := range result.Flatten() {
			span = strings.TrimSpace(span)
			if span == "" {
				continue
			}
			if !yield(span) {
				return
			}
		}
	})
}

// degrade recovers a failed segmentation by passing the whole block
// through untokenized
func (bs *backendSplitter) degrade(data string, err error, doParagraphSegmentation bool, yield func(string) bool) {
	stage := "sentence"
	if doParagraphSegmentation {
		stage = "paragraph"
	}

	bs.logger.Warn("segmentation failed, passing block through", map[string]interface{}{
		"family": string(bs.family),
		"stage":  stage,
		"model":  bs.backend.Model(),
		"error":  err.Error(),
	})
	bs.metrics.Counter("chunkers.tokenization_degraded", 1, map[string]string{
		"family": string(bs.family),
		"stage":  stage,
	})

	if block := strings.TrimSpace(data); block != "" {
		yield(block)
	}
}

// Backend exposes the segmentation backend handle so a paragraph
// splitter can reuse a sentence splitter's loaded model
func (bs *backendSplitter) Backend() interfaces.SegmentationBackend {
	return bs.backend
}

// Close releases the backend's model resources
func (bs *backendSplitter) Close() error {
	return bs.backend.Close()
}

// GetConfig returns the current chunker configuration
func (bs *backendSplitter) GetConfig() *ChunkerConfig {
	config := *bs.config
	return &config
}

// SetConfig updates the chunker configuration. The model is fixed at
// construction and cannot change here.
func (bs *backendSplitter) SetConfig(config *ChunkerConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.Model != "" && config.Model != bs.backend.Model() {
		return fmt.Errorf("model cannot be changed after construction: loaded %s, requested %s", bs.backend.Model(), config.Model)
	}
	bs.config = config
	return nil
}

func newBackendSplitter(config *ChunkerConfig, backend interfaces.SegmentationBackend, log interfaces.Logger, m interfaces.Metrics, family SplitterFamily) (backendSplitter, error) {
	if backend == nil {
		return backendSplitter{}, fmt.Errorf("backend cannot be nil")
	}
	if config == nil {
		config = DefaultChunkerConfig()
	}
	if log == nil {
		log = logger.NewLogger()
	}
	if m == nil {
		m = metrics.NewNoOpMetrics()
	}
	return backendSplitter{
		config:  config,
		backend: backend,
		logger:  log,
		metrics: m,
		family:  family,
	}, nil
}

// SaTSentenceSplitter splits plain text into sentences with a
// segment-any-text model
type SaTSentenceSplitter struct {
	backendSplitter
}

// NewSaTSentenceSplitter loads the configured segment-any-text model and
// creates a sentence splitter over it
func NewSaTSentenceSplitter(config *ChunkerConfig, log interfaces.Logger, m interfaces.Metrics) (*SaTSentenceSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
		config.Model = DefaultSaTModel
	}

	model := config.Model
	if model == "" {
		model = DefaultSaTModel
	}
	if !IsValidSaTModel(model) {
		return nil, errors.NewModelNotSupportedError(model, SaTModels())
	}

	backend, err := NewTokenClassificationBackend(model, config, nil, log)
	if err != nil {
		return nil, err
	}
	return NewSaTSentenceSplitterWithBackend(config, backend, log, m)
}

// NewSaTSentenceSplitterWithBackend creates a sentence splitter over an
// already constructed backend handle
func NewSaTSentenceSplitterWithBackend(config *ChunkerConfig, backend interfaces.SegmentationBackend, log interfaces.Logger, m interfaces.Metrics) (*SaTSentenceSplitter, error) {
	base, err := newBackendSplitter(config, backend, log, m, FamilySaT)
	if err != nil {
		return nil, err
	}
	return &SaTSentenceSplitter{base}, nil
}

// Chunk splits data into a lazy stream of sentences
func (ss *SaTSentenceSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	return ss.segmentStream(ctx, data, false), nil
}

// Family returns the splitter family of this chunker
func (ss *SaTSentenceSplitter) Family() SplitterFamily {
	return FamilySaT
}

// Granularity returns the kind of spans the stream yields
func (ss *SaTSentenceSplitter) Granularity() Granularity {
	return GranularitySentence
}

// SaTParagraphSplitter yields paragraph spans from a segment-any-text
// model. It reuses the backend handle of an internally constructed
// sentence splitter instead of loading the model twice.
type SaTParagraphSplitter struct {
	backendSplitter
}

// NewSaTParagraphSplitter loads the configured segment-any-text model and
// creates a paragraph splitter over it
func NewSaTParagraphSplitter(config *ChunkerConfig, log interfaces.Logger, m interfaces.Metrics) (*SaTParagraphSplitter, error) {
	sentences, err := NewSaTSentenceSplitter(config, log, m)
	if err != nil {
		return nil, err
	}
	return NewSaTParagraphSplitterWithBackend(sentences.config, sentences.Backend(), sentences.logger, sentences.metrics)
}

// NewSaTParagraphSplitterWithBackend creates a paragraph splitter over an
// already constructed backend handle
func NewSaTParagraphSplitterWithBackend(config *ChunkerConfig, backend interfaces.SegmentationBackend, log interfaces.Logger, m interfaces.Metrics) (*SaTParagraphSplitter, error) {
	base, err := newBackendSplitter(config, backend, log, m, FamilySaT)
	if err != nil {
		return nil, err
	}
	return &SaTParagraphSplitter{base}, nil
}

// Chunk splits data into a lazy stream of paragraphs
func (sp *SaTParagraphSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	return sp.segmentStream(ctx, data, true), nil
}

// Family returns the splitter family of this chunker
func (sp *SaTParagraphSplitter) Family() SplitterFamily {
	return FamilySaT
}

// Granularity returns the kind of spans the stream yields
func (sp *SaTParagraphSplitter) Granularity() Granularity {
	return GranularityParagraph
}

// WtPSentenceSplitter splits plain text into sentences with a
// where-the-punctuation model
type WtPSentenceSplitter struct {
	backendSplitter
}

// NewWtPSentenceSplitter loads the configured where-the-punctuation model
// and creates a sentence splitter over it. The bert checkpoints run on
// the ONNX runtime; a torch runtime is not available, so checkpoints
// that would need one run on ONNX as well.
func NewWtPSentenceSplitter(config *ChunkerConfig, log interfaces.Logger, m interfaces.Metrics) (*WtPSentenceSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
		config.Model = DefaultWtPModel
	}
	if log == nil {
		log = logger.NewLogger()
	}

	model := config.Model
	if model == "" {
		model = DefaultWtPModel
	}
	if !IsValidWtPModel(model) {
		return nil, errors.NewModelNotSupportedError(model, WtPModels())
	}

	if config.DisableONNX || !strings.Contains(model, "bert") {
		log.Warn("torch runtime is not available, using the ONNX runtime", map[string]interface{}{
			"model": model,
		})
	}

	backend, err := NewTokenClassificationBackend(model, config, nil, log)
	if err != nil {
		return nil, err
	}
	return NewWtPSentenceSplitterWithBackend(config, backend, log, m)
}

// NewWtPSentenceSplitterWithBackend creates a sentence splitter over an
// already constructed backend handle
func NewWtPSentenceSplitterWithBackend(config *ChunkerConfig, backend interfaces.SegmentationBackend, log interfaces.Logger, m interfaces.Metrics) (*WtPSentenceSplitter, error) {
	base, err := newBackendSplitter(config, backend, log, m, FamilyWtP)
	if err != nil {
		return nil, err
	}
	return &WtPSentenceSplitter{base}, nil
}

// Chunk splits data into a lazy stream of sentences
func (ws *WtPSentenceSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	return ws.segmentStream(ctx, data, false), nil
}

// Family returns the splitter family of this chunker
func (ws *WtPSentenceSplitter) Family() SplitterFamily {
	return FamilyWtP
}

// Granularity returns the kind of spans the stream yields
func (ws *WtPSentenceSplitter) Granularity() Granularity {
	return GranularitySentence
}

// WtPParagraphSplitter yields paragraph spans from a where-the-punctuation
// model. It reuses the backend handle of an internally constructed
// sentence splitter instead of loading the model twice.
type WtPParagraphSplitter struct {
	backendSplitter
}

// NewWtPParagraphSplitter loads the configured where-the-punctuation model
// and creates a paragraph splitter over it
func NewWtPParagraphSplitter(config *ChunkerConfig, log interfaces.Logger, m interfaces.Metrics) (*WtPParagraphSplitter, error) {
	sentences, err := NewWtPSentenceSplitter(config, log, m)
	if err != nil {
		return nil, err
	}
	return NewWtPParagraphSplitterWithBackend(sentences.config, sentences.Backend(), sentences.logger, sentences.metrics)
}

// NewWtPParagraphSplitterWithBackend creates a paragraph splitter over an
// already constructed backend handle
func NewWtPParagraphSplitterWithBackend(config *ChunkerConfig, backend interfaces.SegmentationBackend, log interfaces.Logger, m interfaces.Metrics) (*WtPParagraphSplitter, error) {
	base, err := newBackendSplitter(config, backend, log, m, FamilyWtP)
	if err != nil {
		return nil, err
	}
	return &WtPParagraphSplitter{base}, nil
}

// Chunk splits data into a lazy stream of paragraphs
func (wp *WtPParagraphSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	return wp.segmentStream(ctx, data, true), nil
}

// Family returns the splitter family of this chunker
func (wp *WtPParagraphSplitter) Family() SplitterFamily {
	return FamilyWtP
}

// Granularity returns the kind of spans the stream yields
func (wp *WtPParagraphSplitter) Granularity() Granularity {
	return GranularityParagraph
}
