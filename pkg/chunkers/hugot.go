package chunkers

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	khugot "github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/types"
)

// Ensure TokenClassificationBackend implements the SegmentationBackend interface
var _ interfaces.SegmentationBackend = (*TokenClassificationBackend)(nil)

// defaultSeparatorThreshold is the minimum confidence for a predicted
// boundary token to take effect
const defaultSeparatorThreshold = 0.5

// TokenClassificationBackend detects sentence boundaries with an ONNX
// token classification model. The model labels boundary tokens as
// separators; text between separator positions becomes the spans.
// Paragraph segmentation pre-splits the input at blank lines and runs
// the model per paragraph, returning one span group per paragraph.
type TokenClassificationBackend struct {
	session      *khugot.Session
	pipeline     *pipelines.TokenClassificationPipeline
	model        string
	threshold    float32
	runRe        *regexp.Regexp
	logger       interfaces.Logger
	sessionOwned bool
}

// NewTokenClassificationBackend loads the named model from its configured
// path. A nil sharedSession creates a session owned by the backend;
// a provided one is reused and left alive on Close.
func NewTokenClassificationBackend(model string, config *ChunkerConfig, sharedSession *khugot.Session, log interfaces.Logger) (*TokenClassificationBackend, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}
	if log == nil {
		log = logger.NewLogger()
	}

	modelPath := config.ModelPath
	if modelPath == "" {
		modelPath = defaultModelPath(model)
	}

	if config.UseCUDA {
		log.Warn("CUDA placement is not supported by this runtime, using CPU", map[string]interface{}{
			"model": model,
		})
	}

	runRe, err := regexp.Compile(`\n\s*\n|\r\n\s*\r\n`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile paragraph run regex: %w", err)
	}

	session := sharedSession
	sessionOwned := false
	if session == nil {
		created, err := khugot.NewGoSession()
		if err != nil {
			return nil, errors.NewBackendInitError(model, err)
		}
		session = created
		sessionOwned = true
	}

	pipelineConfig := khugot.TokenClassificationConfig{
		ModelPath:    modelPath,
		OnnxFilename: "model.onnx",
		Name:         fmt.Sprintf("%s:%s", model, modelPath),
	}

	pipeline, err := khugot.NewPipeline(session, pipelineConfig)
	if err != nil {
		if sessionOwned {
			_ = session.Destroy()
		}
		return nil, errors.NewBackendInitError(model, err)
	}

	// Group adjacent boundary tokens into single separator entities
	pipeline.AggregationStrategy = "SIMPLE"

	log.Info("token classification backend ready", map[string]interface{}{
		"model":      model,
		"model_path": modelPath,
	})

	return &TokenClassificationBackend{
		session:      session,
		pipeline:     pipeline,
		model:        model,
		threshold:    defaultSeparatorThreshold,
		runRe:        runRe,
		logger:       log,
		sessionOwned: sessionOwned,
	}, nil
}

// Segment splits text into sentence spans; when doParagraphSegmentation
// is true the input is split at blank lines first and the result carries
// one span group per paragraph run
func (b *TokenClassificationBackend) Segment(ctx context.Context, text string, doParagraphSegmentation bool) (*types.SegmentResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if strings.TrimSpace(text) == "" {
		return &types.SegmentResult{}, nil
	}

	if !doParagraphSegmentation {
		output, err := b.pipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, errors.NewInferenceError(b.model, err)
		}
		if len(output.Entities) == 0 {
			return nil, errors.NewInferenceError(b.model, fmt.Errorf("no classification output"))
		}
		return &types.SegmentResult{Spans: b.separatorSpans(text, output.Entities[0])}, nil
	}

	runs := b.paragraphRuns(text)
	if len(runs) == 0 {
		return &types.SegmentResult{}, nil
	}

	output, err := b.pipeline.RunPipeline(runs)
	if err != nil {
		return nil, errors.NewInferenceError(b.model, err)
	}
	if len(output.Entities) < len(runs) {
		return nil, errors.NewInferenceError(b.model,
			fmt.Errorf("classification output covers %d of %d inputs", len(output.Entities), len(runs)))
	}

	groups := make([][]string, 0, len(runs))
	for i, run := range runs {
		if spans := b.separatorSpans(run, output.Entities[i]); len(spans) > 0 {
			groups = append(groups, spans)
		}
	}
	return &types.SegmentResult{Groups: groups}, nil
}

// Model returns the identifier of the loaded model
func (b *TokenClassificationBackend) Model() string {
	return b.model
}

// Close destroys the session when this backend owns it
func (b *TokenClassificationBackend) Close() error {
	if b.session != nil && b.sessionOwned {
		return b.session.Destroy()
	}
	return nil
}

// paragraphRuns splits text into paragraph-sized runs at blank lines
func (b *TokenClassificationBackend) paragraphRuns(text string) []string {
	var runs []string
	for _, run := range b.runRe.Split(text, -1) {
		if strings.TrimSpace(run) != "" {
			runs = append(runs, run)
		}
	}
	return runs
}

// separatorSpans cuts text at the end positions of separator entities
// that clear the confidence threshold. Text without usable separators
// comes back whole as a single trimmed span.
func (b *TokenClassificationBackend) separatorSpans(text string, entities []pipelines.Entity) []string {
	positions := make([]int, 0, len(entities))
	for _, entity := range entities {
		label := strings.ToLower(entity.Entity)
		if !strings.HasPrefix(label, "separator") && !strings.HasSuffix(label, "separator") {
			continue
		}
		if entity.Score >= b.threshold {
			positions = append(positions, int(entity.End))
		}
	}

	wholeText := func() []string {
		if span := strings.TrimSpace(text); span != "" {
			return []string{span}
		}
		return nil
	}

	if len(positions) == 0 {
		return wholeText()
	}
	sort.Ints(positions)

	var spans []string
	start := 0
	for _, pos := range positions {
		if pos <= start || pos > len(text) {
			continue
		}
		if span := strings.TrimSpace(text[start:pos]); span != "" {
			spans = append(spans, span)
		}
		start = pos
	}
	if start < len(text) {
		if span := strings.TrimSpace(text[start:]); span != "" {
			spans = append(spans, span)
		}
	}

	if len(spans) == 0 {
		return wholeText()
	}
	return spans
}
