package chunkers

import (
	"fmt"
	"strings"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/metrics"
)

// SplitterFactory creates splitter instances by family and granularity.
// Collaborators given to the factory are passed to every splitter it
// creates; nil collaborators fall back to defaults. Model-backed
// families load their backend only when actually instantiated.
type SplitterFactory struct {
	fetcher interfaces.Fetcher
	logger  interfaces.Logger
	metrics interfaces.Metrics
}

// NewSplitterFactory creates a factory wired with the given
// collaborators
func NewSplitterFactory(fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) *SplitterFactory {
	if log == nil {
		log = logger.NewLogger()
	}
	if m == nil {
		m = metrics.NewNoOpMetrics()
	}
	return &SplitterFactory{
		fetcher: fetcher,
		logger:  log,
		metrics: m,
	}
}

// CreateSplitter creates a splitter of the given family and granularity
func (f *SplitterFactory) CreateSplitter(family SplitterFamily, granularity Granularity, config *ChunkerConfig) (Chunker, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	if !IsValidSplitterFamily(family) {
		return nil, fmt.Errorf("unsupported splitter family: %s", family)
	}
	if !IsValidGranularity(granularity) {
		return nil, fmt.Errorf("unsupported granularity: %s", granularity)
	}
	if err := f.ValidateConfig(family, config); err != nil {
		return nil, err
	}

	switch granularity {
	case GranularityParagraph:
		return f.createParagraphSplitter(family, config)
	default:
		return f.createSentenceSplitter(family, config)
	}
}

func (f *SplitterFactory) createParagraphSplitter(family SplitterFamily, config *ChunkerConfig) (Chunker, error) {
	switch family {
	case FamilyRegex:
		return NewRegexParagraphSplitter(config)
	case FamilySaT:
		return NewSaTParagraphSplitter(config, f.logger, f.metrics)
	case FamilyWtP:
		return NewWtPParagraphSplitter(config, f.logger, f.metrics)
	case FamilyHTML:
		return NewHTMLParagraphSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyMarkdown:
		return NewMarkdownParagraphSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyPDF:
		return NewPDFParagraphSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyDOCX:
		return NewDOCXParagraphSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyDOC:
		return NewDOCParagraphSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyRecursive:
		return NewRecursiveParagraphSplitter(config, f.logger, f.metrics)
	case FamilyPunkt:
		return nil, fmt.Errorf("the punkt family segments sentences only; use granularity %s or the regex family for paragraphs", GranularitySentence)
	default:
		return nil, fmt.Errorf("unsupported splitter family: %s", family)
	}
}

func (f *SplitterFactory) createSentenceSplitter(family SplitterFamily, config *ChunkerConfig) (Chunker, error) {
	switch family {
	case FamilyRegex:
		return NewRegexSentenceSplitter(config)
	case FamilyPunkt:
		return NewPunktSentenceSplitter(config)
	case FamilySaT:
		return NewSaTSentenceSplitter(config, f.logger, f.metrics)
	case FamilyWtP:
		return NewWtPSentenceSplitter(config, f.logger, f.metrics)
	case FamilyHTML:
		return NewHTMLSentenceSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyMarkdown:
		return NewMarkdownSentenceSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyPDF:
		return NewPDFSentenceSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyDOCX:
		return NewDOCXSentenceSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyDOC:
		return NewDOCSentenceSplitter(config, f.fetcher, f.logger, f.metrics)
	case FamilyRecursive:
		return nil, fmt.Errorf("the recursive family re-splits to a character budget and has no sentence form; use granularity %s", GranularityParagraph)
	default:
		return nil, fmt.Errorf("unsupported splitter family: %s", family)
	}
}

// CreateSplitterFromString creates a splitter from string identifiers
func (f *SplitterFactory) CreateSplitterFromString(family, granularity string, config *ChunkerConfig) (Chunker, error) {
	normalizedFamily := SplitterFamily(strings.ToLower(strings.TrimSpace(family)))
	normalizedGranularity := Granularity(strings.ToLower(strings.TrimSpace(granularity)))
	return f.CreateSplitter(normalizedFamily, normalizedGranularity, config)
}

// GetDefaultSplitter returns a splitter with default settings: the
// regex sentence splitter, which needs no model files or collaborators
func (f *SplitterFactory) GetDefaultSplitter() (Chunker, error) {
	return f.CreateSplitter(FamilyRegex, GranularitySentence, DefaultChunkerConfig())
}

// ValidateConfig checks a configuration against a family's constraints.
// Model name violations are fatal here, before any backend is loaded.
func (f *SplitterFactory) ValidateConfig(family SplitterFamily, config *ChunkerConfig) error {
	if config == nil {
		return errors.NewConfigInvalidError("config cannot be nil")
	}

	if config.MinWords < 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("min_words must be non-negative, got: %d", config.MinWords))
	}
	if config.MaxChunkChars < 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("max_chunk_chars must be non-negative, got: %d", config.MaxChunkChars))
	}
	if config.ChunkOverlap < 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("chunk_overlap must be non-negative, got: %d", config.ChunkOverlap))
	}

	switch family {
	case FamilySaT:
		if config.Model != "" && !IsValidSaTModel(config.Model) {
			return errors.NewModelNotSupportedError(config.Model, SaTModels())
		}
	case FamilyWtP:
		if config.Model != "" && !IsValidWtPModel(config.Model) {
			return errors.NewModelNotSupportedError(config.Model, WtPModels())
		}
	case FamilyPunkt:
		if config.Lang != "" && config.Lang != "en" {
			return errors.NewLocaleNotSupportedError(config.Lang)
		}
	}

	return nil
}

// BuildConfigFromMap constructs a ChunkerConfig from a generic option
// map, as loaded from a configuration file. Unknown keys are rejected
// so typos fail loudly.
func BuildConfigFromMap(options map[string]interface{}) (*ChunkerConfig, error) {
	config := DefaultChunkerConfig()

	for key, value := range options {
		switch key {
		case "model":
			v, ok := value.(string)
			if !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("model must be a string, got: %T", value))
			}
			config.Model = v
		case "model_path":
			v, ok := value.(string)
			if !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("model_path must be a string, got: %T", value))
			}
			config.ModelPath = v
		case "use_cuda":
			v, ok := value.(bool)
			if !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("use_cuda must be a bool, got: %T", value))
			}
			config.UseCUDA = v
		case "use_onnx":
			v, ok := value.(bool)
			if !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("use_onnx must be a bool, got: %T", value))
			}
			config.DisableONNX = !v
		case "lang":
			v, ok := value.(string)
			if !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("lang must be a string, got: %T", value))
			}
			config.Lang = v
		case "stop_words":
			words, err := toStringSlice(value)
			if err != nil {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("stop_words must be a list of strings: %v", err))
			}
			config.StopWords = words
		case "bad_words":
			words, err := toStringSlice(value)
			if err != nil {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("bad_words must be a list of strings: %v", err))
			}
			config.BadWords = words
		case "min_words":
			v, err := toInt(value)
			if err != nil {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("min_words must be an integer, got: %T", value))
			}
			config.MinWords = v
		case "include_title":
			v, ok := value.(bool)
			if !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("include_title must be a bool, got: %T", value))
			}
			config.OmitTitle = !v
		case "skip_lists":
			v, ok := value.(bool)
			if !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("skip_lists must be a bool, got: %T", value))
			}
			config.IncludeLists = !v
		case "use_dom":
			v, ok := value.(bool)
			if !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("use_dom must be a bool, got: %T", value))
			}
			config.UseDOM = v
		case "max_chunk_chars":
			v, err := toInt(value)
			if err != nil {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("max_chunk_chars must be an integer, got: %T", value))
			}
			config.MaxChunkChars = v
		case "chunk_overlap":
			v, err := toInt(value)
			if err != nil {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("chunk_overlap must be an integer, got: %T", value))
			}
			config.ChunkOverlap = v
		default:
			return nil, errors.NewConfigInvalidError(fmt.Sprintf("unknown configuration option: %s", key))
		}
	}

	return config, nil
}

// toStringSlice accepts []string directly and []interface{} as produced
// by YAML and JSON decoders
func toStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element is %T, not string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is %T, not a list", value)
	}
}

// toInt accepts the integer and float forms decoders produce
func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("value is %T, not an integer", value)
	}
}

// SplitterDescriptor describes an available splitter variant
type SplitterDescriptor struct {
	Family        SplitterFamily `json:"family"`
	Granularities []Granularity  `json:"granularities"`
	Description   string         `json:"description"`
	Models        []string       `json:"models,omitempty"`
	DefaultModel  string         `json:"default_model,omitempty"`
	NeedsModel    bool           `json:"needs_model"`
}

// GetSplitterDescriptors returns descriptors for every splitter variant
// the factory can create
func GetSplitterDescriptors() []SplitterDescriptor {
	both := []Granularity{GranularityParagraph, GranularitySentence}
	return []SplitterDescriptor{
		{
			Family:        FamilyRegex,
			Granularities: both,
			Description:   "Plain text splitting on newline and punctuation boundaries",
		},
		{
			Family:        FamilyPunkt,
			Granularities: []Granularity{GranularitySentence},
			Description:   "Locale-aware rule-based sentence boundary detection",
		},
		{
			Family:        FamilySaT,
			Granularities: both,
			Description:   "Segment-any-text model-backed boundary detection",
			Models:        SaTModels(),
			DefaultModel:  DefaultSaTModel,
			NeedsModel:    true,
		},
		{
			Family:        FamilyWtP,
			Granularities: both,
			Description:   "Where-the-punctuation model-backed boundary detection",
			Models:        WtPModels(),
			DefaultModel:  DefaultWtPModel,
			NeedsModel:    true,
		},
		{
			Family:        FamilyHTML,
			Granularities: both,
			Description:   "Web page denoising with quality-filtered paragraph blocks",
		},
		{
			Family:        FamilyMarkdown,
			Granularities: both,
			Description:   "Heading-tree walking with per-section chunks",
		},
		{
			Family:        FamilyPDF,
			Granularities: both,
			Description:   "PDF text extraction with quality-filtered blocks",
		},
		{
			Family:        FamilyDOCX,
			Granularities: both,
			Description:   "Office Open XML text extraction with quality-filtered blocks",
		},
		{
			Family:        FamilyDOC,
			Granularities: both,
			Description:   "Legacy Word text extraction with quality-filtered blocks",
		},
		{
			Family:        FamilyRecursive,
			Granularities: []Granularity{GranularityParagraph},
			Description:   "Character-budget re-splitting at paragraph boundaries",
		},
	}
}
