package chunkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/docchunk/docchunk/pkg/errors"
)

// PunktSentenceSplitter splits plain text into sentences using trained
// punctuation rules. It segments raw input directly without a paragraph
// stage. Only the "en" locale ships with training data; any other locale
// fails at construction.
type PunktSentenceSplitter struct {
	config    *ChunkerConfig
	lang      string
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSentenceSplitter creates a new rule-based sentence splitter
func NewPunktSentenceSplitter(config *ChunkerConfig) (*PunktSentenceSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	lang := config.Lang
	if lang == "" {
		lang = "en"
	}
	if lang != "en" {
		return nil, errors.NewLocaleNotSupportedError(lang)
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, errors.NewBackendInitError("punkt-"+lang, err)
	}

	return &PunktSentenceSplitter{
		config:    config,
		lang:      lang,
		tokenizer: tokenizer,
	}, nil
}

// Chunk splits data into a lazy stream of sentences
func (ps *PunktSentenceSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	return newChunkStream(func(yield func(string) bool) {
		for _, s := range ps.tokenizer.Tokenize(data) {
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			if !yield(text) {
				return
			}
		}
	}), nil
}

// Family returns the splitter family of this chunker
func (ps *PunktSentenceSplitter) Family() SplitterFamily {
	return FamilyPunkt
}

// Granularity returns the kind of spans the stream yields
func (ps *PunktSentenceSplitter) Granularity() Granularity {
	return GranularitySentence
}

// GetConfig returns the current chunker configuration
func (ps *PunktSentenceSplitter) GetConfig() *ChunkerConfig {
	config := *ps.config
	return &config
}

// SetConfig updates the chunker configuration
func (ps *PunktSentenceSplitter) SetConfig(config *ChunkerConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.Lang != "" && config.Lang != ps.lang {
		return errors.NewLocaleNotSupportedError(config.Lang)
	}
	ps.config = config
	return nil
}
