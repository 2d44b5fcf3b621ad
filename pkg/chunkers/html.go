package chunkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// Ensure the HTML splitters implement the Chunker interface
var (
	_ Chunker = (*HTMLParagraphSplitter)(nil)
	_ Chunker = (*HTMLSentenceSplitter)(nil)
)

// htmlSentenceTokenFloor is the whitespace token count a denoised line
// must exceed to survive sentence-level filtering. Shorter lines are
// residual fragments like captions and menu labels.
const htmlSentenceTokenFloor = 4

// HTMLParagraphSplitter denoises web pages into paragraph chunks.
// Input may be an HTTP(S) URL, a path to an .html file, or literal
// markup.
type HTMLParagraphSplitter struct {
	config   *ChunkerConfig
	resolver *sourceResolver
	denoiser *MarkupDenoiser
	logger   interfaces.Logger
	metrics  interfaces.Metrics
}

// NewHTMLParagraphSplitter creates a denoising paragraph splitter.
// A nil fetcher gets the default HTTP client.
func NewHTMLParagraphSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*HTMLParagraphSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	denoiser, err := NewMarkupDenoiser(config, log)
	if err != nil {
		return nil, err
	}

	resolver, err := newSourceResolver(types.FormatHTML, fetcher, nil, log, m)
	if err != nil {
		return nil, err
	}

	return &HTMLParagraphSplitter{
		config:   config,
		resolver: resolver,
		denoiser: denoiser,
		logger:   resolver.logger,
		metrics:  resolver.metrics,
	}, nil
}

// Chunk resolves data and yields denoised paragraph blocks
func (hp *HTMLParagraphSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	doc, err := hp.resolver.Resolve(ctx, data)
	if err != nil {
		return nil, err
	}

	return newChunkStream(func(yield func(string) bool) {
		count := 0
		for _, block := range hp.denoiser.Denoise(doc.Content) {
			count++
			if !yield(block) {
				return
			}
		}
		hp.metrics.Counter("chunkers.chunks_emitted", float64(count), map[string]string{
			"family":      string(FamilyHTML),
			"granularity": string(GranularityParagraph),
		})
	}), nil
}

// Family returns the splitter family of this chunker
func (hp *HTMLParagraphSplitter) Family() SplitterFamily {
	return FamilyHTML
}

// Granularity returns the kind of spans the stream yields
func (hp *HTMLParagraphSplitter) Granularity() Granularity {
	return GranularityParagraph
}

// GetConfig returns the current chunker configuration
func (hp *HTMLParagraphSplitter) GetConfig() *ChunkerConfig {
	config := *hp.config
	return &config
}

// SetConfig updates the chunker configuration. The denoiser is rebuilt
// so word list and threshold changes take effect.
func (hp *HTMLParagraphSplitter) SetConfig(config *ChunkerConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	denoiser, err := NewMarkupDenoiser(config, hp.logger)
	if err != nil {
		return err
	}
	hp.config = config
	hp.denoiser = denoiser
	return nil
}

// HTMLSentenceSplitter splits web pages into sentence-sized lines. It
// owns a paragraph splitter of the same family and never touches raw
// markup itself: paragraph blocks are re-split on embedded newlines and
// only lines longer than the token floor survive.
type HTMLSentenceSplitter struct {
	config     *ChunkerConfig
	paragraphs *HTMLParagraphSplitter
}

// NewHTMLSentenceSplitter creates a denoising sentence splitter
func NewHTMLSentenceSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*HTMLSentenceSplitter, error) {
	paragraphs, err := NewHTMLParagraphSplitter(config, fetcher, log, m)
	if err != nil {
		return nil, err
	}

	return &HTMLSentenceSplitter{
		config:     paragraphs.config,
		paragraphs: paragraphs,
	}, nil
}

// Chunk resolves data and yields sentence-sized lines from the denoised
// paragraph output
func (hs *HTMLSentenceSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	stream, err := hs.paragraphs.Chunk(ctx, data)
	if err != nil {
		return nil, err
	}

	return newChunkStream(func(yield func(string) bool) {
		for block := range stream {
			for _, line := range strings.Split(block, "\n") {
				if countWords(line) <= htmlSentenceTokenFloor {
					continue
				}
				if !yield(strings.TrimSpace(line)) {
					return
				}
			}
		}
	}), nil
}

// Family returns the splitter family of this chunker
func (hs *HTMLSentenceSplitter) Family() SplitterFamily {
	return FamilyHTML
}

// Granularity returns the kind of spans the stream yields
func (hs *HTMLSentenceSplitter) Granularity() Granularity {
	return GranularitySentence
}

// GetConfig returns the current chunker configuration
func (hs *HTMLSentenceSplitter) GetConfig() *ChunkerConfig {
	config := *hs.config
	return &config
}

// SetConfig updates the chunker configuration
func (hs *HTMLSentenceSplitter) SetConfig(config *ChunkerConfig) error {
	if err := hs.paragraphs.SetConfig(config); err != nil {
		return err
	}
	hs.config = config
	return nil
}
