package chunkers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// extractedSentenceTokenFloor is the whitespace token count a line of
// extracted text must exceed to count as a sentence. Extracted documents
// carry shorter residue than web pages, so the floor sits below the
// HTML one.
const extractedSentenceTokenFloor = 3

// extractedParagraphSplitter carries the behavior shared by the
// binary-format paragraph splitters: resolve the input through the
// format's extraction collaborator, cut the text at blank lines, then
// keep only blocks that clear the quality filter. Word counting ignores
// stop words and words of three characters or fewer.
type extractedParagraphSplitter struct {
	config   *ChunkerConfig
	family   SplitterFamily
	resolver *sourceResolver
	filter   *QualityFilter
	blockRe  *regexp.Regexp
	metrics  interfaces.Metrics
}

func newExtractedParagraphSplitter(family SplitterFamily, format types.DocumentFormat, config *ChunkerConfig, fetcher interfaces.Fetcher, extractor interfaces.Extractor, log interfaces.Logger, m interfaces.Metrics) (extractedParagraphSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	blockRe, err := regexp.Compile(`\n\s*\n`)
	if err != nil {
		return extractedParagraphSplitter{}, fmt.Errorf("failed to compile block boundary regex: %w", err)
	}

	resolver, err := newSourceResolver(format, fetcher, extractor, log, m)
	if err != nil {
		return extractedParagraphSplitter{}, err
	}

	return extractedParagraphSplitter{
		config:   config,
		family:   family,
		resolver: resolver,
		filter:   NewBlockQualityFilter(config.StopWords, config.BadWords, config.minWordsOrDefault()),
		blockRe:  blockRe,
		metrics:  resolver.metrics,
	}, nil
}

// Chunk resolves data and yields the extracted text blocks that clear
// the quality filter
func (ep *extractedParagraphSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	doc, err := ep.resolver.Resolve(ctx, data)
	if err != nil {
		return nil, err
	}

	return newChunkStream(func(yield func(string) bool) {
		count := 0
		for _, block := range ep.blockRe.Split(doc.Content, -1) {
			block = strings.TrimSpace(block)
			if block == "" || ep.filter.Judge(block) != VerdictKeep {
				continue
			}
			count++
			if !yield(block) {
				return
			}
		}
		ep.metrics.Counter("chunkers.chunks_emitted", float64(count), map[string]string{
			"family":      string(ep.family),
			"granularity": string(GranularityParagraph),
		})
	}), nil
}

// Family returns the splitter family of this chunker
func (ep *extractedParagraphSplitter) Family() SplitterFamily {
	return ep.family
}

// Granularity returns the kind of spans the stream yields
func (ep *extractedParagraphSplitter) Granularity() Granularity {
	return GranularityParagraph
}

// GetConfig returns the current chunker configuration
func (ep *extractedParagraphSplitter) GetConfig() *ChunkerConfig {
	config := *ep.config
	return &config
}

// SetConfig updates the chunker configuration. The quality filter is
// rebuilt so word list and threshold changes take effect.
func (ep *extractedParagraphSplitter) SetConfig(config *ChunkerConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	ep.config = config
	ep.filter = NewBlockQualityFilter(config.StopWords, config.BadWords, config.minWordsOrDefault())
	return nil
}

// extractedSentenceSplitter re-splits the paragraph output of its owned
// paragraph splitter on embedded newlines, keeping only lines longer
// than the extracted-text token floor.
type extractedSentenceSplitter struct {
	config     *ChunkerConfig
	family     SplitterFamily
	paragraphs *extractedParagraphSplitter
}

func newExtractedSentenceSplitter(paragraphs *extractedParagraphSplitter) extractedSentenceSplitter {
	return extractedSentenceSplitter{
		config:     paragraphs.config,
		family:     paragraphs.family,
		paragraphs: paragraphs,
	}
}

// Chunk resolves data and yields sentence-sized lines from the
// paragraph output
func (es *extractedSentenceSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	stream, err := es.paragraphs.Chunk(ctx, data)
	if err != nil {
		return nil, err
	}

	return newChunkStream(func(yield func(string) bool) {
		for block := range stream {
			for _, line := range strings.Split(block, "\n") {
				if countWords(line) <= extractedSentenceTokenFloor {
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
func (es *extractedSentenceSplitter) Family() SplitterFamily {
	return es.family
}

// Granularity returns the kind of spans the stream yields
func (es *extractedSentenceSplitter) Granularity() Granularity {
	return GranularitySentence
}

// GetConfig returns the current chunker configuration
func (es *extractedSentenceSplitter) GetConfig() *ChunkerConfig {
	config := *es.config
	return &config
}

// SetConfig updates the chunker configuration
func (es *extractedSentenceSplitter) SetConfig(config *ChunkerConfig) error {
	if err := es.paragraphs.SetConfig(config); err != nil {
		return err
	}
	es.config = config
	return nil
}
