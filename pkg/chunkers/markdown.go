package chunkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// Ensure the Markdown splitters implement the Chunker interface
var (
	_ Chunker = (*MarkdownParagraphSplitter)(nil)
	_ Chunker = (*MarkdownSentenceSplitter)(nil)
)

// MarkdownParagraphSplitter walks the heading tree of a Markdown
// document and yields one chunk per (heading path, content) pair. By
// default each chunk carries its heading path, a blank line, then the
// content; OmitTitle yields the content alone.
type MarkdownParagraphSplitter struct {
	config   *ChunkerConfig
	resolver *sourceResolver
	walker   *MarkdownTreeWalker
	metrics  interfaces.Metrics
}

// NewMarkdownParagraphSplitter creates a heading-tree paragraph splitter
func NewMarkdownParagraphSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*MarkdownParagraphSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	walker, err := NewMarkdownTreeWalker(config)
	if err != nil {
		return nil, err
	}

	resolver, err := newSourceResolver(types.FormatMarkdown, fetcher, nil, log, m)
	if err != nil {
		return nil, err
	}

	return &MarkdownParagraphSplitter{
		config:   config,
		resolver: resolver,
		walker:   walker,
		metrics:  resolver.metrics,
	}, nil
}

// Chunk resolves data and yields flattened heading-tree chunks
func (mp *MarkdownParagraphSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	doc, err := mp.resolver.Resolve(ctx, data)
	if err != nil {
		return nil, err
	}

	return newChunkStream(func(yield func(string) bool) {
		count := 0
		for path, content := range mp.walker.Walk(doc.Content) {
			chunk := content
			if !mp.config.OmitTitle && path != "" {
				chunk = path + "\n\n" + content
			}
			count++
			if !yield(chunk) {
				return
			}
		}
		mp.metrics.Counter("chunkers.chunks_emitted", float64(count), map[string]string{
			"family":      string(FamilyMarkdown),
			"granularity": string(GranularityParagraph),
		})
	}), nil
}

// Family returns the splitter family of this chunker
func (mp *MarkdownParagraphSplitter) Family() SplitterFamily {
	return FamilyMarkdown
}

// Granularity returns the kind of spans the stream yields
func (mp *MarkdownParagraphSplitter) Granularity() Granularity {
	return GranularityParagraph
}

// GetConfig returns the current chunker configuration
func (mp *MarkdownParagraphSplitter) GetConfig() *ChunkerConfig {
	config := *mp.config
	return &config
}

// SetConfig updates the chunker configuration. The walker is rebuilt so
// list handling changes take effect.
func (mp *MarkdownParagraphSplitter) SetConfig(config *ChunkerConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	walker, err := NewMarkdownTreeWalker(config)
	if err != nil {
		return err
	}
	mp.config = config
	mp.walker = walker
	return nil
}

// MarkdownSentenceSplitter splits Markdown documents into line-level
// sentence chunks. It owns a paragraph splitter of the same family with
// heading paths suppressed, since heading context is not wanted in a
// sentence stream, and re-splits each paragraph on embedded newlines.
type MarkdownSentenceSplitter struct {
	config     *ChunkerConfig
	paragraphs *MarkdownParagraphSplitter
}

// NewMarkdownSentenceSplitter creates a heading-tree sentence splitter
func NewMarkdownSentenceSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*MarkdownSentenceSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	// The owned paragraph splitter never prefixes heading paths
	paragraphConfig := *config
	paragraphConfig.OmitTitle = true

	paragraphs, err := NewMarkdownParagraphSplitter(&paragraphConfig, fetcher, log, m)
	if err != nil {
		return nil, err
	}

	return &MarkdownSentenceSplitter{
		config:     config,
		paragraphs: paragraphs,
	}, nil
}

// Chunk resolves data and yields the non-blank lines of each heading
// section
func (ms *MarkdownSentenceSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	stream, err := ms.paragraphs.Chunk(ctx, data)
	if err != nil {
		return nil, err
	}

	return newChunkStream(func(yield func(string) bool) {
		for block := range stream {
			for _, line := range strings.Split(block, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if !yield(line) {
					return
				}
			}
		}
	}), nil
}

// Family returns the splitter family of this chunker
func (ms *MarkdownSentenceSplitter) Family() SplitterFamily {
	return FamilyMarkdown
}

// Granularity returns the kind of spans the stream yields
func (ms *MarkdownSentenceSplitter) Granularity() Granularity {
	return GranularitySentence
}

// GetConfig returns the current chunker configuration
func (ms *MarkdownSentenceSplitter) GetConfig() *ChunkerConfig {
	config := *ms.config
	return &config
}

// SetConfig updates the chunker configuration
func (ms *MarkdownSentenceSplitter) SetConfig(config *ChunkerConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	paragraphConfig := *config
	paragraphConfig.OmitTitle = true
	if err := ms.paragraphs.SetConfig(&paragraphConfig); err != nil {
		return err
	}
	ms.config = config
	return nil
}
