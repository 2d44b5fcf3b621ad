package chunkers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// regexTokenizer holds the compiled boundary patterns shared by the
// regex splitter family
type regexTokenizer struct {
	paragraphRe *regexp.Regexp
	sentenceRe  *regexp.Regexp
}

func newRegexTokenizer() (*regexTokenizer, error) {
	paragraphRe, err := regexp.Compile(`\n\s*\n|\r\n\s*\r\n`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile paragraph boundary regex: %w", err)
	}

	sentenceRe, err := regexp.Compile(`[.!?]+\s+`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile sentence boundary regex: %w", err)
	}

	return &regexTokenizer{
		paragraphRe: paragraphRe,
		sentenceRe:  sentenceRe,
	}, nil
}

// paragraphTokenize splits text at blank line runs, trimming each piece
func (t *regexTokenizer) paragraphTokenize(text string) []string {
	var paragraphs []string
	for _, part := range t.paragraphRe.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return paragraphs
}

// sentenceTokenize splits text at terminal punctuation followed by
// whitespace, keeping the punctuation with the preceding sentence.
// Text that produces no boundaries comes back as a single untokenized
// piece, so malformed input degrades instead of disappearing.
func (t *regexTokenizer) sentenceTokenize(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, m := range t.sentenceRe.FindAllStringIndex(text, -1) {
		end := m[0]
		for end < m[1] && !unicode.IsSpace(rune(text[end])) {
			end++
		}
		if s := strings.TrimSpace(text[last:end]); s != "" {
			sentences = append(sentences, s)
		}
		last = m[1]
	}
	if last < len(text) {
		if s := strings.TrimSpace(text[last:]); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		sentences = []string{text}
	}
	return sentences
}

// RegexParagraphSplitter splits plain text into paragraph chunks using
// newline boundary patterns. Input lines are processed independently.
type RegexParagraphSplitter struct {
	config    *ChunkerConfig
	tokenizer *regexTokenizer
}

// NewRegexParagraphSplitter creates a new regex-based paragraph splitter
func NewRegexParagraphSplitter(config *ChunkerConfig) (*RegexParagraphSplitter, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	tokenizer, err := newRegexTokenizer()
	if err != nil {
		return nil, err
	}

	return &RegexParagraphSplitter{
		config:    config,
		tokenizer: tokenizer,
	}, nil
}

// Chunk splits data into a lazy stream of paragraphs
func (rp *RegexParagraphSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	return newChunkStream(func(yield func(string) bool) {
		for _, line := range strings.Split(data, "\n") {
			for _, p := range rp.tokenizer.paragraphTokenize(line) {
				if !yield(p) {
					return
				}
			}
		}
	}), nil
}

// Family returns the splitter family of this chunker
func (rp *RegexParagraphSplitter) Family() SplitterFamily {
	return FamilyRegex
}

// Granularity returns the kind of spans the stream yields
func (rp *RegexParagraphSplitter) Granularity() Granularity {
	return GranularityParagraph
}

// GetConfig returns the current chunker configuration
func (rp *RegexParagraphSplitter) GetConfig() *ChunkerConfig {
	config := *rp.config
	return &config
}

// SetConfig updates the chunker configuration
func (rp *RegexParagraphSplitter) SetConfig(config *ChunkerConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	rp.config = config
	return nil
}

// RegexSentenceSplitter splits plain text into sentence chunks. It owns
// a paragraph splitter of the same family and tokenizes sentences only
// from that splitter's paragraph output.
type RegexSentenceSplitter struct {
	config     *ChunkerConfig
	paragraphs *RegexParagraphSplitter
	tokenizer  *regexTokenizer
}

// NewRegexSentenceSplitter creates a new regex-based sentence splitter
func NewRegexSentenceSplitter(config *ChunkerConfig) (*RegexSentenceSplitter, error) {
	paragraphs, err := NewRegexParagraphSplitter(config)
	if err != nil {
		return nil, err
	}

	return &RegexSentenceSplitter{
		config:     paragraphs.config,
		paragraphs: paragraphs,
		tokenizer:  paragraphs.tokenizer,
	}, nil
}

// Chunk splits data into a lazy stream of sentences
func (rs *RegexSentenceSplitter) Chunk(ctx context.Context, data string) (ChunkStream, error) {
	stream, err := rs.paragraphs.Chunk(ctx, data)
	if err != nil {
		return nil, err
	}

	return newChunkStream(func(yield func(string) bool) {
		for p := range stream {
			for _, s := range rs.tokenizer.sentenceTokenize(p) {
				if !yield(s) {
					return
				}
			}
		}
	}), nil
}

// Family returns the splitter family of this chunker
func (rs *RegexSentenceSplitter) Family() SplitterFamily {
	return FamilyRegex
}

// Granularity returns the kind of spans the stream yields
func (rs *RegexSentenceSplitter) Granularity() Granularity {
	return GranularitySentence
}

// GetConfig returns the current chunker configuration
func (rs *RegexSentenceSplitter) GetConfig() *ChunkerConfig {
	config := *rs.config
	return &config
}

// SetConfig updates the chunker configuration
func (rs *RegexSentenceSplitter) SetConfig(config *ChunkerConfig) error {
	if err := rs.paragraphs.SetConfig(config); err != nil {
		return err
	}
	rs.config = config
	return nil
}
